package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"recipe-share/internal/core/cache"
	"recipe-share/internal/core/model"
	recipeService "recipe-share/internal/core/recipe"
	"recipe-share/internal/core/search"
	userService "recipe-share/internal/core/user"
	"recipe-share/internal/infrastructure/config"
	"recipe-share/internal/infrastructure/repository"
	"recipe-share/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

type testEnv struct {
	router *gin.Engine
	mem    *repository.Memory
	chef   model.User
	fan    model.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := repository.NewMemory()
	store := cache.NewManager(config.CacheConfig{MaxSize: 100, TTL: time.Minute})
	t.Cleanup(func() { _ = store.Close() })

	cfg := &config.Config{
		App:         config.AppConfig{Version: "test"},
		Server:      config.ServerConfig{RequestTimeout: 5 * time.Second, MaxBodyBytes: 1 << 20},
		DedupWindow: time.Nanosecond,
	}
	router, cleanup := SetupRouter(cfg, Dependencies{
		Recipes: recipeService.NewService(mem.Recipes(), store),
		Users:   userService.NewService(mem.Users(), mem.Recipes()),
	})
	t.Cleanup(cleanup)

	return &testEnv{
		router: router,
		mem:    mem,
		chef:   mem.AddUser(model.User{Username: "chef", Email: "chef@example.com"}),
		fan:    mem.AddUser(model.User{Username: "fan", Email: "fan@example.com"}),
	}
}

func (e *testEnv) seed(t *testing.T, title string, created time.Time, ingredients ...string) model.Recipe {
	t.Helper()
	sec := model.Section{Name: "Main"}
	for _, name := range ingredients {
		sec.Ingredients = append(sec.Ingredients, model.Ingredient{Name: name, Quantity: 1})
	}
	r := model.Recipe{UserID: e.chef.ID, Title: title, Description: "desc", CreatedAt: created, Sections: []model.Section{sec}}
	if err := e.mem.Recipes().Create(context.Background(), &r, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return r
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := common.ParseJSONBytes(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func TestSearchEndpoints(t *testing.T) {
	e := newTestEnv(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		e.seed(t, fmt.Sprintf("Soup %d", i), base.Add(time.Duration(i)*time.Hour), "carrot")
	}
	e.seed(t, "Lemonade", base, "Drink")

	w := e.do(http.MethodGet, "/api/v1/recipes/search?query=SOUP&page=3&limit=5", "")
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d: %s", w.Code, w.Body.String())
	}
	result := decode[search.Result](t, w)
	if len(result.Recipes) != 2 || result.Pagination.Total != 12 || result.Pagination.TotalPages != 3 || result.Pagination.HasMore {
		t.Errorf("search result = %d recipes, %+v", len(result.Recipes), result.Pagination)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("response should carry a request id")
	}

	w = e.do(http.MethodGet, "/api/v1/recipes/search?limit=abc&page=xyz", "")
	result = decode[search.Result](t, w)
	if result.Pagination.Limit != 10 || result.Pagination.Page != 1 || result.Pagination.Total != 13 {
		t.Errorf("normalized pagination = %+v", result.Pagination)
	}

	w = e.do(http.MethodGet, "/api/v1/recipes/search/category?category=Drinks", "")
	result = decode[search.Result](t, w)
	if result.Pagination.Total != 1 || result.Recipes[0].Title != "Lemonade" {
		t.Errorf("category result = %+v", result.Pagination)
	}

	w = e.do(http.MethodGet, "/api/v1/recipes/search/category?category=Nope", "")
	if result = decode[search.Result](t, w); w.Code != http.StatusOK || result.Pagination.Total != 0 {
		t.Errorf("unknown category = %d %+v", w.Code, result.Pagination)
	}

	w = e.do(http.MethodGet, fmt.Sprintf("/api/v1/recipes/user/%d/search?q=lemon", e.chef.ID), "")
	if result = decode[search.Result](t, w); result.Pagination.Total != 1 {
		t.Errorf("user search total = %d", result.Pagination.Total)
	}

	w = e.do(http.MethodGet, "/api/v1/recipes/categories", "")
	cats := decode[map[string][]string](t, w)
	if len(cats["categories"]) != 7 {
		t.Errorf("categories = %v", cats)
	}
}

func TestFeedEndpoint(t *testing.T) {
	e := newTestEnv(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		e.seed(t, "R", base.Add(time.Duration(i)*time.Hour))
	}

	w := e.do(http.MethodGet, "/api/v1/recipes/feed?limit=2", "")
	feed := decode[recipeService.FeedResult](t, w)
	if len(feed.Recipes) != 2 || !feed.HasMore || feed.NextCursor == nil {
		t.Fatalf("first feed page = %+v", feed)
	}

	w = e.do(http.MethodGet, fmt.Sprintf("/api/v1/recipes/feed?limit=2&cursor=%d", *feed.NextCursor), "")
	feed = decode[recipeService.FeedResult](t, w)
	if len(feed.Recipes) != 1 || feed.HasMore {
		t.Errorf("second feed page = %+v", feed)
	}

	w = e.do(http.MethodGet, "/api/v1/recipes/feed?cursor=abc", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad cursor status = %d", w.Code)
	}
	if resp := decode[common.ErrorResponse](t, w); resp.Code != common.ErrCodeValidation {
		t.Errorf("bad cursor code = %q", resp.Code)
	}

	w = e.do(http.MethodGet, "/api/v1/recipes/feed?cursor=9999", "")
	if !strings.Contains(w.Body.String(), `"next_cursor":null`) {
		t.Errorf("unknown cursor body = %s", w.Body.String())
	}
}

func TestRecipeErrors(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		status   int
		wantCode string
	}{
		{"unknown recipe", http.MethodGet, "/api/v1/recipes/9999", "", http.StatusNotFound, common.ErrCodeRecipeNotFound},
		{"bad id", http.MethodGet, "/api/v1/recipes/abc", "", http.StatusBadRequest, common.ErrCodeValidation},
		{"malformed json", http.MethodPost, "/api/v1/recipes", `{"title":`, http.StatusBadRequest, common.ErrCodeInvalidRequest},
		{"missing user", http.MethodPost, "/api/v1/recipes", `{"title":"t","description":"d"}`, http.StatusBadRequest, common.ErrCodeInvalidRequest},
		{"missing title", http.MethodPost, "/api/v1/recipes", fmt.Sprintf(`{"user_id":%d,"description":"d"}`, e.chef.ID), http.StatusBadRequest, common.ErrCodeValidation},
		{"update unknown", http.MethodPut, "/api/v1/recipes/9999", `{"title":"t","description":"d"}`, http.StatusNotFound, common.ErrCodeRecipeNotFound},
		{"delete unknown", http.MethodDelete, "/api/v1/recipes/9999", "", http.StatusNotFound, common.ErrCodeRecipeNotFound},
		{"review unknown", http.MethodPost, "/api/v1/recipes/9999/reviews", fmt.Sprintf(`{"user_id":%d,"rating":5}`, e.fan.ID), http.StatusNotFound, common.ErrCodeRecipeNotFound},
		{"unknown route", http.MethodGet, "/api/v1/nothing", "", http.StatusNotFound, common.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(tt.method, tt.path, tt.body)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.status, w.Body.String())
			}
			if resp := decode[common.ErrorResponse](t, w); resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestUserEndpoints(t *testing.T) {
	e := newTestEnv(t)
	r := e.seed(t, "Pie", time.Now())
	follow := fmt.Sprintf("/api/v1/users/%d/follow/%d", e.fan.ID, e.chef.ID)

	if w := e.do(http.MethodPost, follow, ""); w.Code != http.StatusCreated {
		t.Fatalf("follow status = %d: %s", w.Code, w.Body.String())
	}
	if w := e.do(http.MethodPost, follow, ""); w.Code != http.StatusConflict {
		t.Errorf("duplicate follow status = %d, want 409", w.Code)
	}
	self := fmt.Sprintf("/api/v1/users/%d/follow/%d", e.fan.ID, e.fan.ID)
	if w := e.do(http.MethodPost, self, ""); w.Code != http.StatusBadRequest {
		t.Errorf("self follow status = %d, want 400", w.Code)
	}

	w := e.do(http.MethodGet, fmt.Sprintf("/api/v1/users/%d/profile", e.chef.ID), "")
	profile := decode[userService.Profile](t, w)
	if profile.FollowerCount != 1 || profile.Username != "chef" {
		t.Errorf("profile = %+v", profile)
	}
	if strings.Contains(w.Body.String(), "chef@example.com") {
		t.Error("profile must not expose email")
	}

	w = e.do(http.MethodGet, fmt.Sprintf("/api/v1/users/%d/followers", e.chef.ID), "")
	if users := decode[map[string][]model.UserSummary](t, w); len(users["users"]) != 1 || users["users"][0].ID != e.fan.ID {
		t.Errorf("followers = %s", w.Body.String())
	}

	fav := fmt.Sprintf("/api/v1/users/%d/favorites/%d", e.fan.ID, r.ID)
	if w := e.do(http.MethodPost, fav, ""); !strings.Contains(w.Body.String(), `"added"`) {
		t.Errorf("first favorite = %s", w.Body.String())
	}
	w = e.do(http.MethodGet, fmt.Sprintf("/api/v1/users/%d/favorites", e.fan.ID), "")
	if favs := decode[map[string][]model.RecipeSummary](t, w); len(favs["recipes"]) != 1 {
		t.Errorf("favorites = %s", w.Body.String())
	}
	if w := e.do(http.MethodPost, fav, ""); !strings.Contains(w.Body.String(), `"removed"`) {
		t.Errorf("second favorite = %s", w.Body.String())
	}

	if w := e.do(http.MethodDelete, follow, ""); w.Code != http.StatusOK {
		t.Errorf("unfollow status = %d", w.Code)
	}
}

func TestOperationalEndpoints(t *testing.T) {
	e := newTestEnv(t)
	e.do(http.MethodGet, "/api/v1/recipes/search", "")

	for _, path := range []string{"/health", "/ready", "/live"} {
		if w := e.do(http.MethodGet, path, ""); w.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, w.Code)
		}
	}

	w := e.do(http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "recipe_share_api_requests_total") {
		t.Errorf("metrics endpoint missing request counter")
	}
}
