package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"recipe-share/internal/core/model"
	"recipe-share/internal/core/search"
	"recipe-share/internal/pkg/common"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func seedRecipe(t *testing.T, repo *MemoryRecipeRepository, userID uint, title string, created time.Time, ingredients ...string) model.Recipe {
	t.Helper()
	sec := model.Section{Name: "Main"}
	for _, name := range ingredients {
		sec.Ingredients = append(sec.Ingredients, model.Ingredient{Name: name, Quantity: 1})
	}
	r := model.Recipe{
		UserID:      userID,
		Title:       title,
		Description: title + " description",
		Servings:    2,
		CreatedAt:   created,
		Sections:    []model.Section{sec},
		Steps:       []model.Step{{OrderNumber: 1, Instruction: "cook"}},
	}
	if err := repo.Create(context.Background(), &r, []string{"dinner"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return r
}

func TestMemoryRecipes_FindRecipesMaterializes(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	author := mem.AddUser(model.User{Username: "chef", Email: "chef@example.com", PasswordHash: "secret"})
	repo := mem.Recipes()

	soup := seedRecipe(t, repo, author.ID, "Tomato soup", t0, "tomato")
	seedRecipe(t, repo, author.ID, "Steak", t0.Add(time.Hour), "beef")

	_ = repo.CreateReview(ctx, &model.Review{RecipeID: soup.ID, UserID: author.ID, Rating: 4})
	_ = repo.CreateReview(ctx, &model.Review{RecipeID: soup.ID, UserID: author.ID, Rating: 5})
	mem.AddComment(soup.ID, author.ID, "nice")

	recipes, err := repo.FindRecipes(ctx, []search.Filter{search.TextMatch{Query: "SOUP"}})
	if err != nil {
		t.Fatalf("FindRecipes() error = %v", err)
	}
	if len(recipes) != 1 {
		t.Fatalf("got %d recipes, want 1", len(recipes))
	}

	got := recipes[0]
	if got.User == nil || got.User.Username != "chef" {
		t.Errorf("owner summary = %+v", got.User)
	}
	if len(got.Ratings) != 2 || got.CommentCount != 1 {
		t.Errorf("ratings = %v, comment count = %d", got.Ratings, got.CommentCount)
	}
	if len(got.Tags) != 1 || got.Tags[0].Name != "dinner" {
		t.Errorf("tags = %+v", got.Tags)
	}
}

func TestMemoryRecipes_FindRecipesAscendingID(t *testing.T) {
	mem := NewMemory()
	repo := mem.Recipes()
	a := seedRecipe(t, repo, 1, "A", t0.Add(2*time.Hour), "drink")
	b := seedRecipe(t, repo, 1, "B", t0, "Drink")
	seedRecipe(t, repo, 1, "C", t0, "soda")

	recipes, err := repo.FindRecipes(context.Background(), []search.Filter{search.CategoryMatch{Keywords: search.Keywords("Drinks")}})
	if err != nil {
		t.Fatalf("FindRecipes() error = %v", err)
	}
	if len(recipes) != 2 || recipes[0].ID != a.ID || recipes[1].ID != b.ID {
		t.Errorf("unexpected result order: %+v", recipes)
	}
}

func TestMemoryRecipes_FindFeed(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	repo := mem.Recipes()

	var ids []uint
	for i := 0; i < 6; i++ {
		r := seedRecipe(t, repo, 1, "R", t0.Add(time.Duration(i)*time.Minute))
		ids = append(ids, r.ID)
	}
	// 與第 5 新同時間的食譜以 id 決定先後
	tie := seedRecipe(t, repo, 1, "Tie", t0.Add(time.Minute))

	newestFirst := []uint{ids[5], ids[4], ids[3], ids[2], tie.ID, ids[1], ids[0]}

	tests := []struct {
		name   string
		cursor uint
		limit  int
		want   []uint
	}{
		{"first page", 0, 2, newestFirst[:2]},
		{"after third newest", newestFirst[2], 2, newestFirst[3:5]},
		{"tie broken by id", tie.ID, 10, newestFirst[5:]},
		{"after oldest", newestFirst[6], 5, nil},
		{"unknown cursor", 9999, 5, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.FindFeed(ctx, tt.cursor, tt.limit)
			if err != nil {
				t.Fatalf("FindFeed() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d recipes, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i].ID != tt.want[i] {
					t.Errorf("position %d: got id %d, want %d", i, got[i].ID, tt.want[i])
				}
			}
		})
	}
}

func TestMemoryRecipes_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	user := mem.AddUser(model.User{Username: "u"})
	repo := mem.Recipes()
	users := mem.Users()

	r := seedRecipe(t, repo, user.ID, "Old", t0)

	r.Title = "New"
	r.Steps = []model.Step{{OrderNumber: 1, Instruction: "a"}, {OrderNumber: 2, Instruction: "b"}}
	if err := repo.Update(ctx, &r, true); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, err := repo.FindByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got.Title != "New" || len(got.Steps) != 2 {
		t.Errorf("after update: title %q, %d steps", got.Title, len(got.Steps))
	}

	if err := repo.Update(ctx, &model.Recipe{ID: 4242}, false); !errors.Is(err, common.ErrRecipeNotFound) {
		t.Errorf("Update(missing) error = %v", err)
	}

	_, _ = users.ToggleFavorite(ctx, user.ID, r.ID)
	if err := repo.Delete(ctx, r.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, r.ID); !errors.Is(err, common.ErrRecipeNotFound) {
		t.Errorf("second Delete() error = %v", err)
	}
	favs, _ := users.Favorites(ctx, user.ID)
	if len(favs) != 0 {
		t.Errorf("favorites should cascade on delete, got %d", len(favs))
	}
}

func TestMemoryRecipes_CreateUpsertsTags(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory().Recipes()

	a := model.Recipe{Title: "A", Description: "a"}
	b := model.Recipe{Title: "B", Description: "b"}
	_ = repo.Create(ctx, &a, []string{"quick", " quick ", ""})
	_ = repo.Create(ctx, &b, []string{"quick", "vegan"})

	if len(a.Tags) != 1 {
		t.Fatalf("duplicate tag names should collapse, got %+v", a.Tags)
	}
	if b.Tags[0].ID != a.Tags[0].ID {
		t.Error("existing tag should be reused")
	}
}

func TestMemoryUsers_Follows(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	alice := mem.AddUser(model.User{Username: "alice"})
	bob := mem.AddUser(model.User{Username: "bob"})
	users := mem.Users()

	if err := users.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if err := users.Follow(ctx, alice.ID, bob.ID); !errors.Is(err, common.ErrAlreadyFollow) {
		t.Errorf("second Follow() error = %v", err)
	}

	followers, _ := users.Followers(ctx, bob.ID)
	if len(followers) != 1 || followers[0].Username != "alice" {
		t.Errorf("followers = %+v", followers)
	}
	following, _ := users.Following(ctx, alice.ID)
	if len(following) != 1 || following[0].ID != bob.ID {
		t.Errorf("following = %+v", following)
	}

	fr, fg, _ := users.CountFollows(ctx, bob.ID)
	if fr != 1 || fg != 0 {
		t.Errorf("counts = %d/%d", fr, fg)
	}

	_ = users.Unfollow(ctx, alice.ID, bob.ID)
	if err := users.Unfollow(ctx, alice.ID, bob.ID); err != nil {
		t.Errorf("Unfollow() of missing relation error = %v", err)
	}
	fr, _, _ = users.CountFollows(ctx, bob.ID)
	if fr != 0 {
		t.Errorf("followers after unfollow = %d", fr)
	}
}

func TestMemoryUsers_ToggleFavorite(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	user := mem.AddUser(model.User{Username: "u"})
	r := seedRecipe(t, mem.Recipes(), user.ID, "Pie", t0)
	users := mem.Users()

	added, _ := users.ToggleFavorite(ctx, user.ID, r.ID)
	if !added {
		t.Error("first toggle should add")
	}
	favs, _ := users.Favorites(ctx, user.ID)
	if len(favs) != 1 || favs[0].Title != "Pie" || favs[0].User == nil {
		t.Errorf("favorites = %+v", favs)
	}

	added, _ = users.ToggleFavorite(ctx, user.ID, r.ID)
	if added {
		t.Error("second toggle should remove")
	}
}

func TestMemoryUsers_FindByID(t *testing.T) {
	mem := NewMemory()
	if _, err := mem.Users().FindByID(context.Background(), 1); !errors.Is(err, common.ErrUserNotFound) {
		t.Errorf("FindByID(missing) error = %v", err)
	}
}
