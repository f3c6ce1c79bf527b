package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"recipe-share/internal/core/model"
	"recipe-share/internal/core/search"
	"recipe-share/internal/pkg/common"
)

// Memory 記憶體資料存放，供測試與本機開發使用
type Memory struct {
	mu sync.RWMutex

	users     map[uint]model.User
	recipes   map[uint]model.Recipe
	reviews   []model.Review
	comments  []model.Comment
	tags      map[string]model.Tag
	follows   []model.UserFollow
	favorites []model.UserFavorite

	lastID uint
	now    func() time.Time
}

// NewMemory 創建記憶體資料存放
func NewMemory() *Memory {
	return &Memory{
		users:   make(map[uint]model.User),
		recipes: make(map[uint]model.Recipe),
		tags:    make(map[string]model.Tag),
		now:     time.Now,
	}
}

// Recipes 食譜資料存取
func (m *Memory) Recipes() *MemoryRecipeRepository {
	return &MemoryRecipeRepository{m: m}
}

// Users 使用者資料存取
func (m *Memory) Users() *MemoryUserRepository {
	return &MemoryUserRepository{m: m}
}

func (m *Memory) nextID() uint {
	m.lastID++
	return m.lastID
}

// AddUser 新增使用者，ID 為 0 時自動配發
func (m *Memory) AddUser(user model.User) model.User {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user.ID == 0 {
		user.ID = m.nextID()
	} else if user.ID > m.lastID {
		m.lastID = user.ID
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = m.now()
	}
	m.users[user.ID] = user
	return user
}

// AddComment 新增留言
func (m *Memory) AddComment(recipeID, userID uint, content string) model.Comment {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := model.Comment{ID: m.nextID(), RecipeID: recipeID, UserID: userID, Content: content, CreatedAt: m.now()}
	m.comments = append(m.comments, c)
	return c
}

func (m *Memory) userSummary(id uint) *model.UserSummary {
	u, ok := m.users[id]
	if !ok {
		return nil
	}
	s := u.Summary()
	return &s
}

// materialize 複製食譜並補上作者、評分與留言數，呼叫端需持有讀鎖
func (m *Memory) materialize(stored model.Recipe) model.Recipe {
	r := stored

	r.Sections = make([]model.Section, len(stored.Sections))
	for i, sec := range stored.Sections {
		sec.Ingredients = append([]model.Ingredient(nil), sec.Ingredients...)
		r.Sections[i] = sec
	}
	r.Steps = append([]model.Step(nil), stored.Steps...)
	sort.SliceStable(r.Steps, func(i, j int) bool { return r.Steps[i].OrderNumber < r.Steps[j].OrderNumber })
	r.Tags = append([]model.Tag{}, stored.Tags...)
	r.User = m.userSummary(stored.UserID)

	r.Ratings = []model.ReviewRating{}
	for _, rv := range m.reviews {
		if rv.RecipeID == stored.ID {
			r.Ratings = append(r.Ratings, model.ReviewRating{RecipeID: rv.RecipeID, Rating: rv.Rating})
		}
	}
	r.CommentCount = 0
	for _, c := range m.comments {
		if c.RecipeID == stored.ID {
			r.CommentCount++
		}
	}
	r.Reviews = nil
	return r
}

func (m *Memory) sortedRecipeIDs() []uint {
	ids := make([]uint, 0, len(m.recipes))
	for id := range m.recipes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *Memory) upsertTags(names []string) []model.Tag {
	seen := make(map[string]bool, len(names))
	tags := make([]model.Tag, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		tag, ok := m.tags[name]
		if !ok {
			tag = model.Tag{ID: m.nextID(), Name: name}
			m.tags[name] = tag
		}
		tags = append(tags, tag)
	}
	return tags
}

// MemoryRecipeRepository 記憶體食譜資料存取
type MemoryRecipeRepository struct {
	m *Memory
}

// FindRecipes 以 search.Matches 過濾，依 id 遞增
func (r *MemoryRecipeRepository) FindRecipes(_ context.Context, filters []search.Filter) ([]model.Recipe, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	out := []model.Recipe{}
	for _, id := range r.m.sortedRecipeIDs() {
		recipe := r.m.materialize(r.m.recipes[id])
		if search.Matches(&recipe, filters) {
			out = append(out, recipe)
		}
	}
	return out, nil
}

// FindFeed 依建立時間由新到舊取得 cursor 之後的食譜
func (r *MemoryRecipeRepository) FindFeed(_ context.Context, cursor uint, limit int) ([]model.Recipe, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	all := make([]model.Recipe, 0, len(r.m.recipes))
	for _, id := range r.m.sortedRecipeIDs() {
		all = append(all, r.m.recipes[id])
	}
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	start := 0
	if cursor != 0 {
		start = -1
		for i := range all {
			if all[i].ID == cursor {
				start = i + 1
				break
			}
		}
		if start == -1 {
			return []model.Recipe{}, nil
		}
	}

	end := min(start+limit, len(all))
	out := make([]model.Recipe, 0, end-start)
	for _, stored := range all[start:end] {
		out = append(out, r.m.materialize(stored))
	}
	return out, nil
}

// FindByID 取得食譜詳情與評論
func (r *MemoryRecipeRepository) FindByID(_ context.Context, id uint) (*model.Recipe, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	stored, ok := r.m.recipes[id]
	if !ok {
		return nil, common.ErrRecipeNotFound
	}
	recipe := r.m.materialize(stored)
	recipe.Ratings = nil

	recipe.Reviews = []model.Review{}
	for _, rv := range r.m.reviews {
		if rv.RecipeID == id {
			rv.User = r.m.userSummary(rv.UserID)
			recipe.Reviews = append(recipe.Reviews, rv)
		}
	}
	sort.SliceStable(recipe.Reviews, func(i, j int) bool {
		return recipe.Reviews[i].CreatedAt.After(recipe.Reviews[j].CreatedAt)
	})
	return &recipe, nil
}

// Exists 檢查食譜是否存在
func (r *MemoryRecipeRepository) Exists(_ context.Context, id uint) (bool, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	_, ok := r.m.recipes[id]
	return ok, nil
}

// Create 新增食譜並配發所有子項目的 ID
func (r *MemoryRecipeRepository) Create(_ context.Context, recipe *model.Recipe, tagNames []string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	recipe.ID = r.m.nextID()
	if recipe.CreatedAt.IsZero() {
		recipe.CreatedAt = r.m.now()
	}
	for i := range recipe.Sections {
		sec := &recipe.Sections[i]
		sec.ID = r.m.nextID()
		sec.RecipeID = recipe.ID
		for j := range sec.Ingredients {
			sec.Ingredients[j].ID = r.m.nextID()
			sec.Ingredients[j].SectionID = sec.ID
		}
	}
	for i := range recipe.Steps {
		recipe.Steps[i].ID = r.m.nextID()
		recipe.Steps[i].RecipeID = recipe.ID
	}
	recipe.Tags = r.m.upsertTags(tagNames)

	stored := r.m.materialize(*recipe)
	stored.User = nil
	stored.Ratings = nil
	r.m.recipes[recipe.ID] = stored
	return nil
}

// Update 更新食譜欄位；replaceSteps 為 true 時取代全部步驟
func (r *MemoryRecipeRepository) Update(_ context.Context, recipe *model.Recipe, replaceSteps bool) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	stored, ok := r.m.recipes[recipe.ID]
	if !ok {
		return common.ErrRecipeNotFound
	}
	stored.Title = recipe.Title
	stored.Description = recipe.Description
	stored.ImageURL = recipe.ImageURL
	stored.PreparationTime = recipe.PreparationTime
	stored.CookingTime = recipe.CookingTime
	stored.Servings = recipe.Servings

	if replaceSteps {
		stored.Steps = make([]model.Step, len(recipe.Steps))
		for i, st := range recipe.Steps {
			st.ID = r.m.nextID()
			st.RecipeID = recipe.ID
			stored.Steps[i] = st
		}
	}
	r.m.recipes[recipe.ID] = stored
	return nil
}

// Delete 刪除食譜與其評論、留言、收藏
func (r *MemoryRecipeRepository) Delete(_ context.Context, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.recipes[id]; !ok {
		return common.ErrRecipeNotFound
	}
	delete(r.m.recipes, id)

	r.m.reviews = filterSlice(r.m.reviews, func(rv model.Review) bool { return rv.RecipeID != id })
	r.m.comments = filterSlice(r.m.comments, func(c model.Comment) bool { return c.RecipeID != id })
	r.m.favorites = filterSlice(r.m.favorites, func(f model.UserFavorite) bool { return f.RecipeID != id })
	return nil
}

// CreateReview 新增評論
func (r *MemoryRecipeRepository) CreateReview(_ context.Context, review *model.Review) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	review.ID = r.m.nextID()
	if review.CreatedAt.IsZero() {
		review.CreatedAt = r.m.now()
	}
	stored := *review
	stored.User = nil
	r.m.reviews = append(r.m.reviews, stored)

	review.User = r.m.userSummary(review.UserID)
	return nil
}

// MemoryUserRepository 記憶體使用者資料存取
type MemoryUserRepository struct {
	m *Memory
}

// FindByID 取得使用者
func (r *MemoryUserRepository) FindByID(_ context.Context, id uint) (*model.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	u, ok := r.m.users[id]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	return &u, nil
}

// Follow 建立追蹤關係
func (r *MemoryUserRepository) Follow(_ context.Context, followerID, followingID uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, f := range r.m.follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			return common.ErrAlreadyFollow
		}
	}
	r.m.follows = append(r.m.follows, model.UserFollow{
		ID:          r.m.nextID(),
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   r.m.now(),
	})
	return nil
}

// Unfollow 移除追蹤關係
func (r *MemoryUserRepository) Unfollow(_ context.Context, followerID, followingID uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	r.m.follows = filterSlice(r.m.follows, func(f model.UserFollow) bool {
		return f.FollowerID != followerID || f.FollowingID != followingID
	})
	return nil
}

// Followers 追蹤此使用者的人，最新在前
func (r *MemoryUserRepository) Followers(_ context.Context, userID uint) ([]model.UserSummary, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	out := []model.UserSummary{}
	for i := len(r.m.follows) - 1; i >= 0; i-- {
		f := r.m.follows[i]
		if f.FollowingID == userID {
			if s := r.m.userSummary(f.FollowerID); s != nil {
				out = append(out, *s)
			}
		}
	}
	return out, nil
}

// Following 此使用者追蹤的人，最新在前
func (r *MemoryUserRepository) Following(_ context.Context, userID uint) ([]model.UserSummary, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	out := []model.UserSummary{}
	for i := len(r.m.follows) - 1; i >= 0; i-- {
		f := r.m.follows[i]
		if f.FollowerID == userID {
			if s := r.m.userSummary(f.FollowingID); s != nil {
				out = append(out, *s)
			}
		}
	}
	return out, nil
}

// CountFollows 取得追蹤者與追蹤中人數
func (r *MemoryUserRepository) CountFollows(_ context.Context, userID uint) (followers, following int64, err error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	for _, f := range r.m.follows {
		if f.FollowingID == userID {
			followers++
		}
		if f.FollowerID == userID {
			following++
		}
	}
	return followers, following, nil
}

// ToggleFavorite 切換收藏，回傳是否為新增
func (r *MemoryUserRepository) ToggleFavorite(_ context.Context, userID, recipeID uint) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	before := len(r.m.favorites)
	r.m.favorites = filterSlice(r.m.favorites, func(f model.UserFavorite) bool {
		return f.UserID != userID || f.RecipeID != recipeID
	})
	if len(r.m.favorites) < before {
		return false, nil
	}

	r.m.favorites = append(r.m.favorites, model.UserFavorite{
		ID:        r.m.nextID(),
		UserID:    userID,
		RecipeID:  recipeID,
		CreatedAt: r.m.now(),
	})
	return true, nil
}

// Favorites 收藏的食譜摘要，最新收藏在前
func (r *MemoryUserRepository) Favorites(_ context.Context, userID uint) ([]model.RecipeSummary, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	out := []model.RecipeSummary{}
	for i := len(r.m.favorites) - 1; i >= 0; i-- {
		f := r.m.favorites[i]
		if f.UserID != userID {
			continue
		}
		stored, ok := r.m.recipes[f.RecipeID]
		if !ok {
			continue
		}
		summary := stored.Summary()
		summary.User = r.m.userSummary(stored.UserID)
		out = append(out, summary)
	}
	return out, nil
}

func filterSlice[T any](items []T, keep func(T) bool) []T {
	out := items[:0]
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}
