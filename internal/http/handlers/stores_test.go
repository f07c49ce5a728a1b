package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/hongminglow/blog-be/internal/auth"
	"github.com/hongminglow/blog-be/internal/middleware"
	"github.com/hongminglow/blog-be/internal/models"
	"github.com/hongminglow/blog-be/internal/storage"
)

// memStore is an in-memory stand-in for the postgres store so handler tests
// can exercise full request flows without a database.
type memStore struct {
	mu         sync.Mutex
	users      map[string]models.User
	posts      map[string]models.Post
	categories map[int64]models.Category
	nextUser   int64
	nextPost   int64
	nextCat    int64
	failWith   error
	clock      time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[string]models.User{},
		posts:      map[string]models.Post{},
		categories: map[int64]models.Category{1: {ID: 1, Name: "general"}},
		nextCat:    1,
		clock:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *memStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return models.User{}, m.failWith
	}
	if _, ok := m.users[user.Email]; ok {
		return models.User{}, storage.ErrAlreadyExists
	}
	for _, existing := range m.users {
		if existing.Username == user.Username {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	m.nextUser++
	user.ID = m.nextUser
	now := m.tick()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users[user.Email] = user
	return user, nil
}

func (m *memStore) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return models.User{}, m.failWith
	}
	user, ok := m.users[email]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

func (m *memStore) UserExists(ctx context.Context, email, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return false, m.failWith
	}
	if _, ok := m.users[email]; ok {
		return true, nil
	}
	for _, existing := range m.users {
		if existing.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ListPosts(ctx context.Context, limit, offset int) ([]models.PostSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	all := make([]models.Post, 0, len(m.posts))
	for _, post := range m.posts {
		all = append(all, post)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	summaries := []models.PostSummary{}
	for i := offset; i < len(all) && len(summaries) < limit; i++ {
		p := all[i]
		summaries = append(summaries, models.PostSummary{
			ID: p.ID, Title: p.Title, Slug: p.Slug, Excerpt: p.Excerpt,
			CategoryID: p.CategoryID, AuthorID: p.AuthorID,
			CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
		})
	}
	return summaries, nil
}

func (m *memStore) FindPostBySlug(ctx context.Context, slug string) (models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return models.Post{}, m.failWith
	}
	post, ok := m.posts[slug]
	if !ok {
		return models.Post{}, storage.ErrNotFound
	}
	return post, nil
}

func (m *memStore) CreatePost(ctx context.Context, post models.Post) (models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return models.Post{}, m.failWith
	}
	if _, ok := m.posts[post.Slug]; ok {
		return models.Post{}, storage.ErrAlreadyExists
	}
	m.nextPost++
	post.ID = m.nextPost
	now := m.tick()
	post.CreatedAt = now
	post.UpdatedAt = now
	m.posts[post.Slug] = post
	return post, nil
}

func (m *memStore) UpdatePost(ctx context.Context, slug string, post models.Post) (models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return models.Post{}, m.failWith
	}
	current, ok := m.posts[slug]
	if !ok {
		return models.Post{}, storage.ErrNotFound
	}
	if post.Slug != slug {
		if _, taken := m.posts[post.Slug]; taken {
			return models.Post{}, storage.ErrAlreadyExists
		}
	}
	post.ID = current.ID
	post.AuthorID = current.AuthorID
	post.CreatedAt = current.CreatedAt
	post.UpdatedAt = m.tick()
	delete(m.posts, slug)
	m.posts[post.Slug] = post
	return post, nil
}

func (m *memStore) DeletePostBySlug(ctx context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.posts[slug]; !ok {
		return storage.ErrNotFound
	}
	delete(m.posts, slug)
	return nil
}

func (m *memStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := make([]models.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) CreateCategory(ctx context.Context, name string) (models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return models.Category{}, m.failWith
	}
	for _, c := range m.categories {
		if c.Name == name {
			return models.Category{}, storage.ErrAlreadyExists
		}
	}
	m.nextCat++
	c := models.Category{ID: m.nextCat, Name: name}
	m.categories[c.ID] = c
	return c, nil
}

func (m *memStore) DeleteCategory(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.categories[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.categories, id)
	return nil
}

// newTestServer wires the handlers the same way internal/server does, minus
// CORS and logging, over the in-memory store.
func newTestServer(t *testing.T) (*httptest.Server, *memStore) {
	t.Helper()

	store := newMemStore()
	tokens := auth.NewTokenManager("test-secret", 24*time.Hour)
	guard := func(next http.Handler) http.Handler {
		return middleware.RequireAuth(store, tokens, next)
	}

	mux := http.NewServeMux()
	NewAuthHandler(store, tokens).Register(mux, guard)
	NewPostHandler(store).Register(mux, guard)
	NewCategoryHandler(store).Register(mux, guard)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, store
}
