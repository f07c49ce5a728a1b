package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/blog-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore captures persistence operations needed by auth handlers and the
// session resolver.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	UserExists(ctx context.Context, email, username string) (bool, error)
}

// PostStore captures persistence operations for blog posts.
type PostStore interface {
	ListPosts(ctx context.Context, limit, offset int) ([]models.PostSummary, error)
	FindPostBySlug(ctx context.Context, slug string) (models.Post, error)
	CreatePost(ctx context.Context, post models.Post) (models.Post, error)
	UpdatePost(ctx context.Context, slug string, post models.Post) (models.Post, error)
	DeletePostBySlug(ctx context.Context, slug string) error
}

// CategoryStore captures persistence operations for categories.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, name string) (models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}
