package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hongminglow/blog-be/internal/models"
	"github.com/hongminglow/blog-be/internal/storage"
)

// Ensure Store satisfies the storage interfaces at compile time.
var (
	_ storage.UserStore     = (*Store)(nil)
	_ storage.PostStore     = (*Store)(nil)
	_ storage.CategoryStore = (*Store)(nil)
)

const uniqueViolationCode = "23505"

// DB is the subset of pgxpool.Pool the store uses. Tests substitute a
// pgxmock pool through the same interface.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store provides Postgres-backed persistence for users, posts, and categories.
type Store struct {
	db   DB
	pool *pgxpool.Pool
}

// New connects a pool to databaseURL and runs migrations.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{db: pool, pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// NewWithDB wraps an existing connection without running migrations.
func NewWithDB(db DB) *Store {
	return &Store{db: db}
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			username TEXT NOT NULL,
			email TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_unique_idx ON users (email);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_username_unique_idx ON users (username);`,
		`CREATE TABLE IF NOT EXISTS categories (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS categories_name_unique_idx ON categories (name);`,
		`INSERT INTO categories (name) VALUES ('general') ON CONFLICT (name) DO NOTHING;`,
		`CREATE TABLE IF NOT EXISTS posts (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			slug TEXT NOT NULL,
			excerpt TEXT NOT NULL,
			content TEXT NOT NULL,
			category_id BIGINT NOT NULL REFERENCES categories(id),
			author_id BIGINT NOT NULL REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS posts_slug_unique_idx ON posts (slug);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (name, username, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, username, email, password_hash, created_at, updated_at;
	`
	row := s.db.QueryRow(ctx, query, user.Name, user.Username, user.Email, user.PasswordHash)
	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return created, nil
}

// FindUserByEmail fetches a user by email address.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `
		SELECT id, name, username, email, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1;
	`
	return scanUser(s.db.QueryRow(ctx, query, email))
}

// UserExists reports whether a user with the given email or username exists.
func (s *Store) UserExists(ctx context.Context, email, username string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 OR username = $2);`
	var exists bool
	if err := s.db.QueryRow(ctx, query, email, username).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ListPosts returns post summaries ordered newest first.
func (s *Store) ListPosts(ctx context.Context, limit, offset int) ([]models.PostSummary, error) {
	const query = `
		SELECT id, title, slug, excerpt, category_id, author_id, created_at, updated_at
		FROM posts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2;
	`
	rows, err := s.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []models.PostSummary{}
	for rows.Next() {
		var p models.PostSummary
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.CategoryID, &p.AuthorID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, p)
	}
	return summaries, rows.Err()
}

// FindPostBySlug fetches a full post by slug.
func (s *Store) FindPostBySlug(ctx context.Context, slug string) (models.Post, error) {
	const query = `
		SELECT id, title, slug, excerpt, content, category_id, author_id, created_at, updated_at
		FROM posts
		WHERE slug = $1;
	`
	return scanPost(s.db.QueryRow(ctx, query, slug))
}

// CreatePost inserts a new post row.
func (s *Store) CreatePost(ctx context.Context, post models.Post) (models.Post, error) {
	const query = `
		INSERT INTO posts (title, slug, excerpt, content, category_id, author_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, title, slug, excerpt, content, category_id, author_id, created_at, updated_at;
	`
	row := s.db.QueryRow(ctx, query, post.Title, post.Slug, post.Excerpt, post.Content, post.CategoryID, post.AuthorID)
	created, err := scanPost(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Post{}, storage.ErrAlreadyExists
		}
		return models.Post{}, err
	}
	return created, nil
}

// UpdatePost rewrites the post currently stored under slug.
func (s *Store) UpdatePost(ctx context.Context, slug string, post models.Post) (models.Post, error) {
	const query = `
		UPDATE posts
		SET title = $1, slug = $2, excerpt = $3, content = $4, category_id = $5, updated_at = NOW()
		WHERE slug = $6
		RETURNING id, title, slug, excerpt, content, category_id, author_id, created_at, updated_at;
	`
	row := s.db.QueryRow(ctx, query, post.Title, post.Slug, post.Excerpt, post.Content, post.CategoryID, slug)
	updated, err := scanPost(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Post{}, storage.ErrAlreadyExists
		}
		return models.Post{}, err
	}
	return updated, nil
}

// DeletePostBySlug removes a post; missing slug maps to ErrNotFound.
func (s *Store) DeletePostBySlug(ctx context.Context, slug string) error {
	const query = `DELETE FROM posts WHERE slug = $1;`
	tag, err := s.db.Exec(ctx, query, slug)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	const query = `SELECT id, name FROM categories ORDER BY name;`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CreateCategory inserts a new category.
func (s *Store) CreateCategory(ctx context.Context, name string) (models.Category, error) {
	const query = `INSERT INTO categories (name) VALUES ($1) RETURNING id, name;`
	var c models.Category
	if err := s.db.QueryRow(ctx, query, name).Scan(&c.ID, &c.Name); err != nil {
		if isUniqueViolation(err) {
			return models.Category{}, storage.ErrAlreadyExists
		}
		return models.Category{}, err
	}
	return c, nil
}

// DeleteCategory removes a category; missing id maps to ErrNotFound.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	const query = `DELETE FROM categories WHERE id = $1;`
	tag, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Name, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func scanPost(row pgx.Row) (models.Post, error) {
	var post models.Post
	err := row.Scan(&post.ID, &post.Title, &post.Slug, &post.Excerpt, &post.Content, &post.CategoryID, &post.AuthorID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Post{}, storage.ErrNotFound
		}
		return models.Post{}, err
	}
	return post, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
