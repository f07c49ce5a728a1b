package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/blog-be/internal/models"
	"github.com/hongminglow/blog-be/internal/storage"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewWithDB(mock), mock
}

func userRow(id int64, email string) *pgxmock.Rows {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return pgxmock.NewRows([]string{"id", "name", "username", "email", "password_hash", "created_at", "updated_at"}).
		AddRow(id, "", "alice", email, "$argon2id$...", now, now)
}

func TestCreateUser(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "successful insert",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("", "alice", "alice@x.com", "$argon2id$...").
					WillReturnRows(userRow(1, "alice@x.com"))
			},
		},
		{
			name: "unique violation maps to ErrAlreadyExists",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("", "alice", "alice@x.com", "$argon2id$...").
					WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})
			},
			wantErr: storage.ErrAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			tt.setupMock(mock)

			created, err := store.CreateUser(context.Background(), models.User{
				Username:     "alice",
				Email:        "alice@x.com",
				PasswordHash: "$argon2id$...",
			})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(1), created.ID)
				assert.Equal(t, "alice@x.com", created.Email)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFindUserByEmail(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(`FROM users\s+WHERE email`).
			WithArgs("alice@x.com").
			WillReturnRows(userRow(7, "alice@x.com"))

		user, err := store.FindUserByEmail(context.Background(), "alice@x.com")
		require.NoError(t, err)
		assert.Equal(t, int64(7), user.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rows maps to ErrNotFound", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(`FROM users\s+WHERE email`).
			WithArgs("ghost@x.com").
			WillReturnError(pgx.ErrNoRows)

		_, err := store.FindUserByEmail(context.Background(), "ghost@x.com")
		require.ErrorIs(t, err, storage.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserExists(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("alice@x.com", "alice").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := store.UserExists(context.Background(), "alice@x.com", "alice")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPosts(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"id", "title", "slug", "excerpt", "category_id", "author_id", "created_at", "updated_at"}).
		AddRow(int64(2), "Second", "second", "ex", int64(1), int64(1), now.Add(time.Hour), now.Add(time.Hour)).
		AddRow(int64(1), "First", "first", "ex", int64(1), int64(1), now, now)
	mock.ExpectQuery(`FROM posts\s+ORDER BY created_at DESC`).
		WithArgs(10, 0).
		WillReturnRows(rows)

	posts, err := store.ListPosts(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "second", posts[0].Slug)
	assert.Equal(t, "first", posts[1].Slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePostDuplicateSlug(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`INSERT INTO posts`).
		WithArgs("Title", "slug", "ex", "body", int64(1), int64(1)).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})

	_, err := store.CreatePost(context.Background(), models.Post{
		Title: "Title", Slug: "slug", Excerpt: "ex", Content: "body", CategoryID: 1, AuthorID: 1,
	})
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePostBySlug(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(`DELETE FROM posts`).
			WithArgs("doomed").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, store.DeletePostBySlug(context.Background(), "doomed"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing maps to ErrNotFound", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(`DELETE FROM posts`).
			WithArgs("ghost").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := store.DeletePostBySlug(context.Background(), "ghost")
		require.ErrorIs(t, err, storage.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCreateCategoryConflict(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`INSERT INTO categories`).
		WithArgs("golang").
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})

	_, err := store.CreateCategory(context.Background(), "golang")
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCategories(t *testing.T) {
	store, mock := newMockStore(t)
	rows := pgxmock.NewRows([]string{"id", "name"}).
		AddRow(int64(1), "general").
		AddRow(int64(2), "golang")
	mock.ExpectQuery(`SELECT id, name FROM categories`).WillReturnRows(rows)

	categories, err := store.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "general", categories[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreErrorPassthrough(t *testing.T) {
	store, mock := newMockStore(t)
	boom := errors.New("connection refused")
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("a@x.com", "a").
		WillReturnError(boom)

	_, err := store.UserExists(context.Background(), "a@x.com", "a")
	require.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
