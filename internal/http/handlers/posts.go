package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/hongminglow/blog-be/internal/apperr"
	"github.com/hongminglow/blog-be/internal/http/respond"
	"github.com/hongminglow/blog-be/internal/middleware"
	"github.com/hongminglow/blog-be/internal/models"
	"github.com/hongminglow/blog-be/internal/models/dto"
	"github.com/hongminglow/blog-be/internal/storage"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	// Seeded by the migrations; posts without an explicit category land here.
	defaultCategoryID = 1
)

// PostHandler owns the blog post CRUD endpoints.
type PostHandler struct {
	store storage.PostStore
}

// NewPostHandler constructs the handler.
func NewPostHandler(store storage.PostStore) *PostHandler {
	return &PostHandler{store: store}
}

// Register attaches post routes to the mux. Reads are public; mutations run
// behind guard so the resolved identity can attribute authorship.
func (h *PostHandler) Register(mux *http.ServeMux, guard func(http.Handler) http.Handler) {
	create := guard(http.HandlerFunc(h.handleCreate))
	update := guard(http.HandlerFunc(h.handleUpdate))
	remove := guard(http.HandlerFunc(h.handleDelete))

	mux.HandleFunc("/posts", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			create.ServeHTTP(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/posts/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.handleGet(w, r)
		case http.MethodPatch:
			update.ServeHTTP(w, r)
		case http.MethodDelete:
			remove.ServeHTTP(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

func (h *PostHandler) handleList(w http.ResponseWriter, r *http.Request) {
	page := positiveQueryInt(r, "page", 1)
	limit := positiveQueryInt(r, "limit", defaultPageSize)
	if limit > maxPageSize {
		limit = maxPageSize
	}

	posts, err := h.store.ListPosts(r.Context(), limit, (page-1)*limit)
	if err != nil {
		respond.Err(w, apperr.Internal("Something bad happened while fetching all post items", err))
		return
	}
	respond.Success(w, http.StatusOK, posts)
}

func (h *PostHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	slug, ok := slugFromPath(r.URL.Path)
	if !ok {
		respond.Err(w, apperr.NotFound("Post not found"))
		return
	}

	post, err := h.store.FindPostBySlug(r.Context(), slug)
	if err != nil {
		respondPostLookupErr(w, slug, err)
		return
	}
	respond.Success(w, http.StatusOK, post)
}

func (h *PostHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Err(w, apperr.Validation("invalid JSON payload"))
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Slug) == "" || strings.TrimSpace(req.Content) == "" {
		respond.Err(w, apperr.Validation("title, slug, and content are required"))
		return
	}

	author, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respond.Err(w, apperr.Unauthenticated("You are not logged in, please login and try again"))
		return
	}

	categoryID := int64(defaultCategoryID)
	if req.CategoryID != nil {
		categoryID = *req.CategoryID
	}

	created, err := h.store.CreatePost(r.Context(), models.Post{
		Title:      strings.TrimSpace(req.Title),
		Slug:       strings.TrimSpace(req.Slug),
		Excerpt:    req.Excerpt,
		Content:    req.Content,
		CategoryID: categoryID,
		AuthorID:   author.ID,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.Err(w, apperr.Conflict("Post with that slug already exists"))
			return
		}
		respond.Err(w, apperr.Internal("Something bad happened while creating the post", err))
		return
	}

	respond.Success(w, http.StatusCreated, map[string]any{"post": created})
}

func (h *PostHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	slug, ok := slugFromPath(r.URL.Path)
	if !ok {
		respond.Err(w, apperr.NotFound("Post not found"))
		return
	}
	var req dto.UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Err(w, apperr.Validation("invalid JSON payload"))
		return
	}

	post, err := h.store.FindPostBySlug(r.Context(), slug)
	if err != nil {
		respondPostLookupErr(w, slug, err)
		return
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Slug != nil {
		post.Slug = *req.Slug
	}
	if req.Excerpt != nil {
		post.Excerpt = *req.Excerpt
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.CategoryID != nil {
		post.CategoryID = *req.CategoryID
	}

	updated, err := h.store.UpdatePost(r.Context(), slug, post)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.Err(w, apperr.Conflict("Post with that slug already exists"))
			return
		}
		respond.Err(w, apperr.Internal("Something bad happened while updating the post", err))
		return
	}

	respond.Success(w, http.StatusOK, map[string]any{"post": updated})
}

func (h *PostHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	slug, ok := slugFromPath(r.URL.Path)
	if !ok {
		respond.Err(w, apperr.NotFound("Post not found"))
		return
	}

	if err := h.store.DeletePostBySlug(r.Context(), slug); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Err(w, apperr.NotFound(fmt.Sprintf("Post item with slug: %s not found", slug)))
			return
		}
		respond.Err(w, apperr.Internal("Something bad happened while deleting the post", err))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"status": "success"})
}

func respondPostLookupErr(w http.ResponseWriter, slug string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		respond.Err(w, apperr.NotFound(fmt.Sprintf("Post item with slug: %s not found", slug)))
		return
	}
	respond.Err(w, apperr.Internal("Error fetching post from database", err))
}

func slugFromPath(path string) (string, bool) {
	slug := strings.TrimPrefix(path, "/posts/")
	if slug == "" || strings.Contains(slug, "/") {
		return "", false
	}
	return slug, true
}

func positiveQueryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return def
	}
	return value
}
