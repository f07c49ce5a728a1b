package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/hongminglow/blog-be/internal/apperr"
	"github.com/hongminglow/blog-be/internal/http/respond"
	"github.com/hongminglow/blog-be/internal/models/dto"
	"github.com/hongminglow/blog-be/internal/storage"
)

// CategoryHandler owns the category endpoints.
type CategoryHandler struct {
	store storage.CategoryStore
}

// NewCategoryHandler constructs the handler.
func NewCategoryHandler(store storage.CategoryStore) *CategoryHandler {
	return &CategoryHandler{store: store}
}

// Register attaches category routes to the mux. Listing is public; mutations
// run behind guard.
func (h *CategoryHandler) Register(mux *http.ServeMux, guard func(http.Handler) http.Handler) {
	create := guard(http.HandlerFunc(h.handleCreate))
	remove := guard(http.HandlerFunc(h.handleDelete))

	mux.HandleFunc("/categories", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			create.ServeHTTP(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/categories/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		remove.ServeHTTP(w, r)
	})
}

func (h *CategoryHandler) handleList(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		respond.Err(w, apperr.Internal("Something bad happened while fetching categories", err))
		return
	}
	respond.Success(w, http.StatusOK, categories)
}

func (h *CategoryHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Err(w, apperr.Validation("invalid JSON payload"))
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		respond.Err(w, apperr.Validation("name is required"))
		return
	}

	created, err := h.store.CreateCategory(r.Context(), name)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.Err(w, apperr.Conflict("Category with that name already exists"))
			return
		}
		respond.Err(w, apperr.Internal("Something bad happened while creating the category", err))
		return
	}
	respond.Success(w, http.StatusCreated, map[string]any{"category": created})
}

func (h *CategoryHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.Path, "/categories/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		respond.Err(w, apperr.NotFound("Category not found"))
		return
	}

	if err := h.store.DeleteCategory(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Err(w, apperr.NotFound("Category not found"))
			return
		}
		respond.Err(w, apperr.Internal("Something bad happened while deleting the category", err))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"status": "success"})
}
