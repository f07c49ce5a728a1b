package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/hongminglow/blog-be/internal/apperr"
	"github.com/hongminglow/blog-be/internal/auth"
	"github.com/hongminglow/blog-be/internal/http/respond"
	"github.com/hongminglow/blog-be/internal/middleware"
	"github.com/hongminglow/blog-be/internal/models"
	"github.com/hongminglow/blog-be/internal/models/dto"
	"github.com/hongminglow/blog-be/internal/storage"
)

// The cookie outlives the token on purpose: the resolver rejects an expired
// token regardless of how long the client keeps the cookie.
const cookieMaxAgeSeconds = 7 * 24 * 60 * 60

// AuthHandler owns the register/login/logout/current-user endpoints.
type AuthHandler struct {
	store  storage.UserStore
	tokens *auth.TokenManager
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(store storage.UserStore, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{store: store, tokens: tokens}
}

// Register attaches auth routes to the mux. guard wraps handlers that need a
// resolved identity.
func (h *AuthHandler) Register(mux *http.ServeMux, guard func(http.Handler) http.Handler) {
	mux.HandleFunc("/auth/register", h.handleRegister)
	mux.HandleFunc("/auth/login", h.handleLogin)
	mux.HandleFunc("/auth/logout", h.handleLogout)
	mux.Handle("/auth/me", guard(http.HandlerFunc(h.handleMe)))
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Err(w, apperr.Validation("invalid JSON payload"))
		return
	}

	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" || req.Password == "" {
		respond.Err(w, apperr.Validation("username, email, and password are required"))
		return
	}

	exists, err := h.store.UserExists(r.Context(), email, username)
	if err != nil {
		respond.Err(w, apperr.Internal("Database error", err))
		return
	}
	if exists {
		respond.Err(w, apperr.Conflict("User already exists, please login"))
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		respond.Err(w, apperr.Internal("Error while hashing password", err))
		return
	}

	created, err := h.store.CreateUser(r.Context(), models.User{
		Name:         strings.TrimSpace(req.Name),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.Err(w, apperr.Conflict("User already exists, please login"))
			return
		}
		respond.Err(w, apperr.Internal("Database error", err))
		return
	}

	respond.Success(w, http.StatusCreated, map[string]any{"user": created})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Err(w, apperr.Validation("invalid JSON payload"))
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		respond.Err(w, apperr.Validation("email and password are required"))
		return
	}

	user, err := h.store.FindUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Err(w, apperr.BadCredentials("Invalid email or password"))
			return
		}
		respond.Err(w, apperr.Internal("Error fetching user from database", err))
		return
	}

	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		respond.Err(w, apperr.BadCredentials("Invalid email or password"))
		return
	}

	token, err := h.tokens.Issue(user.Email, time.Now())
	if err != nil {
		respond.Err(w, apperr.Internal("Error while generating token", err))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   cookieMaxAgeSeconds,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respond.JSON(w, http.StatusOK, map[string]any{"status": "success", "token": token})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respond.JSON(w, http.StatusOK, map[string]any{"status": "success"})
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respond.Err(w, apperr.Unauthenticated("You are not logged in, please login and try again"))
		return
	}
	respond.Success(w, http.StatusOK, map[string]any{"user": user})
}
