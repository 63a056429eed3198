package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/crucial707/hci-itam/internal/repo"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	UserRepo *repo.UserRepo
	Secret   []byte
	// TokenTTL defaults to 24h.
	TokenTTL time.Duration
}

type credentials struct {
	Username string `json:"username" validate:"required,min=2,max=64"`
	Password string `json:"password" validate:"omitempty,min=8,max=72"`
}

// ==========================
// Register (optional password; stored as bcrypt hash)
// ==========================
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input credentials
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	if !validateStruct(w, input) {
		return
	}

	user, err := h.UserRepo.Create(r.Context(), input.Username, input.Password)
	if err != nil {
		if repo.IsUniqueViolation(err) {
			JSONError(w, "username already taken", http.StatusConflict)
			return
		}
		slog.Error("register: create user failed", "username", input.Username, "error", err)
		JSONError(w, "failed to create user", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// ==========================
// Login (username required; if user has password set, password required and verified)
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input credentials
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	user, err := h.UserRepo.GetByUsername(r.Context(), input.Username)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("login: load user failed", "username", input.Username, "error", err)
		}
		JSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	if user.PasswordHash != "" {
		if input.Password == "" {
			JSONError(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
			JSONError(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
	}

	ttl := h.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.Secret)
	if err != nil {
		JSONError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": signed,
		"user":  user,
	})
}
