package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/tbraden/quoteboard/internal/middleware"
	"github.com/tbraden/quoteboard/internal/repo"
	"github.com/tbraden/quoteboard/internal/token"
	"golang.org/x/crypto/bcrypt"
)

// CookieMaxAge is the session cookie lifetime: two years, approximating
// "remember me" since the token itself carries no expiry.
const CookieMaxAge = 2 * 365 * 24 * 60 * 60

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	UserRepo *repo.UserRepo
	Tokens   *token.Issuer

	// SecureCookies sets the Secure flag on the session cookie (prod only,
	// so that plain-HTTP dev setups still work).
	SecureCookies bool
}

// ==========================
// Signup (POST /api/auth/signup)
// ==========================
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input struct {
		FirstName string `json:"firstName" validate:"required,max=255"`
		LastName  string `json:"lastName" validate:"required,max=255"`
		Username  string `json:"username" validate:"required,min=2,max=64"`
		Email     string `json:"email" validate:"required,email"`
		Password  string `json:"password" validate:"required,min=6"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			JSONError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	// ===== Validate input =====
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	_, err := h.UserRepo.Create(r.Context(), input.FirstName, input.LastName, input.Username, input.Email, input.Password)
	if err != nil {
		if errors.Is(err, repo.ErrEmailExists) {
			JSONError(w, "User with this email already exists", http.StatusBadRequest)
			return
		}
		slog.Error("signup: create user failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSONMessage(w, "User created successfully", http.StatusCreated)
}

// ==========================
// Signin (POST /api/auth/signin)
// ==========================
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			JSONError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	// ===== Validate input =====
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.UserRepo.GetByEmail(r.Context(), input.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			JSONError(w, "User not found", http.StatusNotFound)
			return
		}
		slog.Error("signin: lookup failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		JSONError(w, "Wrong credential", http.StatusUnauthorized)
		return
	}

	signed, err := h.Tokens.Issue(user.ID)
	if err != nil {
		slog.Error("signin: issue token failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   CookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   h.SecureCookies,
	})

	// PasswordHash carries json:"-", so the hash never reaches the body.
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// ==========================
// Signout (GET /api/auth/signout)
// ==========================

// Signout clears the cookie and succeeds whether or not a session existed.
func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   h.SecureCookies,
	})

	JSONMessage(w, "User has been signed out", http.StatusOK)
}
