package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/tbraden/quoteboard/internal/middleware"
	"github.com/tbraden/quoteboard/internal/repo"
	"github.com/tbraden/quoteboard/internal/token"
	"golang.org/x/crypto/bcrypt"
)

func newAuthHandler(db *sql.DB) *AuthHandler {
	return &AuthHandler{
		UserRepo: repo.NewUserRepo(db),
		Tokens:   token.New([]byte("test-secret")),
	}
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestAuthHandler_Signup(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Ada", "Lovelace", "ada", "ada@example.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "username", "email", "password_hash", "created_at"}).
			AddRow(1, "Ada", "Lovelace", "ada", "ada@example.com", "hash", time.Now()))

	h := newAuthHandler(db)
	rr := postJSON(t, h.Signup, "/api/auth/signup", map[string]string{
		"firstName": "Ada", "lastName": "Lovelace", "username": "ada",
		"email": "ada@example.com", "password": "s3cret",
	})

	if rr.Code != http.StatusCreated {
		t.Errorf("Signup status: got %d, want 201", rr.Code)
	}
	var out MessageResponse
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !out.Success || out.Message != "User created successfully" {
		t.Errorf("unexpected response: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Signup_DuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Ada", "Lovelace", "ada", "ada@example.com", sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	h := newAuthHandler(db)
	rr := postJSON(t, h.Signup, "/api/auth/signup", map[string]string{
		"firstName": "Ada", "lastName": "Lovelace", "username": "ada",
		"email": "ada@example.com", "password": "s3cret",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Signup status: got %d, want 400", rr.Code)
	}
	var out MessageResponse
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Success || !strings.Contains(out.Message, "exist") {
		t.Errorf("unexpected response: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Signup_MissingFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := newAuthHandler(db)
	rr := postJSON(t, h.Signup, "/api/auth/signup", map[string]string{
		"email": "ada@example.com",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Signup status: got %d, want 400", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Signup_InvalidEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := newAuthHandler(db)
	rr := postJSON(t, h.Signup, "/api/auth/signup", map[string]string{
		"firstName": "Ada", "lastName": "Lovelace", "username": "ada",
		"email": "not-an-email", "password": "s3cret",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Signup status: got %d, want 400", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Signup_BodyTooLarge(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := newAuthHandler(db)
	wrapped := middleware.MaxBytes(64)(http.HandlerFunc(h.Signup))

	body, _ := json.Marshal(map[string]string{
		"firstName": "Ada", "lastName": "Lovelace", "username": "ada",
		"email": "ada@example.com", "password": strings.Repeat("x", 128),
	})
	req := httptest.NewRequest("POST", "/api/auth/signup", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Signup status: got %d, want 413", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Signin(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	mock.ExpectQuery(`SELECT id, first_name, last_name, username, email, password_hash, created_at`).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "username", "email", "password_hash", "created_at"}).
			AddRow(1, "Ada", "Lovelace", "ada", "ada@example.com", string(hash), time.Now()))

	h := newAuthHandler(db)
	rr := postJSON(t, h.Signin, "/api/auth/signin", map[string]string{
		"email": "ada@example.com", "password": "s3cret",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("Signin status: got %d, want 200", rr.Code)
	}

	// The session cookie must be set, HTTP-only, SameSite strict.
	var sessionCookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.CookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("no access_token cookie set")
	}
	if sessionCookie.Value == "" || !sessionCookie.HttpOnly {
		t.Errorf("unexpected cookie: %+v", sessionCookie)
	}
	if sessionCookie.SameSite != http.SameSiteStrictMode {
		t.Errorf("cookie SameSite: got %v, want strict", sessionCookie.SameSite)
	}
	if sessionCookie.MaxAge != CookieMaxAge {
		t.Errorf("cookie MaxAge: got %d, want %d", sessionCookie.MaxAge, CookieMaxAge)
	}

	// Body is the user record; the password hash must never appear.
	var body map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["email"] != "ada@example.com" {
		t.Errorf("unexpected body: %v", body)
	}
	for _, k := range []string{"password", "passwordHash", "PasswordHash"} {
		if _, present := body[k]; present {
			t.Errorf("response leaks %q field", k)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Signin_WrongPassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	hash, _ := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.MinCost)
	mock.ExpectQuery(`SELECT id, first_name, last_name, username, email, password_hash, created_at`).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "username", "email", "password_hash", "created_at"}).
			AddRow(1, "Ada", "Lovelace", "ada", "ada@example.com", string(hash), time.Now()))

	h := newAuthHandler(db)
	rr := postJSON(t, h.Signin, "/api/auth/signin", map[string]string{
		"email": "ada@example.com", "password": "wrong",
	})

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Signin status: got %d, want 401", rr.Code)
	}
	var out MessageResponse
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Message != "Wrong credential" {
		t.Errorf("unexpected message: %q", out.Message)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Signin_UnknownEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, first_name, last_name, username, email, password_hash, created_at`).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	h := newAuthHandler(db)
	rr := postJSON(t, h.Signin, "/api/auth/signin", map[string]string{
		"email": "nobody@example.com", "password": "whatever",
	})

	if rr.Code != http.StatusNotFound {
		t.Errorf("Signin status: got %d, want 404", rr.Code)
	}
	var out MessageResponse
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Message != "User not found" {
		t.Errorf("unexpected message: %q", out.Message)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Signout_Idempotent(t *testing.T) {
	h := &AuthHandler{Tokens: token.New([]byte("test-secret"))}

	// Twice in a row, with no session either time: both succeed.
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("GET", "/api/auth/signout", nil)
		rr := httptest.NewRecorder()
		h.Signout(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("Signout status: got %d, want 200", rr.Code)
		}

		var cleared *http.Cookie
		for _, c := range rr.Result().Cookies() {
			if c.Name == middleware.CookieName {
				cleared = c
			}
		}
		if cleared == nil {
			t.Fatal("no access_token cookie in signout response")
		}
		if cleared.Value != "" || cleared.MaxAge >= 0 {
			t.Errorf("cookie not cleared: %+v", cleared)
		}
	}
}
