package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/tbraden/quoteboard/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// ErrEmailExists is returned by Create when the email is already registered.
var ErrEmailExists = errors.New("email already exists")

// BcryptCost is the bcrypt work factor for stored passwords.
const BcryptCost = 10

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// ==========================
// Create User
// ==========================

// Create hashes rawPassword with bcrypt and inserts the user. The raw
// password is never stored. Inserting a second user with the same email
// returns ErrEmailExists; the users_email_key unique index enforces it.
func (r *UserRepo) Create(ctx context.Context, firstName, lastName, username, email, rawPassword string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(rawPassword), BcryptCost)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO users (first_name, last_name, username, email, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, first_name, last_name, username, email, password_hash, created_at
	`

	user := &models.User{}

	err = r.DB.QueryRowContext(ctx, query, firstName, lastName, username, email, string(hash)).
		Scan(&user.ID, &user.FirstName, &user.LastName, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)

	if err != nil {
		// 23505 = unique_violation on users_email_key
		if e, ok := err.(*pq.Error); ok && e.Code == "23505" {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	return user, nil
}

// ==========================
// Get By Email
// ==========================
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, first_name, last_name, username, email, password_hash, created_at
		FROM users
		WHERE email = $1
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, email).
		Scan(&user.ID, &user.FirstName, &user.LastName, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)

	if err != nil {
		return nil, err
	}

	return user, nil
}
