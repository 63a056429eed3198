package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/hci-itam/internal/models"
	"golang.org/x/crypto/bcrypt"
)

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

// Create stores a new user. An empty password leaves password_hash NULL. The
// first user ever created becomes admin; later users are viewers.
func (r *UserRepo) Create(ctx context.Context, username, password string) (*models.User, error) {
	var hash any
	if password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hash = string(h)
	}

	query := `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, CASE WHEN EXISTS (SELECT 1 FROM users) THEN 'viewer' ELSE 'admin' END)
		RETURNING id, username, role
	`

	user := &models.User{}
	if err := r.DB.QueryRowContext(ctx, query, username, hash).
		Scan(&user.ID, &user.Username, &user.Role); err != nil {
		return nil, err
	}
	if s, ok := hash.(string); ok {
		user.PasswordHash = s
	}
	return user, nil
}

// ==========================
// Get By Username
// ==========================
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, role
		FROM users
		WHERE username = $1
	`

	var (
		user models.User
		hash sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, query, username).
		Scan(&user.ID, &user.Username, &hash, &user.Role)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash.String
	return &user, nil
}
