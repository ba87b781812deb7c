package postgres

import (
	"context"
	"database/sql"
	"time"

	"camera-rental-backend/internal/domain"
	"camera-rental-backend/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (username, password_hash, full_name, email, role, active, join_date) 
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if u.JoinDate.IsZero() {
		u.JoinDate = time.Now().UTC()
	}
	err := r.db.QueryRowContext(ctx, query, u.Username, u.PasswordHash, u.FullName, u.Email, u.Role, u.Active, u.JoinDate).Scan(&u.ID)
	return mapError(err, "user", u.Username)
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT id, username, password_hash, full_name, COALESCE(email, ''), role, active, join_date FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Email, &u.Role, &u.Active, &u.JoinDate)
	if err != nil {
		return nil, mapError(err, "user", id)
	}
	return u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT id, username, password_hash, full_name, COALESCE(email, ''), role, active, join_date FROM users WHERE LOWER(username) = LOWER($1)`
	err := r.db.QueryRowContext(ctx, query, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Email, &u.Role, &u.Active, &u.JoinDate)
	if err != nil {
		return nil, mapError(err, "user", username)
	}
	return u, nil
}
