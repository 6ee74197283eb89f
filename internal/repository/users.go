package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/shoes_shop/internal/domain"
)

func (r *Repository) GetUserByLogin(ctx context.Context, login string) (*domain.User, error) {
	query := `SELECT id, full_name, login, password_hash, role FROM users WHERE login = $1`

	var (
		user domain.User
		role string
	)
	err := r.db.QueryRowContext(ctx, query, login).Scan(
		&user.ID,
		&user.FullName,
		&user.Login,
		&user.PasswordHash,
		&role,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user by login: %w", err)
	}

	user.Role, err = domain.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", user.ID, err)
	}
	return &user, nil
}

// ListUsersByRole returns users of the role ordered by full name. Password hashes are not loaded.
func (r *Repository) ListUsersByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	query := `SELECT id, full_name, login FROM users WHERE role = $1 ORDER BY full_name`

	rows, err := r.db.QueryContext(ctx, query, string(role))
	if err != nil {
		return nil, fmt.Errorf("query users by role: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u := domain.User{Role: role}
		if err := rows.Scan(&u.ID, &u.FullName, &u.Login); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return users, nil
}

func (r *Repository) CreateUser(ctx context.Context, user *domain.User) (int64, error) {
	query := `INSERT INTO users (full_name, login, password_hash, role) VALUES ($1, $2, $3, $4) RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query, user.FullName, user.Login, user.PasswordHash, string(user.Role)).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateLogin
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}
