package repositories

import (
	"context"
	"time"

	"mini-shop/models"
)

type userRepo struct {
	db DBTX
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, user.Email, user.Password, user.Role, time.Now()).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return models.Conflict("Email already registered", err)
		}
		return classify(err, "create user")
	}
	return nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, email, password, role, created_at FROM users WHERE email = $1`

	user := &models.User{}
	err := r.db.QueryRow(ctx, query, email).Scan(&user.ID, &user.Email, &user.Password, &user.Role, &user.CreatedAt)
	if err != nil {
		return nil, classify(err, "User")
	}
	return user, nil
}

func (r *userRepo) FindByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT id, email, password, role, created_at FROM users WHERE id = $1`

	user := &models.User{}
	err := r.db.QueryRow(ctx, query, id).Scan(&user.ID, &user.Email, &user.Password, &user.Role, &user.CreatedAt)
	if err != nil {
		return nil, classify(err, "User")
	}
	return user, nil
}
