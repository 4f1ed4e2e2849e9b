package services

import (
	"context"
	"strings"

	"mini-shop/models"
	"mini-shop/repositories"
	"mini-shop/utils"
)

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	GenerateToken(userID int, role string) (string, error)
}

type AuthService struct {
	store  repositories.Store
	tokens TokenIssuer
}

func NewAuthService(store repositories.Store, tokens TokenIssuer) *AuthService {
	return &AuthService{store: store, tokens: tokens}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	_, err := s.store.Users().FindByEmail(ctx, email)
	if err == nil {
		return nil, models.Conflict("Email already registered", nil)
	}
	if models.KindOf(err) != models.KindNotFound {
		return nil, err
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, models.Internal("hash password", err)
	}

	role := req.Role
	if role == "" {
		role = models.RoleCustomer
	}

	user := &models.User{Email: email, Password: hashedPassword, Role: role}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.store.Users().FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if models.KindOf(err) == models.KindNotFound {
		return nil, models.Unauthorized("Invalid email or password", nil)
	}
	if err != nil {
		return nil, err
	}

	valid, err := utils.VerifyPassword(user.Password, req.Password)
	if err != nil || !valid {
		return nil, models.Unauthorized("Invalid email or password", err)
	}

	return s.issue(user)
}

func (s *AuthService) GetProfile(ctx context.Context, userID int) (*models.User, error) {
	return s.store.Users().FindByID(ctx, userID)
}

func (s *AuthService) issue(user *models.User) (*models.LoginResponse, error) {
	token, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, models.Internal("generate token", err)
	}
	return &models.LoginResponse{Token: token, User: *user}, nil
}
