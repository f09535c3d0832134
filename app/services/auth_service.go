package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/kirana/app/models"
	"github.com/shashiranjanraj/kirana/app/repositories"
	"github.com/shashiranjanraj/kirana/pkg/auth"
	"github.com/shashiranjanraj/kirana/pkg/logger"
)

// RegisterInput is the payload for account creation.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginInput is the payload for credential login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenPair is what both register and login hand back to the client.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService issues JWTs and manages account registration. Sessions are
// deliberately stateless: everything the API needs lives in the token.
type AuthService struct {
	users *repositories.UserRepository
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{users: repositories.NewUserRepository(db)}
}

// Register creates an account with the user role and returns a token pair.
func (s *AuthService) Register(in RegisterInput) (models.User, TokenPair, error) {
	if _, err := s.users.FindByEmail(in.Email); err == nil {
		return models.User{}, TokenPair{}, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return models.User{}, TokenPair{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, TokenPair{}, fmt.Errorf("auth: hash password: %w", err)
	}

	user := models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Role:     models.RoleUser,
	}
	if err := s.users.Create(&user); err != nil {
		return models.User{}, TokenPair{}, err
	}

	pair, err := tokensFor(user)
	if err != nil {
		return models.User{}, TokenPair{}, err
	}

	logger.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, pair, nil
}

// Login verifies credentials and returns a token pair. The same error is
// returned for an unknown email and a wrong password.
func (s *AuthService) Login(in LoginInput) (models.User, TokenPair, error) {
	user, err := s.users.FindByEmail(in.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.User{}, TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, TokenPair{}, err
	}

	if !auth.CheckPassword(user.Password, in.Password) {
		return models.User{}, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := tokensFor(user)
	if err != nil {
		return models.User{}, TokenPair{}, err
	}
	return user, pair, nil
}

// Me loads the account behind an authenticated principal.
func (s *AuthService) Me(actor models.User) (models.User, error) {
	user, err := s.users.FindByID(actor.ID)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.User{}, ErrNotFound
	}
	return user, err
}

func tokensFor(user models.User) (TokenPair, error) {
	access, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return TokenPair{}, fmt.Errorf("auth: sign access token: %w", err)
	}
	refresh, err := auth.GenerateRefreshToken(user.ID, user.Role)
	if err != nil {
		return TokenPair{}, fmt.Errorf("auth: sign refresh token: %w", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
