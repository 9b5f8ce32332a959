package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rentnest/rentnest-server/internal/apperr"
	"github.com/rentnest/rentnest-server/internal/auth"
	"github.com/rentnest/rentnest-server/internal/models"
	"github.com/rentnest/rentnest-server/internal/repository"
)

type SignupInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

type AuthResult struct {
	Token   string          `json:"token"`
	Profile *models.Profile `json:"profile"`
}

type AuthService struct {
	profiles repository.ProfileRepository
	tokens   *auth.TokenManager
}

func NewAuthService(profiles repository.ProfileRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{profiles: profiles, tokens: tokens}
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email required", apperr.ErrValidation)
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", apperr.ErrValidation)
	}
	if in.Role != models.RoleTenant && in.Role != models.RoleLandlord {
		return nil, fmt.Errorf("%w: role must be tenant or landlord", apperr.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	p := &models.Profile{
		ID:                 uuid.NewString(),
		Email:              email,
		PasswordHash:       string(hash),
		FullName:           strings.TrimSpace(in.FullName),
		Phone:              strings.TrimSpace(in.Phone),
		Role:               in.Role,
		SubscriptionStatus: models.SubscriptionNone,
	}
	if err := s.profiles.Create(ctx, p); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, fmt.Errorf("%w: email already registered", apperr.ErrConflict)
		}
		return nil, err
	}
	return s.issue(p)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	p, err := s.profiles.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrUnauthorized
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
		return nil, apperr.ErrUnauthorized
	}
	return s.issue(p)
}

func (s *AuthService) issue(p *models.Profile) (*AuthResult, error) {
	token, err := s.tokens.Mint(p.ID, p.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Profile: p}, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*models.Profile, error) {
	return s.profiles.Get(ctx, userID)
}

func (s *AuthService) UpdateMe(ctx context.Context, userID, fullName, phone string) (*models.Profile, error) {
	if strings.TrimSpace(fullName) == "" {
		return nil, fmt.Errorf("%w: full name required", apperr.ErrValidation)
	}
	return s.profiles.Update(ctx, userID, strings.TrimSpace(fullName), strings.TrimSpace(phone))
}
