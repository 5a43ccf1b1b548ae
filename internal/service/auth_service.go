package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"birdieo-service/internal/domain/round"
	"birdieo-service/internal/domain/user"
	"birdieo-service/internal/repository"
	"birdieo-service/internal/utils"
)

type AuthService struct {
	repo      *repository.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	log       zerolog.Logger
}

func NewAuthService(repo *repository.UserRepository, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	return &AuthService{
		repo:      repo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		log:       log,
	}
}

func (s *AuthService) Register(ctx context.Context, req user.RegisterRequest) (*user.AuthResult, error) {
	email := utils.NormalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	if req.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	dbUser := &repository.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
		Role:         round.RolePlayer,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.CreateUser(ctx, dbUser); err != nil {
		s.log.Error().Err(err).Str("email", email).Msg("failed to create user")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.CreateToken(dbUser.ID, dbUser.Email)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", dbUser.ID).Str("email", email).Msg("user registered")
	return &user.AuthResult{Token: token, User: toDomainUser(dbUser)}, nil
}

func (s *AuthService) Login(ctx context.Context, req user.LoginRequest) (*user.AuthResult, error) {
	email := utils.NormalizeEmail(req.Email)
	dbUser, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(dbUser.PasswordHash), []byte(req.Password)) != nil {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	token, err := s.CreateToken(dbUser.ID, dbUser.Email)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", dbUser.ID).Msg("user logged in")
	return &user.AuthResult{Token: token, User: toDomainUser(dbUser)}, nil
}

func (s *AuthService) GetUser(ctx context.Context, userID string) (*user.User, error) {
	dbUser, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	u := toDomainUser(dbUser)
	return &u, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, upd user.ProfileUpdate) (*user.User, error) {
	fields := map[string]interface{}{}
	if upd.Name != nil {
		if strings.TrimSpace(*upd.Name) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		fields["name"] = strings.TrimSpace(*upd.Name)
	}
	if upd.Handedness != nil {
		if *upd.Handedness != round.HandednessRight && *upd.Handedness != round.HandednessLeft {
			return nil, fmt.Errorf("%w: handedness must be right or left", ErrInvalidInput)
		}
		fields["handedness"] = *upd.Handedness
	}

	if err := s.repo.UpdateUserFields(ctx, userID, fields); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to update profile")
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.GetUser(ctx, userID)
}

func (s *AuthService) CreateToken(userID, email string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// ParseToken validates a bearer token and returns the user ID it carries.
func (s *AuthService) ParseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: invalid token claims", ErrUnauthorized)
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return "", fmt.Errorf("%w: token has no user", ErrUnauthorized)
	}
	return userID, nil
}

func toDomainUser(u *repository.User) user.User {
	out := user.User{
		ID:            u.ID,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		Name:          u.Name,
		Role:          u.Role,
		CreatedAt:     u.CreatedAt,
	}
	if u.Handedness != nil {
		out.Handedness = *u.Handedness
	}
	return out
}
