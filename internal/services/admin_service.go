package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/imagingpedia/learning-service/internal/models"
	"github.com/imagingpedia/learning-service/internal/repositories"
	"github.com/imagingpedia/learning-service/internal/validator"
)

// tokenLifetime is how long an issued admin token stays valid.
const tokenLifetime = 7 * 24 * time.Hour

// AdminClaims is the JWT payload for admin tokens.
type AdminClaims struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

type adminService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	jwtSecret []byte
}

func NewAdminService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, jwtSecret string) AdminService {
	return &adminService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		jwtSecret: []byte(jwtSecret),
	}
}

// Login checks the credentials and issues a signed token. Unknown usernames
// and wrong passwords produce the same error.
func (s *adminService) Login(ctx context.Context, req *AdminLoginRequest) (*models.AdminLoginResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	admin, err := s.repo.Admin().GetByUsername(ctx, req.Username)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			s.logger.Warn("Login attempt for unknown admin", "username", req.Username)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get admin account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("Login attempt with wrong password", "username", req.Username)
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(admin)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Info("Admin logged in", "admin_id", admin.ID, "username", admin.Username)

	return &models.AdminLoginResponse{
		Success: true,
		Token:   token,
		Admin: models.AdminInfo{
			ID:       admin.ID,
			Username: admin.Username,
			Email:    admin.Email,
		},
	}, nil
}

// Verify parses a "Bearer <token>" header value and returns the identity the
// token was issued for.
func (s *adminService) Verify(ctx context.Context, bearerToken string) (*models.AdminVerifyResponse, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(bearerToken, "Bearer "))
	if raw == "" {
		return nil, ErrMissingAuthorization
	}

	claims, err := s.ParseToken(raw)
	if err != nil {
		return nil, err
	}

	return &models.AdminVerifyResponse{
		Success: true,
		Admin: models.AdminInfo{
			ID:       claims.ID,
			Username: claims.Username,
			Email:    claims.Email,
		},
	}, nil
}

func (s *adminService) Create(ctx context.Context, req *AdminCreateRequest) (*models.AdminInfo, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.AdminAccount{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	}

	if err := s.repo.Admin().Create(ctx, admin); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("failed to create admin account: %w", err)
	}

	s.logger.Info("Admin account created", "admin_id", admin.ID, "username", admin.Username)

	return &models.AdminInfo{
		ID:       admin.ID,
		Username: admin.Username,
		Email:    admin.Email,
	}, nil
}

// ParseToken validates the signature and expiry of a raw token string.
func (s *adminService) ParseToken(raw string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *adminService) issueToken(admin *models.AdminAccount) (string, error) {
	now := time.Now()
	claims := &AdminClaims{
		ID:       admin.ID,
		Username: admin.Username,
		Email:    admin.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}
