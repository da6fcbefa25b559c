package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/edunotes-api/internal/models"
	"github.com/noah-isme/edunotes-api/internal/repository"
	appErrors "github.com/noah-isme/edunotes-api/pkg/errors"
)

// AuthConfig defines configuration for session tokens and the admin code.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
	AdminCode         string
	BcryptCost        int
}

// AuthService issues and validates session tokens.
type AuthService struct {
	profiles      profileReader
	validator     *validator.Validate
	logger        *zap.Logger
	config        AuthConfig
	adminCodeHash []byte
}

// NewAuthService constructs an AuthService. The admin code is kept only as a bcrypt hash.
func NewAuthService(profiles profileReader, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 24 * time.Hour
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	svc := &AuthService{profiles: profiles, validator: validate, logger: logger, config: config}
	if config.AdminCode != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(config.AdminCode), config.BcryptCost)
		if err != nil {
			logger.Error("failed to hash admin code, admin login disabled", zap.Error(err))
		} else {
			svc.adminCodeHash = hash
		}
	}
	svc.config.AdminCode = ""
	return svc
}

// AdminLogin exchanges the shared admin code for an admin session.
func (s *AuthService) AdminLogin(ctx context.Context, req models.AdminLoginRequest) (*models.SessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid login payload")
	}
	if len(s.adminCodeHash) == 0 || bcrypt.CompareHashAndPassword(s.adminCodeHash, []byte(req.Code)) != nil {
		s.logger.Warn("rejected admin login")
		return nil, appErrors.ErrInvalidCredentials
	}
	return s.issue(models.RoleAdmin, "", nil)
}

// StudentLogin starts a session for the given student id, returning the stored profile if any.
func (s *AuthService) StudentLogin(ctx context.Context, req models.StudentLoginRequest) (*models.SessionResponse, error) {
	req.StudentID = strings.TrimSpace(req.StudentID)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid login payload")
	}
	studentID := models.StudentID(req.StudentID)

	profile, err := s.profiles.Get(ctx, studentID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Internal(err, "failed to load profile")
		}
		profile = nil
	}
	return s.issue(models.RoleStudent, studentID, profile)
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, jwt.WithIssuer(s.config.Issuer))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.Role == models.RoleStudent && claims.StudentID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "student token without student id")
	}
	return claims, nil
}

func (s *AuthService) issue(role models.UserRole, studentID models.StudentID, profile *models.StudentProfile) (*models.SessionResponse, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.AccessTokenExpiry)
	subject := string(role)
	if studentID != "" {
		subject = string(studentID)
	}
	claims := &models.JWTClaims{
		Role:      role,
		StudentID: studentID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}
	return &models.SessionResponse{
		AccessToken: signed,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		Role:        role,
		StudentID:   studentID,
		Profile:     profile,
		IssuedAt:    issuedAt,
	}, nil
}
