package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole represents the session roles understood by the RBAC middleware.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleStudent UserRole = "STUDENT"
)

// AdminLoginRequest carries the shared admin code.
type AdminLoginRequest struct {
	Code string `json:"code" validate:"required"`
}

// StudentLoginRequest carries the self-declared student id.
type StudentLoginRequest struct {
	StudentID string `json:"student_id" validate:"required,max=64"`
}

// SessionResponse returns the issued token and, for students, the stored profile.
type SessionResponse struct {
	AccessToken string          `json:"access_token"`
	ExpiresIn   int64           `json:"expires_in"`
	Role        UserRole        `json:"role"`
	StudentID   StudentID       `json:"student_id,omitempty"`
	Profile     *StudentProfile `json:"profile,omitempty"`
	IssuedAt    time.Time       `json:"issued_at"`
}

// JWTClaims represents the JWT payload for session tokens.
type JWTClaims struct {
	Role      UserRole  `json:"role"`
	StudentID StudentID `json:"student_id,omitempty"`
	jwt.RegisteredClaims
}
