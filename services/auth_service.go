package services

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/gourmet-house/utils"
	"golang.org/x/crypto/bcrypt"
)

const RoleAdmin = "admin"

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthService struct {
	username     string
	passwordHash []byte
	tokens       *utils.TokenManager
}

// NewAuthService builds the single admin account. A plain password is only
// accepted when no bcrypt hash is configured and is hashed immediately.
func NewAuthService(username, passwordHash, password string, tokens *utils.TokenManager) (*AuthService, error) {
	svc := &AuthService{username: username, tokens: tokens}
	switch {
	case passwordHash != "":
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, fmt.Errorf("admin password hash: %w", err)
		}
		svc.passwordHash = []byte(passwordHash)
	case password != "":
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		svc.passwordHash = hash
	}
	return svc, nil
}

// Enabled reports whether an admin password has been configured.
func (s *AuthService) Enabled() bool {
	return len(s.passwordHash) > 0
}

func (s *AuthService) Login(req LoginRequest) (string, time.Time, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validateStruct(req); err != nil {
		return "", time.Time{}, err
	}
	if !s.Enabled() {
		return "", time.Time{}, ErrInvalidCredentials
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.username)) == 1
	err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(req.Password))
	if !userOK || err != nil {
		if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			utils.ErrorLogger.Warnf("Admin password check failed: %v", err)
		}
		return "", time.Time{}, ErrInvalidCredentials
	}

	return s.tokens.GenerateToken(s.username, RoleAdmin)
}

// Authenticate returns the claims of a valid admin token.
func (s *AuthService) Authenticate(token string) (*utils.CustomClaims, error) {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, err
	}
	if claims.Role != RoleAdmin {
		return nil, utils.ErrInvalidToken
	}
	return claims, nil
}
