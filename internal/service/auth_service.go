package service

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"pairlens/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService authenticates report API callers
type AuthService struct {
	serviceUsername string
	servicePassword string
	jwtSecret       []byte
}

// NewAuthService creates a new auth service
func NewAuthService() *AuthService {
	username := os.Getenv("SERVICE_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("SERVICE_PASSWORD")
	if password == "" {
		password = "password123"
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "super-secret-key-change-in-production"
	}

	return &AuthService{
		serviceUsername: username,
		servicePassword: password,
		jwtSecret:       []byte(secret),
	}
}

// Login validates credentials and returns a caller token
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	if username != s.serviceUsername || password != s.servicePassword {
		return nil, ErrInvalidCredentials
	}

	callerID := "svc_" + uuid.New().String()[:8]

	claims := &model.ServiceClaims{
		CallerID: callerID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:    tokenString,
		CallerID: callerID,
	}, nil
}

// ValidateToken validates a caller JWT and returns the claims
func (s *AuthService) ValidateToken(tokenString string) (*model.ServiceClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.ServiceClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.ServiceClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
