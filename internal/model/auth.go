package model

import "github.com/golang-jwt/jwt/v5"

// ServiceClaims are JWT claims for authenticated report API callers.
type ServiceClaims struct {
	CallerID string `json:"callerId"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for service login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login.
type LoginResponse struct {
	Token    string `json:"token"`
	CallerID string `json:"callerId"`
}
