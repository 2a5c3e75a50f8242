package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginAndValidate(t *testing.T) {
	t.Setenv("SERVICE_USERNAME", "reporter")
	t.Setenv("SERVICE_PASSWORD", "s3cret")
	t.Setenv("JWT_SECRET", "test-secret")

	svc := NewAuthService()

	resp, err := svc.Login("reporter", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.True(t, strings.HasPrefix(resp.CallerID, "svc_"))

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.CallerID, claims.CallerID)
}

func TestLoginWrongCredentials(t *testing.T) {
	t.Setenv("SERVICE_USERNAME", "reporter")
	t.Setenv("SERVICE_PASSWORD", "s3cret")

	svc := NewAuthService()

	_, err := svc.Login("reporter", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login("nobody", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService()

	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-one")
	issuer := NewAuthService()
	resp, err := issuer.Login("admin", "password123")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "secret-two")
	verifier := NewAuthService()

	_, err = verifier.ValidateToken(resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
