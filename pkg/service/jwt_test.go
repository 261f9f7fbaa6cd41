package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "equipment-system/pkg/errors"
)

func TestGenerateAndValidate(t *testing.T) {
	now := time.Now()
	svc := NewJWTService("secret", time.Hour, func() time.Time { return now })

	token, err := svc.GenerateAccessToken("storekeeper-1")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "storekeeper-1", claims.UserID)
}

func TestValidateExpired(t *testing.T) {
	issued := time.Now()
	current := issued
	svc := NewJWTService("secret", time.Minute, func() time.Time { return current })

	token, err := svc.GenerateAccessToken("u1")
	require.NoError(t, err)

	current = issued.Add(2 * time.Minute)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestValidateWrongSecret(t *testing.T) {
	now := time.Now()
	token, err := NewJWTService("one", time.Hour, func() time.Time { return now }).GenerateAccessToken("u1")
	require.NoError(t, err)

	_, err = NewJWTService("two", time.Hour, func() time.Time { return now }).ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
