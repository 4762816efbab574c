package service

import (
	"testing"

	"go-sarpras-api/internal/apperr"
	"go-sarpras-api/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginAndSingleSession(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(repository.NewUserRepo(db), testHub(), nil)
	user := seedUser(t, db, "login@test.local", nil)

	resp, err := svc.Login(user.Email, "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, user.Email, resp.User.Email)

	validated, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.Email, validated.User.Email)

	// A second login rotates the token version; the first token dies.
	resp2, err := svc.Login(user.Email, "secret123")
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.Token)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))

	_, err = svc.ValidateToken(resp2.Token)
	require.NoError(t, err)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(repository.NewUserRepo(db), testHub(), nil)
	user := seedUser(t, db, "login@test.local", nil)

	_, err := svc.Login(user.Email, "wrong-password")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))

	_, err = svc.Login("nobody@test.local", "secret123")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestLoginInactiveUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(repository.NewUserRepo(db), testHub(), nil)
	user := seedUser(t, db, "inactive@test.local", nil)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, err := svc.Login(user.Email, "secret123")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestResetPassword(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(repository.NewUserRepo(db), testHub(), nil)
	user := seedUser(t, db, "reset@test.local", nil)

	err := svc.ResetPassword(user.Email, "wrong", "newpass123")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))

	require.NoError(t, svc.ResetPassword(user.Email, "secret123", "newpass123"))

	_, err = svc.Login(user.Email, "newpass123")
	require.NoError(t, err)
}
