package jwt

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	privileges := []string{"material:view", "borrow:create"}

	token, err := GenerateToken(userID, "staff@example.com", "Staff One", "STAFF", privileges, "v1")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "staff@example.com", claims.Email)
	assert.Equal(t, "STAFF", claims.RoleCode)
	assert.Equal(t, privileges, claims.Privileges)
	assert.Equal(t, "v1", claims.TokenVersion)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not.a.token")
	assert.Error(t, err)

	token, err := GenerateToken(uuid.New(), "a@b.c", "A", "STAFF", nil, "v1")
	require.NoError(t, err)

	// Tampering with the payload breaks the signature.
	_, err = ValidateToken(token + "x")
	assert.Error(t, err)
}
