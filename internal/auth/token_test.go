package auth

import (
	"testing"
	"time"

	"coursecritic-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	userID := bson.NewObjectID()

	signed, issued, err := m.Issue(userID, models.RoleStudent)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)

	claims, err := m.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, userID.Hex(), claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.Equal(t, issued.ID, claims.ID)

	parsed, err := claims.UserObjectID()
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestTokenManager_UniqueJTI(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	userID := bson.NewObjectID()
	_, a, err := m.Issue(userID, models.RoleStudent)
	require.NoError(t, err)
	_, b, err := m.Issue(userID, models.RoleStudent)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	signed, _, err := NewTokenManager("one", time.Hour).Issue(bson.NewObjectID(), models.RoleAdmin)
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour).Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	m := NewTokenManager("secret", time.Minute)
	issuedAt := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issuedAt }
	signed, _, err := m.Issue(bson.NewObjectID(), models.RoleStudent)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsNoneAlg(t *testing.T) {
	claims := &Claims{
		UserID: bson.NewObjectID().Hex(),
		Role:   models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "x",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour).Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsUnknownRole(t *testing.T) {
	claims := &Claims{
		UserID: bson.NewObjectID().Hex(),
		Role:   models.Role("superuser"),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "x",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour).Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
	assert.False(t, CheckPassword("not-a-hash", "hunter22"))
}
