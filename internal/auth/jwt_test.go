package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_CreateAndVerify(t *testing.T) {
	service := NewJWTService(testSigningKey(0x01))

	userID := uuid.New()
	email := "bob@example.com"

	token, err := service.CreateToken(userID, email, 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, email, claims.Email)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	service := NewJWTService(testSigningKey(0x01))

	token, err := service.CreateToken(uuid.New(), "bob@example.com", -time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_WrongKey(t *testing.T) {
	issuer := NewJWTService(testSigningKey(0x01))
	verifier := NewJWTService(testSigningKey(0x02))

	token, err := issuer.CreateToken(uuid.New(), "bob@example.com", time.Hour)
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_RejectsUnsignedToken(t *testing.T) {
	service := NewJWTService(testSigningKey(0x01))

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: uuid.New().String(),
		Email:  "bob@example.com",
	})
	tokenStr, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = service.VerifyToken(tokenStr)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_MalformedToken(t *testing.T) {
	service := NewJWTService(testSigningKey(0x01))

	for _, token := range []string{"", "not.a.jwt", "garbage"} {
		_, err := service.VerifyToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}
