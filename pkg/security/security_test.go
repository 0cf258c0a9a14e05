package security

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	m, err := NewJWTManager(&JWTConfig{SecretKey: "kid-secret", ExpiresIn: 30 * time.Minute})
	require.NoError(t, err)

	token, exp, err := m.Generate("be@kid.vn")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), exp, 2*time.Second)

	claims, err := m.Validate("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "be@kid.vn", claims.Subject)

	peek, ok := PeekExpiry(token)
	require.True(t, ok)
	assert.Equal(t, exp.Unix(), peek.Unix())
}

func TestJWTValidateErrors(t *testing.T) {
	m, err := NewJWTManager(&JWTConfig{SecretKey: "kid-secret", ExpiresIn: -time.Minute})
	require.NoError(t, err)
	other, err := NewJWTManager(&JWTConfig{SecretKey: "other"})
	require.NoError(t, err)

	expired, _, err := m.Generate("be@kid.vn")
	require.NoError(t, err)
	fresh, _, err := other.Generate("be@kid.vn")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{name: "expired", token: expired, want: ErrTokenExpired},
		{name: "wrong key", token: fresh, want: ErrTokenInvalid},
		{name: "garbage", token: "not-a-jwt", want: ErrTokenMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Validate(tt.token)
			assert.True(t, errors.Is(err, tt.want), "%+v", err)
		})
	}
}

func TestNewJWTManagerRequiresSecret(t *testing.T) {
	_, err := NewJWTManager(nil)
	assert.True(t, errors.Is(err, ErrSecretKeyEmpty), "%+v", err)
}

func TestPeekExpiryRejectsGarbage(t *testing.T) {
	_, ok := PeekExpiry("abc")
	assert.False(t, ok)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("123456")
	require.NoError(t, err)
	assert.NoError(t, CheckPassword(hash, "123456"))
	assert.True(t, errors.Is(CheckPassword(hash, "654321"), ErrPasswordMismatch))
}
