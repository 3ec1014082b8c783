package auth

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urban-pulse/internal/domain/model"
)

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestJWTVerifier_Verify(t *testing.T) {
	v, err := NewJWTVerifier("top-secret")
	require.NoError(t, err)

	t.Run("有効なトークンからユーザーを復元する", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, []byte("top-secret"), jwt.MapClaims{
			"sub":   "user-1",
			"email": "reporter@example.com",
			"exp":   time.Now().Add(time.Hour).Unix(),
		})

		user, err := v.Verify("Bearer " + token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)
		assert.Equal(t, "reporter@example.com", user.Email)
	})

	tests := []struct {
		name  string
		token string
	}{
		{"空のトークン", ""},
		{"別の鍵で署名", signToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "user-1"})},
		{"期限切れ", signToken(t, jwt.SigningMethodHS256, []byte("top-secret"), jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(-time.Minute).Unix()})},
		{"subなし", signToken(t, jwt.SigningMethodHS256, []byte("top-secret"), jwt.MapClaims{"email": "x@example.com"})},
		{"壊れたトークン", "not.a.jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := v.Verify(tt.token)
			assert.Nil(t, user)
			assert.ErrorIs(t, err, model.ErrUnauthorized)
		})
	}

	_, err = NewJWTVerifier("")
	assert.Error(t, err)
}
