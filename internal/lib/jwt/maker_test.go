package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTMaker_GenerateAndParseToken(t *testing.T) {
	maker := NewJWTMaker("test_secret_key_1234567890", 15*time.Minute)

	tests := []struct {
		name   string
		userID int64
		email  string
	}{
		{name: "regular user", userID: 1, email: "student@example.com"},
		{name: "large id", userID: 9_000_000_000, email: "mentor@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateToken(tt.userID, tt.email)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)
			assert.Equal(t, tt.email, claims.Email)
			assert.NotEmpty(t, claims.ID)

			id, err := claims.UserID()
			require.NoError(t, err)
			assert.Equal(t, tt.userID, id)
		})
	}
}

func TestJWTMaker_ExpiredToken(t *testing.T) {
	maker := NewJWTMaker("secret", time.Minute)
	maker.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := maker.GenerateToken(1, "a@b.c")
	require.NoError(t, err)

	_, err = maker.ParseToken(token)
	assert.Error(t, err)
}

func TestJWTMaker_WrongSecret(t *testing.T) {
	token, err := NewJWTMaker("secret-a", time.Minute).GenerateToken(1, "a@b.c")
	require.NoError(t, err)

	_, err = NewJWTMaker("secret-b", time.Minute).ParseToken(token)
	assert.Error(t, err)
}

func TestJWTMaker_MalformedToken(t *testing.T) {
	maker := NewJWTMaker("secret", time.Minute)

	for _, tok := range []string{"", "not.a.token", strings.Repeat("a", 40)} {
		_, err := maker.ParseToken(tok)
		assert.Error(t, err, "token %q", tok)
	}
}

func TestCustomClaims_UserIDInvalidSubject(t *testing.T) {
	c := &CustomClaims{}
	c.Subject = "abc"
	_, err := c.UserID()
	assert.Error(t, err)
}
