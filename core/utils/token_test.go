package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go-poll-scheduler/core/config"
	"go-poll-scheduler/core/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withSecret(t *testing.T, secret string) {
	t.Helper()
	config.Set(&config.Config{JWT: config.JWTConfig{Secret: secret}})
	t.Cleanup(func() { config.Set(nil) })
}

func TestGenerateAndValidateToken(t *testing.T) {
	withSecret(t, "test-secret")
	userID := uuid.New()

	token, err := GenerateToken(userID, ScopeTokenAccess)
	require.NoError(t, err)

	claims, err := ValidateAndParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, ScopeTokenAccess, claims.Scope)
}

func TestValidateAndParseToken_WrongSecret(t *testing.T) {
	withSecret(t, "one")
	token, err := GenerateToken(uuid.New(), ScopeTokenAccess)
	require.NoError(t, err)

	withSecret(t, "two")
	_, err = ValidateAndParseToken(token)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrInvalidTokenFormat, appErr.Code)
}

func TestGenerateToken_NoSecret(t *testing.T) {
	config.Set(nil)
	_, err := GenerateToken(uuid.New(), ScopeTokenAccess)
	assert.Error(t, err)
}

func TestGetTokenFromHeader(t *testing.T) {
	e := echo.New()
	cases := []struct {
		header string
		want   string
		code   errors.ErrorCode
	}{
		{"Bearer abc.def", "abc.def", ""},
		{"", "", errors.ErrMissingAuthorizationHeader},
		{"Basic xyz", "", errors.ErrInvalidTokenFormat},
		{"Bearer   ", "", errors.ErrInvalidTokenFormat},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set(echo.HeaderAuthorization, tc.header)
		}
		got, err := GetTokenFromHeader(e.NewContext(req, httptest.NewRecorder()))
		if tc.code == "" {
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			continue
		}
		appErr, ok := errors.AsAppError(err)
		require.True(t, ok, tc.header)
		assert.Equal(t, tc.code, appErr.Code, tc.header)
	}
}

func TestGenerateIDAndToUUID(t *testing.T) {
	id := GenerateID(7)
	assert.Len(t, id, 7)
	assert.NotEqual(t, id, GenerateID(7))
	assert.Equal(t, uuid.Nil, ToUUID("nope"))
}
