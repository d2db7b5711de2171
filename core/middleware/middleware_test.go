package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go-poll-scheduler/core/constants"
	"go-poll-scheduler/core/errors"
	"go-poll-scheduler/core/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func stubValidator(claims *utils.TokenClaims) TokenValidator {
	return func(token string) (*utils.TokenClaims, error) {
		if token != "good" {
			return nil, errors.NewAppError(errors.ErrInvalidTokenFormat, "Invalid token", nil)
		}
		return claims, nil
	}
}

func serve(mw echo.MiddlewareFunc, header string) (*httptest.ResponseRecorder, echo.Context) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})(c)
	return rec, c
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	m := NewMiddleware(stubValidator(&utils.TokenClaims{UserID: userID, Scope: utils.ScopeTokenAccess}))

	rec, c := serve(m.AuthMiddleware(), "Bearer good")
	assert.Equal(t, http.StatusOK, rec.Code)
	claims, ok := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
	assert.True(t, ok)
	assert.Equal(t, userID, claims.UserID)

	rec, _ = serve(m.AuthMiddleware(), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = serve(m.AuthMiddleware(), "Bearer bad")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_WrongScope(t *testing.T) {
	m := NewMiddleware(stubValidator(&utils.TokenClaims{UserID: uuid.New(), Scope: utils.ScopeTokenWorker}))
	rec, _ := serve(m.AuthMiddleware(), "Bearer good")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequestID(t *testing.T) {
	m := NewMiddleware(nil)
	rec, c := serve(m.RequestID(), "")
	id, _ := c.Get(constants.ContextRequestID).(string)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, rec.Header().Get(echo.HeaderXRequestID))
}
