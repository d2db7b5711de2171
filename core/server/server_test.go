package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-poll-scheduler/core/config"
	"go-poll-scheduler/core/errors"
	"go-poll-scheduler/core/interval"
	"go-poll-scheduler/core/middleware"
	"go-poll-scheduler/core/utils"
	pollservice "go-poll-scheduler/modules/poll/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedAvailability struct{}

func (fixedAvailability) GetAvailability(_ context.Context, _ string, w interval.Window) (interval.Availability, *errors.AppError) {
	return interval.Present(interval.Party{{Start: w.StartStrict, End: w.End}}), nil
}

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	cfg := &config.Config{}
	cfg.Poll.DefaultWeeks = 1

	validate := func(token string) (*utils.TokenClaims, error) {
		if token != "good" {
			return nil, errors.NewAppError(errors.ErrInvalidTokenFormat, "bad token", nil)
		}
		return &utils.TokenClaims{UserID: uuid.New(), Scope: utils.ScopeTokenAccess}, nil
	}
	polls := pollservice.NewPollService(nil, fixedAvailability{}, nil, pollservice.Settings{DefaultWeeks: 1})
	return NewEcho(cfg, fixedAvailability{}, polls, middleware.NewMiddleware(validate))
}

func get(e *echo.Echo, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestNewEcho_PublicRoutes(t *testing.T) {
	e := newTestEcho(t)

	rec := get(e, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = get(e, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "poll_scheduler_http_requests_total")
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestNewEcho_PrivateRoutes(t *testing.T) {
	e := newTestEcho(t)

	assert.Equal(t, http.StatusUnauthorized, get(e, "/api/v1/private/polls", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(e, "/api/v1/private/availability/alice", "bad").Code)

	rec := get(e, "/api/v1/private/availability/alice", "good")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"has_data":true`)
}
