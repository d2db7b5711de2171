package middleware

import (
	"strconv"
	"time"

	"go-poll-scheduler/core/constants"
	"go-poll-scheduler/core/controller"
	"go-poll-scheduler/core/errors"
	"go-poll-scheduler/core/logger"
	"go-poll-scheduler/core/metrics"
	"go-poll-scheduler/core/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// TokenValidator turns a raw bearer token into claims.
type TokenValidator func(token string) (*utils.TokenClaims, error)

type Middleware struct {
	controller.BaseController
	validate TokenValidator
}

func NewMiddleware(validate TokenValidator) *Middleware {
	if validate == nil {
		validate = utils.ValidateAndParseToken
	}
	return &Middleware{
		BaseController: controller.NewBaseController(),
		validate:       validate,
	}
}

// AuthMiddleware requires a valid access token and stores its claims under
// constants.ContextTokenData.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := utils.GetTokenFromHeader(c)
			if err != nil {
				return m.ErrorResponse(c, err)
			}

			claims, err := m.validate(token)
			if err != nil {
				logger.Warn("Middleware:AuthMiddleware:InvalidToken", "error", err)
				return m.ErrorResponse(c, err)
			}
			if claims.Scope != utils.ScopeTokenAccess {
				return m.ErrorResponse(c, errors.NewAppError(errors.ErrForbidden, "Token scope does not allow this request", nil))
			}

			c.Set(constants.ContextTokenData, claims)
			return next(c)
		}
	}
}

// RequestID propagates X-Request-ID or assigns a fresh one.
func (m *Middleware) RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Set(constants.ContextRequestID, id)
			c.Response().Header().Set(echo.HeaderXRequestID, id)
			return next(c)
		}
	}
}

// RequestLogger logs every request and records it in the HTTP metrics.
func (m *Middleware) RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			elapsed := time.Since(start)
			status := c.Response().Status
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			metrics.ObserveHTTPRequest(c.Request().Method, route, strconv.Itoa(status), elapsed)

			kv := []any{
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", status,
				"latency_ms", elapsed.Milliseconds(),
				"request_id", c.Get(constants.ContextRequestID),
			}
			if status >= 500 {
				logger.Error("HTTP:Request", kv...)
			} else {
				logger.Info("HTTP:Request", kv...)
			}
			return nil
		}
	}
}
