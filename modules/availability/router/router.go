package router

import (
	"go-poll-scheduler/core/middleware"
	"go-poll-scheduler/modules/availability/controller"

	"github.com/labstack/echo/v4"
)

type AvailabilityRouter struct {
	AvailabilityController *controller.AvailabilityController
}

func NewAvailabilityRouter(availabilityController *controller.AvailabilityController) *AvailabilityRouter {
	return &AvailabilityRouter{
		AvailabilityController: availabilityController,
	}
}

func (r *AvailabilityRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	privateRoutes := v1.Group("/private")

	availabilityRoutes := privateRoutes.Group("/availability", mw.AuthMiddleware())
	availabilityRoutes.GET("/:party_id", r.AvailabilityController.GetAvailability)
}
