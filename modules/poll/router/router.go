package router

import (
	"go-poll-scheduler/core/middleware"
	"go-poll-scheduler/modules/poll/controller"

	"github.com/labstack/echo/v4"
)

type PollRouter struct {
	PollController *controller.PollController
}

func NewPollRouter(pollController *controller.PollController) *PollRouter {
	return &PollRouter{
		PollController: pollController,
	}
}

func (r *PollRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	privateRoutes := v1.Group("/private")

	pollRoutes := privateRoutes.Group("/polls", mw.AuthMiddleware())
	pollRoutes.POST("", r.PollController.CreatePoll)
	pollRoutes.POST("/command", r.PollController.CreatePollFromCommand)
	pollRoutes.POST("/async", r.PollController.EnqueuePoll)
	pollRoutes.GET("", r.PollController.GetMyPolls)
	pollRoutes.GET("/:id", r.PollController.GetPoll)
}
