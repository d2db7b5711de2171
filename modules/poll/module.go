package poll

import (
	"go-poll-scheduler/core/database"
	"go-poll-scheduler/core/middleware"
	"go-poll-scheduler/core/queue"
	availability "go-poll-scheduler/modules/availability/service"
	"go-poll-scheduler/modules/poll/controller"
	"go-poll-scheduler/modules/poll/repository"
	"go-poll-scheduler/modules/poll/router"
	"go-poll-scheduler/modules/poll/service"

	"github.com/labstack/echo/v4"
)

// NewService wires the poll service on top of the database and queue.
func NewService(db database.IDatabase, avail availability.AvailabilityServiceInterface, q queue.Enqueuer, settings service.Settings) *service.PollService {
	return service.NewPollService(repository.NewPollRepository(db), avail, q, settings)
}

// Init registers the poll routes.
func Init(e *echo.Echo, svc service.PollServiceInterface, mw *middleware.Middleware) {
	ctrl := controller.NewPollController(svc)
	rtr := router.NewPollRouter(ctrl)

	rtr.Setup(e, mw)
}
