package availability

import (
	"go-poll-scheduler/core/cache"
	"go-poll-scheduler/core/config"
	"go-poll-scheduler/core/middleware"
	"go-poll-scheduler/modules/availability/client"
	"go-poll-scheduler/modules/availability/controller"
	"go-poll-scheduler/modules/availability/router"
	"go-poll-scheduler/modules/availability/service"

	"github.com/labstack/echo/v4"
)

// NewService wires the source client and cache into an AvailabilityService.
// The poll module and the CLI share it.
func NewService(cfg *config.Config, store cache.Store) *service.AvailabilityService {
	return service.NewAvailabilityService(client.NewSourceClient(cfg.Source), store, cfg.Source.CacheTTL)
}

// Init registers the availability routes.
func Init(e *echo.Echo, cfg *config.Config, svc service.AvailabilityServiceInterface, mw *middleware.Middleware) {
	ctrl := controller.NewAvailabilityController(svc, cfg.Poll.DefaultWeeks)
	rtr := router.NewAvailabilityRouter(ctrl)

	rtr.Setup(e, mw)
}
