package controller

import (
	"strconv"
	"time"

	"go-poll-scheduler/core/controller"
	"go-poll-scheduler/core/errors"
	"go-poll-scheduler/modules/availability/dto"
	"go-poll-scheduler/modules/availability/service"

	"github.com/labstack/echo/v4"
)

type AvailabilityController struct {
	controller.BaseController
	AvailabilityService service.AvailabilityServiceInterface
	DefaultWeeks        int
	Now                 func() time.Time
}

func NewAvailabilityController(svc service.AvailabilityServiceInterface, defaultWeeks int) *AvailabilityController {
	return &AvailabilityController{
		BaseController:      controller.NewBaseController(),
		AvailabilityService: svc,
		DefaultWeeks:        defaultWeeks,
		Now:                 time.Now,
	}
}

// GetAvailability handles GET /availability/:party_id
// @Summary Get a party's availability
// @Description Fetches the party's records from the availability source and returns them normalized over the poll window
// @Tags Availability
// @Security BearerAuth
// @Produce json
// @Param party_id path string true "Party ID"
// @Param weeks query int false "Number of weeks to look ahead"
// @Success 200 {object} dto.AvailabilityResponse
// @Failure 400 {object} errors.AppError
// @Failure 502 {object} errors.AppError
// @Router /private/availability/{party_id} [get]
func (c *AvailabilityController) GetAvailability(ctx echo.Context) error {
	partyID := ctx.Param("party_id")
	if partyID == "" {
		return c.BadRequest(errors.ErrInvalidInput, "Missing party ID")
	}

	weeks := c.DefaultWeeks
	if raw := ctx.QueryParam("weeks"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.BadRequest(errors.ErrInvalidInput, "weeks must be a strictly positive integer")
		}
		weeks = n
	}

	window := service.NewWindow(c.Now(), weeks)
	avail, appErr := c.AvailabilityService.GetAvailability(ctx.Request().Context(), partyID, window)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, dto.NewAvailabilityResponse(partyID, window, avail), "Success")
}
