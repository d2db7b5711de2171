package controller

import (
	"go-poll-scheduler/core/constants"
	"go-poll-scheduler/core/controller"
	"go-poll-scheduler/core/errors"
	"go-poll-scheduler/core/params"
	"go-poll-scheduler/core/utils"
	"go-poll-scheduler/modules/poll/dto"
	"go-poll-scheduler/modules/poll/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type PollController struct {
	controller.BaseController
	PollService service.PollServiceInterface
}

func NewPollController(svc service.PollServiceInterface) *PollController {
	return &PollController{
		BaseController: controller.NewBaseController(),
		PollService:    svc,
	}
}

// getUserIDFromContext extracts user ID from JWT context
func (c *PollController) getUserIDFromContext(ctx echo.Context) (uuid.UUID, error) {
	tokenData := ctx.Get(constants.ContextTokenData)
	if tokenData == nil {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "User not authenticated", nil)
	}

	claims, ok := tokenData.(*utils.TokenClaims)
	if !ok {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid token data", nil)
	}

	return claims.UserID, nil
}

// bindAndValidate binds the body into req and runs the struct validator.
func (c *PollController) bindAndValidate(ctx echo.Context, req any) error {
	if err := ctx.Bind(req); err != nil {
		return errors.NewAppError(errors.ErrInvalidRequestData, "Invalid request body", err)
	}
	if err := ctx.Validate(req); err != nil {
		return errors.NewAppError(errors.ErrInvalidRequestData, err.Error(), err)
	}
	return nil
}

// CreatePoll handles POST /polls
// @Summary Run a poll
// @Description Polls the given members' availability and returns the next common session
// @Tags Poll
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreatePollRequest true "Members and options"
// @Success 200 {object} dto.PollResponse
// @Failure 400 {object} errors.AppError
// @Failure 422 {object} errors.AppError
// @Failure 502 {object} errors.AppError
// @Router /private/polls [post]
func (c *PollController) CreatePoll(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	var req dto.CreatePollRequest
	if err := c.bindAndValidate(ctx, &req); err != nil {
		return c.ErrorResponse(ctx, err)
	}

	result, appErr := c.PollService.CreatePoll(ctx.Request().Context(), userID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Poll completed")
}

// CreatePollFromCommand handles POST /polls/command
// @Summary Run a poll from a chat command
// @Description Parses a -startpoll command, resolves mentioned members and roles, then runs the poll
// @Tags Poll
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CommandRequest true "Chat command and guild roster"
// @Success 200 {object} dto.PollResponse
// @Failure 400 {object} errors.AppError
// @Failure 422 {object} errors.AppError
// @Router /private/polls/command [post]
func (c *PollController) CreatePollFromCommand(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	var req dto.CommandRequest
	if err := c.bindAndValidate(ctx, &req); err != nil {
		return c.ErrorResponse(ctx, err)
	}

	result, appErr := c.PollService.CreatePollFromCommand(ctx.Request().Context(), userID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Poll completed")
}

// EnqueuePoll handles POST /polls/async
// @Summary Run a poll in the background
// @Description Stores a pending poll and hands it to the worker
// @Tags Poll
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreatePollRequest true "Members and options"
// @Success 202 {object} dto.EnqueuedPollResponse
// @Failure 400 {object} errors.AppError
// @Router /private/polls/async [post]
func (c *PollController) EnqueuePoll(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	var req dto.CreatePollRequest
	if err := c.bindAndValidate(ctx, &req); err != nil {
		return c.ErrorResponse(ctx, err)
	}

	result, appErr := c.PollService.EnqueuePoll(ctx.Request().Context(), userID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.Accepted(ctx, result, "Poll enqueued")
}

// GetPoll handles GET /polls/:id
// @Summary Get a poll
// @Tags Poll
// @Security BearerAuth
// @Produce json
// @Param id path string true "Poll ID"
// @Success 200 {object} dto.PollResponse
// @Failure 404 {object} errors.AppError
// @Router /private/polls/{id} [get]
func (c *PollController) GetPoll(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	pollID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid poll ID")
	}

	result, appErr := c.PollService.GetPoll(ctx.Request().Context(), pollID, userID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Success")
}

// GetMyPolls handles GET /polls
// @Summary List my polls
// @Tags Poll
// @Security BearerAuth
// @Produce json
// @Param page_number query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} entity.Pagination[dto.PollResponse]
// @Router /private/polls [get]
func (c *PollController) GetMyPolls(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	result, appErr := c.PollService.GetMyPolls(ctx.Request().Context(), userID, params.NewQueryParams(ctx))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Success")
}
