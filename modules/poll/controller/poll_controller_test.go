package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-poll-scheduler/core/constants"
	coreentity "go-poll-scheduler/core/entity"
	"go-poll-scheduler/core/errors"
	"go-poll-scheduler/core/params"
	"go-poll-scheduler/core/utils"
	"go-poll-scheduler/core/validator"
	"go-poll-scheduler/modules/poll/dto"
	"go-poll-scheduler/modules/poll/entity"
	"go-poll-scheduler/modules/poll/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPollService struct {
	mock.Mock
}

func (m *MockPollService) Compute(ctx context.Context, members []string, opts service.Options) (*service.Result, *errors.AppError) {
	args := m.Called(ctx, members, opts)
	result, _ := args.Get(0).(*service.Result)
	return result, appErrArg(args, 1)
}

func (m *MockPollService) Render(result *service.Result) []string {
	return m.Called(result).Get(0).([]string)
}

func (m *MockPollService) CreatePoll(ctx context.Context, userID uuid.UUID, req *dto.CreatePollRequest) (*dto.PollResponse, *errors.AppError) {
	args := m.Called(ctx, userID, req)
	resp, _ := args.Get(0).(*dto.PollResponse)
	return resp, appErrArg(args, 1)
}

func (m *MockPollService) CreatePollFromCommand(ctx context.Context, userID uuid.UUID, req *dto.CommandRequest) (*dto.PollResponse, *errors.AppError) {
	args := m.Called(ctx, userID, req)
	resp, _ := args.Get(0).(*dto.PollResponse)
	return resp, appErrArg(args, 1)
}

func (m *MockPollService) EnqueuePoll(ctx context.Context, userID uuid.UUID, req *dto.CreatePollRequest) (*dto.EnqueuedPollResponse, *errors.AppError) {
	args := m.Called(ctx, userID, req)
	resp, _ := args.Get(0).(*dto.EnqueuedPollResponse)
	return resp, appErrArg(args, 1)
}

func (m *MockPollService) RunPoll(ctx context.Context, pollID uuid.UUID) *errors.AppError {
	return appErrArg(m.Called(ctx, pollID), 0)
}

func (m *MockPollService) GetPoll(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*dto.PollResponse, *errors.AppError) {
	args := m.Called(ctx, id, userID)
	resp, _ := args.Get(0).(*dto.PollResponse)
	return resp, appErrArg(args, 1)
}

func (m *MockPollService) GetMyPolls(ctx context.Context, userID uuid.UUID, p *params.QueryParams) (*coreentity.Pagination[dto.PollResponse], *errors.AppError) {
	args := m.Called(ctx, userID, p)
	resp, _ := args.Get(0).(*coreentity.Pagination[dto.PollResponse])
	return resp, appErrArg(args, 1)
}

func appErrArg(args mock.Arguments, i int) *errors.AppError {
	appErr, _ := args.Get(i).(*errors.AppError)
	return appErr
}

// newTestServer routes the controller behind a fake authentication step.
func newTestServer(ctrl *PollController, userID uuid.UUID) *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()
	auth := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if userID != uuid.Nil {
				c.Set(constants.ContextTokenData, &utils.TokenClaims{UserID: userID, Scope: utils.ScopeTokenAccess})
			}
			return next(c)
		}
	}
	g := e.Group("/polls", auth)
	g.POST("", ctrl.CreatePoll)
	g.POST("/command", ctrl.CreatePollFromCommand)
	g.POST("/async", ctrl.EnqueuePoll)
	g.GET("", ctrl.GetMyPolls)
	g.GET("/:id", ctrl.GetPoll)
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreatePoll(t *testing.T) {
	userID := uuid.New()
	svc := new(MockPollService)
	svc.On("CreatePoll", mock.Anything, userID, &dto.CreatePollRequest{
		Members:       []string{"alice", "bob"},
		MinimumLength: "01:30",
		Weeks:         2,
	}).Return(&dto.PollResponse{
		Code:    "AbCdEfG",
		Status:  entity.PollStatusCompleted,
		Outcome: entity.PollOutcomeScheduled,
	}, nil)

	e := newTestServer(NewPollController(svc), userID)
	rec := do(e, http.MethodPost, "/polls", `{"members":["alice","bob"],"minimum_length":"01:30","weeks":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Data dto.PollResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "AbCdEfG", body.Data.Code)
	assert.Equal(t, entity.PollOutcomeScheduled, body.Data.Outcome)
	svc.AssertExpectations(t)
}

func TestCreatePoll_Validation(t *testing.T) {
	svc := new(MockPollService)
	e := newTestServer(NewPollController(svc), uuid.New())

	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/polls", `{"members":[]}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/polls", `{"members":["a"],"weeks":60}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/polls", `{"members":`).Code)
	svc.AssertNotCalled(t, "CreatePoll", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreatePoll_Unauthenticated(t *testing.T) {
	e := newTestServer(NewPollController(new(MockPollService)), uuid.Nil)
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodPost, "/polls", `{"members":["a"]}`).Code)
}

func TestCreatePoll_ServiceErrors(t *testing.T) {
	cases := []struct {
		code   errors.ErrorCode
		status int
	}{
		{errors.ErrInvalidInput, http.StatusBadRequest},
		{errors.ErrNoAvailability, http.StatusUnprocessableEntity},
		{errors.ErrInvalidSourceData, http.StatusBadGateway},
		{errors.ErrSourceUnavailable, http.StatusBadGateway},
		{errors.ErrCreateFailed, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			svc := new(MockPollService)
			svc.On("CreatePoll", mock.Anything, mock.Anything, mock.Anything).
				Return(nil, errors.NewAppError(tc.code, "failed", nil))

			e := newTestServer(NewPollController(svc), uuid.New())
			rec := do(e, http.MethodPost, "/polls", `{"members":["a"]}`)
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), string(tc.code))
		})
	}
}

func TestCreatePollFromCommand(t *testing.T) {
	svc := new(MockPollService)
	svc.On("CreatePollFromCommand", mock.Anything, mock.Anything, mock.MatchedBy(func(req *dto.CommandRequest) bool {
		return req.Content == "-startpoll @gm -w 2" && len(req.Guild) == 2 && req.RoleMentions[0] == "gm"
	})).Return(&dto.PollResponse{Status: entity.PollStatusCompleted}, nil)

	e := newTestServer(NewPollController(svc), uuid.New())
	rec := do(e, http.MethodPost, "/polls/command", `{
		"content": "-startpoll @gm -w 2",
		"role_mentions": ["gm"],
		"guild": [{"id": "alice", "roles": ["gm"]}, {"id": "bob"}]
	}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)

	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/polls/command", `{"content":""}`).Code)
}

func TestEnqueuePoll(t *testing.T) {
	svc := new(MockPollService)
	svc.On("EnqueuePoll", mock.Anything, mock.Anything, mock.Anything).
		Return(&dto.EnqueuedPollResponse{ID: uuid.NewString(), Status: entity.PollStatusPending, TaskID: "task-1"}, nil)

	e := newTestServer(NewPollController(svc), uuid.New())
	rec := do(e, http.MethodPost, "/polls/async", `{"members":["a"]}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), `"task_id":"task-1"`)
}

func TestGetPoll(t *testing.T) {
	userID, pollID := uuid.New(), uuid.New()
	svc := new(MockPollService)
	svc.On("GetPoll", mock.Anything, pollID, userID).Return(&dto.PollResponse{ID: pollID.String()}, nil)
	svc.On("GetPoll", mock.Anything, mock.Anything, userID).
		Return(nil, errors.NewAppError(errors.ErrNotFound, "Poll not found", nil))

	e := newTestServer(NewPollController(svc), userID)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/polls/"+pollID.String(), "").Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/polls/"+uuid.NewString(), "").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/polls/not-a-uuid", "").Code)
}

func TestGetMyPolls(t *testing.T) {
	userID := uuid.New()
	svc := new(MockPollService)
	svc.On("GetMyPolls", mock.Anything, userID, &params.QueryParams{PageNumber: 2, PageSize: 5}).
		Return(coreentity.NewPagination([]dto.PollResponse{{Code: "x"}}, 6, 2, 5), nil)

	e := newTestServer(NewPollController(svc), userID)
	rec := do(e, http.MethodGet, "/polls?page_number=2&page_size=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_pages":2`)
}
