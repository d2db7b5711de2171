package tasks

import (
	"context"
	stderrors "errors"
	"testing"

	"go-poll-scheduler/core/constants"
	"go-poll-scheduler/core/errors"
	"go-poll-scheduler/modules/poll/service"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runner records the polls it is asked to run.
type runner struct {
	service.PollServiceInterface
	ran    []uuid.UUID
	appErr *errors.AppError
}

func (r *runner) RunPoll(_ context.Context, pollID uuid.UUID) *errors.AppError {
	r.ran = append(r.ran, pollID)
	return r.appErr
}

func TestHandlePollRunTask(t *testing.T) {
	r := &runner{}
	pollID := uuid.New()
	task, err := service.NewPollRunTask(pollID)
	require.NoError(t, err)
	assert.Equal(t, constants.TaskPollRun, task.Type())

	require.NoError(t, HandlePollRunTask(r)(context.Background(), task))
	assert.Equal(t, []uuid.UUID{pollID}, r.ran)
}

func TestHandlePollRunTask_Retry(t *testing.T) {
	r := &runner{appErr: errors.NewAppError(errors.ErrSourceUnavailable, "down", nil)}
	task, err := service.NewPollRunTask(uuid.New())
	require.NoError(t, err)

	err = HandlePollRunTask(r)(context.Background(), task)
	require.Error(t, err)
	assert.False(t, stderrors.Is(err, asynq.SkipRetry))
}

func TestHandlePollRunTask_InvalidPayload(t *testing.T) {
	r := &runner{}
	err := HandlePollRunTask(r)(context.Background(), asynq.NewTask(constants.TaskPollRun, []byte("{")))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, asynq.SkipRetry))
	assert.Empty(t, r.ran)
}

func TestRegister(t *testing.T) {
	r := &runner{}
	mux := asynq.NewServeMux()
	Register(mux, r)

	task, err := service.NewPollRunTask(uuid.New())
	require.NoError(t, err)
	require.NoError(t, mux.ProcessTask(context.Background(), task))
	assert.Len(t, r.ran, 1)
}
