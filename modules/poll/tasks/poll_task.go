package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"go-poll-scheduler/core/constants"
	"go-poll-scheduler/core/logger"
	"go-poll-scheduler/modules/poll/service"

	"github.com/hibiken/asynq"
)

// Register binds the poll task handlers on mux.
func Register(mux *asynq.ServeMux, svc service.PollServiceInterface) {
	mux.HandleFunc(constants.TaskPollRun, HandlePollRunTask(svc))
}

func HandlePollRunTask(svc service.PollServiceInterface) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p service.PollRunPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("PollTask:Run:InvalidPayload", "error", err)
			return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
		}

		logger.Info("PollTask:Run", "poll_id", p.PollID)
		if appErr := svc.RunPoll(ctx, p.PollID); appErr != nil {
			logger.Error("PollTask:Run:Failed", "poll_id", p.PollID, "code", appErr.Code, "error", appErr)
			return appErr
		}
		return nil
	}
}
