package repository

import (
	"context"
	"database/sql"
	"errors"

	"go-poll-scheduler/core/database"
	"go-poll-scheduler/core/logger"
	"go-poll-scheduler/modules/poll/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PollRepository struct {
	DB database.IDatabase
}

func NewPollRepository(db database.IDatabase) *PollRepository {
	return &PollRepository{DB: db}
}

type PollRepositoryInterface interface {
	CreatePoll(ctx context.Context, poll *entity.Poll) (*entity.Poll, error)
	// CompletePoll stores the outcome of poll with its sessions and missing
	// members in one transaction.
	CompletePoll(ctx context.Context, poll *entity.Poll, sessions []entity.PollSession, missing []string) error
	FailPoll(ctx context.Context, id uuid.UUID, reason string) error
	// GetPollByID returns nil, nil when the poll does not exist.
	GetPollByID(ctx context.Context, id uuid.UUID) (*entity.Poll, error)
	GetSessionsByPollID(ctx context.Context, pollID uuid.UUID) ([]entity.PollSession, error)
	GetMissingMembersByPollID(ctx context.Context, pollID uuid.UUID) ([]string, error)
	GetPollsByRequester(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Poll, int, error)
}

const pollColumns = `id, code, requested_by, channel_id, status, outcome, minimum_length_ms, weeks,
	window_start, window_start_strict, window_end, members, message, error, created_at, updated_at`

func (r *PollRepository) CreatePoll(ctx context.Context, poll *entity.Poll) (*entity.Poll, error) {
	query := `
		INSERT INTO polls (id, code, requested_by, channel_id, status, outcome, minimum_length_ms, weeks,
		                   window_start, window_start_strict, window_end, members, message, error)
		VALUES (:id, :code, :requested_by, :channel_id, :status, :outcome, :minimum_length_ms, :weeks,
		        :window_start, :window_start_strict, :window_end, :members, :message, :error)
		RETURNING ` + pollColumns

	rows, err := r.DB.NamedQueryContext(ctx, query, poll)
	if err != nil {
		logger.Error("PollRepository:CreatePoll", "error", err)
		return nil, err
	}
	defer rows.Close()

	var created entity.Poll
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sql.ErrNoRows
	}
	if err := rows.StructScan(&created); err != nil {
		logger.Error("PollRepository:CreatePoll:Scan", "error", err)
		return nil, err
	}
	return &created, nil
}

func (r *PollRepository) CompletePoll(ctx context.Context, poll *entity.Poll, sessions []entity.PollSession, missing []string) error {
	return r.DB.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE polls
			SET status = $2, outcome = $3, message = $4, error = '', updated_at = NOW()
			WHERE id = $1
		`, poll.ID, poll.Status, poll.Outcome, poll.Message)
		if err != nil {
			logger.Error("PollRepository:CompletePoll:Update", "poll_id", poll.ID, "error", err)
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM poll_sessions WHERE poll_id = $1`, poll.ID); err != nil {
			return err
		}
		if len(sessions) > 0 {
			_, err = tx.NamedExecContext(ctx, `
				INSERT INTO poll_sessions (poll_id, position, start_ms, end_ms)
				VALUES (:poll_id, :position, :start_ms, :end_ms)
			`, sessions)
			if err != nil {
				logger.Error("PollRepository:CompletePoll:Sessions", "poll_id", poll.ID, "error", err)
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM poll_missing_members WHERE poll_id = $1`, poll.ID); err != nil {
			return err
		}
		if len(missing) > 0 {
			rows := make([]entity.PollMissingMember, len(missing))
			for i, id := range missing {
				rows[i] = entity.PollMissingMember{PollID: poll.ID, Position: i, MemberID: id}
			}
			_, err = tx.NamedExecContext(ctx, `
				INSERT INTO poll_missing_members (poll_id, position, member_id)
				VALUES (:poll_id, :position, :member_id)
			`, rows)
			if err != nil {
				logger.Error("PollRepository:CompletePoll:Missing", "poll_id", poll.ID, "error", err)
				return err
			}
		}
		return nil
	})
}

func (r *PollRepository) FailPoll(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE polls
		SET status = $2, error = $3, updated_at = NOW()
		WHERE id = $1
	`
	err := r.DB.ExecContext(ctx, query, id, entity.PollStatusFailed, reason)
	if err != nil {
		logger.Error("PollRepository:FailPoll", "poll_id", id, "error", err)
	}
	return err
}

func (r *PollRepository) GetPollByID(ctx context.Context, id uuid.UUID) (*entity.Poll, error) {
	query := `SELECT ` + pollColumns + ` FROM polls WHERE id = $1`

	var poll entity.Poll
	err := r.DB.GetContext(ctx, &poll, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.Error("PollRepository:GetPollByID", "poll_id", id, "error", err)
		return nil, err
	}
	return &poll, nil
}

func (r *PollRepository) GetSessionsByPollID(ctx context.Context, pollID uuid.UUID) ([]entity.PollSession, error) {
	query := `
		SELECT poll_id, position, start_ms, end_ms
		FROM poll_sessions
		WHERE poll_id = $1
		ORDER BY position
	`

	sessions := []entity.PollSession{}
	if err := r.DB.SelectContext(ctx, &sessions, query, pollID); err != nil {
		logger.Error("PollRepository:GetSessionsByPollID", "poll_id", pollID, "error", err)
		return nil, err
	}
	return sessions, nil
}

func (r *PollRepository) GetMissingMembersByPollID(ctx context.Context, pollID uuid.UUID) ([]string, error) {
	query := `SELECT member_id FROM poll_missing_members WHERE poll_id = $1 ORDER BY position`

	members := []string{}
	if err := r.DB.SelectContext(ctx, &members, query, pollID); err != nil {
		logger.Error("PollRepository:GetMissingMembersByPollID", "poll_id", pollID, "error", err)
		return nil, err
	}
	return members, nil
}

func (r *PollRepository) GetPollsByRequester(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Poll, int, error) {
	var total int
	if err := r.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM polls WHERE requested_by = $1`, userID); err != nil {
		logger.Error("PollRepository:GetPollsByRequester:Count", "user_id", userID, "error", err)
		return nil, 0, err
	}

	query := `
		SELECT ` + pollColumns + `
		FROM polls
		WHERE requested_by = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	polls := []entity.Poll{}
	if err := r.DB.SelectContext(ctx, &polls, query, userID, limit, offset); err != nil {
		logger.Error("PollRepository:GetPollsByRequester", "user_id", userID, "error", err)
		return nil, 0, err
	}
	return polls, total, nil
}
