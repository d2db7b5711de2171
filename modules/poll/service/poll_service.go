package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-poll-scheduler/core/config"
	"go-poll-scheduler/core/constants"
	coreentity "go-poll-scheduler/core/entity"
	"go-poll-scheduler/core/errors"
	"go-poll-scheduler/core/interval"
	"go-poll-scheduler/core/logger"
	"go-poll-scheduler/core/metrics"
	"go-poll-scheduler/core/params"
	"go-poll-scheduler/core/queue"
	"go-poll-scheduler/core/utils"
	availability "go-poll-scheduler/modules/availability/service"
	"go-poll-scheduler/modules/poll/dto"
	"go-poll-scheduler/modules/poll/entity"
	"go-poll-scheduler/modules/poll/repository"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"
)

// Settings holds the configurable defaults of the poll service.
type Settings struct {
	DefaultMinimumLength time.Duration
	DefaultWeeks         int
	DisplayLocation      *time.Location
	MaxSessions          int
	Concurrency          int
	TaskOptions          []asynq.Option
}

func SettingsFromConfig(cfg *config.Config) (Settings, error) {
	minLen, err := ParseMinimumLength(cfg.Poll.DefaultMinimumLength)
	if err != nil {
		return Settings{}, fmt.Errorf("poll.default_minimum_length: %w", err)
	}
	offset := cfg.Poll.DisplayUTCOffsetHours
	return Settings{
		DefaultMinimumLength: minLen,
		DefaultWeeks:         cfg.Poll.DefaultWeeks,
		DisplayLocation:      time.FixedZone(fmt.Sprintf("UTC%+d", offset), offset*3600),
		MaxSessions:          cfg.Poll.MaxSessions,
		Concurrency:          cfg.Source.Concurrency,
		TaskOptions:          queue.TaskOptions(cfg),
	}, nil
}

func (s Settings) defaults() Options {
	return Options{MinimumLength: s.DefaultMinimumLength, Weeks: s.DefaultWeeks}
}

// Result is the outcome of running a poll over a set of members.
type Result struct {
	Window   interval.Window
	Options  Options
	Members  []string
	Missing  []string
	Sessions interval.Party
	Outcome  entity.PollOutcome
}

type PollServiceInterface interface {
	Compute(ctx context.Context, members []string, opts Options) (*Result, *errors.AppError)
	Render(result *Result) []string
	CreatePoll(ctx context.Context, userID uuid.UUID, req *dto.CreatePollRequest) (*dto.PollResponse, *errors.AppError)
	CreatePollFromCommand(ctx context.Context, userID uuid.UUID, req *dto.CommandRequest) (*dto.PollResponse, *errors.AppError)
	EnqueuePoll(ctx context.Context, userID uuid.UUID, req *dto.CreatePollRequest) (*dto.EnqueuedPollResponse, *errors.AppError)
	RunPoll(ctx context.Context, pollID uuid.UUID) *errors.AppError
	GetPoll(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*dto.PollResponse, *errors.AppError)
	GetMyPolls(ctx context.Context, userID uuid.UUID, params *params.QueryParams) (*coreentity.Pagination[dto.PollResponse], *errors.AppError)
}

type PollService struct {
	repo         repository.PollRepositoryInterface
	availability availability.AvailabilityServiceInterface
	queue        queue.Enqueuer
	settings     Settings
	now          func() time.Time
}

// NewPollService builds the service. repo and q may be nil for callers that
// only use Compute, such as the CLI.
func NewPollService(
	repo repository.PollRepositoryInterface,
	avail availability.AvailabilityServiceInterface,
	q queue.Enqueuer,
	settings Settings,
) *PollService {
	if settings.DisplayLocation == nil {
		settings.DisplayLocation = time.UTC
	}
	if settings.Concurrency <= 0 {
		settings.Concurrency = 1
	}
	return &PollService{
		repo:         repo,
		availability: avail,
		queue:        q,
		settings:     settings,
		now:          time.Now,
	}
}

// SetClock replaces time.Now, for tests.
func (s *PollService) SetClock(now func() time.Time) {
	s.now = now
}

// Compute runs a poll over members without storing it.
func (s *PollService) Compute(ctx context.Context, members []string, opts Options) (*Result, *errors.AppError) {
	if opts.Weeks <= 0 {
		opts.Weeks = s.settings.DefaultWeeks
	}
	if opts.MinimumLength <= 0 {
		opts.MinimumLength = s.settings.DefaultMinimumLength
	}
	return s.compute(ctx, members, opts, availability.NewWindow(s.now(), opts.Weeks))
}

func (s *PollService) compute(ctx context.Context, members []string, opts Options, window interval.Window) (*Result, *errors.AppError) {
	if len(members) == 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "No member to poll", nil)
	}

	avail := make([]interval.Availability, len(members))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.settings.Concurrency)
	for i, member := range members {
		g.Go(func() error {
			a, appErr := s.availability.GetAvailability(gctx, member, window)
			if appErr != nil {
				return appErr
			}
			avail[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			return nil, appErr
		}
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to fetch availabilities", err)
	}

	result := &Result{
		Window:  window,
		Options: opts,
		Members: members,
		Missing: []string{},
	}
	for i, a := range avail {
		if !a.IsPresent() {
			result.Missing = append(result.Missing, members[i])
		}
	}
	if len(result.Missing) == len(members) {
		return nil, errors.NewAppError(errors.ErrNoAvailability, "None of the polled members filled availabilities", nil)
	}

	start := time.Now()
	sessions, err := interval.IntersectAvailability(avail, opts.MinimumLength.Milliseconds())
	metrics.ObserveIntersect(time.Since(start))
	if err != nil {
		logger.Error("PollService:compute:Intersect", "error", err)
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Failed to intersect availabilities", err)
	}

	result.Sessions = sessions
	result.Outcome = entity.PollOutcomeNoSlot
	if len(sessions) > 0 {
		result.Outcome = entity.PollOutcomeScheduled
	}
	metrics.IncPoll(string(result.Outcome))

	logger.Info("PollService:compute:Done",
		"members", len(members),
		"missing", len(result.Missing),
		"sessions", len(sessions),
		"outcome", result.Outcome,
	)
	return result, nil
}

func (s *PollService) Render(result *Result) []string {
	return RenderMessages(result.Sessions, result.Options.Weeks, result.Missing, s.settings.DisplayLocation, s.settings.MaxSessions-1)
}

func (s *PollService) optionsFromRequest(req *dto.CreatePollRequest) (Options, *errors.AppError) {
	opts := s.settings.defaults()
	if req.MinimumLength != "" {
		d, err := ParseMinimumLength(req.MinimumLength)
		if err != nil {
			return Options{}, errors.NewAppError(errors.ErrInvalidInput, err.Error(), err)
		}
		opts.MinimumLength = d
	}
	if req.Weeks > 0 {
		opts.Weeks = req.Weeks
	}
	return opts, nil
}

func (s *PollService) CreatePoll(ctx context.Context, userID uuid.UUID, req *dto.CreatePollRequest) (*dto.PollResponse, *errors.AppError) {
	opts, appErr := s.optionsFromRequest(req)
	if appErr != nil {
		return nil, appErr
	}
	return s.runAndStore(ctx, userID, req.ChannelID, dedupe(req.Members), opts)
}

func (s *PollService) CreatePollFromCommand(ctx context.Context, userID uuid.UUID, req *dto.CommandRequest) (*dto.PollResponse, *errors.AppError) {
	opts, err := ParseCommand(req.Content, s.settings.defaults())
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, err.Error(), err)
	}
	return s.runAndStore(ctx, userID, req.ChannelID, SelectMembers(req), opts)
}

func (s *PollService) runAndStore(ctx context.Context, userID uuid.UUID, channelID string, members []string, opts Options) (*dto.PollResponse, *errors.AppError) {
	result, appErr := s.Compute(ctx, members, opts)
	if appErr != nil {
		return nil, appErr
	}

	poll := s.newPoll(userID, channelID, members, result.Options, result.Window)
	created, err := s.repo.CreatePoll(ctx, poll)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create poll", err)
	}

	messages := s.Render(result)
	created.Status = entity.PollStatusCompleted
	created.Outcome = result.Outcome
	created.Message = messages[0]
	sessions := toSessions(created.ID, result.Sessions)
	if err := s.repo.CompletePoll(ctx, created, sessions, result.Missing); err != nil {
		if failErr := s.repo.FailPoll(ctx, created.ID, "failed to store result"); failErr != nil {
			logger.Error("PollService:runAndStore:FailPoll", "poll_id", created.ID, "error", failErr)
		}
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to store poll result", err)
	}

	return s.toResponse(created, sessions, result.Missing, true), nil
}

func (s *PollService) newPoll(userID uuid.UUID, channelID string, members []string, opts Options, w interval.Window) *entity.Poll {
	poll := &entity.Poll{
		Code:            utils.GenerateID(constants.PollCodeLength),
		ChannelID:       channelID,
		Status:          entity.PollStatusPending,
		Outcome:         entity.PollOutcomeNone,
		MinimumLengthMs: opts.MinimumLength.Milliseconds(),
		Weeks:           opts.Weeks,
		Members:         members,
	}
	poll.ID = uuid.New()
	if userID != uuid.Nil {
		poll.RequestedBy = &userID
	}
	poll.SetWindow(w)
	return poll
}

// PollRunPayload is the body of a poll:run task.
type PollRunPayload struct {
	PollID uuid.UUID `json:"poll_id"`
}

func NewPollRunTask(pollID uuid.UUID, opts ...asynq.Option) (*asynq.Task, error) {
	b, err := json.Marshal(PollRunPayload{PollID: pollID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(constants.TaskPollRun, b, opts...), nil
}

// EnqueuePoll stores a pending poll and schedules it on the worker queue. The
// window is fixed now so the worker answers for the moment of the request.
func (s *PollService) EnqueuePoll(ctx context.Context, userID uuid.UUID, req *dto.CreatePollRequest) (*dto.EnqueuedPollResponse, *errors.AppError) {
	if s.queue == nil {
		return nil, errors.NewAppError(errors.ErrEnqueueFailed, "Background polls are not enabled", nil)
	}
	opts, appErr := s.optionsFromRequest(req)
	if appErr != nil {
		return nil, appErr
	}
	members := dedupe(req.Members)
	if len(members) == 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "No member to poll", nil)
	}

	poll := s.newPoll(userID, req.ChannelID, members, opts, availability.NewWindow(s.now(), opts.Weeks))
	created, err := s.repo.CreatePoll(ctx, poll)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create poll", err)
	}

	task, err := NewPollRunTask(created.ID, s.settings.TaskOptions...)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrEnqueueFailed, "Failed to build poll task", err)
	}
	info, err := s.queue.EnqueueContext(ctx, task)
	if err != nil {
		logger.Error("PollService:EnqueuePoll:Enqueue", "poll_id", created.ID, "error", err)
		if failErr := s.repo.FailPoll(ctx, created.ID, "enqueue failed"); failErr != nil {
			logger.Error("PollService:EnqueuePoll:FailPoll", "poll_id", created.ID, "error", failErr)
		}
		return nil, errors.NewAppError(errors.ErrEnqueueFailed, "Failed to enqueue poll", err)
	}

	logger.Info("PollService:EnqueuePoll", "poll_id", created.ID, "task_id", info.ID, "queue", info.Queue)
	return &dto.EnqueuedPollResponse{
		ID:     created.ID.String(),
		Code:   created.Code,
		Status: created.Status,
		TaskID: info.ID,
	}, nil
}

// RunPoll computes a stored pending poll and records its outcome. Polls
// that are no longer pending are left untouched so retried tasks are no-ops.
func (s *PollService) RunPoll(ctx context.Context, pollID uuid.UUID) *errors.AppError {
	poll, err := s.repo.GetPollByID(ctx, pollID)
	if err != nil {
		return errors.NewAppError(errors.ErrGetFailed, "Failed to load poll", err)
	}
	if poll == nil {
		return errors.NewAppError(errors.ErrNotFound, "Poll not found", nil)
	}
	if poll.Status != entity.PollStatusPending {
		logger.Info("PollService:RunPoll:AlreadyDone", "poll_id", pollID, "status", poll.Status)
		return nil
	}

	opts := Options{
		MinimumLength: time.Duration(poll.MinimumLengthMs) * time.Millisecond,
		Weeks:         poll.Weeks,
	}
	result, appErr := s.compute(ctx, poll.Members, opts, poll.Window())
	if appErr != nil {
		// Source outages are retried by the queue; anything else is final.
		if appErr.Code == errors.ErrSourceUnavailable {
			return appErr
		}
		if err := s.repo.FailPoll(ctx, pollID, appErr.Message); err != nil {
			return errors.NewAppError(errors.ErrUpdateFailed, "Failed to mark poll as failed", err)
		}
		return nil
	}

	poll.Status = entity.PollStatusCompleted
	poll.Outcome = result.Outcome
	poll.Message = s.Render(result)[0]
	if err := s.repo.CompletePoll(ctx, poll, toSessions(poll.ID, result.Sessions), result.Missing); err != nil {
		return errors.NewAppError(errors.ErrUpdateFailed, "Failed to store poll result", err)
	}
	return nil
}

func (s *PollService) GetPoll(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*dto.PollResponse, *errors.AppError) {
	poll, err := s.repo.GetPollByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get poll", err)
	}
	if poll == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Poll not found", nil)
	}
	if poll.RequestedBy != nil && *poll.RequestedBy != userID {
		return nil, errors.NewAppError(errors.ErrForbidden, "Poll belongs to another user", nil)
	}

	sessions, err := s.repo.GetSessionsByPollID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get poll sessions", err)
	}
	missing, err := s.repo.GetMissingMembersByPollID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get missing members", err)
	}
	return s.toResponse(poll, sessions, missing, true), nil
}

func (s *PollService) GetMyPolls(ctx context.Context, userID uuid.UUID, params *params.QueryParams) (*coreentity.Pagination[dto.PollResponse], *errors.AppError) {
	polls, total, err := s.repo.GetPollsByRequester(ctx, userID, params.PageSize, params.Offset())
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get polls", err)
	}

	items := make([]dto.PollResponse, 0, len(polls))
	for i := range polls {
		items = append(items, *s.toResponse(&polls[i], nil, nil, false))
	}
	return coreentity.NewPagination(items, total, params.PageNumber, params.PageSize), nil
}

// toResponse renders poll. Listings pass detailed=false and get neither
// sessions nor chat messages.
func (s *PollService) toResponse(poll *entity.Poll, sessions []entity.PollSession, missing []string, detailed bool) *dto.PollResponse {
	resp := dto.ToPollResponse(poll, sessions, missing)
	for i := range resp.Sessions {
		resp.Sessions[i].Text = FormatSession(sessions[i].Interval(), s.settings.DisplayLocation)
	}
	if detailed && poll.Status == entity.PollStatusCompleted {
		party := make(interval.Party, len(sessions))
		for i, sess := range sessions {
			party[i] = sess.Interval()
		}
		resp.Messages = RenderMessages(party, poll.Weeks, missing, s.settings.DisplayLocation, s.settings.MaxSessions-1)
	}
	return resp
}

func toSessions(pollID uuid.UUID, party interval.Party) []entity.PollSession {
	sessions := make([]entity.PollSession, len(party))
	for i, iv := range party {
		sessions[i] = entity.PollSession{
			PollID:   pollID,
			Position: i,
			StartMs:  iv.Start,
			EndMs:    iv.End,
		}
	}
	return sessions
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
