package dto

import (
	"time"

	"go-poll-scheduler/modules/poll/entity"
)

// ===================== Request DTOs =====================

// CreatePollRequest runs a poll over an explicit member list.
type CreatePollRequest struct {
	Members       []string `json:"members" validate:"required,min=1,dive,required"`
	MinimumLength string   `json:"minimum_length" validate:"omitempty"`             // HH:MM
	Weeks         int      `json:"weeks" validate:"omitempty,min=1,max=52"`
	ChannelID     string   `json:"channel_id"`
}

// Member is one guild member as seen by the chat front end.
type Member struct {
	ID    string   `json:"id" validate:"required"`
	Roles []string `json:"roles"`
}

// CommandRequest carries a raw chat command together with the mentions the
// chat platform resolved and the guild roster.
type CommandRequest struct {
	Content         string   `json:"content" validate:"required"`
	Mentions        []string `json:"mentions"`
	RoleMentions    []string `json:"role_mentions"`
	MentionEveryone bool     `json:"mention_everyone"`
	Guild           []Member `json:"guild" validate:"dive"`
	ChannelID       string   `json:"channel_id"`
}

// ===================== Response DTOs =====================

type SessionResponse struct {
	Start   int64     `json:"start"`
	End     int64     `json:"end"`
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
	Text    string    `json:"text"`
}

type PollResponse struct {
	ID                string             `json:"id"`
	Code              string             `json:"code"`
	Status            entity.PollStatus  `json:"status"`
	Outcome           entity.PollOutcome `json:"outcome,omitempty"`
	Members           []string           `json:"members"`
	MinimumLengthMs   int64              `json:"minimum_length_ms"`
	Weeks             int                `json:"weeks"`
	WindowStart       int64              `json:"window_start"`
	WindowStartStrict int64              `json:"window_start_strict"`
	WindowEnd         int64              `json:"window_end"`
	Message           string             `json:"message,omitempty"`
	Messages          []string           `json:"messages"`
	Sessions          []SessionResponse  `json:"sessions"`
	MissingMembers    []string           `json:"missing_members"`
	Error             string             `json:"error,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// ToPollResponse builds the response for a stored poll. Messages and session
// texts are filled in by the service, which knows the display offset.
func ToPollResponse(p *entity.Poll, sessions []entity.PollSession, missing []string) *PollResponse {
	resp := &PollResponse{
		ID:                p.ID.String(),
		Code:              p.Code,
		Status:            p.Status,
		Outcome:           p.Outcome,
		Members:           append([]string{}, p.Members...),
		MinimumLengthMs:   p.MinimumLengthMs,
		Weeks:             p.Weeks,
		WindowStart:       p.WindowStart,
		WindowStartStrict: p.WindowStartStrict,
		WindowEnd:         p.WindowEnd,
		Message:           p.Message,
		Messages:          []string{},
		Sessions:          make([]SessionResponse, 0, len(sessions)),
		MissingMembers:    append([]string{}, missing...),
		Error:             p.Error,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	for _, s := range sessions {
		resp.Sessions = append(resp.Sessions, SessionResponse{
			Start:   s.StartMs,
			End:     s.EndMs,
			StartAt: time.UnixMilli(s.StartMs).UTC(),
			EndAt:   time.UnixMilli(s.EndMs).UTC(),
		})
	}
	return resp
}

// EnqueuedPollResponse is returned by the async endpoint.
type EnqueuedPollResponse struct {
	ID     string            `json:"id"`
	Code   string            `json:"code"`
	Status entity.PollStatus `json:"status"`
	TaskID string            `json:"task_id"`
}
