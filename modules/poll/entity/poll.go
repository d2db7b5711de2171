package entity

import (
	"go-poll-scheduler/core/entity"
	"go-poll-scheduler/core/interval"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type PollStatus string

const (
	PollStatusPending   PollStatus = "pending"
	PollStatusCompleted PollStatus = "completed"
	PollStatusFailed    PollStatus = "failed"
)

type PollOutcome string

const (
	PollOutcomeNone      PollOutcome = ""
	PollOutcomeScheduled PollOutcome = "scheduled"
	PollOutcomeNoSlot    PollOutcome = "no_slot"
)

// Poll is one run of the scheduler over a group of members.
type Poll struct {
	entity.BaseEntity
	Code              string         `db:"code" json:"code"`
	RequestedBy       *uuid.UUID     `db:"requested_by" json:"requested_by,omitempty"`
	ChannelID         string         `db:"channel_id" json:"channel_id"`
	Status            PollStatus     `db:"status" json:"status"`
	Outcome           PollOutcome    `db:"outcome" json:"outcome"`
	MinimumLengthMs   int64          `db:"minimum_length_ms" json:"minimum_length_ms"`
	Weeks             int            `db:"weeks" json:"weeks"`
	WindowStart       int64          `db:"window_start" json:"window_start"`
	WindowStartStrict int64          `db:"window_start_strict" json:"window_start_strict"`
	WindowEnd         int64          `db:"window_end" json:"window_end"`
	Members           pq.StringArray `db:"members" json:"members"`
	Message           string         `db:"message" json:"message"`
	Error             string         `db:"error" json:"error"`
}

func (p *Poll) Window() interval.Window {
	return interval.Window{
		Start:       p.WindowStart,
		StartStrict: p.WindowStartStrict,
		End:         p.WindowEnd,
	}
}

func (p *Poll) SetWindow(w interval.Window) {
	p.WindowStart = w.Start
	p.WindowStartStrict = w.StartStrict
	p.WindowEnd = w.End
}

// PollSession is one common free interval found by a poll, in order.
type PollSession struct {
	PollID   uuid.UUID `db:"poll_id" json:"poll_id"`
	Position int       `db:"position" json:"position"`
	StartMs  int64     `db:"start_ms" json:"start_ms"`
	EndMs    int64     `db:"end_ms" json:"end_ms"`
}

func (s PollSession) Interval() interval.Interval {
	return interval.Interval{Start: s.StartMs, End: s.EndMs}
}

type PollMissingMember struct {
	PollID   uuid.UUID `db:"poll_id" json:"poll_id"`
	Position int       `db:"position" json:"position"`
	MemberID string    `db:"member_id" json:"member_id"`
}
