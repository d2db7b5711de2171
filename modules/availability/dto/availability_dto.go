package dto

import (
	"time"

	"go-poll-scheduler/core/interval"
)

// EventRecord is one entry of the availability source's /events response.
// Start and End are epoch milliseconds; nil means the field was missing.
type EventRecord struct {
	Start      *int64 `json:"start"`
	End        *int64 `json:"end"`
	Repeatable int    `json:"repeatable,omitempty"`
	ID         string `json:"id,omitempty"`
}

func ToRawIntervals(records []EventRecord) []interval.RawInterval {
	raw := make([]interval.RawInterval, len(records))
	for i, r := range records {
		raw[i] = interval.RawInterval{Start: r.Start, End: r.End}
	}
	return raw
}

type IntervalDTO struct {
	Start   int64     `json:"start"`
	End     int64     `json:"end"`
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

func NewIntervalDTO(iv interval.Interval) IntervalDTO {
	return IntervalDTO{
		Start:   iv.Start,
		End:     iv.End,
		StartAt: time.UnixMilli(iv.Start).UTC(),
		EndAt:   time.UnixMilli(iv.End).UTC(),
	}
}

type AvailabilityResponse struct {
	PartyID     string        `json:"party_id"`
	HasData     bool          `json:"has_data"`
	From        int64         `json:"from"`
	FromStrict  int64         `json:"from_strict"`
	To          int64         `json:"to"`
	Intervals   []IntervalDTO `json:"intervals"`
	TotalLength int64         `json:"total_length_ms"`
}

func NewAvailabilityResponse(partyID string, w interval.Window, avail interval.Availability) *AvailabilityResponse {
	resp := &AvailabilityResponse{
		PartyID:    partyID,
		From:       w.Start,
		FromStrict: w.StartStrict,
		To:         w.End,
		Intervals:  []IntervalDTO{},
	}
	party, ok := avail.Intervals()
	if !ok {
		return resp
	}
	resp.HasData = true
	for _, iv := range party {
		resp.Intervals = append(resp.Intervals, NewIntervalDTO(iv))
		resp.TotalLength += int64(iv.Length())
	}
	return resp
}
