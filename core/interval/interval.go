// Package interval computes the periods during which several parties are all
// available at once.
//
// Intervals are plain int64 pairs; the package has no notion of time zones or
// calendars. The service layer feeds it epoch milliseconds.
package interval

import (
	"github.com/pkg/errors"
)

var (
	// ErrInvalidInput is returned when the intersection or normalization input
	// cannot be processed as given: no parties, a non-positive minimum length,
	// a malformed party or an empty window.
	ErrInvalidInput = errors.New("invalid interval input")

	// ErrShape is returned when raw records cannot be read as start/end pairs.
	ErrShape = errors.New("raw interval data has an invalid shape")
)

// Interval is a period [Start, End] with Start < End.
type Interval struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Length returns End - Start. It is unsigned so that an interval spanning
// most of the int64 range does not wrap.
func (iv Interval) Length() uint64 {
	if iv.End <= iv.Start {
		return 0
	}
	return uint64(iv.End - iv.Start)
}

// AtLeast reports whether iv is valid and at least minimumLength long.
func (iv Interval) AtLeast(minimumLength int64) bool {
	if !iv.Valid() {
		return false
	}
	return minimumLength <= 0 || iv.Length() >= uint64(minimumLength)
}

// Valid reports whether the interval is non-degenerate.
func (iv Interval) Valid() bool {
	return iv.Start < iv.End
}

// Contains reports whether other lies entirely within iv.
func (iv Interval) Contains(other Interval) bool {
	return iv.Start <= other.Start && other.End <= iv.End
}

// Party is the availability of one party: valid intervals sorted by start,
// with no two intervals sharing a point.
type Party []Interval

// Validate checks the Party invariant.
func (p Party) Validate() error {
	for i, iv := range p {
		if !iv.Valid() {
			return errors.Wrapf(ErrInvalidInput, "interval %d [%d, %d] is degenerate", i, iv.Start, iv.End)
		}
		if i > 0 && p[i-1].End >= iv.Start {
			return errors.Wrapf(ErrInvalidInput, "interval %d [%d, %d] overlaps or touches interval %d [%d, %d]",
				i, iv.Start, iv.End, i-1, p[i-1].Start, p[i-1].End)
		}
	}
	return nil
}

// FilterByLength returns the intervals of p at least minimumLength long.
func (p Party) FilterByLength(minimumLength int64) Party {
	out := make(Party, 0, len(p))
	for _, iv := range p {
		if iv.AtLeast(minimumLength) {
			out = append(out, iv)
		}
	}
	return out
}

// Availability is either the intervals a party submitted or the fact that the
// party submitted nothing at all. An absent party is left out of the
// intersection; a present party with no intervals makes it empty.
type Availability struct {
	intervals Party
	present   bool
}

// Absent returns the availability of a party that never filled in any data.
func Absent() Availability {
	return Availability{}
}

// Present wraps the intervals of a party that did submit data.
func Present(p Party) Availability {
	if p == nil {
		p = Party{}
	}
	return Availability{intervals: p, present: true}
}

// Intervals returns the party's intervals and whether the party has data.
func (a Availability) Intervals() (Party, bool) {
	return a.intervals, a.present
}

// IsPresent reports whether the party submitted data.
func (a Availability) IsPresent() bool {
	return a.present
}
