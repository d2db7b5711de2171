package interval

import (
	"sort"

	"github.com/pkg/errors"
)

// RawInterval is one availability record as returned by a data source.
// Missing fields are nil.
type RawInterval struct {
	Start *int64 `json:"start"`
	End   *int64 `json:"end"`
}

// NewRawInterval builds a complete record.
func NewRawInterval(start, end int64) RawInterval {
	return RawInterval{Start: &start, End: &end}
}

// Window bounds a normalization.
//
// Start is the permissive lower bound (start of the day) used to query the
// source. StartStrict is the moment of the query: records ending at or before
// it are dropped and records starting before it are clipped to it. End is the
// upper bound: records starting at or after it are dropped and records ending
// after it are clipped to it.
type Window struct {
	Start       int64 `json:"start"`
	StartStrict int64 `json:"start_strict"`
	End         int64 `json:"end"`
}

// Validate checks that the window is not empty.
func (w Window) Validate() error {
	if w.StartStrict >= w.End {
		return errors.Wrapf(ErrInvalidInput, "window [%d, %d) is empty", w.StartStrict, w.End)
	}
	return nil
}

// Normalize turns the raw records of one party into its Availability.
//
// An empty record list means the party never filled in data and yields
// Absent. Otherwise the result is Present, possibly with no intervals when
// nothing falls inside the window. Degenerate records (start >= end) are
// skipped. Overlapping or touching records are coalesced.
//
// Normalizing the Raw form of a result again gives the same result, except
// for a present empty party: it has no records left and comes back Absent.
func Normalize(records []RawInterval, w Window) (Availability, error) {
	if err := w.Validate(); err != nil {
		return Availability{}, err
	}
	if len(records) == 0 {
		return Absent(), nil
	}

	kept := make(Party, 0, len(records))
	for i, rec := range records {
		if rec.Start == nil || rec.End == nil {
			return Availability{}, errors.Wrapf(ErrShape, "record %d: expected start and end fields", i)
		}
		start, end := *rec.Start, *rec.End
		if start >= end {
			continue
		}
		if end <= w.StartStrict || start >= w.End {
			continue
		}
		if end > w.End {
			end = w.End
		}
		if start < w.StartStrict {
			start = w.StartStrict
		}
		kept = append(kept, Interval{Start: start, End: end})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Start < kept[j].Start
	})

	return Present(coalesce(kept)), nil
}

// coalesce merges overlapping or touching intervals of a start-sorted list.
func coalesce(sorted Party) Party {
	if len(sorted) == 0 {
		return sorted
	}
	merged := Party{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if iv.Start <= last.End {
			if iv.End > last.End {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// Raw converts normalized intervals back into raw records.
func (p Party) Raw() []RawInterval {
	out := make([]RawInterval, len(p))
	for i, iv := range p {
		out[i] = NewRawInterval(iv.Start, iv.End)
	}
	return out
}
