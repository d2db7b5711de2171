package interval

import (
	"github.com/pkg/errors"
)

// IntersectAvailability drops absent parties and intersects the rest.
func IntersectAvailability(avail []Availability, minimumLength int64) (Party, error) {
	parties := make([]Party, 0, len(avail))
	for _, a := range avail {
		if p, ok := a.Intervals(); ok {
			parties = append(parties, p)
		}
	}
	if len(parties) == 0 && len(avail) > 0 {
		return nil, errors.Wrap(ErrInvalidInput, "no party filled in availability")
	}
	return Intersect(parties, minimumLength)
}

// Intersect returns the maximal intervals during which every party is
// available, keeping those at least minimumLength long. The result is sorted
// by start and pairwise disjoint.
//
// Every party keeps a cursor on its current interval. Each step looks at the
// overlap of all current intervals, then advances the party whose current
// interval ends first. When that party has nothing left no later overlap is
// possible and the sweep stops.
func Intersect(parties []Party, minimumLength int64) (Party, error) {
	if len(parties) == 0 {
		return nil, errors.Wrap(ErrInvalidInput, "at least one party is required")
	}
	if minimumLength <= 0 {
		return nil, errors.Wrapf(ErrInvalidInput, "minimum length must be strictly positive, got %d", minimumLength)
	}
	for i, p := range parties {
		if err := p.Validate(); err != nil {
			return nil, errors.Wrapf(err, "party %d", i)
		}
		if len(p) == 0 {
			return Party{}, nil
		}
	}

	n := len(parties)
	cursors := make([]int, n)
	starts := make([]int64, n)
	ends := make([]int64, n)
	for i, p := range parties {
		starts[i] = p[0].Start
		ends[i] = p[0].End
	}

	found := Party{}
	for {
		start, end := starts[0], ends[0]
		limiting := 0
		for i := 1; i < n; i++ {
			if starts[i] > start {
				start = starts[i]
			}
			if ends[i] < end {
				end = ends[i]
				limiting = i
			}
		}

		if overlap := (Interval{Start: start, End: end}); overlap.AtLeast(minimumLength) {
			if last := len(found) - 1; last >= 0 && start <= found[last].End {
				return nil, errors.Wrapf(ErrInvalidInput, "sweep produced [%d, %d] after [%d, %d]",
					start, end, found[last].Start, found[last].End)
			}
			found = append(found, overlap)
		}

		next := cursors[limiting] + 1
		if next >= len(parties[limiting]) {
			break
		}
		cursors[limiting] = next
		starts[limiting] = parties[limiting][next].Start
		ends[limiting] = parties[limiting][next].End
	}

	return found, nil
}
