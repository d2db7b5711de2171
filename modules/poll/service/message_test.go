package service

import (
	"testing"
	"time"

	"go-poll-scheduler/core/interval"

	"github.com/stretchr/testify/assert"
)

var paris = time.FixedZone("UTC+2", 2*3600)

func at(day, hour int) int64 {
	return time.Date(2024, time.June, day, hour, 0, 0, 0, time.UTC).UnixMilli()
}

func TestFormatSession(t *testing.T) {
	iv := interval.Interval{Start: at(3, 16), End: at(3, 20)}
	assert.Equal(t, "Monday the 3 of June from 18:00 to 22:00", FormatSession(iv, paris))
	assert.Equal(t, "Monday the 3 of June from 16:00 to 20:00", FormatSession(iv, time.UTC))
}

func TestScheduledMessage(t *testing.T) {
	iv := interval.Interval{Start: at(3, 16), End: at(3, 20)}
	assert.Equal(t,
		"Based on members availability, next session would be **Monday the 3 of June from 18:00 to 22:00**",
		ScheduledMessage(iv, paris))
}

func TestNoSlotMessage(t *testing.T) {
	assert.Equal(t, "Based on members availability, a game can't be scheduled in the next 1 week", NoSlotMessage(1))
	assert.Equal(t, "Based on members availability, a game can't be scheduled in the next 3 weeks", NoSlotMessage(3))
}

func TestRenderMessages(t *testing.T) {
	sessions := interval.Party{
		{Start: at(3, 16), End: at(3, 20)},
		{Start: at(4, 16), End: at(4, 20)},
		{Start: at(5, 16), End: at(5, 20)},
	}

	got := RenderMessages(sessions, 1, []string{"42"}, paris, 1)
	assert.Equal(t, []string{
		"Based on members availability, next session would be **Monday the 3 of June from 18:00 to 22:00**",
		"Other possible sessions:\n- Tuesday the 4 of June from 18:00 to 22:00",
		"<@42> did not fill availabilities.",
	}, got)

	got = RenderMessages(sessions, 1, nil, paris, 0)
	assert.Len(t, got, 1)

	got = RenderMessages(nil, 2, []string{"7", "8"}, paris, 4)
	assert.Equal(t, []string{
		"Based on members availability, a game can't be scheduled in the next 2 weeks",
		"<@7> did not fill availabilities.",
		"<@8> did not fill availabilities.",
	}, got)
}
