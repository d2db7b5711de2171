package service

import (
	"fmt"
	"time"

	"go-poll-scheduler/core/interval"
)

// FormatSession renders iv as "Monday the 3 of June from 18:00 to 22:00" in loc.
func FormatSession(iv interval.Interval, loc *time.Location) string {
	start := time.Unix(iv.Start/1000, 0).In(loc)
	end := time.Unix(iv.End/1000, 0).In(loc)
	return fmt.Sprintf("%s the %d of %s from %s to %s",
		start.Weekday(), start.Day(), start.Month(), start.Format("15:04"), end.Format("15:04"))
}

func ScheduledMessage(next interval.Interval, loc *time.Location) string {
	return "Based on members availability, next session would be **" + FormatSession(next, loc) + "**"
}

func NoSlotMessage(weeks int) string {
	msg := fmt.Sprintf("Based on members availability, a game can't be scheduled in the next %d week", weeks)
	if weeks > 1 {
		msg += "s"
	}
	return msg
}

func MissingMemberMessage(memberID string) string {
	return fmt.Sprintf("<@%s> did not fill availabilities.", memberID)
}

// RenderMessages returns the chat replies for a finished poll: the outcome
// line, up to maxOthers further sessions, then one line per missing member.
func RenderMessages(sessions interval.Party, weeks int, missing []string, loc *time.Location, maxOthers int) []string {
	var out []string
	if len(sessions) == 0 {
		out = append(out, NoSlotMessage(weeks))
	} else {
		out = append(out, ScheduledMessage(sessions[0], loc))
		others := sessions[1:]
		if maxOthers >= 0 && len(others) > maxOthers {
			others = others[:maxOthers]
		}
		if len(others) > 0 {
			msg := "Other possible sessions:"
			for _, iv := range others {
				msg += "\n- " + FormatSession(iv, loc)
			}
			out = append(out, msg)
		}
	}
	for _, id := range missing {
		out = append(out, MissingMemberMessage(id))
	}
	return out
}
