package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const CommandStartPoll = "-startpoll"

// Options are the tunables of one poll.
type Options struct {
	MinimumLength time.Duration
	Weeks         int
}

// CommandError is a user mistake in a chat command. Its message is sent back
// to the channel as is.
type CommandError struct {
	Message string
}

func (e *CommandError) Error() string {
	return e.Message
}

func commandErrorf(format string, args ...any) *CommandError {
	return &CommandError{Message: fmt.Sprintf(format, args...)}
}

// ParseMinimumLength parses an HH:MM duration. Both parts must be
// non-negative integers and the total must be positive.
func ParseMinimumLength(s string) (time.Duration, error) {
	invalid := commandErrorf("Invalid format. Should conform to HH:MM, where HH and MM are both non negative.")

	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, invalid
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, invalid
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 {
		return 0, invalid
	}

	d := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
	if d <= 0 {
		return 0, commandErrorf("Minimum session length must be strictly positive, but received %s. Try over.", s)
	}
	return d, nil
}

// ParseCommand reads the -t HH:MM and -w n_weeks options of a -startpoll
// command. Options that are absent keep their value from defaults. Only the
// first occurrence of each flag is considered.
func ParseCommand(content string, defaults Options) (Options, error) {
	opts := defaults
	tokens := strings.Fields(content)

	if i := indexOf(tokens, "-t"); i >= 0 {
		if i == len(tokens)-1 {
			return Options{}, commandErrorf("-t option expected an argument. Start over.")
		}
		d, err := ParseMinimumLength(tokens[i+1])
		if err != nil {
			return Options{}, err
		}
		opts.MinimumLength = d
	}

	if i := indexOf(tokens, "-w"); i >= 0 {
		if i == len(tokens)-1 {
			return Options{}, commandErrorf("-w option expected an argument afterwards. Start over.")
		}
		raw := tokens[i+1]
		weeks, err := strconv.Atoi(raw)
		if err != nil {
			return Options{}, commandErrorf("Option -w expected an integer, but received %s instead. Try over.", raw)
		}
		if weeks <= 0 {
			return Options{}, commandErrorf("Option -w expects a strictly positive integer, but received %d. Try over.", weeks)
		}
		opts.Weeks = weeks
	}

	return opts, nil
}

func indexOf(tokens []string, flag string) int {
	for i, tok := range tokens {
		if tok == flag {
			return i
		}
	}
	return -1
}
