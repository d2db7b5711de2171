package constants

import "time"

// Echo context keys
const (
	ContextTokenData = "token_data"
	ContextRequestID = "request_id"
)

// Timeouts
const (
	DefaultTimeout        = 30 * time.Second
	DefaultRequestTimeout = 15 * time.Second
	ShutdownTimeout       = 10 * time.Second
)

// Database pool
const (
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
)

// Redis keys
const (
	RedisKeyAvailability = "availability:%s:%d:%d" // party id, from, to
)

// Poll defaults that are not configurable
const (
	// PollRecentLimit caps GET /polls when no page size is given.
	PollRecentLimit = 20
	// PollCodeLength is the length of the short code shown to chat users.
	PollCodeLength = 7
)

// Task types
const (
	TaskPollRun = "poll:run"
)
