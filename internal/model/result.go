package model

import (
	"time"

	"github.com/google/uuid"
)

// Result is the immutable outcome of exactly one scoring pass over a
// terminal session's frozen answers.
type Result struct {
	ID         uuid.UUID `json:"id"`
	SessionID  uuid.UUID `json:"session_id"`
	RawScore   float64   `json:"raw_score"`
	Percentage float64   `json:"percentage"`
	Pass       bool      `json:"pass"`
	CreatedAt  time.Time `json:"created_at"`
}
