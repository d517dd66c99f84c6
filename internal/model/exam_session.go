package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates exam session states.
//
// CREATED: access gate passed, questions not yet fetched.
// IN_PROGRESS: clock running, answers accepted.
// SUBMITTED: student submitted explicitly.
// AUTO_SUBMITTED: timer expired with the client still connected.
// EXPIRED: swept after the deadline plus grace with no submission.
//
// The last three are terminal: the answer ledger is frozen and the session
// never transitions again.
type SessionStatus string

const (
	SessionStatusCreated       SessionStatus = "CREATED"
	SessionStatusInProgress    SessionStatus = "IN_PROGRESS"
	SessionStatusSubmitted     SessionStatus = "SUBMITTED"
	SessionStatusAutoSubmitted SessionStatus = "AUTO_SUBMITTED"
	SessionStatusExpired       SessionStatus = "EXPIRED"
)

// IsTerminal reports whether the status admits no further transitions.
func (s SessionStatus) IsTerminal() bool {
	switch s {
	case SessionStatusSubmitted, SessionStatusAutoSubmitted, SessionStatusExpired:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is a legal step of the
// session lifecycle.
func (s SessionStatus) CanTransition(next SessionStatus) bool {
	switch s {
	case SessionStatusCreated:
		// A session abandoned before its first question fetch can still be
		// swept once the exam window closes.
		return next == SessionStatusInProgress || next == SessionStatusExpired
	case SessionStatusInProgress:
		return next.IsTerminal()
	}
	return false
}

// ExamSession is one student's timed attempt at one exam.
// StartedAt is the server clock at the first question fetch and is the sole
// timing authority; EndsAt is fixed at that same moment.
type ExamSession struct {
	ID            uuid.UUID     `json:"id"`
	ExamID        uuid.UUID     `json:"exam_id"`
	StudentID     int           `json:"student_id"`
	AttemptNumber int           `json:"attempt_number"`
	Status        SessionStatus `json:"status"`
	StartedAt     *time.Time    `json:"started_at,omitempty"`
	EndsAt        *time.Time    `json:"ends_at,omitempty"`
	SubmittedAt   *time.Time    `json:"submitted_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// RemainingSeconds computes whole seconds left on the session clock at the
// given instant, floored at zero. A session that has not started yet has its
// full duration ahead of it, which the caller resolves from the exam, so
// this returns 0 only when a deadline exists and has passed.
func (s *ExamSession) RemainingSeconds(now time.Time) int {
	if s.EndsAt == nil {
		return 0
	}
	remaining := s.EndsAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	// Round up so the client never displays 0 while the server still
	// accepts answers.
	return int((remaining + time.Second - 1) / time.Second)
}

// Overdue reports whether the session clock ran out more than grace ago.
func (s *ExamSession) Overdue(now time.Time, grace time.Duration) bool {
	if s.EndsAt == nil {
		return false
	}
	return now.Sub(*s.EndsAt) > grace
}
