package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionStatusIsTerminal(t *testing.T) {
	assert.False(t, SessionStatusCreated.IsTerminal())
	assert.False(t, SessionStatusInProgress.IsTerminal())
	assert.True(t, SessionStatusSubmitted.IsTerminal())
	assert.True(t, SessionStatusAutoSubmitted.IsTerminal())
	assert.True(t, SessionStatusExpired.IsTerminal())
}

func TestSessionStatusCanTransition(t *testing.T) {
	cases := []struct {
		name string
		from SessionStatus
		to   SessionStatus
		want bool
	}{
		{"created to in_progress", SessionStatusCreated, SessionStatusInProgress, true},
		{"created swept without starting", SessionStatusCreated, SessionStatusExpired, true},
		{"created cannot submit", SessionStatusCreated, SessionStatusSubmitted, false},
		{"created cannot auto submit", SessionStatusCreated, SessionStatusAutoSubmitted, false},
		{"in_progress to submitted", SessionStatusInProgress, SessionStatusSubmitted, true},
		{"in_progress to auto_submitted", SessionStatusInProgress, SessionStatusAutoSubmitted, true},
		{"in_progress to expired", SessionStatusInProgress, SessionStatusExpired, true},
		{"in_progress cannot restart", SessionStatusInProgress, SessionStatusCreated, false},
		{"submitted is final", SessionStatusSubmitted, SessionStatusExpired, false},
		{"auto_submitted is final", SessionStatusAutoSubmitted, SessionStatusSubmitted, false},
		{"expired is final", SessionStatusExpired, SessionStatusInProgress, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.from.CanTransition(tc.to))
		})
	}
}

func TestRemainingSeconds(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("no deadline yet", func(t *testing.T) {
		s := &ExamSession{Status: SessionStatusCreated}
		assert.Equal(t, 0, s.RemainingSeconds(now))
	})

	t.Run("full hour left", func(t *testing.T) {
		endsAt := now.Add(time.Hour)
		s := &ExamSession{Status: SessionStatusInProgress, EndsAt: &endsAt}
		assert.Equal(t, 3600, s.RemainingSeconds(now))
	})

	t.Run("fraction rounds up", func(t *testing.T) {
		endsAt := now.Add(1500 * time.Millisecond)
		s := &ExamSession{Status: SessionStatusInProgress, EndsAt: &endsAt}
		assert.Equal(t, 2, s.RemainingSeconds(now))
	})

	t.Run("exactly at deadline", func(t *testing.T) {
		endsAt := now
		s := &ExamSession{Status: SessionStatusInProgress, EndsAt: &endsAt}
		assert.Equal(t, 0, s.RemainingSeconds(now))
	})

	t.Run("past deadline floors at zero", func(t *testing.T) {
		endsAt := now.Add(-5 * time.Minute)
		s := &ExamSession{Status: SessionStatusInProgress, EndsAt: &endsAt}
		assert.Equal(t, 0, s.RemainingSeconds(now))
	})
}

func TestOverdue(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	grace := time.Minute

	t.Run("no deadline is never overdue", func(t *testing.T) {
		s := &ExamSession{Status: SessionStatusCreated}
		assert.False(t, s.Overdue(now, grace))
	})

	t.Run("within grace", func(t *testing.T) {
		endsAt := now.Add(-30 * time.Second)
		s := &ExamSession{EndsAt: &endsAt}
		assert.False(t, s.Overdue(now, grace))
	})

	t.Run("exactly at grace boundary", func(t *testing.T) {
		endsAt := now.Add(-time.Minute)
		s := &ExamSession{EndsAt: &endsAt}
		assert.False(t, s.Overdue(now, grace))
	})

	t.Run("past grace", func(t *testing.T) {
		endsAt := now.Add(-61 * time.Second)
		s := &ExamSession{EndsAt: &endsAt}
		assert.True(t, s.Overdue(now, grace))
	})
}
