package service

import (
	"testing"
	"time"

	"github.com/chasfatacademy/exam-backend/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func writableSession(studentID int, status model.SessionStatus, endsIn time.Duration) *model.ExamSession {
	endsAt := time.Now().Add(endsIn)
	return &model.ExamSession{
		ID:        uuid.New(),
		ExamID:    uuid.New(),
		StudentID: studentID,
		Status:    status,
		EndsAt:    &endsAt,
	}
}

func TestAdmitWriteOwnership(t *testing.T) {
	session := writableSession(1, model.SessionStatusInProgress, time.Hour)
	assert.ErrorIs(t, admitWrite(session, 2, time.Now()), ErrNotSessionOwner)
	assert.NoError(t, admitWrite(session, 1, time.Now()))
}

func TestAdmitWriteByStatus(t *testing.T) {
	cases := []struct {
		status model.SessionStatus
		want   error
	}{
		{model.SessionStatusCreated, ErrSessionNotStarted},
		{model.SessionStatusInProgress, nil},
		{model.SessionStatusSubmitted, ErrSessionTerminal},
		{model.SessionStatusAutoSubmitted, ErrSessionTerminal},
		{model.SessionStatusExpired, ErrSessionTerminal},
	}
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			session := writableSession(1, tc.status, time.Hour)
			err := admitWrite(session, 1, time.Now())
			if tc.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestAdmitWriteRejectsOverdueClock(t *testing.T) {
	// A session past its deadline is still IN_PROGRESS until the sweep or a
	// lazy finalize catches it. Writes must already be refused in that gap.
	session := writableSession(1, model.SessionStatusInProgress, -time.Second)
	assert.ErrorIs(t, admitWrite(session, 1, time.Now()), errClockExpired)

	// Exactly at the deadline the clock reads zero and the write is refused.
	now := time.Now()
	session.EndsAt = &now
	assert.ErrorIs(t, admitWrite(session, 1, now), errClockExpired)
}

func TestAdmitWriteAllowsWithTimeLeft(t *testing.T) {
	session := writableSession(1, model.SessionStatusInProgress, 500*time.Millisecond)
	assert.NoError(t, admitWrite(session, 1, time.Now()))
}
