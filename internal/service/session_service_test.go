package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/chasfatacademy/exam-backend/internal/config"
	"github.com/chasfatacademy/exam-backend/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClockTestService(t *testing.T) *SessionService {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return &SessionService{
		rdb:   rdb,
		grace: time.Minute,
		log:   zerolog.Nop(),
	}
}

func TestClockAgreesWithSessionCountdown(t *testing.T) {
	svc := newClockTestService(t)
	ctx := context.Background()

	// A fractional-second deadline is where truncation and round-up diverge.
	endsAt := time.Now().Add(90*time.Second + 900*time.Millisecond)
	session := &model.ExamSession{
		ID:     uuid.New(),
		Status: model.SessionStatusInProgress,
		EndsAt: &endsAt,
	}
	svc.cacheClock(ctx, session)

	fromStream, ok, err := svc.Clock(ctx, session.ID)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, session.RemainingSeconds(time.Now()), fromStream)
	assert.Equal(t, 91, fromStream)
}

func TestClockFloorsAtZero(t *testing.T) {
	svc := newClockTestService(t)
	ctx := context.Background()

	id := uuid.New()
	past := time.Now().Add(-10 * time.Second).UnixMilli()
	key := config.CacheKey.SessionClockKey(id.String())
	require.NoError(t, svc.rdb.Set(ctx, key, past, time.Minute).Err())

	remaining, ok, err := svc.Clock(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Zero(t, remaining)
}

func TestClockMissesWhenSessionNotRunning(t *testing.T) {
	svc := newClockTestService(t)

	_, ok, err := svc.Clock(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}
