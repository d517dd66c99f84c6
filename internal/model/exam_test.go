package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowContains(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	t.Run("open ended window accepts anything", func(t *testing.T) {
		e := &Exam{}
		assert.True(t, e.WindowContains(start))
	})

	t.Run("before start", func(t *testing.T) {
		e := &Exam{StartTime: &start, EndTime: &end}
		assert.False(t, e.WindowContains(start.Add(-time.Second)))
	})

	t.Run("at start", func(t *testing.T) {
		e := &Exam{StartTime: &start, EndTime: &end}
		assert.True(t, e.WindowContains(start))
	})

	t.Run("inside window", func(t *testing.T) {
		e := &Exam{StartTime: &start, EndTime: &end}
		assert.True(t, e.WindowContains(start.Add(time.Hour)))
	})

	t.Run("at end", func(t *testing.T) {
		e := &Exam{StartTime: &start, EndTime: &end}
		assert.True(t, e.WindowContains(end))
	})

	t.Run("after end", func(t *testing.T) {
		e := &Exam{StartTime: &start, EndTime: &end}
		assert.False(t, e.WindowContains(end.Add(time.Second)))
	})
}

func TestDeadlineFrom(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	t.Run("full duration fits inside window", func(t *testing.T) {
		e := &Exam{DurationMinutes: 60, EndTime: &end}
		got := e.DeadlineFrom(start)
		assert.Equal(t, start.Add(time.Hour), got)
	})

	t.Run("late start is clipped to window end", func(t *testing.T) {
		e := &Exam{DurationMinutes: 60, EndTime: &end}
		lateStart := end.Add(-10 * time.Minute)
		assert.Equal(t, end, e.DeadlineFrom(lateStart))
	})

	t.Run("no window end means full duration", func(t *testing.T) {
		e := &Exam{DurationMinutes: 90}
		assert.Equal(t, start.Add(90*time.Minute), e.DeadlineFrom(start))
	})
}
