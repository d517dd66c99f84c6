package service

import (
	"testing"

	"github.com/chasfatacademy/exam-backend/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func makeKey(entries ...model.KeyEntry) (map[uuid.UUID]model.KeyEntry, []uuid.UUID) {
	key := make(map[uuid.UUID]model.KeyEntry, len(entries))
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		id := uuid.New()
		key[id] = e
		ids = append(ids, id)
	}
	return key, ids
}

func TestGradeAllCorrect(t *testing.T) {
	key, ids := makeKey(
		model.KeyEntry{CorrectOption: "A", Points: 2},
		model.KeyEntry{CorrectOption: "C", Points: 3},
	)
	answers := map[uuid.UUID]string{ids[0]: "A", ids[1]: "C"}

	score := Grade(answers, key, 50)
	assert.Equal(t, 5.0, score.RawScore)
	assert.Equal(t, 100.0, score.Percentage)
	assert.True(t, score.Pass)
}

func TestGradePartial(t *testing.T) {
	key, ids := makeKey(
		model.KeyEntry{CorrectOption: "A", Points: 1},
		model.KeyEntry{CorrectOption: "B", Points: 1},
		model.KeyEntry{CorrectOption: "C", Points: 1},
		model.KeyEntry{CorrectOption: "D", Points: 1},
	)
	answers := map[uuid.UUID]string{
		ids[0]: "A",
		ids[1]: "C", // wrong
		ids[2]: "C",
		// ids[3] unanswered
	}

	score := Grade(answers, key, 50)
	assert.Equal(t, 2.0, score.RawScore)
	assert.Equal(t, 50.0, score.Percentage)
	assert.True(t, score.Pass, "threshold is inclusive")
}

func TestGradeBelowThreshold(t *testing.T) {
	key, ids := makeKey(
		model.KeyEntry{CorrectOption: "A", Points: 1},
		model.KeyEntry{CorrectOption: "B", Points: 1},
	)
	answers := map[uuid.UUID]string{ids[0]: "A", ids[1]: "A"}

	score := Grade(answers, key, 60)
	assert.Equal(t, 50.0, score.Percentage)
	assert.False(t, score.Pass)
}

func TestGradeNoAnswers(t *testing.T) {
	key, _ := makeKey(
		model.KeyEntry{CorrectOption: "TRUE", Points: 1},
		model.KeyEntry{CorrectOption: "FALSE", Points: 1},
	)

	score := Grade(nil, key, 50)
	assert.Equal(t, 0.0, score.RawScore)
	assert.Equal(t, 0.0, score.Percentage)
	assert.False(t, score.Pass)
}

func TestGradeIgnoresCaseAndWhitespace(t *testing.T) {
	key, ids := makeKey(model.KeyEntry{CorrectOption: "True", Points: 1})
	answers := map[uuid.UUID]string{ids[0]: "  tRuE "}

	score := Grade(answers, key, 50)
	assert.Equal(t, 100.0, score.Percentage)
}

func TestGradeStrayAnswerEarnsNothing(t *testing.T) {
	key, ids := makeKey(model.KeyEntry{CorrectOption: "A", Points: 1})
	answers := map[uuid.UUID]string{
		ids[0]:     "A",
		uuid.New(): "A", // not in the key
	}

	score := Grade(answers, key, 50)
	assert.Equal(t, 1.0, score.RawScore)
	assert.Equal(t, 100.0, score.Percentage)
}

func TestGradeZeroPointQuestionCountsAsOne(t *testing.T) {
	key, ids := makeKey(
		model.KeyEntry{CorrectOption: "A", Points: 0},
		model.KeyEntry{CorrectOption: "B", Points: 1},
	)
	answers := map[uuid.UUID]string{ids[0]: "A"}

	score := Grade(answers, key, 50)
	assert.Equal(t, 1.0, score.RawScore)
	assert.Equal(t, 50.0, score.Percentage)
}

func TestGradeEmptyKey(t *testing.T) {
	score := Grade(nil, map[uuid.UUID]model.KeyEntry{}, 50)
	assert.Equal(t, 0.0, score.Percentage)
	assert.False(t, score.Pass)
}

func TestGradeDeterministic(t *testing.T) {
	key, ids := makeKey(
		model.KeyEntry{CorrectOption: "A", Points: 2},
		model.KeyEntry{CorrectOption: "B", Points: 3},
		model.KeyEntry{CorrectOption: "C", Points: 5},
	)
	answers := map[uuid.UUID]string{ids[0]: "A", ids[2]: "C"}

	first := Grade(answers, key, 70)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Grade(answers, key, 70))
	}
}
