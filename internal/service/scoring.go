package service

import (
	"strings"

	"github.com/chasfatacademy/exam-backend/internal/model"
	"github.com/google/uuid"
)

// Score is the outcome of one grading pass.
type Score struct {
	RawScore   float64
	Percentage float64
	Pass       bool
}

// Grade scores frozen answers against an exam's answer key. It is
// deterministic: the same answers, key and threshold always produce the same
// score. Unanswered questions and answers to questions outside the key earn
// nothing; option comparison ignores case and surrounding whitespace.
func Grade(answers map[uuid.UUID]string, key map[uuid.UUID]model.KeyEntry, passingScore float64) Score {
	var earned, total float64
	for qID, entry := range key {
		points := entry.Points
		if points <= 0 {
			points = 1
		}
		total += points
		given, ok := answers[qID]
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(given), strings.TrimSpace(entry.CorrectOption)) {
			earned += points
		}
	}

	var pct float64
	if total > 0 {
		pct = earned / total * 100
	}

	return Score{
		RawScore:   earned,
		Percentage: pct,
		Pass:       pct >= passingScore,
	}
}
