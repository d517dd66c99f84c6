package model

import (
	"time"

	"github.com/google/uuid"
)

// Answer is one (session, question) cell of the answer ledger. Later writes
// overwrite earlier values by server arrival order; rows are never deleted
// while the session is live and are frozen once it terminates.
type Answer struct {
	SessionID      uuid.UUID `json:"session_id"`
	QuestionID     uuid.UUID `json:"question_id"`
	Value          string    `json:"value"`
	LastModifiedAt time.Time `json:"last_modified_at"`
}

// SaveAnswerRequest is the payload for saving a single answer.
type SaveAnswerRequest struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	Answer     string    `json:"answer" binding:"required,max=10000"`
}

// BatchAnswerEntry is one entry of a batch flush.
type BatchAnswerEntry struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	Answer     string    `json:"answer" binding:"required,max=10000"`
}

// SaveAnswerBatchRequest is the payload for an atomic batch flush.
type SaveAnswerBatchRequest struct {
	Answers []BatchAnswerEntry `json:"answers" binding:"required,min=1,max=200,dive"`
}
