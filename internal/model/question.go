package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

// QuestionType enumerates supported question kinds.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeTrueFalse      QuestionType = "TRUE_FALSE"
)

// Question represents a single exam question with its grading key.
type Question struct {
	ID            uuid.UUID       `json:"id"`
	ExamID        uuid.UUID       `json:"exam_id"`
	QuestionText  string          `json:"question_text"`
	QuestionType  QuestionType    `json:"question_type"`
	Options       json.RawMessage `json:"options"`
	CorrectOption string          `json:"-"`
	Points        float64         `json:"points"`
	OrderNum      int             `json:"order_num"`
}

// QuestionForStudent is a question stripped of its answer key, as delivered
// to an in-progress session.
type QuestionForStudent struct {
	ID           uuid.UUID       `json:"id"`
	QuestionText string          `json:"question_text"`
	QuestionType QuestionType    `json:"question_type"`
	Options      json.RawMessage `json:"options"`
	Points       float64         `json:"points"`
	OrderNum     int             `json:"order_num"`
}

// ForStudent strips the grading key off a question.
func (q *Question) ForStudent() QuestionForStudent {
	return QuestionForStudent{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		QuestionType: q.QuestionType,
		Options:      q.Options,
		Points:       q.Points,
		OrderNum:     q.OrderNum,
	}
}

// KeyEntry is one cell of an exam's grading key.
type KeyEntry struct {
	CorrectOption string
	Points        float64
}

// AddQuestionRequest is the payload for adding a question to a DRAFT exam.
type AddQuestionRequest struct {
	QuestionText  string          `json:"question_text" binding:"required,min=1,max=5000"`
	QuestionType  string          `json:"question_type" binding:"required,oneof=MULTIPLE_CHOICE TRUE_FALSE"`
	Options       json.RawMessage `json:"options" binding:"required"`
	CorrectOption string          `json:"correct_option" binding:"required,max=10"`
	Points        float64         `json:"points" binding:"omitempty,min=0"`
	OrderNum      int             `json:"order_num" binding:"min=0"`
}

// ReplaceQuestionsRequest is the payload for bulk replacing an exam's questions.
type ReplaceQuestionsRequest struct {
	Questions []AddQuestionRequest `json:"questions" binding:"dive"`
}
