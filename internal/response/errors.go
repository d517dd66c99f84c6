package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrStudentInactive    ErrCode = "STUDENT_INACTIVE"
	ErrSessionActive      ErrCode = "LOGIN_ALREADY_ACTIVE"
	ErrSessionInvalidated ErrCode = "LOGIN_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrExaminerOnly      ErrCode = "EXAMINER_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Access policy (exam entry) ────────────────────────────────────
	ErrWrongPassword     ErrCode = "WRONG_PASSWORD"
	ErrAttemptsExhausted ErrCode = "ATTEMPTS_EXHAUSTED"
	ErrOutsideWindow     ErrCode = "OUTSIDE_WINDOW"
	ErrExamNotPublished  ErrCode = "EXAM_NOT_PUBLISHED"
	ErrExamNotDraft      ErrCode = "EXAM_NOT_DRAFT"
	ErrNoQuestions       ErrCode = "NO_QUESTIONS"

	// ─── Session lifecycle ─────────────────────────────────────────────
	ErrSessionTerminal    ErrCode = "SESSION_TERMINAL"
	ErrSessionNotStarted  ErrCode = "SESSION_NOT_STARTED"
	ErrDeadlineNotReached ErrCode = "DEADLINE_NOT_REACHED"
	ErrUnknownQuestion    ErrCode = "UNKNOWN_QUESTION"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid matric number or password."
	case ErrStudentInactive:
		return "This account has been deactivated. Contact your examiner."
	case ErrSessionActive:
		return "You are already logged in on another device."
	case ErrSessionInvalidated:
		return "Your login has expired. Please sign in again."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid or expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have access to this resource."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrExaminerOnly:
		return "This resource is restricted to examiners."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid identifier format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Access policy ─────────────────────────────────────────────────
	case ErrWrongPassword:
		return "Incorrect exam password."
	case ErrAttemptsExhausted:
		return "You have used all permitted attempts for this exam."
	case ErrOutsideWindow:
		return "This exam is not open at the current time."
	case ErrExamNotPublished:
		return "This exam has not been published."
	case ErrExamNotDraft:
		return "Published exams cannot be modified."
	case ErrNoQuestions:
		return "This exam has no questions and cannot be published."

	// ─── Session lifecycle ─────────────────────────────────────────────
	case ErrSessionTerminal:
		return "This exam session has ended. No further changes are accepted."
	case ErrSessionNotStarted:
		return "This exam session has not been started yet."
	case ErrDeadlineNotReached:
		return "This exam session still has time remaining."
	case ErrUnknownQuestion:
		return "One or more answers reference a question that is not part of this exam."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
