package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenRevoked       ErrCode = "TOKEN_REVOKED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrAdminAccessOnly ErrCode = "ADMIN_ACCESS_ONLY"
	ErrNotSessionOwner ErrCode = "NOT_SESSION_OWNER"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrInvalidMonth   ErrCode = "INVALID_MONTH"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"

	// ─── Quiz sessions ─────────────────────────────────────────────────
	ErrQuizNotFound      ErrCode = "QUIZ_NOT_FOUND"
	ErrQuizNotOpen       ErrCode = "QUIZ_NOT_OPEN"
	ErrQuizExpired       ErrCode = "QUIZ_EXPIRED"
	ErrNoQuestions       ErrCode = "NO_QUESTIONS"
	ErrInvalidAnswer     ErrCode = "INVALID_ANSWER"
	ErrIndexOutOfRange   ErrCode = "INDEX_OUT_OF_RANGE"
	ErrSessionNotFound   ErrCode = "SESSION_NOT_FOUND"
	ErrSessionSubmitted  ErrCode = "SESSION_SUBMITTED"
	ErrSessionInProgress ErrCode = "SESSION_IN_PROGRESS"
	ErrPersistFailed     ErrCode = "PERSIST_FAILED"

	// ─── Exports ───────────────────────────────────────────────────────
	ErrExportNotFound ErrCode = "EXPORT_NOT_FOUND"
	ErrExportNotReady ErrCode = "EXPORT_NOT_READY"

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
		return "Invalid username/email or password."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid or expired."
	case ErrTokenRevoked:
		return "You have been logged out. Please log in again."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."
	case ErrNotSessionOwner:
		return "This quiz session belongs to another user."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrInvalidMonth:
		return "Month must be formatted as YYYY-MM."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrDependencyExists:
		return "Resource cannot be deleted while other data depends on it."

	// ─── Quiz sessions ─────────────────────────────────────────────────
	case ErrQuizNotFound:
		return "Quiz not found."
	case ErrQuizNotOpen:
		return "This quiz is not open yet."
	case ErrQuizExpired:
		return "This quiz has expired."
	case ErrNoQuestions:
		return "This quiz has no questions."
	case ErrInvalidAnswer:
		return "The answer does not match a question or option of this quiz."
	case ErrIndexOutOfRange:
		return "Question index is out of range."
	case ErrSessionNotFound:
		return "Quiz session not found."
	case ErrSessionSubmitted:
		return "This quiz session has already been submitted."
	case ErrSessionInProgress:
		return "This quiz session has not been submitted yet."
	case ErrPersistFailed:
		return "Your result was computed but could not be saved. Retry the submission."

	// ─── Exports ───────────────────────────────────────────────────────
	case ErrExportNotFound:
		return "Export job not found or expired."
	case ErrExportNotReady:
		return "Export is still being prepared."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
