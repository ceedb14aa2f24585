package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation      ErrCode = "VALIDATION_ERROR"
	ErrInvalidID       ErrCode = "INVALID_ID"
	ErrInvalidPayload  ErrCode = "INVALID_PAYLOAD"
	ErrInvalidArgument ErrCode = "INVALID_ARGUMENT"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Game lifecycle ────────────────────────────────────────────────
	ErrInvalidState  ErrCode = "INVALID_STATE"
	ErrNoActiveGame  ErrCode = "NO_ACTIVE_GAME"
	ErrHintExhausted ErrCode = "HINT_BUDGET_EXHAUSTED"

	// AllQuestionsCompleted is a control-flow outcome, not a failure:
	// the handler returns it with HTTP 200 and a completion body.
	AllQuestionsCompleted ErrCode = "ALL_QUESTIONS_COMPLETED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrInvalidArgument:
		return "Invalid argument."
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrInvalidState:
		return "Operation not allowed in the current game state."
	case ErrNoActiveGame:
		return "No active game session. Start a game first."
	case ErrHintExhausted:
		return "All three hints for this session have already been used."
	case AllQuestionsCompleted:
		return "Congratulations! You have completed every question in this difficulty. Restart to play again."
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
