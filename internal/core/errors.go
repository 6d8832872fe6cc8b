package core

// Error codes for engine errors surfaced to clients.
const (
	ErrCodeBadRequest    = "bad_request"
	ErrCodePersistFailed = "persist_failed"
)

// EngineError wraps a code and human-readable message.
type EngineError struct {
	Code    string
	Message string
}

func (e *EngineError) Error() string {
	return e.Message
}
