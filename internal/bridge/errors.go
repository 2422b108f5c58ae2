package bridge

// Error codes returned to the application layer. Every failure crossing the
// bridge carries one of these; raw storage or driver errors never leak
// through (they are logged server-side instead).
const (
	CodeInvalidData    = "INVALID_WIDGET_DATA"
	CodeInvalidConfig  = "INVALID_WIDGET_CONFIG"
	CodeStorageFailure = "STORAGE_FAILURE"
)

// Error is the structured result for a failed bridge operation.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

func invalidData(msg string) *Error {
	return &Error{Code: CodeInvalidData, Message: msg}
}

func invalidConfig(msg string) *Error {
	return &Error{Code: CodeInvalidConfig, Message: msg}
}

func storageFailure() *Error {
	return &Error{Code: CodeStorageFailure, Message: "widget storage is unavailable"}
}
