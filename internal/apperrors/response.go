package apperrors

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// Response returns the status and body for err. Uncategorized errors get a
// generic message; the caller is expected to log the original.
func Response(err error) (int, ErrorResponse) {
	kind := KindOf(err)
	msg := err.Error()
	if kind == KindInternal {
		msg = "internal server error"
	}
	return kind.HTTPStatus(), ErrorResponse{Error: msg, Code: string(kind)}
}
