package dto

// ErrorResponse is the body written by the reference backend on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}
