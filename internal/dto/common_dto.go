package dto

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// MessageResponse is the standard success payload for actions with no body.
type MessageResponse struct {
	Message string `json:"message"`
}
