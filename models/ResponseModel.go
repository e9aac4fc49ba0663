package models

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error" example:"Invalid session"`
	Details string `json:"details,omitempty" example:""`
}

// MessageResponse is the uniform success payload for write operations.
type MessageResponse struct {
	Message string `json:"message" example:"Vendor updated successfully"`
}
