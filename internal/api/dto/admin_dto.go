package dto

// ChangePasswordRequest rotates the caller's admin password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ResetAssignmentsResponse reports how many listings lost their agent.
type ResetAssignmentsResponse struct {
	ModifiedCount int64 `json:"modifiedCount"`
}

// MessageResponse carries a human readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}
