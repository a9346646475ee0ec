package services

import (
	"veever-server/models"
)

// Status transition policy for custom experiences. The store adapter only
// enforces "non-status mutations require pending"; these helpers are the
// authoritative rules applied by the route handlers.

// CancelledByUserNote is the fixed history note for self-service cancellation.
const CancelledByUserNote = "cancelled by user"

func ValidStatus(status string) bool {
	switch status {
	case models.StatusPending, models.StatusProcessing, models.StatusCompleted, models.StatusCancelled:
		return true
	}
	return false
}

// IsTerminalStatus reports whether no further transitions are surfaced once
// the status is reached.
func IsTerminalStatus(status string) bool {
	return status == models.StatusCompleted || status == models.StatusCancelled
}

// CanUserModify gates the "modify" action: owner only, pending only.
func CanUserModify(e *models.CustomExperience, userID uint) bool {
	return e.UserID == userID && e.Status == models.StatusPending
}

// CanUserCancel gates the self-service "cancel" action: owner only, pending only.
func CanUserCancel(e *models.CustomExperience, userID uint) bool {
	return e.UserID == userID && e.Status == models.StatusPending
}

// AdminCanSetStatus reports whether the back office surfaces the transition.
// Cancellation is allowed from any state; other targets only from pending or
// processing. Re-entering pending is never offered, pending is only entered
// at creation.
func AdminCanSetStatus(current, next string) bool {
	if !ValidStatus(next) || next == models.StatusPending {
		return false
	}
	if next == models.StatusCancelled {
		return true
	}
	return current == models.StatusPending || current == models.StatusProcessing
}
