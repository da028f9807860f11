// Package lifecycle computes which booking actions are legal for a role
// given the booking's current status. The server remains the authority
// on transitions; this package only decides what may be offered, so an
// unrecognized status yields no actions rather than an error.
package lifecycle

import "khidma/internal/models"

// Action is something a user may do to a booking in its current state.
type Action string

const (
	ActionCancel   Action = "cancel"
	ActionAccept   Action = "accept"
	ActionReject   Action = "reject"
	ActionComplete Action = "complete"
	ActionReview   Action = "review"
)

// ActionsFor returns the legal actions for the role on a booking with
// the given status. Unknown statuses and unknown roles return nil.
func ActionsFor(status, role string) []Action {
	switch status {
	case models.StatusPending:
		switch role {
		case models.RoleCustomer:
			return []Action{ActionCancel}
		case models.RoleProvider:
			return []Action{ActionAccept, ActionReject}
		}
	case models.StatusAccepted:
		if role == models.RoleCustomer {
			return []Action{ActionCancel, ActionComplete}
		}
	case models.StatusCompleted:
		if role == models.RoleCustomer {
			return []Action{ActionReview}
		}
	}
	return nil
}

// Allows reports whether the role may perform the action on a booking
// with the given status.
func Allows(status, role string, action Action) bool {
	for _, a := range ActionsFor(status, role) {
		if a == action {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends the booking's mutable
// lifecycle.
func IsTerminal(status string) bool {
	switch status {
	case models.StatusCompleted, models.StatusRejected, models.StatusCancelled:
		return true
	}
	return false
}
