package booking

import (
	"errors"

	"github.com/hirelink/hirelink_backend/internal/model"
)

var (
	ErrNotFound = errors.New("booking not found")

	// ErrSlotUnavailable covers every way a claim can fail: wrong employer,
	// deactivated, cancelled, and losing the capacity race.
	ErrSlotUnavailable = errors.New("slot is not available for booking")

	// ErrInvitationClosed means the token resolves but its booking is in a
	// terminal state that cannot accept a slot.
	ErrInvitationClosed = errors.New("invitation can no longer be booked")

	ErrInvalidTransition = errors.New("booking status transition not allowed")
)

// AlreadyBookedError means this candidate already holds a confirmed interview
// for the job. Existing carries the confirmed booking when it belongs to the
// same token, so retries get their appointment back instead of a bare error.
type AlreadyBookedError struct {
	Existing *model.InterviewBooking
}

func (e *AlreadyBookedError) Error() string {
	return "an interview is already booked for this application"
}
