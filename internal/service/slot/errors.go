package slot

import (
	"errors"
	"fmt"

	"github.com/hirelink/hirelink_backend/internal/model"
)

var (
	ErrNotFound           = errors.New("availability slot not found")
	ErrInvalidTime        = errors.New("times must be HH:MM in 24-hour format")
	ErrInvalidTimeRange   = errors.New("end_time must be after start_time")
	ErrInvalidDuration    = fmt.Errorf("duration_minutes must be between %d and %d", model.MinSlotDurationMinutes, model.MaxSlotDurationMinutes)
	ErrInvalidMeetingType = errors.New("meeting_type must be video, phone or in_person")
	ErrInvalidTimezone    = errors.New("unknown timezone")
	ErrPastDate           = errors.New("slot date cannot be in the past")
	ErrSlotHasBookings    = errors.New("slot has bookings and cannot be modified this way")
	ErrMaxBelowCurrent    = errors.New("max_bookings cannot be lower than current bookings")
	ErrInvalidRecurrence  = errors.New("recurring expansion needs at least one weekday and an end date after the slot date")
)

// OverlapError rejects a slot that intersects existing windows and carries
// the conflicting slots so callers can show them.
type OverlapError struct {
	Conflicts []model.AvailabilitySlot
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("slot overlaps %d existing slot(s)", len(e.Conflicts))
}
