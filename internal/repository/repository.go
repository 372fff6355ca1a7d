// Package repository provides the persistence layer for the scheduling
// subsystem. Services depend on the interfaces below; the GORM-backed
// implementations in this package are the production wiring, and the service
// test suites substitute in-memory fakes.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hirelink/hirelink_backend/internal/model"
)

// ErrNotFound is returned for missing records. GORM's own sentinel never
// crosses this package's boundary.
var ErrNotFound = errors.New("record not found")

// SlotFilter narrows employer slot listings.
type SlotFilter struct {
	From   *time.Time
	To     *time.Time
	Status *model.SlotStatus
}

type SlotRepository interface {
	Create(ctx context.Context, slot *model.AvailabilitySlot) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.AvailabilitySlot, error)
	ListForEmployer(ctx context.Context, employerID uuid.UUID, f SlotFilter) ([]model.AvailabilitySlot, error)

	// ListActiveOnDate returns the overlap-candidate set: active,
	// non-cancelled slots of the employer on the given (UTC midnight) date.
	ListActiveOnDate(ctx context.Context, employerID uuid.UUID, date time.Time) ([]model.AvailabilitySlot, error)

	// ListBookable returns claimable slots (available, active, capacity left,
	// date not before now's UTC day) ordered by date then start time.
	ListBookable(ctx context.Context, employerID uuid.UUID, now time.Time, from, to *time.Time) ([]model.AvailabilitySlot, error)

	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Claim atomically increments current_bookings and flips status to
	// booked when the increment exhausts capacity, guarded by
	// current_bookings < max_bookings in the same statement. Returns false
	// when the guard fails — the caller lost the capacity race.
	Claim(ctx context.Context, slotID, employerID uuid.UUID) (bool, error)

	// Release is the inverse of Claim, used when a confirmed booking is
	// cancelled operationally.
	Release(ctx context.Context, slotID uuid.UUID) error
}

type BookingRepository interface {
	Create(ctx context.Context, b *model.InterviewBooking) error
	GetByToken(ctx context.Context, token string) (*model.InterviewBooking, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.InterviewBooking, error)
	ListForEmployer(ctx context.Context, employerID uuid.UUID) ([]model.InterviewBooking, error)
	Save(ctx context.Context, b *model.InterviewBooking) error

	// Confirm writes the pending→confirmed flip as a conditional update
	// guarded on current status, so two racing books of the same token
	// cannot both commit. Returns false when the row was no longer pending.
	Confirm(ctx context.Context, b *model.InterviewBooking) (bool, error)

	// HasConfirmedForCandidateJob enforces the one-confirmed-booking-per-
	// (candidate, job) invariant.
	HasConfirmedForCandidateJob(ctx context.Context, candidateID, jobID uuid.UUID) (bool, error)

	// ExpireStale transitions every pending booking whose token TTL has
	// elapsed to expired, guarded on current status so concurrent sweeps
	// stay idempotent. Returns the number of rows transitioned.
	ExpireStale(ctx context.Context, now time.Time) (int64, error)

	// MarkNotified stamps a delivery-audit column (invitation_sent_at,
	// confirmation_sent_at or reminder_sent_at).
	MarkNotified(ctx context.Context, id uuid.UUID, column string, at time.Time) error
}

type ApplicationRepository interface {
	GetForCandidate(ctx context.Context, candidateID, applicationID uuid.UUID) (*model.JobApplication, error)
	Save(ctx context.Context, a *model.JobApplication) error
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
