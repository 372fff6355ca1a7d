// Package booking is the engine that turns a pending invitation into a
// confirmed interview. The slot capacity claim is the single contended step
// and runs as one conditional UPDATE; everything after it is stamping and
// best-effort fan-out.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/hirelink/hirelink_backend/internal/model"
	"github.com/hirelink/hirelink_backend/internal/notify"
	"github.com/hirelink/hirelink_backend/internal/repository"
	"github.com/hirelink/hirelink_backend/internal/service/appsync"
	"github.com/hirelink/hirelink_backend/internal/service/invitation"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type BookRequest struct {
	Token  string
	SlotID uuid.UUID
	Notes  string
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Book claims the slot for the invitation behind the token. Exactly one
	// of N concurrent calls against the last unit of capacity succeeds.
	Book(ctx context.Context, req BookRequest) (*model.InterviewBooking, error)

	// Status is the candidate-facing view of a booking by token.
	Status(ctx context.Context, token string) (*model.InterviewBooking, error)

	ListForEmployer(ctx context.Context, employerID uuid.UUID) ([]model.InterviewBooking, error)

	// Cancel releases the slot capacity of a confirmed booking.
	Cancel(ctx context.Context, employerID, bookingID uuid.UUID) error
	Complete(ctx context.Context, employerID, bookingID uuid.UUID) error

	// ExpireStaleInvitations sweeps pending bookings past their token TTL.
	ExpireStaleInvitations(ctx context.Context) (int64, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type bookingService struct {
	bookings repository.BookingRepository
	slots    repository.SlotRepository
	invites  invitation.Service
	sync     appsync.Service
	gateway  notify.Gateway
	nc       *nats.Conn
	log      *slog.Logger
	now      func() time.Time
}

func New(
	bookings repository.BookingRepository,
	slots repository.SlotRepository,
	invites invitation.Service,
	sync appsync.Service,
	gateway notify.Gateway,
	nc *nats.Conn,
	log *slog.Logger,
) Service {
	return &bookingService{
		bookings: bookings,
		slots:    slots,
		invites:  invites,
		sync:     sync,
		gateway:  gateway,
		nc:       nc,
		log:      log.With("component", "booking"),
		now:      time.Now,
	}
}

func (s *bookingService) Book(ctx context.Context, req BookRequest) (*model.InterviewBooking, error) {
	b, err := s.invites.Resolve(ctx, req.Token)
	if err != nil {
		return nil, err
	}

	switch b.Status {
	case model.BookingStatusPending:
	case model.BookingStatusConfirmed:
		// Retry after a successful book: hand the appointment back, never
		// touch capacity again.
		return nil, &AlreadyBookedError{Existing: b}
	default:
		return nil, ErrInvitationClosed
	}

	taken, err := s.bookings.HasConfirmedForCandidateJob(ctx, b.CandidateID, b.JobID)
	if err != nil {
		return nil, fmt.Errorf("check existing booking: %w", err)
	}
	if taken {
		return nil, &AlreadyBookedError{}
	}

	sl, err := s.slots.GetByID(ctx, req.SlotID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSlotUnavailable
		}
		return nil, fmt.Errorf("get slot: %w", err)
	}
	if sl.EmployerID != b.EmployerID || !sl.Bookable(s.now()) {
		return nil, ErrSlotUnavailable
	}

	claimed, err := s.slots.Claim(ctx, sl.ID, b.EmployerID)
	if err != nil {
		return nil, fmt.Errorf("claim slot: %w", err)
	}
	if !claimed {
		return nil, ErrSlotUnavailable
	}

	now := s.now()
	scheduledAt := sl.StartDateTime()

	b.SlotID = &sl.ID
	b.Status = model.BookingStatusConfirmed
	b.ScheduledAt = &scheduledAt
	b.DurationMinutes = sl.DurationMinutes
	b.Timezone = sl.Timezone
	b.CandidateNotes = req.Notes
	b.BookedAt = &now

	// Interview snapshot: frozen now so later slot edits never rewrite the
	// candidate's confirmed details.
	b.InterviewType = sl.MeetingType
	b.InterviewVideoLink = sl.MeetingLink
	b.InterviewPhone = sl.MeetingPhone
	b.InterviewLocation = sl.MeetingAddress
	b.InterviewInstructions = sl.Instructions

	won, err := s.bookings.Confirm(ctx, b)
	if err != nil {
		// The claim went through but the booking did not. Give the capacity
		// back so the slot is not stranded.
		_ = s.slots.Release(ctx, sl.ID)
		return nil, fmt.Errorf("confirm booking: %w", err)
	}
	if !won {
		// A racing call on the same token confirmed between our resolve and
		// this write. Return the claimed capacity and surface the winner.
		_ = s.slots.Release(ctx, sl.ID)
		if existing, getErr := s.bookings.GetByID(ctx, b.ID); getErr == nil &&
			existing.Status == model.BookingStatusConfirmed {
			return nil, &AlreadyBookedError{Existing: existing}
		}
		return nil, ErrInvitationClosed
	}

	if err := s.sync.MarkInterviewScheduled(ctx, b.CandidateID, b.ApplicationID, appsync.InterviewSummary{
		ScheduledAt: scheduledAt,
		Type:        b.InterviewType,
		Timezone:    b.Timezone,
	}); err != nil {
		s.log.Warn("application status sync failed", "booking_id", b.ID, "err", err)
	}

	if res := s.gateway.SendConfirmation(ctx, b); res.Success {
		_ = s.bookings.MarkNotified(ctx, b.ID, "confirmation_sent_at", s.now())
	} else {
		s.log.Warn("confirmation delivery failed", "booking_id", b.ID, "err", res.Error)
	}

	if s.nc != nil {
		subject := fmt.Sprintf("hirelink.booking.confirmed.%s", b.ID)
		_ = s.nc.Publish(subject, []byte(b.ID.String()))
	}

	return b, nil
}

func (s *bookingService) Status(ctx context.Context, token string) (*model.InterviewBooking, error) {
	return s.invites.Resolve(ctx, token)
}

func (s *bookingService) ListForEmployer(ctx context.Context, employerID uuid.UUID) ([]model.InterviewBooking, error) {
	out, err := s.bookings.ListForEmployer(ctx, employerID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return out, nil
}

func (s *bookingService) Cancel(ctx context.Context, employerID, bookingID uuid.UUID) error {
	b, err := s.getOwned(ctx, employerID, bookingID)
	if err != nil {
		return err
	}
	if !model.CanTransitionBooking(b.Status, model.BookingStatusCancelled) {
		return ErrInvalidTransition
	}

	b.Status = model.BookingStatusCancelled
	if err := s.bookings.Save(ctx, b); err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}

	if b.SlotID != nil {
		if err := s.slots.Release(ctx, *b.SlotID); err != nil {
			s.log.Warn("slot release failed", "slot_id", *b.SlotID, "err", err)
		}
	}
	return nil
}

func (s *bookingService) Complete(ctx context.Context, employerID, bookingID uuid.UUID) error {
	b, err := s.getOwned(ctx, employerID, bookingID)
	if err != nil {
		return err
	}
	if !model.CanTransitionBooking(b.Status, model.BookingStatusCompleted) {
		return ErrInvalidTransition
	}

	b.Status = model.BookingStatusCompleted
	if err := s.bookings.Save(ctx, b); err != nil {
		return fmt.Errorf("complete booking: %w", err)
	}
	return nil
}

func (s *bookingService) ExpireStaleInvitations(ctx context.Context) (int64, error) {
	n, err := s.bookings.ExpireStale(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("expire invitations: %w", err)
	}
	if n > 0 {
		s.log.Info("expired stale invitations", "count", n)
	}
	return n, nil
}

func (s *bookingService) getOwned(ctx context.Context, employerID, bookingID uuid.UUID) (*model.InterviewBooking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if b.EmployerID != employerID {
		return nil, ErrNotFound
	}
	return b, nil
}
