package invitation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/hirelink/hirelink_backend/config"
	"github.com/hirelink/hirelink_backend/internal/model"
	"github.com/hirelink/hirelink_backend/internal/repository"
	"github.com/hirelink/hirelink_backend/pkg/util/codes"
	"github.com/hirelink/hirelink_backend/pkg/util/phone"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type IssueRequest struct {
	CandidateID          uuid.UUID
	EmployerID           uuid.UUID
	JobID                uuid.UUID
	ApplicationID        uuid.UUID
	RecruitmentPartnerID *uuid.UUID

	CandidateName  string
	CandidateEmail string
	CandidatePhone string
	CompanyName    string
	JobTitle       string
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Issue creates a pending invitation keyed by a fresh single-use token.
	// The earliest bookable slot is attached as a placeholder only; capacity
	// is not committed until the candidate actually books.
	Issue(ctx context.Context, req IssueRequest) (*model.InterviewBooking, error)

	// Resolve looks a booking up by token. Expired pending invitations
	// resolve exactly like unknown tokens.
	Resolve(ctx context.Context, token string) (*model.InterviewBooking, error)

	// BookingURL renders the public link candidates receive for a token.
	BookingURL(token string) string
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type invitationService struct {
	bookings repository.BookingRepository
	slots    repository.SlotRepository
	nc       *nats.Conn
	tokenTTL time.Duration
	baseURL  string
	now      func() time.Time
}

func New(bookings repository.BookingRepository, slots repository.SlotRepository, nc *nats.Conn, cfg *config.Config) Service {
	ttlDays := cfg.Booking.TokenTTLDays
	if ttlDays <= 0 {
		ttlDays = 7
	}
	return &invitationService{
		bookings: bookings,
		slots:    slots,
		nc:       nc,
		tokenTTL: time.Duration(ttlDays) * 24 * time.Hour,
		baseURL:  cfg.Booking.BookingBaseURL,
		now:      time.Now,
	}
}

func (s *invitationService) Issue(ctx context.Context, req IssueRequest) (*model.InterviewBooking, error) {
	open, err := s.slots.ListBookable(ctx, req.EmployerID, s.now(), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list bookable slots: %w", err)
	}
	if len(open) == 0 {
		return nil, ErrNoAvailability
	}
	placeholder := open[0].ID

	token, err := codes.GenerateBookingToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	now := s.now()
	b := &model.InterviewBooking{
		BookingToken:         token,
		CandidateID:          req.CandidateID,
		EmployerID:           req.EmployerID,
		JobID:                req.JobID,
		ApplicationID:        req.ApplicationID,
		RecruitmentPartnerID: req.RecruitmentPartnerID,
		SlotID:               &placeholder,
		Status:               model.BookingStatusPending,
		CandidateName:        req.CandidateName,
		CandidateEmail:       req.CandidateEmail,
		CandidatePhone:       phone.NormalizeOrEmpty(req.CandidatePhone, ""),
		CompanyName:          req.CompanyName,
		JobTitle:             req.JobTitle,
		TokenExpiresAt:       now.Add(s.tokenTTL),
	}

	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	if s.nc != nil {
		subject := fmt.Sprintf("hirelink.booking.created.%s", b.ID)
		_ = s.nc.Publish(subject, []byte(b.ID.String()))
	}

	return b, nil
}

func (s *invitationService) Resolve(ctx context.Context, token string) (*model.InterviewBooking, error) {
	if len(token) != codes.BookingTokenLength {
		return nil, ErrTokenNotFound
	}

	b, err := s.bookings.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("resolve token: %w", err)
	}

	// A pending invitation past its TTL is inert even before the sweeper
	// flips its status. Confirmed and later statuses keep resolving so the
	// candidate's appointment page stays reachable.
	if b.Status == model.BookingStatusExpired {
		return nil, ErrTokenNotFound
	}
	if b.Status == model.BookingStatusPending && b.TokenExpired(s.now()) {
		return nil, ErrTokenNotFound
	}

	return b, nil
}

func (s *invitationService) BookingURL(token string) string {
	return fmt.Sprintf("%s/%s", s.baseURL, token)
}
