package invitation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hirelink/hirelink_backend/internal/model"
	"github.com/hirelink/hirelink_backend/internal/repository/repotest"
	"github.com/hirelink/hirelink_backend/pkg/util/codes"
)

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func newTestService(bookings *repotest.BookingRepo, slots *repotest.SlotRepo) *invitationService {
	return &invitationService{
		bookings: bookings,
		slots:    slots,
		tokenTTL: 7 * 24 * time.Hour,
		baseURL:  "https://hirelink.example.com/book",
		now:      func() time.Time { return testNow },
	}
}

func bookableSlot(employerID uuid.UUID, daysAhead int) model.AvailabilitySlot {
	return model.AvailabilitySlot{
		EmployerID:      employerID,
		Date:            model.MidnightUTC(testNow.AddDate(0, 0, daysAhead)),
		StartTime:       "09:00",
		EndTime:         "10:00",
		DurationMinutes: 60,
		Timezone:        "UTC",
		MeetingType:     model.MeetingTypeVideo,
		MaxBookings:     1,
		Status:          model.SlotStatusAvailable,
		IsActive:        true,
	}
}

func issueRequest(employerID uuid.UUID) IssueRequest {
	return IssueRequest{
		CandidateID:    uuid.New(),
		EmployerID:     employerID,
		JobID:          uuid.New(),
		ApplicationID:  uuid.New(),
		CandidateName:  "Dana Smith",
		CandidateEmail: "dana@example.com",
		CandidatePhone: "+14155550123",
		CompanyName:    "Acme Corp",
		JobTitle:       "Platform Engineer",
	}
}

func TestIssue_NoAvailability(t *testing.T) {
	svc := newTestService(repotest.NewBookingRepo(), repotest.NewSlotRepo())

	_, err := svc.Issue(context.Background(), issueRequest(uuid.New()))
	if !errors.Is(err, ErrNoAvailability) {
		t.Errorf("Issue() error = %v, want ErrNoAvailability", err)
	}
}

func TestIssue_PastSlotsDoNotCountAsAvailability(t *testing.T) {
	slots := repotest.NewSlotRepo()
	svc := newTestService(repotest.NewBookingRepo(), slots)
	employer := uuid.New()

	// Still marked available with spare capacity, but dated before the
	// service clock. The bookable listing filters on the injected time.
	slots.Seed(bookableSlot(employer, -3))

	_, err := svc.Issue(context.Background(), issueRequest(employer))
	if !errors.Is(err, ErrNoAvailability) {
		t.Errorf("Issue() error = %v, want ErrNoAvailability", err)
	}
}

func TestIssue_CreatesPendingInvitation(t *testing.T) {
	bookings := repotest.NewBookingRepo()
	slots := repotest.NewSlotRepo()
	svc := newTestService(bookings, slots)
	employer := uuid.New()

	slots.Seed(bookableSlot(employer, 5))
	earliest := slots.Seed(bookableSlot(employer, 2))

	b, err := svc.Issue(context.Background(), issueRequest(employer))
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	if b.Status != model.BookingStatusPending {
		t.Errorf("Status = %s, want pending", b.Status)
	}
	if len(b.BookingToken) != codes.BookingTokenLength {
		t.Errorf("token length = %d, want %d", len(b.BookingToken), codes.BookingTokenLength)
	}
	if b.SlotID == nil || *b.SlotID != earliest.ID {
		t.Errorf("placeholder SlotID = %v, want earliest slot %s", b.SlotID, earliest.ID)
	}
	// The placeholder must not consume capacity.
	got, _ := slots.GetByID(context.Background(), earliest.ID)
	if got.CurrentBookings != 0 {
		t.Errorf("placeholder consumed capacity: CurrentBookings = %d", got.CurrentBookings)
	}
	if want := testNow.Add(7 * 24 * time.Hour); !b.TokenExpiresAt.Equal(want) {
		t.Errorf("TokenExpiresAt = %v, want %v", b.TokenExpiresAt, want)
	}
	if b.CandidatePhone != "+14155550123" {
		t.Errorf("CandidatePhone = %q, want normalized E.164", b.CandidatePhone)
	}

	// A second invitation gets its own token.
	b2, err := svc.Issue(context.Background(), issueRequest(employer))
	if err != nil {
		t.Fatalf("second Issue() error: %v", err)
	}
	if b2.BookingToken == b.BookingToken {
		t.Error("two invitations share a booking token")
	}
}

func TestResolve_UnknownToken(t *testing.T) {
	svc := newTestService(repotest.NewBookingRepo(), repotest.NewSlotRepo())

	if _, err := svc.Resolve(context.Background(), "short"); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("malformed token error = %v, want ErrTokenNotFound", err)
	}

	token, _ := codes.GenerateBookingToken()
	if _, err := svc.Resolve(context.Background(), token); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("unknown token error = %v, want ErrTokenNotFound", err)
	}
}

func TestResolve_ExpiryBoundary(t *testing.T) {
	bookings := repotest.NewBookingRepo()
	slots := repotest.NewSlotRepo()
	svc := newTestService(bookings, slots)
	employer := uuid.New()
	slots.Seed(bookableSlot(employer, 2))

	b, err := svc.Issue(context.Background(), issueRequest(employer))
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	// One instant before expiry the token still resolves.
	svc.now = func() time.Time { return b.TokenExpiresAt.Add(-time.Second) }
	if _, err := svc.Resolve(context.Background(), b.BookingToken); err != nil {
		t.Errorf("Resolve() just before expiry failed: %v", err)
	}

	// At the boundary it reads exactly like an unknown token, with no sweep
	// having run.
	svc.now = func() time.Time { return b.TokenExpiresAt }
	if _, err := svc.Resolve(context.Background(), b.BookingToken); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("Resolve() at expiry error = %v, want ErrTokenNotFound", err)
	}
}

func TestResolve_ExpiredStatusIsNotFound(t *testing.T) {
	bookings := repotest.NewBookingRepo()
	slots := repotest.NewSlotRepo()
	svc := newTestService(bookings, slots)
	employer := uuid.New()
	slots.Seed(bookableSlot(employer, 2))

	b, _ := svc.Issue(context.Background(), issueRequest(employer))
	b.Status = model.BookingStatusExpired
	if err := bookings.Save(context.Background(), b); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if _, err := svc.Resolve(context.Background(), b.BookingToken); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("Resolve() of expired booking error = %v, want ErrTokenNotFound", err)
	}
}

func TestResolve_ConfirmedSurvivesTokenExpiry(t *testing.T) {
	bookings := repotest.NewBookingRepo()
	slots := repotest.NewSlotRepo()
	svc := newTestService(bookings, slots)
	employer := uuid.New()
	slots.Seed(bookableSlot(employer, 2))

	b, _ := svc.Issue(context.Background(), issueRequest(employer))
	b.Status = model.BookingStatusConfirmed
	if err := bookings.Save(context.Background(), b); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// Long after the token TTL the confirmed appointment stays reachable.
	svc.now = func() time.Time { return b.TokenExpiresAt.AddDate(0, 1, 0) }
	got, err := svc.Resolve(context.Background(), b.BookingToken)
	if err != nil {
		t.Fatalf("Resolve() of confirmed booking failed: %v", err)
	}
	if got.Status != model.BookingStatusConfirmed {
		t.Errorf("Status = %s, want confirmed", got.Status)
	}
}

func TestBookingURL(t *testing.T) {
	svc := newTestService(repotest.NewBookingRepo(), repotest.NewSlotRepo())
	if got := svc.BookingURL("abc123"); got != "https://hirelink.example.com/book/abc123" {
		t.Errorf("BookingURL() = %q", got)
	}
}
