package booking

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hirelink/hirelink_backend/config"
	"github.com/hirelink/hirelink_backend/internal/model"
	"github.com/hirelink/hirelink_backend/internal/notify"
	"github.com/hirelink/hirelink_backend/internal/repository"
	"github.com/hirelink/hirelink_backend/internal/repository/repotest"
	"github.com/hirelink/hirelink_backend/internal/service/appsync"
	"github.com/hirelink/hirelink_backend/internal/service/invitation"
)

// mockGateway records deliveries and optionally fails them.
type mockGateway struct {
	mu            sync.Mutex
	fail          bool
	confirmations int
}

func (m *mockGateway) SendInvitation(context.Context, *model.InterviewBooking) notify.DeliveryResult {
	return m.result()
}

func (m *mockGateway) SendConfirmation(context.Context, *model.InterviewBooking) notify.DeliveryResult {
	m.mu.Lock()
	m.confirmations++
	m.mu.Unlock()
	return m.result()
}

func (m *mockGateway) SendReminder(context.Context, *model.InterviewBooking) notify.DeliveryResult {
	return m.result()
}

func (m *mockGateway) result() notify.DeliveryResult {
	if m.fail {
		return notify.DeliveryResult{Success: false, Error: "smtp unreachable"}
	}
	return notify.DeliveryResult{Success: true}
}

var _ notify.Gateway = (*mockGateway)(nil)

// ---------------------------------------------------------------------------

type fixture struct {
	bookings *repotest.BookingRepo
	slots    *repotest.SlotRepo
	apps     *repotest.ApplicationRepo
	invites  invitation.Service
	gateway  *mockGateway
	svc      Service
}

func newFixture() *fixture {
	f := &fixture{
		bookings: repotest.NewBookingRepo(),
		slots:    repotest.NewSlotRepo(),
		apps:     repotest.NewApplicationRepo(),
		gateway:  &mockGateway{},
	}
	cfg := &config.Config{}
	cfg.Booking.TokenTTLDays = 7
	cfg.Booking.BookingBaseURL = "https://hirelink.example.com/book"

	log := slog.New(slog.DiscardHandler)
	f.invites = invitation.New(f.bookings, f.slots, nil, cfg)
	statusSync := appsync.New(f.apps, log)
	f.svc = New(f.bookings, f.slots, f.invites, statusSync, f.gateway, nil, log)
	return f
}

func (f *fixture) seedSlot(employerID uuid.UUID, daysAhead, maxBookings int) model.AvailabilitySlot {
	return f.slots.Seed(model.AvailabilitySlot{
		EmployerID:      employerID,
		Date:            model.MidnightUTC(time.Now().AddDate(0, 0, daysAhead)),
		StartTime:       "09:00",
		EndTime:         "10:00",
		DurationMinutes: 60,
		Timezone:        "UTC",
		MeetingType:     model.MeetingTypeVideo,
		MeetingLink:     "https://meet.example.com/room-1",
		Instructions:    "Ask for Dana at reception",
		MaxBookings:     maxBookings,
		Status:          model.SlotStatusAvailable,
		IsActive:        true,
	})
}

func (f *fixture) issue(t *testing.T, employerID, candidateID, jobID, appID uuid.UUID) *model.InterviewBooking {
	t.Helper()
	b, err := f.invites.Issue(context.Background(), invitation.IssueRequest{
		CandidateID:    candidateID,
		EmployerID:     employerID,
		JobID:          jobID,
		ApplicationID:  appID,
		CandidateName:  "Dana Smith",
		CandidateEmail: "dana@example.com",
		CompanyName:    "Acme Corp",
		JobTitle:       "Platform Engineer",
	})
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}
	return b
}

// ---------------------------------------------------------------------------

func TestBook_Success(t *testing.T) {
	f := newFixture()
	employer := uuid.New()
	sl := f.seedSlot(employer, 5, 2)

	app := f.apps.Seed(model.JobApplication{
		CandidateID: uuid.New(),
		JobID:       uuid.New(),
		Status:      model.ApplicationStatusUnderReview,
	})
	inv := f.issue(t, employer, app.CandidateID, app.JobID, app.ID)

	got, err := f.svc.Book(context.Background(), BookRequest{Token: inv.BookingToken, SlotID: sl.ID, Notes: "prefer mornings"})
	if err != nil {
		t.Fatalf("Book() error: %v", err)
	}

	if got.Status != model.BookingStatusConfirmed {
		t.Errorf("Status = %s, want confirmed", got.Status)
	}
	if got.SlotID == nil || *got.SlotID != sl.ID {
		t.Errorf("SlotID = %v, want %s", got.SlotID, sl.ID)
	}
	wantAt := time.Date(sl.Date.Year(), sl.Date.Month(), sl.Date.Day(), 9, 0, 0, 0, time.UTC)
	if got.ScheduledAt == nil || !got.ScheduledAt.Equal(wantAt) {
		t.Errorf("ScheduledAt = %v, want %v", got.ScheduledAt, wantAt)
	}
	if got.InterviewVideoLink != sl.MeetingLink || got.InterviewInstructions != sl.Instructions {
		t.Errorf("interview snapshot not copied: %+v", got)
	}
	if got.CandidateNotes != "prefer mornings" {
		t.Errorf("CandidateNotes = %q", got.CandidateNotes)
	}
	if got.BookedAt == nil {
		t.Error("BookedAt not stamped")
	}

	// Capacity committed exactly once; status stays available below max.
	slot, _ := f.slots.GetByID(context.Background(), sl.ID)
	if slot.CurrentBookings != 1 || slot.Status != model.SlotStatusAvailable {
		t.Errorf("slot after book = %d/%s, want 1/available", slot.CurrentBookings, slot.Status)
	}

	// Application projected to interview_scheduled.
	gotApp, _ := f.apps.GetForCandidate(context.Background(), app.CandidateID, app.ID)
	if gotApp.Status != model.ApplicationStatusInterviewScheduled {
		t.Errorf("application status = %s, want interview_scheduled", gotApp.Status)
	}

	// Confirmation sent and audited.
	stored, _ := f.bookings.GetByID(context.Background(), got.ID)
	if stored.ConfirmationSentAt == nil {
		t.Error("ConfirmationSentAt not stamped after successful delivery")
	}
	if f.gateway.confirmations != 1 {
		t.Errorf("confirmations = %d, want 1", f.gateway.confirmations)
	}
}

func TestBook_LastUnitFlipsSlotToBooked(t *testing.T) {
	f := newFixture()
	employer := uuid.New()
	sl := f.seedSlot(employer, 5, 1)
	inv := f.issue(t, employer, uuid.New(), uuid.New(), uuid.New())

	if _, err := f.svc.Book(context.Background(), BookRequest{Token: inv.BookingToken, SlotID: sl.ID}); err != nil {
		t.Fatalf("Book() error: %v", err)
	}

	slot, _ := f.slots.GetByID(context.Background(), sl.ID)
	if slot.Status != model.SlotStatusBooked || slot.CurrentBookings != 1 {
		t.Errorf("slot = %d/%s, want 1/booked", slot.CurrentBookings, slot.Status)
	}
}

func TestBook_ConcurrentClaimsExactlyOneWins(t *testing.T) {
	f := newFixture()
	employer := uuid.New()
	sl := f.seedSlot(employer, 5, 1)

	const n = 8
	tokens := make([]string, n)
	for i := range tokens {
		inv := f.issue(t, employer, uuid.New(), uuid.New(), uuid.New())
		tokens[i] = inv.BookingToken
	}

	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			_, err := f.svc.Book(context.Background(), BookRequest{Token: token, SlotID: sl.ID})
			results <- err
		}(tokens[i])
	}
	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrSlotUnavailable):
			losses++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 || losses != n-1 {
		t.Errorf("wins = %d, losses = %d, want 1 and %d", wins, losses, n-1)
	}

	slot, _ := f.slots.GetByID(context.Background(), sl.ID)
	if slot.CurrentBookings != 1 {
		t.Errorf("CurrentBookings = %d, capacity was double-committed", slot.CurrentBookings)
	}
}

// rendezvousBookings widens the resolve→confirm window: GetByToken blocks
// until two callers have both read the row, so both observe it pending.
type rendezvousBookings struct {
	*repotest.BookingRepo
	gate *sync.WaitGroup
}

func (r *rendezvousBookings) GetByToken(ctx context.Context, token string) (*model.InterviewBooking, error) {
	b, err := r.BookingRepo.GetByToken(ctx, token)
	r.gate.Done()
	r.gate.Wait()
	return b, err
}

var _ repository.BookingRepository = (*rendezvousBookings)(nil)

func TestBook_SameTokenDoubleBookCommitsCapacityOnce(t *testing.T) {
	f := newFixture()
	employer := uuid.New()
	sl := f.seedSlot(employer, 5, 8)

	app := f.apps.Seed(model.JobApplication{
		CandidateID: uuid.New(),
		JobID:       uuid.New(),
		Status:      model.ApplicationStatusUnderReview,
	})
	inv := f.issue(t, employer, app.CandidateID, app.JobID, app.ID)

	gate := &sync.WaitGroup{}
	gate.Add(2)
	bookings := &rendezvousBookings{BookingRepo: f.bookings, gate: gate}

	cfg := &config.Config{}
	cfg.Booking.TokenTTLDays = 7
	log := slog.New(slog.DiscardHandler)
	invites := invitation.New(bookings, f.slots, nil, cfg)
	svc := New(bookings, f.slots, invites, appsync.New(f.apps, log), f.gateway, nil, log)

	// Double-click: two simultaneous books of the same token against a slot
	// with spare capacity. Without the status-guarded confirm both would
	// claim and the slot would undersell by one seat forever.
	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Book(context.Background(), BookRequest{Token: inv.BookingToken, SlotID: sl.ID})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, dupes int
	for err := range results {
		var already *AlreadyBookedError
		switch {
		case err == nil:
			wins++
		case errors.As(err, &already):
			dupes++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 || dupes != 1 {
		t.Errorf("wins = %d, duplicates = %d, want 1 and 1", wins, dupes)
	}

	slot, _ := f.slots.GetByID(context.Background(), sl.ID)
	if slot.CurrentBookings != 1 {
		t.Errorf("CurrentBookings = %d after same-token double book, want 1", slot.CurrentBookings)
	}

	got, err := f.bookings.GetByID(context.Background(), inv.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got.Status != model.BookingStatusConfirmed {
		t.Errorf("Status = %s, want confirmed", got.Status)
	}
}

func TestBook_RetryAfterSuccessIsIdempotent(t *testing.T) {
	f := newFixture()
	employer := uuid.New()
	sl := f.seedSlot(employer, 5, 2)
	inv := f.issue(t, employer, uuid.New(), uuid.New(), uuid.New())

	first, err := f.svc.Book(context.Background(), BookRequest{Token: inv.BookingToken, SlotID: sl.ID})
	if err != nil {
		t.Fatalf("Book() error: %v", err)
	}

	_, err = f.svc.Book(context.Background(), BookRequest{Token: inv.BookingToken, SlotID: sl.ID})
	var already *AlreadyBookedError
	if !errors.As(err, &already) {
		t.Fatalf("retry error = %v, want AlreadyBookedError", err)
	}
	if already.Existing == nil || already.Existing.ID != first.ID {
		t.Errorf("retry did not surface the existing appointment")
	}

	slot, _ := f.slots.GetByID(context.Background(), sl.ID)
	if slot.CurrentBookings != 1 {
		t.Errorf("CurrentBookings = %d after retry, want 1", slot.CurrentBookings)
	}
}

func TestBook_CandidateAlreadyConfirmedForJob(t *testing.T) {
	f := newFixture()
	employer := uuid.New()
	sl := f.seedSlot(employer, 5, 5)
	candidate, job := uuid.New(), uuid.New()

	inv1 := f.issue(t, employer, candidate, job, uuid.New())
	inv2 := f.issue(t, employer, candidate, job, uuid.New())

	if _, err := f.svc.Book(context.Background(), BookRequest{Token: inv1.BookingToken, SlotID: sl.ID}); err != nil {
		t.Fatalf("first Book() error: %v", err)
	}

	_, err := f.svc.Book(context.Background(), BookRequest{Token: inv2.BookingToken, SlotID: sl.ID})
	var already *AlreadyBookedError
	if !errors.As(err, &already) {
		t.Fatalf("second token error = %v, want AlreadyBookedError", err)
	}

	slot, _ := f.slots.GetByID(context.Background(), sl.ID)
	if slot.CurrentBookings != 1 {
		t.Errorf("CurrentBookings = %d, want 1", slot.CurrentBookings)
	}
}

func TestBook_ExpiredTokenFailsClosed(t *testing.T) {
	f := newFixture()
	employer := uuid.New()
	sl := f.seedSlot(employer, 5, 1)
	inv := f.issue(t, employer, uuid.New(), uuid.New(), uuid.New())

	inv.TokenExpiresAt = time.Now().Add(-time.Hour)
	if err := f.bookings.Save(context.Background(), inv); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if _, err := f.svc.Book(context.Background(), BookRequest{Token: inv.BookingToken, SlotID: sl.ID}); !errors.Is(err, invitation.ErrTokenNotFound) {
		t.Errorf("Book() with expired token error = %v, want ErrTokenNotFound", err)
	}

	slot, _ := f.slots.GetByID(context.Background(), sl.ID)
	if slot.CurrentBookings != 0 {
		t.Errorf("expired token still consumed capacity")
	}
}

func TestBook_SlotUnavailable(t *testing.T) {
	f := newFixture()
	employer := uuid.New()
	f.seedSlot(employer, 5, 1)

	foreign := f.seedSlot(uuid.New(), 5, 1)
	inactive := f.slots.Seed(model.AvailabilitySlot{
		EmployerID:      employer,
		Date:            model.MidnightUTC(time.Now().AddDate(0, 0, 5)),
		StartTime:       "14:00",
		EndTime:         "15:00",
		DurationMinutes: 60,
		Timezone:        "UTC",
		MeetingType:     model.MeetingTypeVideo,
		MaxBookings:     1,
		Status:          model.SlotStatusAvailable,
		IsActive:        false,
	})

	tests := []struct {
		name   string
		slotID uuid.UUID
	}{
		{"another employer's slot", foreign.ID},
		{"deactivated slot", inactive.ID},
		{"unknown slot", uuid.New()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := f.issue(t, employer, uuid.New(), uuid.New(), uuid.New())
			if _, err := f.svc.Book(context.Background(), BookRequest{Token: inv.BookingToken, SlotID: tt.slotID}); !errors.Is(err, ErrSlotUnavailable) {
				t.Errorf("Book() error = %v, want ErrSlotUnavailable", err)
			}
		})
	}
}

func TestBook_GatewayFailureDoesNotUnwind(t *testing.T) {
	f := newFixture()
	f.gateway.fail = true
	employer := uuid.New()
	sl := f.seedSlot(employer, 5, 1)
	inv := f.issue(t, employer, uuid.New(), uuid.New(), uuid.New())

	got, err := f.svc.Book(context.Background(), BookRequest{Token: inv.BookingToken, SlotID: sl.ID})
	if err != nil {
		t.Fatalf("Book() must survive delivery failure, got: %v", err)
	}
	if got.Status != model.BookingStatusConfirmed {
		t.Errorf("Status = %s, want confirmed", got.Status)
	}

	stored, _ := f.bookings.GetByID(context.Background(), got.ID)
	if stored.ConfirmationSentAt != nil {
		t.Error("ConfirmationSentAt stamped despite failed delivery")
	}
}

func TestBook_SnapshotSurvivesSlotEdits(t *testing.T) {
	f := newFixture()
	employer := uuid.New()
	sl := f.seedSlot(employer, 5, 2)
	inv := f.issue(t, employer, uuid.New(), uuid.New(), uuid.New())

	got, err := f.svc.Book(context.Background(), BookRequest{Token: inv.BookingToken, SlotID: sl.ID})
	if err != nil {
		t.Fatalf("Book() error: %v", err)
	}

	// The employer rewires the meeting room afterwards.
	if err := f.slots.UpdateFields(context.Background(), sl.ID, map[string]any{
		"meeting_link": "https://meet.example.com/room-99",
		"instructions": "changed",
	}); err != nil {
		t.Fatalf("slot edit failed: %v", err)
	}

	view, err := f.svc.Status(context.Background(), inv.BookingToken)
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if view.InterviewVideoLink != got.InterviewVideoLink || view.InterviewInstructions != got.InterviewInstructions {
		t.Errorf("confirmed snapshot changed after slot edit: %+v", view)
	}
}

func TestCancel_ReleasesCapacity(t *testing.T) {
	f := newFixture()
	employer := uuid.New()
	sl := f.seedSlot(employer, 5, 1)
	inv := f.issue(t, employer, uuid.New(), uuid.New(), uuid.New())

	got, err := f.svc.Book(context.Background(), BookRequest{Token: inv.BookingToken, SlotID: sl.ID})
	if err != nil {
		t.Fatalf("Book() error: %v", err)
	}

	if err := f.svc.Cancel(context.Background(), employer, got.ID); err != nil {
		t.Fatalf("Cancel() error: %v", err)
	}

	slot, _ := f.slots.GetByID(context.Background(), sl.ID)
	if slot.CurrentBookings != 0 || slot.Status != model.SlotStatusAvailable {
		t.Errorf("slot after cancel = %d/%s, want 0/available", slot.CurrentBookings, slot.Status)
	}

	if err := f.svc.Cancel(context.Background(), employer, got.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second Cancel() error = %v, want ErrInvalidTransition", err)
	}

	// Foreign employer cannot touch the booking.
	if err := f.svc.Complete(context.Background(), uuid.New(), got.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign Complete() error = %v, want ErrNotFound", err)
	}
}

func TestComplete(t *testing.T) {
	f := newFixture()
	employer := uuid.New()
	sl := f.seedSlot(employer, 5, 1)
	inv := f.issue(t, employer, uuid.New(), uuid.New(), uuid.New())

	got, err := f.svc.Book(context.Background(), BookRequest{Token: inv.BookingToken, SlotID: sl.ID})
	if err != nil {
		t.Fatalf("Book() error: %v", err)
	}

	if err := f.svc.Complete(context.Background(), employer, got.ID); err != nil {
		t.Fatalf("Complete() error: %v", err)
	}

	stored, _ := f.bookings.GetByID(context.Background(), got.ID)
	if stored.Status != model.BookingStatusCompleted {
		t.Errorf("Status = %s, want completed", stored.Status)
	}

	// Completing keeps the slot capacity committed.
	slot, _ := f.slots.GetByID(context.Background(), sl.ID)
	if slot.CurrentBookings != 1 {
		t.Errorf("CurrentBookings = %d after complete, want 1", slot.CurrentBookings)
	}

	if err := f.svc.Cancel(context.Background(), employer, got.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Cancel() of completed booking error = %v, want ErrInvalidTransition", err)
	}
}

func TestExpireStaleInvitations(t *testing.T) {
	f := newFixture()
	employer := uuid.New()
	sl := f.seedSlot(employer, 5, 3)

	stale := f.issue(t, employer, uuid.New(), uuid.New(), uuid.New())
	stale.TokenExpiresAt = time.Now().Add(-time.Minute)
	if err := f.bookings.Save(context.Background(), stale); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	live := f.issue(t, employer, uuid.New(), uuid.New(), uuid.New())

	confirmedInv := f.issue(t, employer, uuid.New(), uuid.New(), uuid.New())
	if _, err := f.svc.Book(context.Background(), BookRequest{Token: confirmedInv.BookingToken, SlotID: sl.ID}); err != nil {
		t.Fatalf("Book() error: %v", err)
	}

	n, err := f.svc.ExpireStaleInvitations(context.Background())
	if err != nil {
		t.Fatalf("ExpireStaleInvitations() error: %v", err)
	}
	if n != 1 {
		t.Errorf("expired %d bookings, want 1", n)
	}

	if _, err := f.svc.Status(context.Background(), stale.BookingToken); !errors.Is(err, invitation.ErrTokenNotFound) {
		t.Errorf("stale token status error = %v, want ErrTokenNotFound", err)
	}
	if _, err := f.svc.Status(context.Background(), live.BookingToken); err != nil {
		t.Errorf("live token swept too: %v", err)
	}

	// The sweep is idempotent.
	if n, _ := f.svc.ExpireStaleInvitations(context.Background()); n != 0 {
		t.Errorf("second sweep expired %d bookings, want 0", n)
	}
}
