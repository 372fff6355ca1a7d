// Package repotest provides mutex-guarded in-memory implementations of the
// repository interfaces for service tests. Claim and ExpireStale keep the
// same atomicity guarantees as the SQL implementations, so concurrency tests
// behave like production.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hirelink/hirelink_backend/internal/model"
	"github.com/hirelink/hirelink_backend/internal/repository"
)

// ---------------------------------------------------------------------------
// Slots
// ---------------------------------------------------------------------------

type SlotRepo struct {
	mu    sync.Mutex
	slots map[uuid.UUID]*model.AvailabilitySlot
}

func NewSlotRepo() *SlotRepo {
	return &SlotRepo{slots: map[uuid.UUID]*model.AvailabilitySlot{}}
}

var _ repository.SlotRepository = (*SlotRepo)(nil)

// Seed inserts a slot directly, bypassing service validation.
func (f *SlotRepo) Seed(s model.AvailabilitySlot) model.AvailabilitySlot {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	f.slots[s.ID] = &s
	return s
}

// Len reports how many slots are stored.
func (f *SlotRepo) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.slots)
}

func (f *SlotRepo) Create(_ context.Context, s *model.AvailabilitySlot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	f.slots[s.ID] = &cp
	return nil
}

func (f *SlotRepo) GetByID(_ context.Context, id uuid.UUID) (*model.AvailabilitySlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *SlotRepo) ListForEmployer(_ context.Context, employerID uuid.UUID, filter repository.SlotFilter) ([]model.AvailabilitySlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.AvailabilitySlot
	for _, s := range f.slots {
		if s.EmployerID != employerID {
			continue
		}
		if filter.From != nil && s.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && s.Date.After(*filter.To) {
			continue
		}
		if filter.Status != nil && s.Status != *filter.Status {
			continue
		}
		out = append(out, *s)
	}
	sortSlots(out)
	return out, nil
}

func (f *SlotRepo) ListActiveOnDate(_ context.Context, employerID uuid.UUID, date time.Time) ([]model.AvailabilitySlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.AvailabilitySlot
	for _, s := range f.slots {
		if s.EmployerID == employerID && s.IsActive && s.Status != model.SlotStatusCancelled && s.Date.Equal(date) {
			out = append(out, *s)
		}
	}
	sortSlots(out)
	return out, nil
}

func (f *SlotRepo) ListBookable(_ context.Context, employerID uuid.UUID, now time.Time, from, to *time.Time) ([]model.AvailabilitySlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.AvailabilitySlot
	for _, s := range f.slots {
		if s.EmployerID != employerID || s.Status != model.SlotStatusAvailable || !s.IsActive || s.CurrentBookings >= s.MaxBookings {
			continue
		}
		if s.Date.Before(model.MidnightUTC(now)) {
			continue
		}
		if from != nil && s.Date.Before(*from) {
			continue
		}
		if to != nil && s.Date.After(*to) {
			continue
		}
		out = append(out, *s)
	}
	sortSlots(out)
	return out, nil
}

func (f *SlotRepo) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[id]
	if !ok {
		return repository.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "date":
			s.Date = v.(time.Time)
		case "start_time":
			s.StartTime = v.(string)
		case "end_time":
			s.EndTime = v.(string)
		case "duration_minutes":
			s.DurationMinutes = v.(int)
		case "timezone":
			s.Timezone = v.(string)
		case "meeting_type":
			s.MeetingType = v.(model.MeetingType)
		case "max_bookings":
			s.MaxBookings = v.(int)
		case "status":
			s.Status = v.(model.SlotStatus)
		case "title":
			s.Title = v.(string)
		case "meeting_link":
			s.MeetingLink = v.(string)
		case "meeting_phone":
			s.MeetingPhone = v.(string)
		case "meeting_address":
			s.MeetingAddress = v.(string)
		case "instructions":
			s.Instructions = v.(string)
		case "buffer_minutes":
			s.BufferMinutes = v.(int)
		case "is_active":
			s.IsActive = v.(bool)
		}
	}
	return nil
}

func (f *SlotRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.slots, id)
	return nil
}

func (f *SlotRepo) Claim(_ context.Context, slotID, employerID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[slotID]
	if !ok || s.EmployerID != employerID || s.Status != model.SlotStatusAvailable || !s.IsActive || s.CurrentBookings >= s.MaxBookings {
		return false, nil
	}
	s.CurrentBookings++
	if s.CurrentBookings >= s.MaxBookings {
		s.Status = model.SlotStatusBooked
	}
	return true, nil
}

func (f *SlotRepo) Release(_ context.Context, slotID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[slotID]
	if !ok || s.CurrentBookings == 0 {
		return nil
	}
	s.CurrentBookings--
	if s.Status == model.SlotStatusBooked {
		s.Status = model.SlotStatusAvailable
	}
	return nil
}

func sortSlots(slots []model.AvailabilitySlot) {
	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].Date.Equal(slots[j].Date) {
			return slots[i].Date.Before(slots[j].Date)
		}
		return slots[i].StartTime < slots[j].StartTime
	})
}

// ---------------------------------------------------------------------------
// Bookings
// ---------------------------------------------------------------------------

type BookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*model.InterviewBooking
	byToken  map[string]uuid.UUID
}

func NewBookingRepo() *BookingRepo {
	return &BookingRepo{
		bookings: map[uuid.UUID]*model.InterviewBooking{},
		byToken:  map[string]uuid.UUID{},
	}
}

var _ repository.BookingRepository = (*BookingRepo)(nil)

func (f *BookingRepo) Create(_ context.Context, b *model.InterviewBooking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	cp := *b
	f.bookings[b.ID] = &cp
	f.byToken[b.BookingToken] = b.ID
	return nil
}

func (f *BookingRepo) GetByToken(_ context.Context, token string) (*model.InterviewBooking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byToken[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *f.bookings[id]
	return &cp, nil
}

func (f *BookingRepo) GetByID(_ context.Context, id uuid.UUID) (*model.InterviewBooking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *BookingRepo) ListForEmployer(_ context.Context, employerID uuid.UUID) ([]model.InterviewBooking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.InterviewBooking
	for _, b := range f.bookings {
		if b.EmployerID == employerID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *BookingRepo) Save(_ context.Context, b *model.InterviewBooking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bookings[b.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

// Confirm mirrors the SQL guard: the flip only lands while the stored row is
// still pending, all under the same mutex as the other booking ops.
func (f *BookingRepo) Confirm(_ context.Context, b *model.InterviewBooking) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.bookings[b.ID]
	if !ok || cur.Status != model.BookingStatusPending {
		return false, nil
	}
	cur.Status = model.BookingStatusConfirmed
	cur.SlotID = b.SlotID
	cur.ScheduledAt = b.ScheduledAt
	cur.DurationMinutes = b.DurationMinutes
	cur.Timezone = b.Timezone
	cur.CandidateNotes = b.CandidateNotes
	cur.BookedAt = b.BookedAt
	cur.InterviewType = b.InterviewType
	cur.InterviewLocation = b.InterviewLocation
	cur.InterviewVideoLink = b.InterviewVideoLink
	cur.InterviewPhone = b.InterviewPhone
	cur.InterviewInstructions = b.InterviewInstructions
	return true, nil
}

func (f *BookingRepo) HasConfirmedForCandidateJob(_ context.Context, candidateID, jobID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.CandidateID == candidateID && b.JobID == jobID && b.Status == model.BookingStatusConfirmed {
			return true, nil
		}
	}
	return false, nil
}

func (f *BookingRepo) ExpireStale(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, b := range f.bookings {
		if b.Status == model.BookingStatusPending && !b.TokenExpiresAt.After(now) {
			b.Status = model.BookingStatusExpired
			n++
		}
	}
	return n, nil
}

func (f *BookingRepo) MarkNotified(_ context.Context, id uuid.UUID, column string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	switch column {
	case "invitation_sent_at":
		b.InvitationSentAt = &at
	case "confirmation_sent_at":
		b.ConfirmationSentAt = &at
	case "reminder_sent_at":
		b.ReminderSentAt = &at
	}
	return nil
}

// ---------------------------------------------------------------------------
// Applications
// ---------------------------------------------------------------------------

type ApplicationRepo struct {
	mu   sync.Mutex
	apps map[uuid.UUID]*model.JobApplication
}

func NewApplicationRepo() *ApplicationRepo {
	return &ApplicationRepo{apps: map[uuid.UUID]*model.JobApplication{}}
}

var _ repository.ApplicationRepository = (*ApplicationRepo)(nil)

func (f *ApplicationRepo) Seed(a model.JobApplication) model.JobApplication {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	f.apps[a.ID] = &a
	return a
}

func (f *ApplicationRepo) GetForCandidate(_ context.Context, candidateID, applicationID uuid.UUID) (*model.JobApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.apps[applicationID]
	if !ok || a.CandidateID != candidateID {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *ApplicationRepo) Save(_ context.Context, a *model.JobApplication) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.apps[a.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *a
	f.apps[a.ID] = &cp
	return nil
}
