package slot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/hirelink/hirelink_backend/internal/model"
	"github.com/hirelink/hirelink_backend/internal/repository"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	Date            time.Time
	StartTime       string
	EndTime         string
	DurationMinutes int
	Timezone        string

	Title          string
	MeetingType    string
	MeetingLink    string
	MeetingPhone   string
	MeetingAddress string
	Instructions   string
	BufferMinutes  int
	MaxBookings    int
}

type UpdateRequest struct {
	Date            *time.Time
	StartTime       *string
	EndTime         *string
	DurationMinutes *int
	Timezone        *string

	Title          *string
	MeetingType    *string
	MeetingLink    *string
	MeetingPhone   *string
	MeetingAddress *string
	Instructions   *string
	BufferMinutes  *int
	MaxBookings    *int
}

type ListRequest struct {
	From   *time.Time
	To     *time.Time
	Status *string
}

type RecurringRequest struct {
	Weekdays []time.Weekday
	EndDate  time.Time
}

// BatchResult reports per-entry outcomes of a batch create. Entries are
// independent: a failed entry never rolls back the ones already created.
type BatchResult struct {
	Created []model.AvailabilitySlot `json:"created"`
	Errors  []BatchError             `json:"errors"`
}

type BatchError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// DayGroup is the candidate-facing booking view: one calendar day and its
// claimable slots ordered by start time.
type DayGroup struct {
	Date  time.Time                `json:"date"`
	Slots []model.AvailabilitySlot `json:"slots"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	List(ctx context.Context, employerID uuid.UUID, req ListRequest) ([]model.AvailabilitySlot, error)
	GetByID(ctx context.Context, employerID, slotID uuid.UUID) (*model.AvailabilitySlot, error)
	Create(ctx context.Context, employerID uuid.UUID, req CreateRequest) (*model.AvailabilitySlot, error)
	CreateBatch(ctx context.Context, employerID uuid.UUID, reqs []CreateRequest) (*BatchResult, error)
	Update(ctx context.Context, employerID, slotID uuid.UUID, req UpdateRequest) (*model.AvailabilitySlot, error)
	Delete(ctx context.Context, employerID, slotID uuid.UUID) error
	ToggleActive(ctx context.Context, employerID, slotID uuid.UUID) (*model.AvailabilitySlot, error)

	// ExpandRecurring clones the slot's window onto every matching weekday up
	// to and including endDate. The origin date itself is skipped and
	// occurrences that would overlap an existing slot are dropped silently.
	ExpandRecurring(ctx context.Context, employerID, slotID uuid.UUID, req RecurringRequest) ([]model.AvailabilitySlot, error)

	// ListAvailableForBooking is the public candidate view, grouped by date.
	ListAvailableForBooking(ctx context.Context, employerID uuid.UUID, from, to *time.Time) ([]DayGroup, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type slotService struct {
	slots repository.SlotRepository
	now   func() time.Time
}

func New(slots repository.SlotRepository) Service {
	return &slotService{slots: slots, now: time.Now}
}

func (s *slotService) List(ctx context.Context, employerID uuid.UUID, req ListRequest) ([]model.AvailabilitySlot, error) {
	f := repository.SlotFilter{From: req.From, To: req.To}
	if req.Status != nil {
		st := model.SlotStatus(*req.Status)
		f.Status = &st
	}
	out, err := s.slots.ListForEmployer(ctx, employerID, f)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return out, nil
}

func (s *slotService) GetByID(ctx context.Context, employerID, slotID uuid.UUID) (*model.AvailabilitySlot, error) {
	return s.getOwned(ctx, employerID, slotID)
}

func (s *slotService) Create(ctx context.Context, employerID uuid.UUID, req CreateRequest) (*model.AvailabilitySlot, error) {
	if err := validateCreate(req, s.now()); err != nil {
		return nil, err
	}

	date := model.MidnightUTC(req.Date)

	existing, err := s.slots.ListActiveOnDate(ctx, employerID, date)
	if err != nil {
		return nil, fmt.Errorf("check overlap: %w", err)
	}
	var conflicts []model.AvailabilitySlot
	for _, other := range existing {
		if other.Overlaps(req.StartTime, req.EndTime) {
			conflicts = append(conflicts, other)
		}
	}
	if len(conflicts) > 0 {
		return nil, &OverlapError{Conflicts: conflicts}
	}

	sl := newSlot(employerID, date, req)
	if err := s.slots.Create(ctx, sl); err != nil {
		return nil, fmt.Errorf("create slot: %w", err)
	}
	return sl, nil
}

func (s *slotService) CreateBatch(ctx context.Context, employerID uuid.UUID, reqs []CreateRequest) (*BatchResult, error) {
	res := &BatchResult{}
	for i, req := range reqs {
		sl, err := s.Create(ctx, employerID, req)
		if err != nil {
			res.Errors = append(res.Errors, BatchError{Index: i, Error: err.Error()})
			continue
		}
		res.Created = append(res.Created, *sl)
	}
	return res, nil
}

func (s *slotService) Update(ctx context.Context, employerID, slotID uuid.UUID, req UpdateRequest) (*model.AvailabilitySlot, error) {
	sl, err := s.getOwned(ctx, employerID, slotID)
	if err != nil {
		return nil, err
	}

	// Schedule fields freeze once someone has booked against the slot.
	touchesSchedule := req.Date != nil || req.StartTime != nil || req.EndTime != nil || req.DurationMinutes != nil
	if touchesSchedule && sl.CurrentBookings > 0 {
		return nil, ErrSlotHasBookings
	}

	fields := map[string]any{}

	if req.Date != nil {
		d := model.MidnightUTC(*req.Date)
		if d.Before(model.MidnightUTC(s.now())) {
			return nil, ErrPastDate
		}
		sl.Date = d
		fields["date"] = d
	}
	if req.StartTime != nil {
		if !validClock(*req.StartTime) {
			return nil, ErrInvalidTime
		}
		sl.StartTime = *req.StartTime
		fields["start_time"] = *req.StartTime
	}
	if req.EndTime != nil {
		if !validClock(*req.EndTime) {
			return nil, ErrInvalidTime
		}
		sl.EndTime = *req.EndTime
		fields["end_time"] = *req.EndTime
	}
	if sl.StartTime >= sl.EndTime {
		return nil, ErrInvalidTimeRange
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes < model.MinSlotDurationMinutes || *req.DurationMinutes > model.MaxSlotDurationMinutes {
			return nil, ErrInvalidDuration
		}
		sl.DurationMinutes = *req.DurationMinutes
		fields["duration_minutes"] = *req.DurationMinutes
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			return nil, ErrInvalidTimezone
		}
		sl.Timezone = *req.Timezone
		fields["timezone"] = *req.Timezone
	}
	if req.MeetingType != nil {
		if !model.ValidMeetingType(*req.MeetingType) {
			return nil, ErrInvalidMeetingType
		}
		sl.MeetingType = model.MeetingType(*req.MeetingType)
		fields["meeting_type"] = sl.MeetingType
	}
	if req.MaxBookings != nil {
		if *req.MaxBookings < sl.CurrentBookings {
			return nil, ErrMaxBelowCurrent
		}
		if *req.MaxBookings < 1 {
			return nil, errors.New("max_bookings must be at least 1")
		}
		sl.MaxBookings = *req.MaxBookings
		fields["max_bookings"] = *req.MaxBookings
		// Raising capacity on a full slot reopens it.
		if sl.Status == model.SlotStatusBooked && sl.CurrentBookings < sl.MaxBookings {
			sl.Status = model.SlotStatusAvailable
			fields["status"] = sl.Status
		}
	}
	if req.Title != nil {
		sl.Title = *req.Title
		fields["title"] = *req.Title
	}
	if req.MeetingLink != nil {
		sl.MeetingLink = *req.MeetingLink
		fields["meeting_link"] = *req.MeetingLink
	}
	if req.MeetingPhone != nil {
		sl.MeetingPhone = *req.MeetingPhone
		fields["meeting_phone"] = *req.MeetingPhone
	}
	if req.MeetingAddress != nil {
		sl.MeetingAddress = *req.MeetingAddress
		fields["meeting_address"] = *req.MeetingAddress
	}
	if req.Instructions != nil {
		sl.Instructions = *req.Instructions
		fields["instructions"] = *req.Instructions
	}
	if req.BufferMinutes != nil {
		sl.BufferMinutes = *req.BufferMinutes
		fields["buffer_minutes"] = *req.BufferMinutes
	}

	if touchesSchedule {
		existing, err := s.slots.ListActiveOnDate(ctx, employerID, sl.Date)
		if err != nil {
			return nil, fmt.Errorf("check overlap: %w", err)
		}
		var conflicts []model.AvailabilitySlot
		for _, other := range existing {
			if other.ID != sl.ID && other.Overlaps(sl.StartTime, sl.EndTime) {
				conflicts = append(conflicts, other)
			}
		}
		if len(conflicts) > 0 {
			return nil, &OverlapError{Conflicts: conflicts}
		}
	}

	if len(fields) == 0 {
		return sl, nil
	}
	if err := s.slots.UpdateFields(ctx, sl.ID, fields); err != nil {
		return nil, fmt.Errorf("update slot: %w", err)
	}
	return sl, nil
}

func (s *slotService) Delete(ctx context.Context, employerID, slotID uuid.UUID) error {
	sl, err := s.getOwned(ctx, employerID, slotID)
	if err != nil {
		return err
	}
	if sl.CurrentBookings > 0 {
		return ErrSlotHasBookings
	}
	if err := s.slots.Delete(ctx, sl.ID); err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	return nil
}

func (s *slotService) ToggleActive(ctx context.Context, employerID, slotID uuid.UUID) (*model.AvailabilitySlot, error) {
	sl, err := s.getOwned(ctx, employerID, slotID)
	if err != nil {
		return nil, err
	}
	sl.IsActive = !sl.IsActive
	if err := s.slots.UpdateFields(ctx, sl.ID, map[string]any{"is_active": sl.IsActive}); err != nil {
		return nil, fmt.Errorf("toggle slot: %w", err)
	}
	return sl, nil
}

func (s *slotService) ExpandRecurring(ctx context.Context, employerID, slotID uuid.UUID, req RecurringRequest) ([]model.AvailabilitySlot, error) {
	src, err := s.getOwned(ctx, employerID, slotID)
	if err != nil {
		return nil, err
	}

	end := model.MidnightUTC(req.EndDate)
	if len(req.Weekdays) == 0 || !end.After(src.Date) {
		return nil, ErrInvalidRecurrence
	}

	wanted := map[time.Weekday]bool{}
	for _, wd := range req.Weekdays {
		wanted[wd] = true
	}

	created := []model.AvailabilitySlot{}
	for day := src.Date.AddDate(0, 0, 1); !day.After(end); day = day.AddDate(0, 0, 1) {
		if !wanted[day.Weekday()] {
			continue
		}

		existing, err := s.slots.ListActiveOnDate(ctx, employerID, day)
		if err != nil {
			return created, fmt.Errorf("check overlap: %w", err)
		}
		conflict := false
		for _, other := range existing {
			if other.Overlaps(src.StartTime, src.EndTime) {
				conflict = true
				break
			}
		}
		if conflict {
			continue
		}

		clone := *src
		clone.ID = uuid.Nil
		clone.Date = day
		clone.Status = model.SlotStatusAvailable
		clone.CurrentBookings = 0
		if err := s.slots.Create(ctx, &clone); err != nil {
			return created, fmt.Errorf("create occurrence: %w", err)
		}
		created = append(created, clone)
	}
	return created, nil
}

func (s *slotService) ListAvailableForBooking(ctx context.Context, employerID uuid.UUID, from, to *time.Time) ([]DayGroup, error) {
	now := s.now()
	slots, err := s.slots.ListBookable(ctx, employerID, now, from, to)
	if err != nil {
		return nil, fmt.Errorf("list bookable slots: %w", err)
	}

	byDate := map[time.Time][]model.AvailabilitySlot{}
	for _, sl := range slots {
		if !sl.Bookable(now) {
			continue
		}
		// Key on the normalized day: dates scanned back from the database can
		// carry a non-UTC location, and map equality is location-sensitive.
		day := model.MidnightUTC(sl.Date)
		byDate[day] = append(byDate[day], sl)
	}

	groups := make([]DayGroup, 0, len(byDate))
	for date, slots := range byDate {
		groups = append(groups, DayGroup{Date: date, Slots: slots})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Date.Before(groups[j].Date) })
	return groups, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *slotService) getOwned(ctx context.Context, employerID, slotID uuid.UUID) (*model.AvailabilitySlot, error) {
	sl, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get slot: %w", err)
	}
	// Ownership mismatch reads as not-found so slot IDs leak nothing across
	// employers.
	if sl.EmployerID != employerID {
		return nil, ErrNotFound
	}
	return sl, nil
}

func validateCreate(req CreateRequest, now time.Time) error {
	if !validClock(req.StartTime) || !validClock(req.EndTime) {
		return ErrInvalidTime
	}
	if req.StartTime >= req.EndTime {
		return ErrInvalidTimeRange
	}
	if req.DurationMinutes < model.MinSlotDurationMinutes || req.DurationMinutes > model.MaxSlotDurationMinutes {
		return ErrInvalidDuration
	}
	if model.MidnightUTC(req.Date).Before(model.MidnightUTC(now)) {
		return ErrPastDate
	}
	if req.MeetingType != "" && !model.ValidMeetingType(req.MeetingType) {
		return ErrInvalidMeetingType
	}
	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			return ErrInvalidTimezone
		}
	}
	return nil
}

func newSlot(employerID uuid.UUID, date time.Time, req CreateRequest) *model.AvailabilitySlot {
	sl := &model.AvailabilitySlot{
		EmployerID:      employerID,
		Date:            date,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: req.DurationMinutes,
		Timezone:        req.Timezone,
		Title:           req.Title,
		MeetingType:     model.MeetingType(req.MeetingType),
		MeetingLink:     req.MeetingLink,
		MeetingPhone:    req.MeetingPhone,
		MeetingAddress:  req.MeetingAddress,
		Instructions:    req.Instructions,
		BufferMinutes:   req.BufferMinutes,
		MaxBookings:     req.MaxBookings,
		Status:          model.SlotStatusAvailable,
		IsActive:        true,
	}
	if sl.Timezone == "" {
		sl.Timezone = "UTC"
	}
	if sl.MeetingType == "" {
		sl.MeetingType = model.MeetingTypeVideo
	}
	if sl.MaxBookings < 1 {
		sl.MaxBookings = 1
	}
	return sl
}

// validClock accepts "HH:MM" 24-hour strings. These compare correctly as
// plain strings, which the overlap checks rely on.
func validClock(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	hh := int(s[0]-'0')*10 + int(s[1]-'0')
	mm := int(s[3]-'0')*10 + int(s[4]-'0')
	return hh <= 23 && mm <= 59
}
