package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusBooked    SlotStatus = "booked"
	SlotStatusCancelled SlotStatus = "cancelled"
)

type MeetingType string

const (
	MeetingTypeVideo    MeetingType = "video"
	MeetingTypePhone    MeetingType = "phone"
	MeetingTypeInPerson MeetingType = "in_person"
)

// ValidMeetingType reports whether s is a known meeting type.
func ValidMeetingType(s string) bool {
	switch MeetingType(s) {
	case MeetingTypeVideo, MeetingTypePhone, MeetingTypeInPerson:
		return true
	}
	return false
}

const (
	MinSlotDurationMinutes = 15
	MaxSlotDurationMinutes = 480
)

// AvailabilitySlot is an employer-published, capacity-bounded interview window.
//
// Date is stored normalized to UTC midnight; StartTime/EndTime are "HH:MM"
// wall-clock strings interpreted in Timezone for display and for computing the
// confirmed booking's scheduled datetime.
type AvailabilitySlot struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EmployerID uuid.UUID `gorm:"type:uuid;not null;index:idx_slots_employer_date" json:"employer_id"`

	Date            time.Time `gorm:"not null;index:idx_slots_employer_date" json:"date"`
	StartTime       string    `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime         string    `gorm:"type:varchar(5);not null" json:"end_time"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`
	Timezone        string    `gorm:"type:varchar(64);not null;default:'UTC'" json:"timezone"`

	Title          string      `gorm:"type:varchar(200)" json:"title,omitempty"`
	MeetingType    MeetingType `gorm:"type:varchar(16);not null;default:'video'" json:"meeting_type"`
	MeetingLink    string      `gorm:"type:varchar(500)" json:"meeting_link,omitempty"`
	MeetingPhone   string      `gorm:"type:varchar(32)" json:"meeting_phone,omitempty"`
	MeetingAddress string      `gorm:"type:varchar(500)" json:"meeting_address,omitempty"`
	Instructions   string      `gorm:"type:text" json:"instructions,omitempty"`
	BufferMinutes  int         `gorm:"not null;default:0" json:"buffer_minutes"`

	MaxBookings     int        `gorm:"not null;default:1" json:"max_bookings"`
	CurrentBookings int        `gorm:"not null;default:0" json:"current_bookings"`
	Status          SlotStatus `gorm:"type:varchar(16);not null;default:'available';index" json:"status"`
	IsActive        bool       `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AvailabilitySlot) TableName() string { return "availability_slots" }

func (s *AvailabilitySlot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		s.ID = id
	}
	return nil
}

// Overlaps reports whether the slot's [StartTime, EndTime) interval intersects
// [start, end). "HH:MM" strings compare correctly as plain strings.
func (s *AvailabilitySlot) Overlaps(start, end string) bool {
	return s.StartTime < end && s.EndTime > start
}

// HasCapacity reports whether at least one booking can still be committed.
func (s *AvailabilitySlot) HasCapacity() bool {
	return s.CurrentBookings < s.MaxBookings
}

// Bookable reports whether the slot can currently be offered to candidates.
func (s *AvailabilitySlot) Bookable(now time.Time) bool {
	return s.Status == SlotStatusAvailable &&
		s.IsActive &&
		s.HasCapacity() &&
		!s.Date.Before(MidnightUTC(now))
}

// StartDateTime combines Date and StartTime in the slot's timezone. An unknown
// timezone name falls back to UTC rather than failing the booking.
func (s *AvailabilitySlot) StartDateTime() time.Time {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		loc = time.UTC
	}
	hh, mm := splitHHMM(s.StartTime)
	y, m, d := s.Date.UTC().Date()
	return time.Date(y, m, d, hh, mm, 0, 0, loc)
}

// MidnightUTC truncates t to its UTC calendar day. Slot dates are normalized
// through this before storage and comparison so that timezone offsets cannot
// produce duplicate-day records.
func MidnightUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func splitHHMM(s string) (int, int) {
	if len(s) < 5 {
		return 0, 0
	}
	hh := int(s[0]-'0')*10 + int(s[1]-'0')
	mm := int(s[3]-'0')*10 + int(s[4]-'0')
	return hh, mm
}
