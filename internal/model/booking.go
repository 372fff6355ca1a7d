package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookingStatus values mirror the interview_bookings status column.
//
// Valid status graph:
//
//	pending ──► confirmed ──► completed
//	   │             │
//	   ▼             └──► cancelled
//	expired
//
// expired, completed and cancelled are terminal states.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusExpired   BookingStatus = "expired"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusExpired},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
	// expired, completed, cancelled are terminal — no outgoing transitions
}

// ParseBookingStatus converts a raw string to a BookingStatus, returning an
// error for unknown values.
func ParseBookingStatus(s string) (BookingStatus, error) {
	st := BookingStatus(s)
	switch st {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled,
		BookingStatusCompleted, BookingStatusExpired:
		return st, nil
	}
	return "", fmt.Errorf("unknown booking status %q", s)
}

// CanTransitionBooking returns true when moving from → to is permitted.
func CanTransitionBooking(from, to BookingStatus) bool {
	for _, s := range bookingTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// InterviewBooking ties a candidate, job and employer together, keyed by a
// single-use bearer token. It starts life as a pending invitation and becomes
// the confirmed appointment once a slot is claimed.
type InterviewBooking struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	// BookingToken is the sole lookup capability: 32 random bytes, hex
	// encoded. Anyone holding the booking URL can claim the slot.
	BookingToken string `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`

	CandidateID          uuid.UUID  `gorm:"type:uuid;not null;index:idx_bookings_candidate_job" json:"candidate_id"`
	EmployerID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"employer_id"`
	JobID                uuid.UUID  `gorm:"type:uuid;not null;index:idx_bookings_candidate_job" json:"job_id"`
	ApplicationID        uuid.UUID  `gorm:"type:uuid;not null" json:"application_id"`
	RecruitmentPartnerID *uuid.UUID `gorm:"type:uuid" json:"recruitment_partner_id,omitempty"`

	// SlotID is a placeholder binding at issue time and the claimed slot
	// after confirmation. Capacity is only committed at confirmation.
	SlotID *uuid.UUID `gorm:"type:uuid;index" json:"slot_id,omitempty"`

	Status BookingStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`

	// Candidate and job snapshot, captured at invitation time so emails can
	// be rendered from this record alone.
	CandidateName  string `gorm:"type:varchar(200)" json:"candidate_name,omitempty"`
	CandidateEmail string `gorm:"type:varchar(254)" json:"candidate_email,omitempty"`
	CandidatePhone string `gorm:"type:varchar(32)" json:"candidate_phone,omitempty"`
	CompanyName    string `gorm:"type:varchar(200)" json:"company_name,omitempty"`
	JobTitle       string `gorm:"type:varchar(200)" json:"job_title,omitempty"`

	// Interview snapshot, copied from the slot's meeting metadata at
	// confirmation and immutable afterwards.
	InterviewType         MeetingType `gorm:"type:varchar(16)" json:"interview_type,omitempty"`
	InterviewLocation     string      `gorm:"type:varchar(500)" json:"interview_location,omitempty"`
	InterviewVideoLink    string      `gorm:"type:varchar(500)" json:"interview_video_link,omitempty"`
	InterviewPhone        string      `gorm:"type:varchar(32)" json:"interview_phone,omitempty"`
	InterviewInstructions string      `gorm:"type:text" json:"interview_instructions,omitempty"`

	ScheduledAt     *time.Time `gorm:"index" json:"scheduled_at,omitempty"`
	DurationMinutes int        `json:"duration_minutes,omitempty"`
	Timezone        string     `gorm:"type:varchar(64)" json:"timezone,omitempty"`
	CandidateNotes  string     `gorm:"type:text" json:"candidate_notes,omitempty"`

	TokenExpiresAt time.Time  `gorm:"not null;index" json:"token_expires_at"`
	BookedAt       *time.Time `json:"booked_at,omitempty"`

	// Best-effort delivery audit — set on successful sends only.
	InvitationSentAt   *time.Time `json:"invitation_sent_at,omitempty"`
	ConfirmationSentAt *time.Time `json:"confirmation_sent_at,omitempty"`
	ReminderSentAt     *time.Time `json:"reminder_sent_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (InterviewBooking) TableName() string { return "interview_bookings" }

func (b *InterviewBooking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		b.ID = id
	}
	return nil
}

// TokenExpired reports whether the invitation token is inert for booking
// purposes, regardless of the stored status field.
func (b *InterviewBooking) TokenExpired(now time.Time) bool {
	return !b.TokenExpiresAt.After(now)
}
