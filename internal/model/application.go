package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApplicationStatus values mirror the job_applications status column.
type ApplicationStatus string

const (
	ApplicationStatusApplied            ApplicationStatus = "applied"
	ApplicationStatusUnderReview        ApplicationStatus = "under_review"
	ApplicationStatusInterviewScheduled ApplicationStatus = "interview_scheduled"
	ApplicationStatusOffer              ApplicationStatus = "offer"
	ApplicationStatusHired              ApplicationStatus = "hired"
	ApplicationStatusRejected           ApplicationStatus = "rejected"
)

var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusApplied:            {ApplicationStatusUnderReview, ApplicationStatusInterviewScheduled, ApplicationStatusRejected},
	ApplicationStatusUnderReview:        {ApplicationStatusInterviewScheduled, ApplicationStatusRejected},
	ApplicationStatusInterviewScheduled: {ApplicationStatusOffer, ApplicationStatusRejected},
	ApplicationStatusOffer:              {ApplicationStatusHired, ApplicationStatusRejected},
	// hired and rejected are terminal
}

func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(s)
	switch st {
	case ApplicationStatusApplied, ApplicationStatusUnderReview,
		ApplicationStatusInterviewScheduled, ApplicationStatusOffer,
		ApplicationStatusHired, ApplicationStatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// CanTransitionApplication returns true when moving from → to is permitted by
// the pipeline state machine.
func CanTransitionApplication(from, to ApplicationStatus) bool {
	for _, s := range applicationTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// JobApplication is the candidate-side pipeline record. Only the fields the
// scheduling subsystem projects into live here; the rest of the application
// document belongs to the (out-of-scope) jobs service.
type JobApplication struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CandidateID uuid.UUID `gorm:"type:uuid;not null;index" json:"candidate_id"`
	JobID       uuid.UUID `gorm:"type:uuid;not null;index" json:"job_id"`

	Status ApplicationStatus `gorm:"type:varchar(32);not null;default:'applied';index" json:"status"`

	// Denormalized interview summary, written by the booking projection.
	InterviewScheduledAt *time.Time  `json:"interview_scheduled_at,omitempty"`
	InterviewType        MeetingType `gorm:"type:varchar(16)" json:"interview_type,omitempty"`
	InterviewTimezone    string      `gorm:"type:varchar(64)" json:"interview_timezone,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (JobApplication) TableName() string { return "job_applications" }

func (a *JobApplication) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		a.ID = id
	}
	return nil
}
