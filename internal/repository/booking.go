package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hirelink/hirelink_backend/internal/model"
)

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, b *model.InterviewBooking) error {
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (r *bookingRepository) GetByToken(ctx context.Context, token string) (*model.InterviewBooking, error) {
	var b model.InterviewBooking
	err := r.db.WithContext(ctx).First(&b, "booking_token = ?", token).Error
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.InterviewBooking, error) {
	var b model.InterviewBooking
	err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *bookingRepository) ListForEmployer(ctx context.Context, employerID uuid.UUID) ([]model.InterviewBooking, error) {
	var bookings []model.InterviewBooking
	err := r.db.WithContext(ctx).
		Where("employer_id = ?", employerID).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) Save(ctx context.Context, b *model.InterviewBooking) error {
	if err := r.db.WithContext(ctx).Save(b).Error; err != nil {
		return fmt.Errorf("save booking: %w", err)
	}
	return nil
}

func (r *bookingRepository) Confirm(ctx context.Context, b *model.InterviewBooking) (bool, error) {
	// Guarded on status so two racing books of the same token cannot both
	// commit; the loser sees zero rows and must give its slot claim back.
	res := r.db.WithContext(ctx).
		Model(&model.InterviewBooking{}).
		Where("id = ? AND status = ?", b.ID, model.BookingStatusPending).
		Updates(map[string]any{
			"status":                 model.BookingStatusConfirmed,
			"slot_id":                b.SlotID,
			"scheduled_at":           b.ScheduledAt,
			"duration_minutes":       b.DurationMinutes,
			"timezone":               b.Timezone,
			"candidate_notes":        b.CandidateNotes,
			"booked_at":              b.BookedAt,
			"interview_type":         b.InterviewType,
			"interview_location":     b.InterviewLocation,
			"interview_video_link":   b.InterviewVideoLink,
			"interview_phone":        b.InterviewPhone,
			"interview_instructions": b.InterviewInstructions,
		})
	if res.Error != nil {
		return false, fmt.Errorf("confirm booking: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *bookingRepository) HasConfirmedForCandidateJob(ctx context.Context, candidateID, jobID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.InterviewBooking{}).
		Where("candidate_id = ? AND job_id = ? AND status = ?",
			candidateID, jobID, model.BookingStatusConfirmed).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count confirmed bookings: %w", err)
	}
	return count > 0, nil
}

func (r *bookingRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	// Guarded on current status; concurrent sweeps each flip a disjoint set.
	res := r.db.WithContext(ctx).
		Model(&model.InterviewBooking{}).
		Where("status = ? AND token_expires_at <= ?", model.BookingStatusPending, now).
		Update("status", model.BookingStatusExpired)
	if res.Error != nil {
		return 0, fmt.Errorf("expire stale bookings: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *bookingRepository) MarkNotified(ctx context.Context, id uuid.UUID, column string, at time.Time) error {
	switch column {
	case "invitation_sent_at", "confirmation_sent_at", "reminder_sent_at":
	default:
		return fmt.Errorf("unknown notification audit column %q", column)
	}
	res := r.db.WithContext(ctx).
		Model(&model.InterviewBooking{}).
		Where("id = ?", id).
		Update(column, at)
	if res.Error != nil {
		return fmt.Errorf("mark notified: %w", res.Error)
	}
	return nil
}
