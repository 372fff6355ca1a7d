package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hirelink/hirelink_backend/internal/model"
)

type slotRepository struct {
	db *gorm.DB
}

func NewSlotRepository(db *gorm.DB) SlotRepository {
	return &slotRepository{db: db}
}

func (r *slotRepository) Create(ctx context.Context, slot *model.AvailabilitySlot) error {
	if err := r.db.WithContext(ctx).Create(slot).Error; err != nil {
		return fmt.Errorf("create slot: %w", err)
	}
	return nil
}

func (r *slotRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.AvailabilitySlot, error) {
	var slot model.AvailabilitySlot
	err := r.db.WithContext(ctx).First(&slot, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &slot, nil
}

func (r *slotRepository) ListForEmployer(ctx context.Context, employerID uuid.UUID, f SlotFilter) ([]model.AvailabilitySlot, error) {
	q := r.db.WithContext(ctx).
		Where("employer_id = ?", employerID).
		Order("date, start_time")

	if f.From != nil {
		q = q.Where("date >= ?", model.MidnightUTC(*f.From))
	}
	if f.To != nil {
		q = q.Where("date <= ?", model.MidnightUTC(*f.To))
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	var slots []model.AvailabilitySlot
	if err := q.Find(&slots).Error; err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}

func (r *slotRepository) ListActiveOnDate(ctx context.Context, employerID uuid.UUID, date time.Time) ([]model.AvailabilitySlot, error) {
	var slots []model.AvailabilitySlot
	err := r.db.WithContext(ctx).
		Where("employer_id = ? AND date = ? AND is_active AND status <> ?",
			employerID, model.MidnightUTC(date), model.SlotStatusCancelled).
		Order("start_time").
		Find(&slots).Error
	if err != nil {
		return nil, fmt.Errorf("list slots on date: %w", err)
	}
	return slots, nil
}

func (r *slotRepository) ListBookable(ctx context.Context, employerID uuid.UUID, now time.Time, from, to *time.Time) ([]model.AvailabilitySlot, error) {
	q := r.db.WithContext(ctx).
		Where("employer_id = ? AND status = ? AND is_active AND current_bookings < max_bookings",
			employerID, model.SlotStatusAvailable).
		Where("date >= ?", model.MidnightUTC(now)).
		Order("date, start_time")

	if from != nil {
		q = q.Where("date >= ?", model.MidnightUTC(*from))
	}
	if to != nil {
		q = q.Where("date <= ?", model.MidnightUTC(*to))
	}

	var slots []model.AvailabilitySlot
	if err := q.Find(&slots).Error; err != nil {
		return nil, fmt.Errorf("list bookable slots: %w", err)
	}
	return slots, nil
}

func (r *slotRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&model.AvailabilitySlot{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update slot: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *slotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.AvailabilitySlot{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete slot: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *slotRepository) Claim(ctx context.Context, slotID, employerID uuid.UUID) (bool, error) {
	// Single conditional UPDATE: the capacity check and the increment must
	// not be separate statements or the last spot can be oversold.
	res := r.db.WithContext(ctx).
		Model(&model.AvailabilitySlot{}).
		Where("id = ? AND employer_id = ? AND status = ? AND is_active AND current_bookings < max_bookings",
			slotID, employerID, model.SlotStatusAvailable).
		Updates(map[string]any{
			"current_bookings": gorm.Expr("current_bookings + 1"),
			"status": gorm.Expr(
				"CASE WHEN current_bookings + 1 >= max_bookings THEN ? ELSE status END",
				model.SlotStatusBooked),
		})
	if res.Error != nil {
		return false, fmt.Errorf("claim slot: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *slotRepository) Release(ctx context.Context, slotID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&model.AvailabilitySlot{}).
		Where("id = ? AND current_bookings > 0", slotID).
		Updates(map[string]any{
			"current_bookings": gorm.Expr("current_bookings - 1"),
			"status": gorm.Expr(
				"CASE WHEN status = ? THEN ? ELSE status END",
				model.SlotStatusBooked, model.SlotStatusAvailable),
		})
	if res.Error != nil {
		return fmt.Errorf("release slot: %w", res.Error)
	}
	return nil
}
