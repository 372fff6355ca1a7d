package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hirelink/hirelink_backend/internal/model"
)

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) GetForCandidate(ctx context.Context, candidateID, applicationID uuid.UUID) (*model.JobApplication, error) {
	var a model.JobApplication
	err := r.db.WithContext(ctx).
		First(&a, "id = ? AND candidate_id = ?", applicationID, candidateID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *applicationRepository) Save(ctx context.Context, a *model.JobApplication) error {
	if err := r.db.WithContext(ctx).Save(a).Error; err != nil {
		return fmt.Errorf("save application: %w", err)
	}
	return nil
}
