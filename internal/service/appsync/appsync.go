// Package appsync projects confirmed interviews onto the candidate's job
// application pipeline. The projection is best-effort: the booking that
// triggered it is already committed, so nothing here may fail it.
package appsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hirelink/hirelink_backend/internal/model"
	"github.com/hirelink/hirelink_backend/internal/repository"
)

var ErrInvalidTransition = errors.New("application status cannot move to interview_scheduled")

// InterviewSummary is the denormalized view written onto the application.
type InterviewSummary struct {
	ScheduledAt time.Time
	Type        model.MeetingType
	Timezone    string
}

type Service interface {
	// MarkInterviewScheduled moves the application to interview_scheduled and
	// stamps the summary. A missing application is logged and swallowed; an
	// application already in interview_scheduled only has its summary
	// refreshed.
	MarkInterviewScheduled(ctx context.Context, candidateID, applicationID uuid.UUID, summary InterviewSummary) error
}

type appsyncService struct {
	apps repository.ApplicationRepository
	log  *slog.Logger
}

func New(apps repository.ApplicationRepository, log *slog.Logger) Service {
	return &appsyncService{apps: apps, log: log.With("component", "appsync")}
}

func (s *appsyncService) MarkInterviewScheduled(ctx context.Context, candidateID, applicationID uuid.UUID, summary InterviewSummary) error {
	app, err := s.apps.GetForCandidate(ctx, candidateID, applicationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("application not found, skipping status sync",
				"candidate_id", candidateID, "application_id", applicationID)
			return nil
		}
		return fmt.Errorf("get application: %w", err)
	}

	if app.Status != model.ApplicationStatusInterviewScheduled {
		if !model.CanTransitionApplication(app.Status, model.ApplicationStatusInterviewScheduled) {
			s.log.Warn("application status transition rejected",
				"application_id", applicationID, "from", app.Status)
			return ErrInvalidTransition
		}
		app.Status = model.ApplicationStatusInterviewScheduled
	}

	at := summary.ScheduledAt
	app.InterviewScheduledAt = &at
	app.InterviewType = summary.Type
	app.InterviewTimezone = summary.Timezone

	if err := s.apps.Save(ctx, app); err != nil {
		return fmt.Errorf("save application: %w", err)
	}
	return nil
}
