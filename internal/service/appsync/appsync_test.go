package appsync

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hirelink/hirelink_backend/internal/model"
	"github.com/hirelink/hirelink_backend/internal/repository/repotest"
)

func discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

func summary() InterviewSummary {
	return InterviewSummary{
		ScheduledAt: time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC),
		Type:        model.MeetingTypeVideo,
		Timezone:    "UTC",
	}
}

func TestMarkInterviewScheduled(t *testing.T) {
	apps := repotest.NewApplicationRepo()
	svc := New(apps, discard())

	app := apps.Seed(model.JobApplication{
		CandidateID: uuid.New(),
		JobID:       uuid.New(),
		Status:      model.ApplicationStatusUnderReview,
	})

	if err := svc.MarkInterviewScheduled(context.Background(), app.CandidateID, app.ID, summary()); err != nil {
		t.Fatalf("MarkInterviewScheduled() error: %v", err)
	}

	got, err := apps.GetForCandidate(context.Background(), app.CandidateID, app.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != model.ApplicationStatusInterviewScheduled {
		t.Errorf("Status = %s, want interview_scheduled", got.Status)
	}
	if got.InterviewScheduledAt == nil || !got.InterviewScheduledAt.Equal(summary().ScheduledAt) {
		t.Errorf("InterviewScheduledAt = %v, want %v", got.InterviewScheduledAt, summary().ScheduledAt)
	}
	if got.InterviewType != model.MeetingTypeVideo || got.InterviewTimezone != "UTC" {
		t.Errorf("summary fields = %s/%s", got.InterviewType, got.InterviewTimezone)
	}
}

func TestMarkInterviewScheduled_MissingApplicationSwallowed(t *testing.T) {
	svc := New(repotest.NewApplicationRepo(), discard())

	if err := svc.MarkInterviewScheduled(context.Background(), uuid.New(), uuid.New(), summary()); err != nil {
		t.Errorf("missing application returned error: %v", err)
	}
}

func TestMarkInterviewScheduled_InvalidTransition(t *testing.T) {
	apps := repotest.NewApplicationRepo()
	svc := New(apps, discard())

	app := apps.Seed(model.JobApplication{
		CandidateID: uuid.New(),
		JobID:       uuid.New(),
		Status:      model.ApplicationStatusHired,
	})

	err := svc.MarkInterviewScheduled(context.Background(), app.CandidateID, app.ID, summary())
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("error = %v, want ErrInvalidTransition", err)
	}

	got, _ := apps.GetForCandidate(context.Background(), app.CandidateID, app.ID)
	if got.Status != model.ApplicationStatusHired {
		t.Errorf("Status = %s, terminal state must not change", got.Status)
	}
}

func TestMarkInterviewScheduled_RefreshesExistingSummary(t *testing.T) {
	apps := repotest.NewApplicationRepo()
	svc := New(apps, discard())

	earlier := time.Date(2026, 9, 5, 10, 0, 0, 0, time.UTC)
	app := apps.Seed(model.JobApplication{
		CandidateID:          uuid.New(),
		JobID:                uuid.New(),
		Status:               model.ApplicationStatusInterviewScheduled,
		InterviewScheduledAt: &earlier,
	})

	if err := svc.MarkInterviewScheduled(context.Background(), app.CandidateID, app.ID, summary()); err != nil {
		t.Fatalf("refresh returned error: %v", err)
	}

	got, _ := apps.GetForCandidate(context.Background(), app.CandidateID, app.ID)
	if got.InterviewScheduledAt == nil || !got.InterviewScheduledAt.Equal(summary().ScheduledAt) {
		t.Errorf("InterviewScheduledAt = %v, want refreshed %v", got.InterviewScheduledAt, summary().ScheduledAt)
	}
}
