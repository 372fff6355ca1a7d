// Package notify delivers candidate-facing interview notifications. Delivery
// is always best-effort: a Gateway reports failure through DeliveryResult and
// never returns an error or panics into the caller, so a flaky SMTP relay can
// not roll back a confirmed booking.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hirelink/hirelink_backend/config"
	"github.com/hirelink/hirelink_backend/internal/model"
	"github.com/hirelink/hirelink_backend/pkg/email"
)

// DeliveryResult is the outcome of a single notification attempt.
type DeliveryResult struct {
	Success bool
	Error   string
}

func delivered() DeliveryResult { return DeliveryResult{Success: true} }

func failed(err error) DeliveryResult {
	return DeliveryResult{Success: false, Error: err.Error()}
}

// Gateway sends interview lifecycle notifications to candidates.
type Gateway interface {
	// SendInvitation delivers the booking link after an invitation is issued.
	SendInvitation(ctx context.Context, b *model.InterviewBooking) DeliveryResult
	// SendConfirmation delivers the interview details after a slot is claimed.
	SendConfirmation(ctx context.Context, b *model.InterviewBooking) DeliveryResult
	// SendReminder delivers the day-before reminder for a confirmed booking.
	SendReminder(ctx context.Context, b *model.InterviewBooking) DeliveryResult
}

// EmailGateway is the SMTP-backed Gateway.
type EmailGateway struct {
	client  *email.Client
	baseURL string
	log     *slog.Logger
}

func NewEmailGateway(client *email.Client, cfg *config.Config, log *slog.Logger) *EmailGateway {
	return &EmailGateway{
		client:  client,
		baseURL: cfg.Booking.BookingBaseURL,
		log:     log.With("component", "notify"),
	}
}

var _ Gateway = (*EmailGateway)(nil)

func (g *EmailGateway) SendInvitation(ctx context.Context, b *model.InterviewBooking) DeliveryResult {
	if b.CandidateEmail == "" {
		return failed(fmt.Errorf("booking %s has no candidate email", b.ID))
	}

	days := int(time.Until(b.TokenExpiresAt).Hours() / 24)
	if days < 1 {
		days = 1
	}

	msg := email.BuildInterviewInvitationEmail(email.InterviewEmailData{
		CandidateName: b.CandidateName,
		Email:         b.CandidateEmail,
		CompanyName:   b.CompanyName,
		JobTitle:      b.JobTitle,
		BookingURL:    fmt.Sprintf("%s/%s", g.baseURL, b.BookingToken),
		ExpiresInDays: days,
	})

	if err := g.client.Send(ctx, msg); err != nil {
		g.log.Warn("invitation email failed", "booking_id", b.ID, "err", err)
		return failed(err)
	}
	return delivered()
}

func (g *EmailGateway) SendConfirmation(ctx context.Context, b *model.InterviewBooking) DeliveryResult {
	if b.CandidateEmail == "" {
		return failed(fmt.Errorf("booking %s has no candidate email", b.ID))
	}

	msg := email.BuildInterviewConfirmationEmail(email.InterviewEmailData{
		CandidateName:  b.CandidateName,
		Email:          b.CandidateEmail,
		CompanyName:    b.CompanyName,
		JobTitle:       b.JobTitle,
		ScheduledAt:    formatScheduledAt(b),
		Timezone:       b.Timezone,
		Duration:       b.DurationMinutes,
		InterviewType:  string(b.InterviewType),
		LocationOrLink: locationOrLink(b),
		Instructions:   b.InterviewInstructions,
	})

	if err := g.client.Send(ctx, msg); err != nil {
		g.log.Warn("confirmation email failed", "booking_id", b.ID, "err", err)
		return failed(err)
	}
	return delivered()
}

func (g *EmailGateway) SendReminder(ctx context.Context, b *model.InterviewBooking) DeliveryResult {
	if b.CandidateEmail == "" {
		return failed(fmt.Errorf("booking %s has no candidate email", b.ID))
	}

	msg := email.BuildInterviewReminderEmail(email.InterviewEmailData{
		CandidateName: b.CandidateName,
		Email:         b.CandidateEmail,
		CompanyName:   b.CompanyName,
		JobTitle:      b.JobTitle,
		ScheduledAt:   formatScheduledAt(b),
		Timezone:      b.Timezone,
		InterviewType: string(b.InterviewType),
	})

	if err := g.client.Send(ctx, msg); err != nil {
		g.log.Warn("reminder email failed", "booking_id", b.ID, "err", err)
		return failed(err)
	}
	return delivered()
}

func formatScheduledAt(b *model.InterviewBooking) string {
	if b.ScheduledAt == nil {
		return ""
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return b.ScheduledAt.In(loc).Format("Monday, January 2, 2006 at 15:04")
}

func locationOrLink(b *model.InterviewBooking) string {
	switch b.InterviewType {
	case model.MeetingTypeVideo:
		return b.InterviewVideoLink
	case model.MeetingTypePhone:
		return b.InterviewPhone
	case model.MeetingTypeInPerson:
		return b.InterviewLocation
	}
	return ""
}
