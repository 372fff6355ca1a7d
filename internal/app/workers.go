package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/hirelink/hirelink_backend/config"
	"github.com/hirelink/hirelink_backend/internal/model"
	"github.com/hirelink/hirelink_backend/internal/notify"
	"github.com/hirelink/hirelink_backend/internal/repository"
	"github.com/hirelink/hirelink_backend/internal/service/booking"
	svcsms "github.com/hirelink/hirelink_backend/pkg/sms"
)

// WorkerModule registers all NATS event workers and the expiry sweeper.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc       fx.Lifecycle
	Cfg      *config.Config
	NC       *nats.Conn
	Bookings repository.BookingRepository
	Gateway  notify.Gateway
	SMS      *svcsms.Client
	Booking  booking.Service
}

func RegisterWorkers(p WorkerParams) {
	sweeperDone := make(chan struct{})

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			startInvitationWorker(p.NC, p.Bookings, p.Gateway)
			startReminderWorker(p.NC, p.Bookings, p.SMS)
			go runExpirySweeper(p.Cfg, p.Booking, sweeperDone)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(sweeperDone)
			// NATS drain handled by ProvideNatsClient
			return nil
		},
	})
}

// ---------------------------------------------------------------------------
// invitation_worker
// ---------------------------------------------------------------------------

func startInvitationWorker(nc *nats.Conn, bookings repository.BookingRepository, gateway notify.Gateway) {
	_, err := nc.Subscribe("hirelink.booking.created.*", func(msg *nats.Msg) {
		id, err := uuid.Parse(strings.TrimSpace(string(msg.Data)))
		if err != nil {
			return
		}

		ctx := context.Background()

		b, err := bookings.GetByID(ctx, id)
		if err != nil {
			slog.Warn("invitation_worker: booking not found", "id", id, "err", err)
			return
		}
		if b.Status != model.BookingStatusPending || b.InvitationSentAt != nil {
			return
		}

		if res := gateway.SendInvitation(ctx, b); res.Success {
			_ = bookings.MarkNotified(ctx, b.ID, "invitation_sent_at", time.Now())
		} else {
			slog.Warn("invitation_worker: delivery failed", "booking_id", b.ID, "err", res.Error)
		}
	})
	if err != nil {
		slog.Error("invitation_worker: subscribe booking.created failed", "err", err)
		return
	}

	slog.Info("invitation_worker: started")
}

// ---------------------------------------------------------------------------
// reminder_worker
// ---------------------------------------------------------------------------

func startReminderWorker(nc *nats.Conn, bookings repository.BookingRepository, smsCli *svcsms.Client) {
	_, err := nc.Subscribe("hirelink.booking.confirmed.*", func(msg *nats.Msg) {
		id, err := uuid.Parse(strings.TrimSpace(string(msg.Data)))
		if err != nil {
			return
		}

		ctx := context.Background()

		b, err := bookings.GetByID(ctx, id)
		if err != nil {
			slog.Warn("reminder_worker: booking not found", "id", id, "err", err)
			return
		}
		if b.Status != model.BookingStatusConfirmed || b.ReminderSentAt != nil {
			return
		}
		if b.CandidatePhone == "" || b.ScheduledAt == nil || !smsCli.IsEnabled() {
			return
		}

		loc, err := time.LoadLocation(b.Timezone)
		if err != nil {
			loc = time.UTC
		}
		when := b.ScheduledAt.In(loc).Format("Jan 2 at 15:04")

		if err := smsCli.SendReminder(ctx, b.CandidatePhone, b.CompanyName, when); err != nil {
			slog.Warn("reminder_worker: sms failed", "booking_id", b.ID, "err", err)
			return
		}
		_ = bookings.MarkNotified(ctx, b.ID, "reminder_sent_at", time.Now())
	})
	if err != nil {
		slog.Error("reminder_worker: subscribe booking.confirmed failed", "err", err)
		return
	}

	slog.Info("reminder_worker: started")
}

// ---------------------------------------------------------------------------
// expiry sweeper
// ---------------------------------------------------------------------------

func runExpirySweeper(cfg *config.Config, svc booking.Service, done <-chan struct{}) {
	interval := time.Duration(cfg.Booking.SweepIntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	slog.Info("expiry_sweeper: started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := svc.ExpireStaleInvitations(context.Background()); err != nil {
				slog.Warn("expiry_sweeper: sweep failed", "err", err)
			}
		case <-done:
			return
		}
	}
}
