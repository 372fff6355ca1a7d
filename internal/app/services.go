package app

import (
	"log/slog"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/hirelink/hirelink_backend/config"
	"github.com/hirelink/hirelink_backend/internal/notify"
	"github.com/hirelink/hirelink_backend/internal/repository"
	"github.com/hirelink/hirelink_backend/internal/service/appsync"
	"github.com/hirelink/hirelink_backend/internal/service/booking"
	"github.com/hirelink/hirelink_backend/internal/service/invitation"
	"github.com/hirelink/hirelink_backend/internal/service/slot"
	"github.com/hirelink/hirelink_backend/pkg/email"
	pasetotoken "github.com/hirelink/hirelink_backend/pkg/paseto"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideSlotService,
		ProvideInvitationService,
		ProvideAppSyncService,
		ProvideNotifyGateway,
		ProvideBookingService,
		ProvidePasetoManager,
	),
)

func ProvideSlotService(slots repository.SlotRepository) slot.Service {
	return slot.New(slots)
}

func ProvideInvitationService(
	bookings repository.BookingRepository,
	slots repository.SlotRepository,
	nc *nats.Conn,
	cfg *config.Config,
) invitation.Service {
	return invitation.New(bookings, slots, nc, cfg)
}

func ProvideAppSyncService(apps repository.ApplicationRepository) appsync.Service {
	return appsync.New(apps, slog.Default())
}

func ProvideNotifyGateway(emailClient *email.Client, cfg *config.Config) notify.Gateway {
	return notify.NewEmailGateway(emailClient, cfg, slog.Default())
}

func ProvideBookingService(
	bookings repository.BookingRepository,
	slots repository.SlotRepository,
	invites invitation.Service,
	statusSync appsync.Service,
	gateway notify.Gateway,
	nc *nats.Conn,
) booking.Service {
	return booking.New(bookings, slots, invites, statusSync, gateway, nc, slog.Default())
}

func ProvidePasetoManager(cfg *config.Config) (*pasetotoken.Manager, error) {
	return pasetotoken.NewPasetoManager(cfg)
}
