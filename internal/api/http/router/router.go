package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/hirelink/hirelink_backend/config"
	"github.com/hirelink/hirelink_backend/internal/api/http/handler"
	"github.com/hirelink/hirelink_backend/internal/api/http/middleware"
	"github.com/hirelink/hirelink_backend/internal/service/booking"
	"github.com/hirelink/hirelink_backend/internal/service/invitation"
	"github.com/hirelink/hirelink_backend/internal/service/slot"
	pasetotoken "github.com/hirelink/hirelink_backend/pkg/paseto"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg        *config.Config
	Redis      *redis.Client
	SlotSvc    slot.Service
	BookingSvc booking.Service
	InviteSvc  invitation.Service
	PasetoMgr  *pasetotoken.Manager
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	r.registerSystemRoutes(app)

	authRequired := middleware.AuthRequired(r.p.PasetoMgr, r.p.Redis)
	publicLimiter := middleware.NewLimiterWithRedis(r.p.Redis)

	availabilityH := handler.NewAvailabilityHandler(r.p.SlotSvc)
	bookingH := handler.NewBookingHandler(r.p.BookingSvc, r.p.InviteSvc, r.p.SlotSvc)

	api := app.Group("/api/v1")

	r.registerAvailabilityRoutes(api, availabilityH, authRequired, publicLimiter)
	r.registerBookingRoutes(api, bookingH, authRequired, publicLimiter)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool {
			return r.p.Redis.Ping(c.Context()).Err() == nil
		},
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
