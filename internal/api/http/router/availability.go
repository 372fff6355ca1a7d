package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/hirelink/hirelink_backend/internal/api/http/handler"
)

func (r *Router) registerAvailabilityRoutes(
	api fiber.Router,
	ah *handler.AvailabilityHandler,
	authRequired fiber.Handler,
	publicLimiter fiber.Handler,
) {
	// Public: the candidate-facing calendar. Registered before the
	// authenticated group so it stays outside the auth chain.
	api.Get("/availability/booking/available", publicLimiter, ah.PublicAvailable)

	avail := api.Group("/availability", authRequired)

	avail.Get("/", ah.List)
	avail.Post("/", ah.Create)
	avail.Post("/batch", ah.CreateBatch)

	s := avail.Group("/:id")
	s.Put("/", ah.Update)
	s.Delete("/", ah.Delete)
	s.Patch("/toggle-status", ah.ToggleStatus)
	s.Post("/recurring", ah.Recurring)
}
