package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/hirelink/hirelink_backend/internal/api/http/handler"
)

func (r *Router) registerBookingRoutes(
	api fiber.Router,
	bh *handler.BookingHandler,
	authRequired fiber.Handler,
	publicLimiter fiber.Handler,
) {
	ib := api.Group("/interview-booking")

	// Public, token-bearing candidate endpoints.
	ib.Get("/slots", publicLimiter, bh.SlotsForToken)
	ib.Post("/book", publicLimiter, bh.Book)
	ib.Get("/status/:token", publicLimiter, bh.Status)

	// Employer side.
	ib.Get("/", authRequired, bh.List)
	ib.Post("/invitations", authRequired, bh.Issue)

	b := ib.Group("/:id", authRequired)
	b.Patch("/cancel", bh.Cancel)
	b.Patch("/complete", bh.Complete)
}
