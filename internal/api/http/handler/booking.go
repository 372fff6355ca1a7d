package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/hirelink/hirelink_backend/internal/service/booking"
	"github.com/hirelink/hirelink_backend/internal/service/invitation"
	"github.com/hirelink/hirelink_backend/internal/service/slot"
)

type BookingHandler struct {
	bookings booking.Service
	invites  invitation.Service
	slots    slot.Service
}

func NewBookingHandler(bookings booking.Service, invites invitation.Service, slots slot.Service) *BookingHandler {
	return &BookingHandler{bookings: bookings, invites: invites, slots: slots}
}

func mapBookingError(c fiber.Ctx, err error) error {
	var already *booking.AlreadyBookedError
	switch {
	case errors.As(err, &already):
		payload := fiber.Map{"error": already.Error()}
		if already.Existing != nil {
			payload["booking"] = already.Existing
		}
		return c.Status(fiber.StatusConflict).JSON(payload)
	case errors.Is(err, invitation.ErrTokenNotFound):
		// Unknown and expired tokens are indistinguishable on purpose.
		return notFound(c, "booking not found")
	case errors.Is(err, invitation.ErrNoAvailability),
		errors.Is(err, booking.ErrSlotUnavailable),
		errors.Is(err, booking.ErrInvitationClosed),
		errors.Is(err, booking.ErrInvalidTransition):
		return conflict(c, err.Error())
	case errors.Is(err, booking.ErrNotFound):
		return notFound(c, err.Error())
	default:
		return internalError(c)
	}
}

// ---------------------------------------------------------------------------
// Public candidate endpoints
// ---------------------------------------------------------------------------

// GET /interview-booking/slots?token=
func (h *BookingHandler) SlotsForToken(c fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return badRequest(c, "token is required")
	}

	b, err := h.invites.Resolve(c.Context(), token)
	if err != nil {
		return mapBookingError(c, err)
	}

	groups, err := h.slots.ListAvailableForBooking(c.Context(), b.EmployerID, nil, nil)
	if err != nil {
		return mapSlotError(c, err)
	}

	return ok(c, fiber.Map{
		"company_name": b.CompanyName,
		"job_title":    b.JobTitle,
		"status":       b.Status,
		"expires_at":   b.TokenExpiresAt,
		"available":    groups,
	})
}

// POST /interview-booking/book
func (h *BookingHandler) Book(c fiber.Ctx) error {
	var body struct {
		Token          string `json:"token"`
		SlotID         string `json:"slot_id"`
		CandidateNotes string `json:"candidate_notes"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Token == "" {
		return badRequest(c, "token is required")
	}
	slotID, err := uuid.Parse(body.SlotID)
	if err != nil {
		return badRequest(c, "invalid slot_id")
	}

	b, err := h.bookings.Book(c.Context(), booking.BookRequest{
		Token:  body.Token,
		SlotID: slotID,
		Notes:  body.CandidateNotes,
	})
	if err != nil {
		return mapBookingError(c, err)
	}
	return ok(c, b)
}

// GET /interview-booking/status/:token
func (h *BookingHandler) Status(c fiber.Ctx) error {
	b, err := h.bookings.Status(c.Context(), c.Params("token"))
	if err != nil {
		return mapBookingError(c, err)
	}
	return ok(c, b)
}

// ---------------------------------------------------------------------------
// Employer endpoints
// ---------------------------------------------------------------------------

// POST /interview-booking/invitations
func (h *BookingHandler) Issue(c fiber.Ctx) error {
	employerID, valid := employerIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		CandidateID          string `json:"candidate_id"`
		JobID                string `json:"job_id"`
		ApplicationID        string `json:"application_id"`
		RecruitmentPartnerID string `json:"recruitment_partner_id"`
		CandidateName        string `json:"candidate_name"`
		CandidateEmail       string `json:"candidate_email"`
		CandidatePhone       string `json:"candidate_phone"`
		CompanyName          string `json:"company_name"`
		JobTitle             string `json:"job_title"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	candidateID, err := uuid.Parse(body.CandidateID)
	if err != nil {
		return badRequest(c, "invalid candidate_id")
	}
	jobID, err := uuid.Parse(body.JobID)
	if err != nil {
		return badRequest(c, "invalid job_id")
	}
	applicationID, err := uuid.Parse(body.ApplicationID)
	if err != nil {
		return badRequest(c, "invalid application_id")
	}
	if body.CandidateEmail == "" {
		return badRequest(c, "candidate_email is required")
	}

	req := invitation.IssueRequest{
		CandidateID:    candidateID,
		EmployerID:     employerID,
		JobID:          jobID,
		ApplicationID:  applicationID,
		CandidateName:  body.CandidateName,
		CandidateEmail: body.CandidateEmail,
		CandidatePhone: body.CandidatePhone,
		CompanyName:    body.CompanyName,
		JobTitle:       body.JobTitle,
	}
	if body.RecruitmentPartnerID != "" {
		partnerID, err := uuid.Parse(body.RecruitmentPartnerID)
		if err != nil {
			return badRequest(c, "invalid recruitment_partner_id")
		}
		req.RecruitmentPartnerID = &partnerID
	}

	b, err := h.invites.Issue(c.Context(), req)
	if err != nil {
		return mapBookingError(c, err)
	}

	return created(c, fiber.Map{
		"booking":     b,
		"booking_url": h.invites.BookingURL(b.BookingToken),
	})
}

// GET /interview-booking
func (h *BookingHandler) List(c fiber.Ctx) error {
	employerID, valid := employerIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}

	bookings, err := h.bookings.ListForEmployer(c.Context(), employerID)
	if err != nil {
		return mapBookingError(c, err)
	}
	return ok(c, bookings)
}

// PATCH /interview-booking/:id/cancel
func (h *BookingHandler) Cancel(c fiber.Ctx) error {
	employerID, valid := employerIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}
	bookingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid booking id")
	}

	if err := h.bookings.Cancel(c.Context(), employerID, bookingID); err != nil {
		return mapBookingError(c, err)
	}
	return noContent(c)
}

// PATCH /interview-booking/:id/complete
func (h *BookingHandler) Complete(c fiber.Ctx) error {
	employerID, valid := employerIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}
	bookingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid booking id")
	}

	if err := h.bookings.Complete(c.Context(), employerID, bookingID); err != nil {
		return mapBookingError(c, err)
	}
	return noContent(c)
}
