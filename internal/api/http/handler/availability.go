package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/hirelink/hirelink_backend/internal/service/slot"
)

type AvailabilityHandler struct {
	svc slot.Service
}

func NewAvailabilityHandler(svc slot.Service) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc}
}

func mapSlotError(c fiber.Ctx, err error) error {
	var overlap *slot.OverlapError
	switch {
	case errors.As(err, &overlap):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":     overlap.Error(),
			"conflicts": overlap.Conflicts,
		})
	case errors.Is(err, slot.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, slot.ErrSlotHasBookings),
		errors.Is(err, slot.ErrMaxBelowCurrent):
		return conflict(c, err.Error())
	case errors.Is(err, slot.ErrInvalidTime),
		errors.Is(err, slot.ErrInvalidTimeRange),
		errors.Is(err, slot.ErrInvalidDuration),
		errors.Is(err, slot.ErrInvalidMeetingType),
		errors.Is(err, slot.ErrInvalidTimezone),
		errors.Is(err, slot.ErrPastDate),
		errors.Is(err, slot.ErrInvalidRecurrence):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

type slotBody struct {
	Date            string `json:"date"` // "2006-01-02"
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	DurationMinutes int    `json:"duration_minutes"`
	Timezone        string `json:"timezone"`

	Title          string `json:"title"`
	MeetingType    string `json:"meeting_type"`
	MeetingLink    string `json:"meeting_link"`
	MeetingPhone   string `json:"meeting_phone"`
	MeetingAddress string `json:"meeting_address"`
	Instructions   string `json:"instructions"`
	BufferMinutes  int    `json:"buffer_minutes"`
	MaxBookings    int    `json:"max_bookings"`
}

func (b slotBody) toCreateRequest() (slot.CreateRequest, error) {
	date, err := time.Parse("2006-01-02", b.Date)
	if err != nil {
		return slot.CreateRequest{}, errors.New("date must be YYYY-MM-DD")
	}
	return slot.CreateRequest{
		Date:            date,
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		DurationMinutes: b.DurationMinutes,
		Timezone:        b.Timezone,
		Title:           b.Title,
		MeetingType:     b.MeetingType,
		MeetingLink:     b.MeetingLink,
		MeetingPhone:    b.MeetingPhone,
		MeetingAddress:  b.MeetingAddress,
		Instructions:    b.Instructions,
		BufferMinutes:   b.BufferMinutes,
		MaxBookings:     b.MaxBookings,
	}, nil
}

// GET /availability
func (h *AvailabilityHandler) List(c fiber.Ctx) error {
	employerID, valid := employerIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}

	var q struct {
		From   string `query:"from"`
		To     string `query:"to"`
		Status string `query:"status"`
	}
	_ = c.Bind().Query(&q)

	req := slot.ListRequest{}
	if q.From != "" {
		if t, err := time.Parse("2006-01-02", q.From); err == nil {
			req.From = &t
		}
	}
	if q.To != "" {
		if t, err := time.Parse("2006-01-02", q.To); err == nil {
			req.To = &t
		}
	}
	if q.Status != "" {
		req.Status = &q.Status
	}

	slots, err := h.svc.List(c.Context(), employerID, req)
	if err != nil {
		return mapSlotError(c, err)
	}
	return ok(c, slots)
}

// POST /availability
func (h *AvailabilityHandler) Create(c fiber.Ctx) error {
	employerID, valid := employerIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}

	var body slotBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	req, err := body.toCreateRequest()
	if err != nil {
		return badRequest(c, err.Error())
	}

	sl, err := h.svc.Create(c.Context(), employerID, req)
	if err != nil {
		return mapSlotError(c, err)
	}
	return created(c, sl)
}

// POST /availability/batch
func (h *AvailabilityHandler) CreateBatch(c fiber.Ctx) error {
	employerID, valid := employerIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		Slots []slotBody `json:"slots"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if len(body.Slots) == 0 {
		return badRequest(c, "slots must not be empty")
	}

	reqs := make([]slot.CreateRequest, 0, len(body.Slots))
	for _, sb := range body.Slots {
		req, err := sb.toCreateRequest()
		if err != nil {
			return badRequest(c, err.Error())
		}
		reqs = append(reqs, req)
	}

	res, err := h.svc.CreateBatch(c.Context(), employerID, reqs)
	if err != nil {
		return mapSlotError(c, err)
	}
	return created(c, res)
}

// PUT /availability/:id
func (h *AvailabilityHandler) Update(c fiber.Ctx) error {
	employerID, valid := employerIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}
	slotID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid slot id")
	}

	var body struct {
		Date            *string `json:"date"`
		StartTime       *string `json:"start_time"`
		EndTime         *string `json:"end_time"`
		DurationMinutes *int    `json:"duration_minutes"`
		Timezone        *string `json:"timezone"`

		Title          *string `json:"title"`
		MeetingType    *string `json:"meeting_type"`
		MeetingLink    *string `json:"meeting_link"`
		MeetingPhone   *string `json:"meeting_phone"`
		MeetingAddress *string `json:"meeting_address"`
		Instructions   *string `json:"instructions"`
		BufferMinutes  *int    `json:"buffer_minutes"`
		MaxBookings    *int    `json:"max_bookings"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	req := slot.UpdateRequest{
		StartTime:       body.StartTime,
		EndTime:         body.EndTime,
		DurationMinutes: body.DurationMinutes,
		Timezone:        body.Timezone,
		Title:           body.Title,
		MeetingType:     body.MeetingType,
		MeetingLink:     body.MeetingLink,
		MeetingPhone:    body.MeetingPhone,
		MeetingAddress:  body.MeetingAddress,
		Instructions:    body.Instructions,
		BufferMinutes:   body.BufferMinutes,
		MaxBookings:     body.MaxBookings,
	}
	if body.Date != nil {
		d, err := time.Parse("2006-01-02", *body.Date)
		if err != nil {
			return badRequest(c, "date must be YYYY-MM-DD")
		}
		req.Date = &d
	}

	updated, err := h.svc.Update(c.Context(), employerID, slotID, req)
	if err != nil {
		return mapSlotError(c, err)
	}
	return ok(c, updated)
}

// DELETE /availability/:id
func (h *AvailabilityHandler) Delete(c fiber.Ctx) error {
	employerID, valid := employerIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}
	slotID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid slot id")
	}

	if err := h.svc.Delete(c.Context(), employerID, slotID); err != nil {
		return mapSlotError(c, err)
	}
	return noContent(c)
}

// PATCH /availability/:id/toggle-status
func (h *AvailabilityHandler) ToggleStatus(c fiber.Ctx) error {
	employerID, valid := employerIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}
	slotID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid slot id")
	}

	updated, err := h.svc.ToggleActive(c.Context(), employerID, slotID)
	if err != nil {
		return mapSlotError(c, err)
	}
	return ok(c, fiber.Map{"id": updated.ID, "is_active": updated.IsActive})
}

// POST /availability/:id/recurring
func (h *AvailabilityHandler) Recurring(c fiber.Ctx) error {
	employerID, valid := employerIDFromLocals(c)
	if !valid {
		return unauthorized(c)
	}
	slotID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid slot id")
	}

	var body struct {
		Weekdays []int  `json:"weekdays"` // 0=Sunday .. 6=Saturday
		EndDate  string `json:"end_date"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	end, err := time.Parse("2006-01-02", body.EndDate)
	if err != nil {
		return badRequest(c, "end_date must be YYYY-MM-DD")
	}
	req := slot.RecurringRequest{EndDate: end}
	for _, wd := range body.Weekdays {
		if wd < 0 || wd > 6 {
			return badRequest(c, "weekdays must be 0..6")
		}
		req.Weekdays = append(req.Weekdays, time.Weekday(wd))
	}

	occurrences, err := h.svc.ExpandRecurring(c.Context(), employerID, slotID, req)
	if err != nil {
		return mapSlotError(c, err)
	}
	return created(c, occurrences)
}

// GET /availability/booking/available  (public)
func (h *AvailabilityHandler) PublicAvailable(c fiber.Ctx) error {
	var q struct {
		EmployerID string `query:"employer_id"`
		From       string `query:"from"`
		To         string `query:"to"`
	}
	_ = c.Bind().Query(&q)

	employerID, err := uuid.Parse(q.EmployerID)
	if err != nil {
		return badRequest(c, "employer_id is required")
	}

	var from, to *time.Time
	if q.From != "" {
		if t, err := time.Parse("2006-01-02", q.From); err == nil {
			from = &t
		}
	}
	if q.To != "" {
		if t, err := time.Parse("2006-01-02", q.To); err == nil {
			to = &t
		}
	}

	groups, err := h.svc.ListAvailableForBooking(c.Context(), employerID, from, to)
	if err != nil {
		return mapSlotError(c, err)
	}
	return ok(c, groups)
}
