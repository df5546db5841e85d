package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/simaogato/hostelflow-backend/internal/domain"
	"github.com/simaogato/hostelflow-backend/internal/usecase/booking"
	"github.com/simaogato/hostelflow-backend/internal/usecase/ledger"
	"github.com/simaogato/hostelflow-backend/internal/usecase/revenue"
)

// Distributor computes the revenue split of one booking
type Distributor interface {
	Distribute(b *domain.Booking, apt *domain.Apartment) (*revenue.Distribution, error)
}

// BookingHandler serves the booking lifecycle
type BookingHandler struct {
	Bookings    *booking.BookingService
	Apartments  domain.ApartmentRepository
	Rates       domain.CurrencyConverter
	Distributor Distributor
	Clock       func() time.Time
}

// NewBookingHandler creates a new BookingHandler instance
func NewBookingHandler(
	bookings *booking.BookingService,
	apartments domain.ApartmentRepository,
	rates domain.CurrencyConverter,
	d Distributor,
) *BookingHandler {
	return &BookingHandler{
		Bookings:    bookings,
		Apartments:  apartments,
		Rates:       rates,
		Distributor: d,
		Clock:       time.Now,
	}
}

func (h *BookingHandler) today() time.Time {
	return domain.DateOf(h.Clock().UTC())
}

// List handles GET /bookings
func (h *BookingHandler) List(c *gin.Context) {
	var q BookingListQuery
	if !bindQuery(c, &q) {
		return
	}

	filter := domain.BookingFilter{}
	if q.ApartmentID != "" {
		id := uuid.MustParse(q.ApartmentID)
		filter.ApartmentID = &id
	}
	if q.RoomID != "" {
		id := uuid.MustParse(q.RoomID)
		filter.RoomID = &id
	}
	if q.From != "" {
		from, err := parseDate("from", q.From)
		if err != nil {
			handleError(c, err)
			return
		}
		filter.CheckInFrom = &from
	}
	if q.To != "" {
		to, err := parseDate("to", q.To)
		if err != nil {
			handleError(c, err)
			return
		}
		filter.CheckInTo = &to
	}

	bookings, err := h.Bookings.List(c.Request.Context(), filter)
	if err != nil {
		handleError(c, err)
		return
	}

	today := h.today()
	resp := make([]*BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		resp = append(resp, newBookingResponse(b, today))
	}
	ok(c, resp)
}

// Get handles GET /bookings/:id, including the money position and revenue split
func (h *BookingHandler) Get(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	b, err := h.Bookings.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	resp, err := h.detailed(c.Request.Context(), b)
	if err != nil {
		handleError(c, err)
		return
	}
	ok(c, resp)
}

// Create handles POST /bookings
func (h *BookingHandler) Create(c *gin.Context) {
	var req BookingRequest
	if !bindJSON(c, &req) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		handleError(c, err)
		return
	}

	b, err := h.Bookings.Create(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}
	created(c, newBookingResponse(b, h.today()))
}

// Update handles PUT /bookings/:id
func (h *BookingHandler) Update(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	var req BookingRequest
	if !bindJSON(c, &req) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		handleError(c, err)
		return
	}

	b, err := h.Bookings.Update(c.Request.Context(), id, input)
	if err != nil {
		handleError(c, err)
		return
	}
	ok(c, newBookingResponse(b, h.today()))
}

// Confirm handles POST /bookings/:id/confirm
func (h *BookingHandler) Confirm(c *gin.Context) {
	h.transition(c, h.Bookings.Confirm)
}

// Cancel handles POST /bookings/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	h.transition(c, h.Bookings.Cancel)
}

func (h *BookingHandler) transition(c *gin.Context, apply func(context.Context, uuid.UUID) (*domain.Booking, error)) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	b, err := apply(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	ok(c, newBookingResponse(b, h.today()))
}

// Extend handles POST /bookings/:id/extend
func (h *BookingHandler) Extend(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	var req ExtendRequest
	if !bindJSON(c, &req) {
		return
	}

	b, err := h.Bookings.Extend(c.Request.Context(), id, req.ExtensionDays, req.ExtensionAmount)
	if err != nil {
		handleError(c, err)
		return
	}
	ok(c, newBookingResponse(b, h.today()))
}

// EndEarly handles POST /bookings/:id/end-early
func (h *BookingHandler) EndEarly(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	var req EndEarlyRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	actual := h.today()
	if req.ActualCheckOut != "" {
		parsed, err := parseDate("actualCheckOut", req.ActualCheckOut)
		if err != nil {
			handleError(c, err)
			return
		}
		actual = parsed
	}

	result, err := h.Bookings.EndEarly(c.Request.Context(), id, actual)
	if err != nil {
		handleError(c, err)
		return
	}
	ok(c, newEndEarlyResponse(result, h.today()))
}

// Delete handles DELETE /bookings/:id
func (h *BookingHandler) Delete(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	if err := h.Bookings.Delete(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// TransferSource handles GET /bookings/transfer-source
func (h *BookingHandler) TransferSource(c *gin.Context) {
	var q TransferSourceQuery
	if !bindQuery(c, &q) {
		return
	}

	source, err := h.Bookings.FindTransferSource(c.Request.Context(),
		uuid.MustParse(q.OriginApartmentID), uuid.MustParse(q.OriginRoomID), q.GuestName)
	if err != nil {
		handleError(c, err)
		return
	}

	resp := TransferSourceResponse{Found: source != nil}
	if source != nil {
		resp.Booking = newBookingResponse(source, h.today())
	}
	ok(c, resp)
}

func (h *BookingHandler) detailed(ctx context.Context, b *domain.Booking) (*BookingResponse, error) {
	resp := newBookingResponse(b, h.today())

	position, err := ledger.BookingPosition(b, h.Rates)
	if err != nil {
		return nil, err
	}
	resp.Position = newPositionResponse(position)

	apt, err := h.Apartments.GetByID(ctx, b.ApartmentID)
	if err != nil {
		return nil, err
	}
	dist, err := h.Distributor.Distribute(b, apt)
	if err != nil {
		return nil, err
	}
	resp.Distribution = newDistributionResponse(dist)
	return resp, nil
}
