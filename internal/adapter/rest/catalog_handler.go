package rest

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/simaogato/hostelflow-backend/internal/domain"
	"github.com/simaogato/hostelflow-backend/internal/usecase/booking"
)

// CatalogHandler serves apartments, rooms and room availability
type CatalogHandler struct {
	Apartments domain.ApartmentRepository
	Bookings   *booking.BookingService
	Clock      func() time.Time
}

// NewCatalogHandler creates a new CatalogHandler instance
func NewCatalogHandler(apartments domain.ApartmentRepository, bookings *booking.BookingService) *CatalogHandler {
	return &CatalogHandler{
		Apartments: apartments,
		Bookings:   bookings,
		Clock:      time.Now,
	}
}

// ListApartments handles GET /apartments
func (h *CatalogHandler) ListApartments(c *gin.Context) {
	apartments, err := h.Apartments.List(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	resp := make([]ApartmentResponse, 0, len(apartments))
	for _, apt := range apartments {
		resp = append(resp, newApartmentResponse(apt))
	}
	ok(c, resp)
}

// GetApartment handles GET /apartments/:id
func (h *CatalogHandler) GetApartment(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	apt, err := h.Apartments.GetByID(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	ok(c, newApartmentResponse(apt))
}

// ListRooms handles GET /apartments/:id/rooms
func (h *CatalogHandler) ListRooms(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	apt, err := h.Apartments.GetByID(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	rooms := make([]RoomResponse, 0, len(apt.Rooms))
	for _, r := range apt.Rooms {
		rooms = append(rooms, newRoomResponse(r))
	}
	ok(c, rooms)
}

// CheckAvailability handles GET /rooms/:roomId/availability
func (h *CatalogHandler) CheckAvailability(c *gin.Context) {
	roomID, valid := pathID(c, "roomId")
	if !valid {
		return
	}

	var q AvailabilityQuery
	if !bindQuery(c, &q) {
		return
	}
	checkIn, err := parseDate("check_in", q.CheckIn)
	if err != nil {
		handleError(c, err)
		return
	}
	checkOut, err := parseDate("check_out", q.CheckOut)
	if err != nil {
		handleError(c, err)
		return
	}
	var exclude *uuid.UUID
	if q.ExcludeBookingID != "" {
		id := uuid.MustParse(q.ExcludeBookingID)
		exclude = &id
	}

	conflict, err := h.Bookings.CheckAvailability(c.Request.Context(), roomID, checkIn, checkOut, exclude)
	if err != nil {
		handleError(c, err)
		return
	}

	resp := AvailabilityResponse{
		RoomID:    roomID.String(),
		CheckIn:   date(checkIn),
		CheckOut:  date(checkOut),
		Available: conflict == nil,
	}
	if conflict != nil {
		resp.ConflictingBooking = newBookingResponse(conflict, domain.DateOf(h.Clock().UTC()))
	}
	ok(c, resp)
}

// pathID parses a uuid path parameter, writing the 400 itself on failure
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, name, "Invalid UUID format")
		return uuid.Nil, false
	}
	return id, true
}
