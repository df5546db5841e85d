package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/simaogato/hostelflow-backend/internal/domain"
	"github.com/simaogato/hostelflow-backend/internal/infrastructure/logger"
)

// Error codes returned in the error envelope
const (
	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeNotFound        = "ERR_NOT_FOUND"
	ErrCodeConflict        = "ERR_CONFLICT"
	ErrCodeInvalidState    = "ERR_INVALID_STATE"
	ErrCodeRateUnavailable = "ERR_RATE_UNAVAILABLE"
	ErrCodeLockTimeout     = "ERR_LOCK_TIMEOUT"
	ErrCodeInternal        = "ERR_INTERNAL"
)

// Response is the envelope every endpoint answers with
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo describes a failed request
type ErrorInfo struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

// FieldError is one rejected input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ConflictDetails carries the booking that already holds the room
type ConflictDetails struct {
	ConflictingBooking *BookingResponse `json:"conflictingBooking,omitempty"`
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

func fail(c *gin.Context, status int, code, message string, details interface{}) {
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      code,
			Message:   message,
			RequestID: c.GetString(logger.RequestIDKey),
			Details:   details,
		},
	})
}

func badRequest(c *gin.Context, field, message string) {
	fail(c, http.StatusBadRequest, ErrCodeValidation, message, []FieldError{{Field: field, Message: message}})
}

// handleError maps domain errors onto status codes; anything unrecognized is a logged 500
func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var (
		validationErrs validator.ValidationErrors
		validationErr  *domain.ValidationError
		conflictErr    *domain.ConflictError
		rateErr        *domain.RateUnavailableError
		notFoundErr    *domain.NotFoundError
		stateErr       *domain.StateError
	)

	switch {
	case errors.As(err, &validationErrs):
		details := make([]FieldError, 0, len(validationErrs))
		for _, fe := range validationErrs {
			details = append(details, FieldError{Field: fe.Field(), Message: validationMessage(fe)})
		}
		fail(c, http.StatusBadRequest, ErrCodeValidation, "Request validation failed", details)
	case errors.As(err, &validationErr):
		fail(c, http.StatusBadRequest, ErrCodeValidation, validationErr.Error(),
			[]FieldError{{Field: validationErr.Field, Message: validationErr.Message}})
	case errors.As(err, &conflictErr):
		details := ConflictDetails{}
		if conflictErr.Booking != nil {
			details.ConflictingBooking = newBookingResponse(conflictErr.Booking, today())
		}
		fail(c, http.StatusConflict, ErrCodeConflict, conflictErr.Error(), details)
	case errors.Is(err, domain.ErrRoomUnavailable):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error(), nil)
	case errors.As(err, &rateErr):
		fail(c, http.StatusUnprocessableEntity, ErrCodeRateUnavailable, rateErr.Error(), nil)
	case errors.As(err, &notFoundErr):
		fail(c, http.StatusNotFound, ErrCodeNotFound, notFoundErr.Error(), nil)
	case errors.As(err, &stateErr):
		fail(c, http.StatusConflict, ErrCodeInvalidState, stateErr.Error(), nil)
	case errors.Is(err, domain.ErrLockTimeout):
		fail(c, http.StatusServiceUnavailable, ErrCodeLockTimeout, "Room is busy, try again", nil)
	default:
		logger.FromGin(c).Error("Request failed", zap.Error(err))
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil)
	}
}
