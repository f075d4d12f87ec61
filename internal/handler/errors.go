package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nanafes/reservation-api/internal/booking"
	"github.com/nanafes/reservation-api/internal/repository"
)

// respondError translates booking and repository sentinel errors into
// HTTP responses. Every handler funnels service errors through here so
// a given failure always maps to the same status.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, booking.ErrSlotNotReservable):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot not reservable"})
	case errors.Is(err, booking.ErrPastReservation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation time has passed"})
	case errors.Is(err, booking.ErrInvalidArgument):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	case errors.Is(err, booking.ErrSlotTaken):
		return c.JSON(http.StatusConflict, echo.Map{"error": "slot already booked"})
	case errors.Is(err, booking.ErrAlreadyReserved):
		return c.JSON(http.StatusConflict, echo.Map{"error": "caller already has a reservation"})
	case errors.Is(err, booking.ErrTeamExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "team already registered"})
	case errors.Is(err, repository.ErrConflict):
		// UNIQUE-constraint backstop behind the CAS path; same outcome,
		// same status.
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	case errors.Is(err, booking.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, booking.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "login required"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
