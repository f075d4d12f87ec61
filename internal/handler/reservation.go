package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nanafes/reservation-api/internal/booking"
	"github.com/nanafes/reservation-api/internal/middleware"
)

// ReservationHandler serves the reservation endpoints. All booking
// rules live in the service; the handler only binds requests, resolves
// the caller identity and maps errors to statuses.
type ReservationHandler struct {
	svc   *booking.Service
	query *booking.Query
}

// NewReservationHandler constructs a ReservationHandler. Both
// dependencies must be non-nil.
func NewReservationHandler(svc *booking.Service, query *booking.Query) *ReservationHandler {
	if svc == nil || query == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{svc: svc, query: query}
}

// Create handles POST /v1/reservations. Authenticated users book for
// themselves; reception-desk machines may relay a line_user_id or book
// anonymously for walk-up visitors.
func (h *ReservationHandler) Create(c echo.Context) error {
	var body struct {
		TimeSlotID uint64 `json:"time_slot_id"`
		LineUserID string `json:"line_user_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.TimeSlotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "time_slot_id is required"})
	}
	caller := middleware.CallerFrom(c)
	res, err := h.svc.CreateReservation(c.Request().Context(), caller, body.TimeSlotID, body.LineUserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// CreateWithTeam handles POST /v1/reservations/with-team. The slot is
// booked and the team registered in one transaction so a failure in
// either leaves nothing behind.
func (h *ReservationHandler) CreateWithTeam(c echo.Context) error {
	var body struct {
		TimeSlotID uint64   `json:"time_slot_id"`
		TeamName   string   `json:"team_name"`
		Members    []string `json:"members"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.TimeSlotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "time_slot_id is required"})
	}
	caller := middleware.CallerFrom(c)
	res, team, err := h.svc.CreateReservationWithTeam(c.Request().Context(), caller, body.TimeSlotID, body.TeamName, body.Members)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"reservation": res, "team": team})
}

// MyReservation handles GET /v1/reservations/my-reservation. A caller
// without an upcoming reservation gets 200 with null fields rather
// than 404 so the app can render the empty state without special
// casing.
func (h *ReservationHandler) MyReservation(c echo.Context) error {
	detail, err := h.query.MyReservation(c.Request().Context(), middleware.CallerFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	detail, err := h.query.ReservationByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// Reschedule handles PATCH /v1/reservations/:id. The only mutable
// field is the slot.
func (h *ReservationHandler) Reschedule(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var body struct {
		TimeSlotID uint64 `json:"time_slot_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.TimeSlotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "time_slot_id is required"})
	}
	res, err := h.svc.RescheduleReservation(c.Request().Context(), middleware.CallerFrom(c), id, body.TimeSlotID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Delete handles DELETE /v1/reservations/:id.
func (h *ReservationHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	if err := h.svc.CancelReservation(c.Request().Context(), middleware.CallerFrom(c), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AddTeam handles POST /v1/reservations/:id/add-team.
func (h *ReservationHandler) AddTeam(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var body struct {
		TeamName string   `json:"team_name"`
		Members  []string `json:"members"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	team, err := h.svc.AttachTeam(c.Request().Context(), middleware.CallerFrom(c), id, body.TeamName, body.Members)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"team": team})
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.ErrBadRequest
	}
	return id, nil
}
