package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nanafes/reservation-api/internal/booking"
	"github.com/nanafes/reservation-api/internal/model"
	"github.com/nanafes/reservation-api/internal/repository"
)

// jst is the timezone visitors think in; list filters take JST dates
// and hours while storage stays in UTC.
var jst = time.FixedZone("JST", 9*60*60)

// TimeSlotHandler serves slot listing for visitors and slot creation
// for the reception-desk machines.
type TimeSlotHandler struct {
	query *booking.Query
	slots *repository.TimeSlotRepo
}

// NewTimeSlotHandler constructs a TimeSlotHandler.
func NewTimeSlotHandler(query *booking.Query, slots *repository.TimeSlotRepo) *TimeSlotHandler {
	if query == nil || slots == nil {
		panic("nil dependency passed to NewTimeSlotHandler")
	}
	return &TimeSlotHandler{query: query, slots: slots}
}

// List handles GET /v1/timeslots?date&startHour&endHour. Without a
// date every slot is returned; with one, the window covers the given
// JST hours of that day (endHour exclusive, defaults 0-24).
func (h *TimeSlotHandler) List(c echo.Context) error {
	window, err := parseWindow(c.QueryParam("date"), c.QueryParam("startHour"), c.QueryParam("endHour"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	slots, err := h.query.ListSlots(c.Request().Context(), window)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, slots)
}

// Get handles GET /v1/timeslots/:id.
func (h *TimeSlotHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}
	slot, err := h.query.SlotByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, slot)
}

// Create handles POST /v1/timeslots (machine only). It accepts a batch
// of slots so the desk can extend the schedule mid-festival without
// rerunning the seeder.
func (h *TimeSlotHandler) Create(c echo.Context) error {
	var body struct {
		Slots []struct {
			SlotTime string `json:"slot_time"`
			SlotType string `json:"slot_type"`
		} `json:"slots"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(body.Slots) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slots is required"})
	}
	slots := make([]model.TimeSlot, 0, len(body.Slots))
	for _, s := range body.Slots {
		at, err := time.Parse(time.RFC3339, s.SlotTime)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot_time must be RFC3339"})
		}
		kind := model.SlotKind(s.SlotType)
		if kind == "" {
			kind = model.SlotReservable
		}
		if kind != model.SlotReservable && kind != model.SlotWalkIn {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot_type"})
		}
		slots = append(slots, model.TimeSlot{
			SlotTime: at.UTC(),
			Kind:     kind,
			Status:   model.SlotAvailable,
		})
	}
	if err := h.slots.InsertBulk(c.Request().Context(), slots); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "slot time already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"created": len(slots)})
}

// parseWindow builds a UTC slot window from JST date and hour query
// parameters.
func parseWindow(date, startHour, endHour string) (model.SlotWindow, error) {
	if date == "" {
		return model.SlotWindow{}, nil
	}
	day, err := time.ParseInLocation("2006-01-02", date, jst)
	if err != nil {
		return model.SlotWindow{}, errors.New("date must be YYYY-MM-DD")
	}
	start, end := 0, 24
	if startHour != "" {
		if start, err = strconv.Atoi(startHour); err != nil || start < 0 || start > 24 {
			return model.SlotWindow{}, errors.New("startHour must be 0-24")
		}
	}
	if endHour != "" {
		if end, err = strconv.Atoi(endHour); err != nil || end < 0 || end > 24 {
			return model.SlotWindow{}, errors.New("endHour must be 0-24")
		}
	}
	if end < start {
		return model.SlotWindow{}, errors.New("endHour must not precede startHour")
	}
	return model.SlotWindow{
		From:  day.Add(time.Duration(start) * time.Hour).UTC(),
		Until: day.Add(time.Duration(end) * time.Hour).UTC(),
	}, nil
}
