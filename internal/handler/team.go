package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nanafes/reservation-api/internal/booking"
)

// TeamHandler serves the team endpoints.
type TeamHandler struct {
	svc   *booking.Service
	query *booking.Query
}

// NewTeamHandler constructs a TeamHandler.
func NewTeamHandler(svc *booking.Service, query *booking.Query) *TeamHandler {
	if svc == nil || query == nil {
		panic("nil dependency passed to NewTeamHandler")
	}
	return &TeamHandler{svc: svc, query: query}
}

// Get handles GET /v1/teams/:id.
func (h *TeamHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid team id"})
	}
	team, err := h.query.TeamByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, team)
}

// Update handles PATCH /v1/teams/:id. Name, headcount and the member
// list are replaced wholesale; the edit rules are looser than creation
// so staff can fix records on site.
func (h *TeamHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid team id"})
	}
	var body struct {
		Name      string   `json:"name"`
		Headcount int      `json:"headcount"`
		Members   []string `json:"members"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	team, err := h.svc.ReplaceTeam(c.Request().Context(), id, body.Name, body.Headcount, body.Members)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, team)
}
