package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/nanafes/reservation-api/internal/handler"
	"github.com/nanafes/reservation-api/internal/middleware"
)

// Handlers bundles every handler the router wires up. cmd/server
// constructs them and hands the bundle over in one piece.
type Handlers struct {
	Health      echo.HandlerFunc
	Auth        *handler.AuthHandler
	TimeSlots   *handler.TimeSlotHandler
	Reservation *handler.ReservationHandler
	Team        *handler.TeamHandler
	Score       *handler.ScoreHandler
	Webhook     *handler.WebhookHandler
}

// Register mounts every route on the provided Echo instance. Except
// for the health check and the LINE webhook, the API lives under /v1
// behind CallerAuth, which resolves the caller without rejecting
// anonymous visitors; per-route middleware then tightens access where
// an endpoint needs a logged-in user or a reception-desk machine.
func Register(e *echo.Echo, h Handlers, jwtSecret, apiKeyHash string) {
	// Health check used by load balancers and monitoring.
	e.GET("/healthz", h.Health)

	// LINE webhook authenticates by signature, not by caller identity.
	e.POST("/line/webhook", h.Webhook.Handle)

	// Session exchange does not require an existing session.
	e.POST("/v1/auth/line", h.Auth.Login)

	v1 := e.Group("/v1", middleware.CallerAuth(jwtSecret, apiKeyHash))

	// Slot browsing is open to everyone; creation is for the desk.
	v1.GET("/timeslots", h.TimeSlots.List)
	v1.GET("/timeslots/:id", h.TimeSlots.Get)
	v1.POST("/timeslots", h.TimeSlots.Create, middleware.RequireMachine())

	// Reservations require some credential, user or machine; within
	// that the service decides per operation what identity it needs.
	// Leaving the :id routes open would let anyone enumerate who
	// booked which slot.
	v1.POST("/reservations", h.Reservation.Create, middleware.RequireKnownOrMachine())
	v1.POST("/reservations/with-team", h.Reservation.CreateWithTeam, middleware.RequireUser())
	v1.GET("/reservations/my-reservation", h.Reservation.MyReservation, middleware.RequireUser())
	v1.GET("/reservations/:id", h.Reservation.Get, middleware.RequireKnownOrMachine())
	v1.PATCH("/reservations/:id", h.Reservation.Reschedule, middleware.RequireKnownOrMachine())
	v1.DELETE("/reservations/:id", h.Reservation.Delete, middleware.RequireKnownOrMachine())
	v1.POST("/reservations/:id/add-team", h.Reservation.AddTeam, middleware.RequireUser())

	v1.GET("/teams/:id", h.Team.Get, middleware.RequireKnownOrMachine())
	v1.PATCH("/teams/:id", h.Team.Update, middleware.RequireKnownOrMachine())

	v1.GET("/scores", h.Score.List)
	v1.GET("/scores/ranking", h.Score.Ranking)
	v1.POST("/scores", h.Score.Create, middleware.RequireMachine())
}
