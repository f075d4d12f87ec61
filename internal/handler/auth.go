package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nanafes/reservation-api/internal/utils"
)

// userResolver is the slice of the LINE client the auth handler needs.
// It is an interface so tests can swap in a stub.
type userResolver interface {
	Configured() bool
	ResolveUser(ctx context.Context, accessToken string) (string, error)
}

// AuthHandler exchanges a LINE access token for a session JWT. The
// app obtains the LINE token through LIFF on the client side; the
// server only ever sees the short-lived access token, never LINE
// credentials.
type AuthHandler struct {
	line      userResolver
	jwtSecret string
	ttlMin    int
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(line userResolver, jwtSecret string, ttlMin int) *AuthHandler {
	if line == nil {
		panic("nil line client passed to NewAuthHandler")
	}
	return &AuthHandler{line: line, jwtSecret: jwtSecret, ttlMin: ttlMin}
}

// Login handles POST /v1/auth/line.
func (h *AuthHandler) Login(c echo.Context) error {
	if !h.line.Configured() {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "line login not configured"})
	}
	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.Bind(&body); err != nil || body.AccessToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "access_token is required"})
	}
	userID, err := h.line.ResolveUser(c.Request().Context(), body.AccessToken)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid line token"})
	}
	tok, err := utils.NewSessionToken(h.jwtSecret, userID, h.ttlMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": tok.Token,
		"expires_at":   tok.Exp.Format(time.RFC3339),
	})
}
