package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/nanafes/reservation-api/internal/booking"
)

// Context keys set by CallerAuth: the resolved booking identity and a
// flag marking API-key authenticated machine callers.
const (
	callerKey  = "caller"
	machineKey = "machine"
)

// CallerAuth returns an Echo middleware that resolves who is calling.
// Two credential kinds are accepted: the X-API-KEY header used by the
// reception-desk machines (checked against a bcrypt hash) and a Bearer
// session token whose subject is a LINE user id. Requests carrying
// neither pass through as anonymous; requests carrying a bad credential
// are rejected with 401 so a typo never silently downgrades to
// anonymous.
func CallerAuth(secret, apiKeyHash string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if key := c.Request().Header.Get("X-API-KEY"); key != "" {
				if bcrypt.CompareHashAndPassword([]byte(apiKeyHash), []byte(key)) != nil {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid api key"})
				}
				c.Set(callerKey, booking.Machine())
				c.Set(machineKey, true)
				return next(c)
			}
			auth := c.Request().Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				raw := strings.TrimPrefix(auth, "Bearer ")
				sub, err := parseSubject(raw, secret)
				if err != nil {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
				}
				c.Set(callerKey, booking.Caller(sub))
				// Expose the id for the rate limiter's key builder.
				c.Set("user_id", sub)
				return next(c)
			}
			c.Set(callerKey, booking.Caller(""))
			return next(c)
		}
	}
}

// RequireUser rejects requests whose caller is not an authenticated
// LINE user. It must run after CallerAuth.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !CallerFrom(c).Known() {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "login required"})
			}
			return next(c)
		}
	}
}

// RequireKnownOrMachine rejects fully anonymous requests while
// accepting both logged-in LINE users and API-key machines. It guards
// the per-id reads and updates, which carry the owner's LINE user id
// in their responses. It must run after CallerAuth.
func RequireKnownOrMachine() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if v, ok := c.Get(machineKey).(bool); ok && v {
				return next(c)
			}
			if CallerFrom(c).Known() {
				return next(c)
			}
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
	}
}

// RequireMachine rejects everything but API-key authenticated
// callers. It guards the endpoints the reception-desk terminals use
// to create slots and record scores. It must run after CallerAuth.
func RequireMachine() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if v, ok := c.Get(machineKey).(bool); !ok || !v {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "api key required"})
			}
			return next(c)
		}
	}
}

// CallerFrom extracts the identity stored by CallerAuth. Routes not
// wrapped by CallerAuth yield the anonymous identity.
func CallerFrom(c echo.Context) booking.Identity {
	if v := c.Get(callerKey); v != nil {
		if id, ok := v.(booking.Identity); ok {
			return id
		}
	}
	return booking.Caller("")
}

// parseSubject validates an HS256 session token and returns its
// subject claim.
func parseSubject(raw, secret string) (string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.ErrUnauthorized
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return "", echo.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", echo.ErrUnauthorized
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", echo.ErrUnauthorized
	}
	return sub, nil
}
