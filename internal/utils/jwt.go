package utils // package utils provides helper functions for session token creation

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionToken represents a signed JWT session token along with its
// expiry. The Token field contains the JWT string. Sessions are
// short-lived and sent in the Authorization header when calling
// authenticated endpoints.
type SessionToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewSessionToken builds and signs an HS256 JWT whose subject is the
// caller's LINE user id. It takes the signing secret and a TTL in
// minutes and returns the signed token with its expiration time. The
// JWT includes standard claims: subject (sub), expiration (exp) and
// issued at (iat).
func NewSessionToken(secret, lineUserID string, ttlMin int) (SessionToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub": lineUserID,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}
