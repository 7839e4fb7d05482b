package session

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is what the UI shows about the signed-in recruiter. It is read
// from the access token without verifying the signature; the API remains the
// authority on whether the token is valid.
type Identity struct {
	UserID    string
	Username  string
	ExpiresAt *time.Time
}

// Claims decodes the payload of a JWT access token. ok is false when the
// token is not a parseable JWT.
func Claims(access string) (Identity, bool) {
	if access == "" {
		return Identity{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return Identity{}, false
	}

	var id Identity
	if v, ok := claims["user_id"]; ok {
		id.UserID = stringify(v)
	} else if sub, err := claims.GetSubject(); err == nil {
		id.UserID = sub
	}
	if v, ok := claims["username"].(string); ok {
		id.Username = v
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		id.ExpiresAt = &t
	}
	return id, true
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatInt(int64(x), 10)
	}
	return ""
}
