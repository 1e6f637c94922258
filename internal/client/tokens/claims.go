package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of access token claims the client cares about.
// ExpiresAt is zero when the token carries no usable exp claim.
type Claims struct {
	ExpiresAt time.Time
	Subject   string
	UserID    string
	Email     string
}

var parser = jwt.NewParser()

// Decode reads the payload of a JWT without verifying its signature.
// It is total: any input that is not a decodable JWT yields ok == false.
func Decode(token string) (claims Claims, ok bool) {
	defer func() {
		if recover() != nil {
			claims, ok = Claims{}, false
		}
	}()

	mc := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, mc); err != nil {
		// an unknown or missing alg still leaves the payload decoded
		if !errors.Is(err, jwt.ErrTokenUnverifiable) {
			return Claims{}, false
		}
	}

	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil && exp.Unix() > 0 {
		claims.ExpiresAt = exp.Time
	}
	claims.Subject, _ = mc.GetSubject()
	claims.UserID = stringClaim(mc, "user_id", "userId", "UserID")
	claims.Email = stringClaim(mc, "email")

	return claims, true
}

func stringClaim(mc jwt.MapClaims, names ...string) string {
	for _, n := range names {
		if v, ok := mc[n].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
