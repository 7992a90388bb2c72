package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminScope is the scope claim the admin routes require.
const AdminScope = "admin"

// IssueAdminToken creates an HS256 token carrying the admin scope.
func IssueAdminToken(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("admin token: empty secret")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   subject,
		"scope": AdminScope,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(secret))
}
