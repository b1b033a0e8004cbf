package shared

import "github.com/golang-jwt/jwt/v5"

// context keys set by the auth middleware
const (
	ContextUserID = "userID"
	ContextEmail  = "email"
)

// AuthClaims is the JWT payload issued on login and refresh.
type AuthClaims struct {
	UserID string `json:"user_id"` // user identifier(UUID)
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
