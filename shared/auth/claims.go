package auth

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are carried by session tokens. ID mirrors the subject for clients that
// read the user id from the payload directly.
type SessionClaims struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// PasswordResetClaims are carried by password reset tokens.
type PasswordResetClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}
