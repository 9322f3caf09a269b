package payload

import (
	"time"

	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/model"
)

type RegisterStudentRequest struct {
	Name     string `json:"name"     validate:"required,min=2,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

type RegisterInstructorRequest struct {
	Name           string `json:"name"           validate:"required,min=2,max=50"`
	Email          string `json:"email"          validate:"required,email"`
	Password       string `json:"password"       validate:"required,min=6,max=100"`
	Institute      string `json:"institute"      validate:"required,min=2"`
	Specialization string `json:"specialization" validate:"required,min=2"`
	Experience     *int   `json:"experience"     validate:"required,min=0"`
}

type RegisterResponse struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp"   validate:"required,len=6,numeric"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ExchangeCodeRequest struct {
	Code string `json:"code" validate:"required"`
}

// SessionResponse carries the session token in the body as well as in the cookie.
type SessionResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"jwt"`
}

type UserResponse struct {
	User *model.User `json:"user"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"    validate:"required"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

type ValidateResetTokenRequest struct {
	Token string `json:"token" validate:"required"`
}
