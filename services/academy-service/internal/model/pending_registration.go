package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// PendingRegistration is an unverified sign-up awaiting its one-time passcode. Records
// are removed by a TTL index once ExpiresAt passes.
type PendingRegistration struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Name         string        `bson:"name"`
	Email        string        `bson:"email"`
	PasswordHash string        `bson:"password_hash"`
	Role         Role          `bson:"role"`
	OTP          string        `bson:"otp"`
	Attempts     int           `bson:"attempts"`

	InstructorProfile `bson:",inline"`

	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Expired reports whether the passcode can no longer be used at now.
func (p *PendingRegistration) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}
