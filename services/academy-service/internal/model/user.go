package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Role is the account type of a user.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleInstructor
}

// InstructorProfile holds the fields that only instructors carry.
type InstructorProfile struct {
	Institute      string `bson:"institute,omitempty"      json:"institute,omitempty"`
	Specialization string `bson:"specialization,omitempty" json:"specialization,omitempty"`
	Experience     *int   `bson:"experience,omitempty"     json:"experience,omitempty"`
}

// User is a verified account. PasswordHash is empty for accounts created through Google.
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty"           json:"id"`
	Name         string        `bson:"name"                    json:"name"`
	Email        string        `bson:"email"                   json:"email"`
	PasswordHash string        `bson:"password_hash,omitempty" json:"-"`
	Role         Role          `bson:"role"                    json:"role"`
	Bio          string        `bson:"bio,omitempty"           json:"bio,omitempty"`
	Avatar       string        `bson:"avatar,omitempty"        json:"avatar,omitempty"`
	GoogleID     *string       `bson:"google_id,omitempty"     json:"-"`

	InstructorProfile `bson:",inline"`

	LastLoginAt       *time.Time `bson:"last_login_at,omitempty"       json:"lastLoginAt,omitempty"`
	PasswordChangedAt *time.Time `bson:"password_changed_at,omitempty" json:"-"`
	CreatedAt         time.Time  `bson:"created_at"                    json:"createdAt"`
	UpdatedAt         time.Time  `bson:"updated_at"                    json:"updatedAt"`
}

// HasPassword reports whether the user can log in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// PasswordChangedSince reports whether the password changed at or after issuedAt, which
// makes a session issued then stale. Session issue times carry whole seconds, so a change
// in the same second as issuedAt counts.
func (u *User) PasswordChangedSince(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return !u.PasswordChangedAt.Truncate(time.Second).Before(issuedAt.Truncate(time.Second))
}
