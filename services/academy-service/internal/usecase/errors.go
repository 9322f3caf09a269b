package usecase

import "github.com/vasapolrittideah/zacademy-api/shared/apperror"

// Registration and verification.
var (
	ErrInvalidRole              = apperror.Validation("user type must be either student or instructor")
	ErrInstructorFieldsRequired = apperror.Validation("institute, specialization and experience are required for instructors")
	ErrNegativeExperience       = apperror.Validation("experience cannot be negative")
	ErrUserAlreadyExists        = apperror.New(apperror.KindDuplicate, "a user with this email already exists")
	ErrDuplicateRegistration    = apperror.New(apperror.KindDuplicate, "a registration for this email is already pending, check your inbox for the OTP")
	ErrOTPInvalidOrExpired      = apperror.New(apperror.KindOTPInvalid, "invalid or expired OTP")
	ErrMailDelivery             = apperror.New(apperror.KindDependency, "there was an error sending the email, try again later")
)

// Sessions.
var (
	ErrInvalidCredentials = apperror.New(apperror.KindUnauthorized, "incorrect email or password")
	ErrInvalidSession     = apperror.New(apperror.KindUnauthorized, "invalid token, please log in again")
	ErrSessionExpired     = apperror.New(apperror.KindUnauthorized, "your token has expired, please log in again")
	ErrUserNoLongerExists = apperror.New(apperror.KindUnauthorized, "the user belonging to this token no longer exists")
	ErrPasswordChanged    = apperror.New(apperror.KindUnauthorized, "password was recently changed, please log in again")
)

// Federated sign-in.
var (
	ErrInvalidOAuthIntent    = apperror.Validation("unknown sign-in intent")
	ErrOAuthStateInvalid     = apperror.New(apperror.KindUnauthorized, "sign-in attempt is invalid or has expired")
	ErrOAuthDenied           = apperror.New(apperror.KindUnauthorized, "google sign-in was cancelled")
	ErrGoogleEmailUnverified = apperror.New(apperror.KindUnauthorized, "google account email is not verified")
	ErrGoogleAccountMismatch = apperror.New(apperror.KindUnauthorized, "this account is linked to a different google account")
	ErrAccountNotFound       = apperror.New(apperror.KindNotFound, "no account found for this google account, please sign up first")
	ErrAccountExists         = apperror.New(apperror.KindDuplicate, "an account with this email already exists, please log in")
	ErrProviderFailure       = apperror.New(apperror.KindDependency, "google sign-in failed, try again later")
	ErrExchangeCodeInvalid   = apperror.New(apperror.KindUnauthorized, "sign-in code is invalid or has expired")
)

// Profiles.
var (
	ErrUserNotFound            = apperror.New(apperror.KindNotFound, "user not found")
	ErrStudentInstructorFields = apperror.Validation("only instructors can set institute, specialization or experience")
	ErrNothingToUpdate         = apperror.Validation("no fields to update")
)

// Courses and enrollments.
var (
	ErrInvalidCourseID    = apperror.Validation("invalid course ID format")
	ErrCourseNotFound     = apperror.New(apperror.KindNotFound, "course not found")
	ErrCourseTitleTaken   = apperror.New(apperror.KindDuplicate, "a course with this title already exists")
	ErrNotCourseOwner     = apperror.New(apperror.KindForbidden, "you can only modify your own courses")
	ErrInvalidCourseLevel = apperror.Validation("level must be one of beginner, intermediate or advanced")
	ErrNegativePrice      = apperror.Validation("price cannot be negative")
	ErrAlreadyEnrolled    = apperror.New(apperror.KindDuplicate, "you are already enrolled in this course")
)

// Password reset.
var (
	ErrResetTokenInvalid = apperror.New(apperror.KindUnauthorized, "password reset token is invalid or has expired")
)
