package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/config"
	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/model"
	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/repository"
	"github.com/vasapolrittideah/zacademy-api/shared/events"
	"github.com/vasapolrittideah/zacademy-api/shared/mailer"
	"github.com/vasapolrittideah/zacademy-api/shared/security"
)

const otpDigits = 6

// RegistrationUsecase implements password sign-up confirmed by an emailed one-time passcode.
type RegistrationUsecase interface {
	// Register stores a pending registration and mails its passcode.
	Register(ctx context.Context, params RegisterParams) (*PendingRegistrationInfo, error)

	// VerifyRegistration consumes a passcode, creates the account and starts a session.
	VerifyRegistration(ctx context.Context, params VerifyRegistrationParams) (*Session, error)
}

// RegisterParams defines the parameters for a sign-up. Instructor fields are ignored for
// students.
type RegisterParams struct {
	Role           model.Role
	Name           string
	Email          string
	Password       string
	Institute      string
	Specialization string
	Experience     *int
}

type VerifyRegistrationParams struct {
	Email string
	OTP   string
	Role  model.Role
}

// PendingRegistrationInfo is returned to the client after a passcode was sent.
type PendingRegistrationInfo struct {
	Email     string
	ExpiresAt time.Time
}

type registrationUsecase struct {
	userRepo    repository.UserRepository
	pendingRepo repository.PendingRegistrationRepository
	sessions    SessionUsecase
	mailer      MailSender
	publisher   events.Publisher
	otpCfg      config.OTPConfig
	logger      *zerolog.Logger
	now         func() time.Time
}

func NewRegistrationUsecase(
	userRepo repository.UserRepository,
	pendingRepo repository.PendingRegistrationRepository,
	sessions SessionUsecase,
	mailer MailSender,
	publisher events.Publisher,
	otpCfg config.OTPConfig,
	logger *zerolog.Logger,
) RegistrationUsecase {
	return &registrationUsecase{
		userRepo:    userRepo,
		pendingRepo: pendingRepo,
		sessions:    sessions,
		mailer:      mailer,
		publisher:   publisher,
		otpCfg:      otpCfg,
		logger:      logger,
		now:         time.Now,
	}
}

func (u *registrationUsecase) Register(ctx context.Context, params RegisterParams) (*PendingRegistrationInfo, error) {
	profile, err := instructorProfileFor(params)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(params.Email)

	if _, err := u.userRepo.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	otp, err := security.GenerateNumericCode(otpDigits)
	if err != nil {
		return nil, err
	}

	now := u.now()
	if err := u.pendingRepo.DeleteExpiredPendingRegistration(ctx, email, now); err != nil {
		return nil, err
	}

	pending, err := u.pendingRepo.CreatePendingRegistration(ctx, &model.PendingRegistration{
		Name:              params.Name,
		Email:             email,
		PasswordHash:      passwordHash,
		Role:              params.Role,
		OTP:               otp,
		InstructorProfile: profile,
		ExpiresAt:         now.Add(u.otpCfg.ExpiresIn),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateRegistration
		}
		return nil, err
	}

	if err := u.mailer.Send(u.otpEmail(pending)); err != nil {
		u.logger.Error().Err(err).Str("email", email).Msg("failed to send registration OTP")

		if delErr := u.pendingRepo.DeletePendingRegistration(ctx, email); delErr != nil {
			u.logger.Error().Err(delErr).Str("email", email).Msg("failed to roll back pending registration")
		}

		return nil, ErrMailDelivery
	}

	return &PendingRegistrationInfo{Email: pending.Email, ExpiresAt: pending.ExpiresAt}, nil
}

func (u *registrationUsecase) VerifyRegistration(
	ctx context.Context,
	params VerifyRegistrationParams,
) (*Session, error) {
	if !params.Role.Valid() {
		return nil, ErrInvalidRole
	}

	email := normalizeEmail(params.Email)

	pending, err := u.pendingRepo.GetPendingRegistration(ctx, email, params.OTP, params.Role)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			u.recordFailedAttempt(ctx, email)
			return nil, ErrOTPInvalidOrExpired
		}
		return nil, err
	}

	if pending.Expired(u.now()) {
		if err := u.pendingRepo.DeletePendingRegistration(ctx, email); err != nil {
			return nil, err
		}
		return nil, ErrOTPInvalidOrExpired
	}

	user, err := u.createUser(ctx, pending)
	if err != nil {
		return nil, err
	}

	if err := u.pendingRepo.DeletePendingRegistration(ctx, email); err != nil {
		// The TTL index removes it eventually and a retry resolves to the same account.
		u.logger.Warn().Err(err).Str("email", email).Msg("failed to delete verified pending registration")
	}

	return u.sessions.IssueSession(user)
}

// createUser turns a pending registration into an account. A retry after a crash between
// account creation and pending deletion finds the account already created from the same
// pending record and reuses it.
func (u *registrationUsecase) createUser(ctx context.Context, pending *model.PendingRegistration) (*model.User, error) {
	user := &model.User{
		Name:         pending.Name,
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		Role:         pending.Role,
	}
	if pending.Role == model.RoleInstructor {
		user.InstructorProfile = pending.InstructorProfile
	}

	created, err := u.userRepo.CreateUser(ctx, user)
	if err == nil {
		publishUserRegistered(ctx, u.publisher, u.logger, created, "password")
		return created, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return nil, err
	}

	existing, err := u.userRepo.GetUserByEmail(ctx, pending.Email)
	if err != nil {
		return nil, err
	}
	if existing.PasswordHash != pending.PasswordHash {
		if delErr := u.pendingRepo.DeletePendingRegistration(ctx, pending.Email); delErr != nil {
			u.logger.Warn().Err(delErr).Str("email", pending.Email).Msg("failed to delete stale pending registration")
		}
		return nil, ErrUserAlreadyExists
	}

	return existing, nil
}

func (u *registrationUsecase) recordFailedAttempt(ctx context.Context, email string) {
	attempts, err := u.pendingRepo.IncrementAttempts(ctx, email)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			u.logger.Warn().Err(err).Str("email", email).Msg("failed to record OTP attempt")
		}
		return
	}

	if attempts >= u.otpCfg.MaxAttempts {
		if err := u.pendingRepo.DeletePendingRegistration(ctx, email); err != nil {
			u.logger.Warn().Err(err).Str("email", email).Msg("failed to discard exhausted pending registration")
			return
		}
		u.logger.Info().Str("email", email).Int("attempts", attempts).Msg("discarded pending registration after too many attempts")
	}
}

func (u *registrationUsecase) otpEmail(pending *model.PendingRegistration) mailer.Email {
	minutes := int(u.otpCfg.ExpiresIn.Minutes())
	return mailer.Email{
		To:      []string{pending.Email},
		Subject: "Your Z Academy verification code",
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour verification code is %s. It expires in %d minutes.\n\n"+
				"If you did not sign up for Z Academy, you can ignore this email.\n",
			pending.Name, pending.OTP, minutes,
		),
		HTMLBody: fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your verification code is:</p>
		<h2 style="letter-spacing: 4px;">%s</h2>
		<p>It expires in %d minutes.</p>
		<p>If you did not sign up for Z Academy, you can ignore this email.</p>
	`, pending.Name, pending.OTP, minutes),
	}
}

// instructorProfileFor validates the role-specific fields of a sign-up.
func instructorProfileFor(params RegisterParams) (model.InstructorProfile, error) {
	switch params.Role {
	case model.RoleStudent:
		return model.InstructorProfile{}, nil
	case model.RoleInstructor:
		if params.Institute == "" || params.Specialization == "" || params.Experience == nil {
			return model.InstructorProfile{}, ErrInstructorFieldsRequired
		}
		if *params.Experience < 0 {
			return model.InstructorProfile{}, ErrNegativeExperience
		}

		experience := *params.Experience
		return model.InstructorProfile{
			Institute:      params.Institute,
			Specialization: params.Specialization,
			Experience:     &experience,
		}, nil
	default:
		return model.InstructorProfile{}, ErrInvalidRole
	}
}
