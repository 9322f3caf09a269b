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
	"github.com/vasapolrittideah/zacademy-api/shared/auth"
	"github.com/vasapolrittideah/zacademy-api/shared/mailer"
	"github.com/vasapolrittideah/zacademy-api/shared/security"
)

const jtiBytes = 32

// PasswordResetUsecase defines the business logic for password reset token operations.
type PasswordResetUsecase interface {
	// RequestPasswordReset mails a reset link when the email belongs to a user. It never
	// reveals whether the email is registered.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword sets a new password using a reset token. Each token works once.
	ResetPassword(ctx context.Context, token, newPassword string) error

	// ValidatePasswordResetToken checks that a reset token is still usable.
	ValidatePasswordResetToken(ctx context.Context, token string) error
}

type passwordResetUsecase struct {
	userRepo  repository.UserRepository
	tokenRepo repository.ResetTokenRepository
	jwtAuth   auth.JWTAuthenticator
	mailer    MailSender
	tokenCfg  config.TokenConfig
	resetURL  string
	logger    *zerolog.Logger
	now       func() time.Time
}

// NewPasswordResetUsecase creates a new instance of PasswordResetUsecase.
func NewPasswordResetUsecase(
	userRepo repository.UserRepository,
	tokenRepo repository.ResetTokenRepository,
	jwtAuth auth.JWTAuthenticator,
	mailer MailSender,
	tokenCfg config.TokenConfig,
	resetURL string,
	logger *zerolog.Logger,
) PasswordResetUsecase {
	return &passwordResetUsecase{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		jwtAuth:   jwtAuth,
		mailer:    mailer,
		tokenCfg:  tokenCfg,
		resetURL:  resetURL,
		logger:    logger,
		now:       time.Now,
	}
}

func (u *passwordResetUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := u.userRepo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		return err
	}

	jti, err := security.GenerateToken(jtiBytes)
	if err != nil {
		return err
	}

	claims := auth.PasswordResetClaims{
		Email:            user.Email,
		RegisteredClaims: u.jwtAuth.RegisteredClaims(user.ID.Hex(), jti, u.tokenCfg.PasswordResetExpiresIn),
	}
	tokenStr, err := u.jwtAuth.GenerateToken(claims, u.tokenCfg.PasswordResetSecret)
	if err != nil {
		return err
	}

	if err := u.tokenRepo.IssueResetToken(ctx, &model.PasswordResetToken{
		UserID:    user.ID,
		JTIHash:   security.HashToken(jti),
		Email:     user.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}); err != nil {
		return err
	}

	if err := u.mailer.Send(u.resetEmail(user, tokenStr)); err != nil {
		u.logger.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to send password reset email")
		return ErrMailDelivery
	}

	return nil
}

func (u *passwordResetUsecase) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := u.parseToken(token)
	if err != nil {
		return err
	}

	resetToken, err := u.tokenRepo.RedeemResetToken(ctx, security.HashToken(claims.ID), u.now())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrResetTokenInvalid
		}
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if _, err := u.userRepo.UpdateUser(ctx, resetToken.UserID.Hex(), repository.UpdateUserParams{
		PasswordHash: &passwordHash,
	}); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrResetTokenInvalid
		}
		return err
	}

	return nil
}

func (u *passwordResetUsecase) ValidatePasswordResetToken(ctx context.Context, token string) error {
	claims, err := u.parseToken(token)
	if err != nil {
		return err
	}

	if _, err := u.tokenRepo.FindLiveResetToken(ctx, security.HashToken(claims.ID), u.now()); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrResetTokenInvalid
		}
		return err
	}

	return nil
}

func (u *passwordResetUsecase) parseToken(token string) (*auth.PasswordResetClaims, error) {
	var claims auth.PasswordResetClaims
	if err := u.jwtAuth.ValidateTokenWithClaims(token, u.tokenCfg.PasswordResetSecret, &claims); err != nil {
		return nil, ErrResetTokenInvalid
	}
	if claims.ID == "" {
		return nil, ErrResetTokenInvalid
	}

	return &claims, nil
}

func (u *passwordResetUsecase) resetEmail(user *model.User, token string) mailer.Email {
	resetLink := fmt.Sprintf("%s?token=%s", u.resetURL, token)
	expiresIn := u.tokenCfg.PasswordResetExpiresIn.String()

	return mailer.Email{
		To:      []string{user.Email},
		Subject: "Password Reset Request",
		Body: fmt.Sprintf(
			"Hi %s,\n\nOpen the link below to choose a new password:\n\n%s\n\n"+
				"This link expires in %s. If you did not request a password reset, you can ignore this email.\n",
			user.Name, resetLink, expiresIn,
		),
		HTMLBody: fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>We received a request to reset the password for your account.</p>
		<p>If you made this request, please click the link below to create a new password:</p>

		<p><a href="%s">%s</a></p>

		<p>This link will expire in %s for your security.</p>
		<p>If you did not request a password reset, you can safely ignore this email.</p>

		<p>Thank you,</p>
		<p>Z Academy Team</p>
	`, user.Name, resetLink, resetLink, expiresIn),
	}
}
