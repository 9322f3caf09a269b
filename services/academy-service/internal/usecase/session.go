package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/config"
	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/model"
	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/repository"
	"github.com/vasapolrittideah/zacademy-api/shared/auth"
	"github.com/vasapolrittideah/zacademy-api/shared/security"
)

// SessionUsecase issues and verifies stateless session tokens.
type SessionUsecase interface {
	Login(ctx context.Context, params LoginParams) (*Session, error)
	IssueSession(user *model.User) (*Session, error)
	// Authenticate resolves a session token into the user it was issued for.
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// LoginParams defines the parameters for user login.
type LoginParams struct {
	Email    string
	Password string
}

// Session is a signed session token and the user it belongs to.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

type sessionUsecase struct {
	userRepo repository.UserRepository
	jwtAuth  auth.JWTAuthenticator
	tokenCfg config.TokenConfig
	logger   *zerolog.Logger
}

func NewSessionUsecase(
	userRepo repository.UserRepository,
	jwtAuth auth.JWTAuthenticator,
	tokenCfg config.TokenConfig,
	logger *zerolog.Logger,
) SessionUsecase {
	return &sessionUsecase{
		userRepo: userRepo,
		jwtAuth:  jwtAuth,
		tokenCfg: tokenCfg,
		logger:   logger,
	}
}

func (u *sessionUsecase) Login(ctx context.Context, params LoginParams) (*Session, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, normalizeEmail(params.Email))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			security.VerifyAgainstDummy(params.Password)
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if ok, err := security.VerifyPassword(params.Password, user.PasswordHash); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrInvalidCredentials
	}

	if err := u.userRepo.UpdateLastLogin(ctx, user.ID.Hex()); err != nil {
		u.logger.Warn().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to record last login")
	}

	return u.IssueSession(user)
}

func (u *sessionUsecase) IssueSession(user *model.User) (*Session, error) {
	userID := user.ID.Hex()
	claims := auth.SessionClaims{
		UserID:           userID,
		Role:             string(user.Role),
		RegisteredClaims: u.jwtAuth.RegisteredClaims(userID, uuid.NewString(), u.tokenCfg.ExpiresIn),
	}

	token, err := u.jwtAuth.GenerateToken(claims, u.tokenCfg.Secret)
	if err != nil {
		return nil, err
	}

	return &Session{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user,
	}, nil
}

func (u *sessionUsecase) Authenticate(ctx context.Context, token string) (*model.User, error) {
	var claims auth.SessionClaims
	if err := u.jwtAuth.ValidateTokenWithClaims(token, u.tokenCfg.Secret, &claims); err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, ErrInvalidSession
	}

	user, err := u.userRepo.GetUser(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, repository.ErrInvalidID) {
			return nil, ErrUserNoLongerExists
		}
		return nil, err
	}

	if claims.IssuedAt != nil && user.PasswordChangedSince(claims.IssuedAt.Time) {
		return nil, ErrPasswordChanged
	}

	return user, nil
}
