package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"golang.org/x/oauth2"

	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/model"
	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/repository"
	"github.com/vasapolrittideah/zacademy-api/shared/events"
	"github.com/vasapolrittideah/zacademy-api/shared/provider"
	"github.com/vasapolrittideah/zacademy-api/shared/security"
)

const (
	oauthFlowTTL     = 10 * time.Minute
	sessionGrantTTL  = time.Minute
	grantCodeBytes   = 32
	googleProviderID = "google"
)

// OAuthUsecase links Google identities to local accounts.
type OAuthUsecase interface {
	// BeginGoogleAuth records the intent and returns the Google consent URL.
	BeginGoogleAuth(ctx context.Context, intent model.OAuthIntent) (string, error)

	// CompleteGoogleAuth handles the provider callback and returns a one-time exchange code.
	CompleteGoogleAuth(ctx context.Context, params CompleteGoogleAuthParams) (*GoogleAuthResult, error)

	// ExchangeCode swaps a one-time exchange code for a session.
	ExchangeCode(ctx context.Context, code string) (*Session, error)
}

type CompleteGoogleAuthParams struct {
	State         string
	Code          string
	ProviderError string
}

// GoogleAuthResult is handed to the front-end through the success redirect.
type GoogleAuthResult struct {
	ExchangeCode string
	Role         model.Role
	Created      bool
}

type oauthUsecase struct {
	userRepo  repository.UserRepository
	stateRepo repository.OAuthStateRepository
	sessions  SessionUsecase
	google    GoogleProvider
	publisher events.Publisher
	logger    *zerolog.Logger
}

func NewOAuthUsecase(
	userRepo repository.UserRepository,
	stateRepo repository.OAuthStateRepository,
	sessions SessionUsecase,
	google GoogleProvider,
	publisher events.Publisher,
	logger *zerolog.Logger,
) OAuthUsecase {
	return &oauthUsecase{
		userRepo:  userRepo,
		stateRepo: stateRepo,
		sessions:  sessions,
		google:    google,
		publisher: publisher,
		logger:    logger,
	}
}

func (u *oauthUsecase) BeginGoogleAuth(ctx context.Context, intent model.OAuthIntent) (string, error) {
	if intent != model.IntentLogin && !intent.IsSignup() {
		return "", ErrInvalidOAuthIntent
	}

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	if err := u.stateRepo.SaveFlowState(ctx, state, model.OAuthFlowState{
		Intent:       intent,
		CodeVerifier: verifier,
	}, oauthFlowTTL); err != nil {
		return "", err
	}

	return u.google.AuthCodeURL(state, verifier), nil
}

func (u *oauthUsecase) CompleteGoogleAuth(
	ctx context.Context,
	params CompleteGoogleAuthParams,
) (*GoogleAuthResult, error) {
	flow, err := u.stateRepo.ConsumeFlowState(ctx, params.State)
	if err != nil {
		if errors.Is(err, repository.ErrKeyNotFound) {
			return nil, ErrOAuthStateInvalid
		}
		return nil, err
	}

	if params.ProviderError != "" || params.Code == "" {
		return nil, ErrOAuthDenied
	}

	identity, err := u.google.FetchIdentity(ctx, params.Code, flow.CodeVerifier)
	if err != nil {
		u.logger.Error().Err(err).Msg("failed to fetch google identity")
		return nil, ErrProviderFailure
	}

	user, created, err := u.resolveUser(ctx, flow.Intent, identity)
	if err != nil {
		return nil, err
	}

	code, err := security.GenerateToken(grantCodeBytes)
	if err != nil {
		return nil, err
	}

	if err := u.stateRepo.SaveSessionGrant(ctx, code, model.SessionGrant{
		UserID: user.ID.Hex(),
		Role:   user.Role,
	}, sessionGrantTTL); err != nil {
		return nil, err
	}

	return &GoogleAuthResult{ExchangeCode: code, Role: user.Role, Created: created}, nil
}

func (u *oauthUsecase) ExchangeCode(ctx context.Context, code string) (*Session, error) {
	grant, err := u.stateRepo.ConsumeSessionGrant(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrKeyNotFound) {
			return nil, ErrExchangeCodeInvalid
		}
		return nil, err
	}

	user, err := u.userRepo.GetUser(ctx, grant.UserID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNoLongerExists
		}
		return nil, err
	}

	return u.sessions.IssueSession(user)
}

// resolveUser matches the Google identity by federated id, then by email. Login links an
// email match to the Google account. Signup only creates accounts when nothing matches.
func (u *oauthUsecase) resolveUser(
	ctx context.Context,
	intent model.OAuthIntent,
	identity *provider.GoogleIdentity,
) (*model.User, bool, error) {
	if !identity.EmailVerified {
		return nil, false, ErrGoogleEmailUnverified
	}
	email := normalizeEmail(identity.Email)

	user, err := u.userRepo.GetUserByGoogleID(ctx, identity.ID)
	switch {
	case err == nil:
		if intent.IsSignup() {
			return nil, false, ErrAccountExists
		}
		return user, false, nil
	case !errors.Is(err, mongo.ErrNoDocuments):
		return nil, false, err
	}

	user, err = u.userRepo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if intent.IsSignup() {
			return nil, false, ErrAccountExists
		}
		linked, err := u.linkGoogleID(ctx, user, identity.ID)
		return linked, false, err
	case !errors.Is(err, mongo.ErrNoDocuments):
		return nil, false, err
	}

	if !intent.IsSignup() {
		return nil, false, ErrAccountNotFound
	}

	created, err := u.createFederatedUser(ctx, intent.SignupRole(), email, identity)
	return created, err == nil, err
}

func (u *oauthUsecase) linkGoogleID(ctx context.Context, user *model.User, googleID string) (*model.User, error) {
	if user.GoogleID != nil {
		// Matched by email but the account already belongs to another Google identity.
		return nil, ErrGoogleAccountMismatch
	}

	linked, err := u.userRepo.LinkGoogleID(ctx, user.ID.Hex(), googleID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) || mongo.IsDuplicateKeyError(err) {
			return nil, ErrGoogleAccountMismatch
		}
		return nil, err
	}

	publish(ctx, u.publisher, u.logger, events.TypeUserFederatedLinked, linked.ID.Hex(), userFederatedLinkedPayload{
		UserID:   linked.ID.Hex(),
		Provider: googleProviderID,
	})

	return linked, nil
}

func (u *oauthUsecase) createFederatedUser(
	ctx context.Context,
	role model.Role,
	email string,
	identity *provider.GoogleIdentity,
) (*model.User, error) {
	name := strings.TrimSpace(identity.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	googleID := identity.ID
	user, err := u.userRepo.CreateUser(ctx, &model.User{
		Name:     name,
		Email:    email,
		Role:     role,
		Avatar:   identity.Picture,
		GoogleID: &googleID,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrAccountExists
		}
		return nil, err
	}

	publishUserRegistered(ctx, u.publisher, u.logger, user, googleProviderID)

	return user, nil
}
