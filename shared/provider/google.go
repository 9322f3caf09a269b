package provider

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

var (
	ErrInvalidGoogleAudience = errors.New("invalid google audience")
	ErrMissingGoogleSubject  = errors.New("google profile has no subject")
)

var googleScopes = []string{
	googleoauth2.OpenIDScope,
	googleoauth2.UserinfoEmailScope,
	googleoauth2.UserinfoProfileScope,
}

// GoogleConfig holds the OAuth client registration for Google sign-in.
type GoogleConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	CallbackURL  string `env:"CALLBACK_URL"`
}

// GoogleIdentity is the subset of the Google profile used to resolve a local account.
type GoogleIdentity struct {
	ID            string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// GoogleOAuthProvider runs the authorization code flow against Google.
type GoogleOAuthProvider struct {
	oauthConfig   *oauth2.Config
	clientOptions []option.ClientOption
}

// NewGoogleOAuthProvider creates a provider for the given client registration. Extra
// client options are applied to the Google API client (used to point it at a test server).
func NewGoogleOAuthProvider(cfg GoogleConfig, opts ...option.ClientOption) *GoogleOAuthProvider {
	return &GoogleOAuthProvider{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       googleScopes,
			Endpoint:     google.Endpoint,
		},
		clientOptions: opts,
	}
}

// AuthCodeURL returns the consent page URL for state, bound to the PKCE verifier.
func (p *GoogleOAuthProvider) AuthCodeURL(state, verifier string) string {
	return p.oauthConfig.AuthCodeURL(
		state,
		oauth2.AccessTypeOnline,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

// FetchIdentity exchanges the authorization code and loads the caller's Google profile.
func (p *GoogleOAuthProvider) FetchIdentity(ctx context.Context, code, verifier string) (*GoogleIdentity, error) {
	token, err := p.oauthConfig.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange google code: %w", err)
	}

	opts := append([]option.ClientOption{
		option.WithTokenSource(p.oauthConfig.TokenSource(ctx, token)),
	}, p.clientOptions...)

	service, err := googleoauth2.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}

	if idToken, ok := token.Extra("id_token").(string); ok && idToken != "" {
		if err := p.validateIDToken(ctx, service, idToken); err != nil {
			return nil, err
		}
	}

	info, err := service.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch google userinfo: %w", err)
	}

	if info.Id == "" {
		return nil, ErrMissingGoogleSubject
	}

	return &GoogleIdentity{
		ID:            info.Id,
		Email:         info.Email,
		EmailVerified: info.VerifiedEmail != nil && *info.VerifiedEmail,
		Name:          info.Name,
		Picture:       info.Picture,
	}, nil
}

func (p *GoogleOAuthProvider) validateIDToken(ctx context.Context, service *googleoauth2.Service, idToken string) error {
	tokenInfo, err := service.Tokeninfo().IdToken(idToken).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("validate google id token: %w", err)
	}

	if tokenInfo.Audience != p.oauthConfig.ClientID {
		return ErrInvalidGoogleAudience
	}

	return nil
}
