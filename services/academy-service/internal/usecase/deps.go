package usecase

import (
	"context"
	"strings"

	"github.com/vasapolrittideah/zacademy-api/shared/mailer"
	"github.com/vasapolrittideah/zacademy-api/shared/provider"
)

// MailSender delivers transactional email.
type MailSender interface {
	Send(email mailer.Email) error
}

// GoogleProvider runs the Google authorization code flow.
type GoogleProvider interface {
	AuthCodeURL(state, verifier string) string
	FetchIdentity(ctx context.Context, code, verifier string) (*provider.GoogleIdentity, error)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
