package auth

import (
	"context"

	"github.com/rs/zerolog/log"
)

type Mailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}

// LogMailer writes reset tokens to the log instead of delivering mail.
type LogMailer struct{}

func (LogMailer) SendPasswordReset(_ context.Context, email, token string) error {
	log.Info().Str("email", email).Str("reset_token", token).Msg("mailer: password reset requested")
	return nil
}
