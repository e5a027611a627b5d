package memory

import (
	"context"

	"github.com/baechuer/kanjo/services/account-service/internal/application/auth"
	"github.com/baechuer/kanjo/services/account-service/internal/logger"
)

// NoopPublisher logs verification links instead of publishing them.
// Used when RABBIT_URL is unset (dev only).
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (p *NoopPublisher) PublishVerifyEmail(ctx context.Context, evt auth.VerifyEmailEvent) error {
	logger.WithCtx(ctx).Info().
		Str("user_id", evt.UserID).
		Str("email", evt.Email).
		Str("url", evt.URL).
		Msg("noop publisher: verify email")
	return nil
}
