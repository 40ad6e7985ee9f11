package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/handshake/pkg/domain"
)

// LogHooks writes one structured line per lifecycle event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnMatch: func(ctx context.Context, e *domain.MatchEvent) {
			logger.InfoContext(ctx, "match",
				"invitation_id", e.InvitationID,
				"notification_id", e.Notification.ID(),
				"kind", e.Notification.Kind(),
				"elapsed", e.Elapsed,
			)
		},
		OnResolve: func(ctx context.Context, e *domain.ResolveEvent) {
			logger.InfoContext(ctx, "resolve",
				"invitation_id", e.InvitationID,
				"destination", e.Destination.Kind(),
				"cause", e.Cause,
				"elapsed", e.Elapsed,
			)
		},
		OnDelay: func(ctx context.Context, e *domain.DelayEvent) {
			logger.InfoContext(ctx, "delay_elapsed",
				"invitation_id", e.InvitationID,
				"auto_redirect", e.AutoRedirect,
			)
		},
		OnStall: func(ctx context.Context, e *domain.StallEvent) {
			logger.WarnContext(ctx, "stall", "invitation_id", e.InvitationID, "err", e.Err)
		},
	}
}
