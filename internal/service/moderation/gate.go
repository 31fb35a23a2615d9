package moderation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"waypost/internal/domain/area"
	"waypost/internal/domain/moderation"
)

// Gate runs the two-phase moderation design: the text screen is synchronous
// and authoritative at creation time; the media screen is asynchronous and
// best-effort, demoting content after the fact when the verdict is unsafe.
type Gate struct {
	text    moderation.TextScreener
	media   moderation.MediaScreener
	store   area.Store
	cache   area.Invalidator
	timeout time.Duration
	log     *zap.Logger
}

// NewGate creates a new moderation gate
func NewGate(
	text moderation.TextScreener,
	media moderation.MediaScreener,
	store area.Store,
	cache area.Invalidator,
	timeout time.Duration,
	log *zap.Logger,
) *Gate {
	return &Gate{
		text:    text,
		media:   media,
		store:   store,
		cache:   cache,
		timeout: timeout,
		log:     log,
	}
}

// IsTextUnsafe runs the synchronous profanity screen.
func (g *Gate) IsTextUnsafe(fields []string) bool {
	return g.text.IsTextUnsafe(fields)
}

// ScreenMediaAsync dispatches the media-safety check off the request path.
// An unsafe verdict flips isMatureContent and isPublic together in one
// update and invalidates the cached detail entry. Any failure here is logged
// and dropped; it must never fail the creation that triggered it.
func (g *Gate) ScreenMediaAsync(t area.Type, areaID string, mediaPaths []string) {
	if len(mediaPaths) == 0 {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
		defer cancel()

		safe, err := g.media.IsSafe(ctx, mediaPaths)
		if err != nil {
			g.log.Warn("media safety check failed",
				zap.String("areaType", string(t)),
				zap.String("areaId", areaID),
				zap.Error(err))
			return
		}
		if safe {
			return
		}

		if err := g.store.SetModerationFlags(ctx, t, areaID, true, false); err != nil {
			g.log.Error("failed to demote area after unsafe media verdict",
				zap.String("areaType", string(t)),
				zap.String("areaId", areaID),
				zap.Error(err))
			return
		}

		g.cache.Invalidate(ctx, t, areaID)

		g.log.Info("area demoted after unsafe media verdict",
			zap.String("areaType", string(t)),
			zap.String("areaId", areaID))
	}()
}
