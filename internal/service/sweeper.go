package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Purger removes expired refresh tokens.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// RunSweeper calls p.PurgeExpired every interval until ctx is done.
func RunSweeper(ctx context.Context, p Purger, interval time.Duration, log *zap.Logger) {
	if interval <= 0 {
		return
	}
	if log == nil {
		log = zap.NewNop()
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := p.PurgeExpired(ctx)
			if err != nil {
				log.Warn("refresh token purge failed", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("expired refresh tokens purged", zap.Int64("count", n))
			}
		}
	}
}
