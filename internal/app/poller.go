package app

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"
)

const (
	defaultPollInterval = 2 * time.Second
	maxBackoff          = 30 * time.Second
)

// reloader is the part of Notebook the poller drives.
type reloader interface {
	Reload() error
}

// StartPoller reloads state whenever the file at path changes on disk. It
// stands in for the file watcher and returns immediately.
func StartPoller(ctx context.Context, nb *Notebook, path string, interval time.Duration) {
	go poll(ctx, nb, nb.log, path, interval)
}

func poll(ctx context.Context, r reloader, log *zap.Logger, path string, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	last := stamp(path)
	failures := 0

	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(calculateBackoff(failures, interval)):
		}

		current := stamp(path)
		if current.Equal(last) {
			continue
		}
		if err := r.Reload(); err != nil {
			failures++
			log.Warn("state poll reload failed", zap.Int("failures", failures), zap.Error(err))
			continue
		}
		failures = 0
		last = current
	}
}

func stamp(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// calculateBackoff doubles the interval per consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for range failures {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
