package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper forgets submitted sessions older than a retention window.
type Sweeper interface {
	Sweep(retention time.Duration) int
}

// SessionJanitor evicts finished sessions from memory.
type SessionJanitor struct {
	sweeper   Sweeper
	interval  time.Duration
	retention time.Duration
	log       zerolog.Logger
}

func NewSessionJanitor(sweeper Sweeper, interval, retention time.Duration, log zerolog.Logger) *SessionJanitor {
	return &SessionJanitor{
		sweeper:   sweeper,
		interval:  interval,
		retention: retention,
		log:       log.With().Str("component", "session_janitor").Logger(),
	}
}

func (j *SessionJanitor) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := j.sweeper.Sweep(j.retention); n > 0 {
				j.log.Debug().Int("evicted", n).Msg("Sessions swept")
			}
		}
	}
}
