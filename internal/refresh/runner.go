// internal/refresh/runner.go
package refresh

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Runner drives a Machine on a fixed interval.
// One tick at a time. No overlap. A slow tick delays the next one.
type Runner struct {
	m        *Machine
	interval time.Duration
	log      *slog.Logger

	// Now is the tick clock. Defaults to time.Now.
	Now func() time.Time

	// OnDecision is called after every tick with the new state.
	OnDecision func(Decision, State)

	// OnShutdown is called once when a tick decides Shutdown.
	OnShutdown func(ctx context.Context, d Decision)
}

func NewRunner(m *Machine, interval time.Duration, log *slog.Logger) (*Runner, error) {
	if m == nil {
		return nil, errors.New("refresh: nil machine")
	}
	if interval <= 0 {
		return nil, errors.New("refresh: tick interval must be > 0")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{m: m, interval: interval, log: log, Now: time.Now}, nil
}

// Run ticks immediately, then on every interval, until ctx is done or a
// tick decides Shutdown. It returns the final state.
func (r *Runner) Run(ctx context.Context, st State) State {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		var d Decision
		d, st = r.m.Step(ctx, r.Now(), st)

		r.log.Debug("refresh: tick",
			"action", d.Action.String(),
			"reason", d.Reason,
			"slot", d.Slot,
			"flash_id", d.FlashID,
			"degraded", d.Degraded,
		)
		if r.OnDecision != nil {
			r.OnDecision(d, st)
		}

		if d.Action == ActionShutdown {
			if r.OnShutdown != nil {
				r.OnShutdown(context.WithoutCancel(ctx), d)
			}
			return st
		}

		if ctx.Err() != nil {
			return st
		}
		select {
		case <-ctx.Done():
			return st
		case <-ticker.C:
		}
	}
}
