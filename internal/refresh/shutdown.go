// internal/refresh/shutdown.go
package refresh

import (
	"context"
	"log/slog"
	"time"

	"github.com/tamzrod/infohud/internal/display"
	"github.com/tamzrod/infohud/internal/syscmd"
)

// Commander runs the host shutdown. syscmd.Command satisfies it.
type Commander interface {
	Run(ctx context.Context, env ...string) ([]byte, error)
}

var _ Commander = syscmd.Command{}

// ShutdownHook returns an OnShutdown func that puts the panel to sleep
// (when the sink supports it) and then runs cmd. cmd may be nil.
func ShutdownHook(sink display.Sink, cmd Commander, timeout time.Duration, log *slog.Logger) func(context.Context, Decision) {
	if log == nil {
		log = slog.Default()
	}
	return func(ctx context.Context, d Decision) {
		if s, ok := sink.(display.Sleeper); ok {
			if err := do(ctx, nil, timeout, s.Sleep); err != nil {
				log.Warn("refresh: display sleep failed", "error", err)
			}
		}

		if cmd == nil {
			log.Warn("refresh: no shutdown command configured", "reason", d.Reason)
			return
		}

		out, err := call(ctx, nil, timeout, func(ctx context.Context) ([]byte, error) {
			return cmd.Run(ctx, "INFOHUD_SHUTDOWN_REASON="+d.Reason)
		})
		if err != nil {
			log.Error("refresh: shutdown command failed", "error", err)
			return
		}
		log.Info("refresh: shutdown command issued", "output", string(out))
	}
}
