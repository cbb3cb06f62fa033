// internal/display/display.go
package display

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/tamzrod/infohud/internal/content"
)

// ErrRender is wrapped by every Sink failure.
var ErrRender = errors.New("display: render failed")

// Sink puts one finished item on the panel.
// Rendering the same item twice must not corrupt the screen.
type Sink interface {
	Render(ctx context.Context, it content.Item) error
}

// Sleeper is implemented by sinks whose panel can be powered down.
type Sleeper interface {
	Sleep(ctx context.Context) error
}

// LogSink renders by logging. Used for headless runs.
type LogSink struct {
	Log *slog.Logger
}

func (s LogSink) Render(ctx context.Context, it content.Item) error {
	log := s.Log
	if log == nil {
		log = slog.Default()
	}
	log.Info("display: render",
		"id", it.ID,
		"kind", it.Kind.String(),
		"slot", it.Slot,
		"title", it.Payload.Title,
		"lines", strings.Join(it.Payload.Lines, " / "),
		"image_bytes", len(it.Payload.Image),
	)
	return nil
}

func (s LogSink) Sleep(ctx context.Context) error {
	log := s.Log
	if log == nil {
		log = slog.Default()
	}
	log.Info("display: sleep")
	return nil
}
