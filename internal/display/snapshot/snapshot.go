// internal/display/snapshot/snapshot.go
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tamzrod/infohud/internal/content"
	"github.com/tamzrod/infohud/internal/display"
	"github.com/tamzrod/infohud/internal/display/compose"
)

const stampLayout = "20060102T150405.000000000"

// Tee renders every item to a PNG file in Dir before forwarding it to Next.
// Only the newest Keep files per kind are retained. Snapshot failures are
// logged and never fail the render.
type Tee struct {
	next     display.Sink
	dir      string
	keep     int
	composer *compose.Composer
	log      *slog.Logger
	now      func() time.Time
}

func New(next display.Sink, dir string, keep int, c *compose.Composer, log *slog.Logger) (*Tee, error) {
	if next == nil || c == nil {
		return nil, errors.New("snapshot: sink and composer required")
	}
	if dir == "" {
		return nil, errors.New("snapshot: dir required")
	}
	if keep <= 0 {
		return nil, fmt.Errorf("snapshot: keep must be > 0, got %d", keep)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Tee{next: next, dir: dir, keep: keep, composer: c, log: log, now: time.Now}, nil
}

func (t *Tee) Render(ctx context.Context, it content.Item) error {
	if err := t.save(it); err != nil {
		t.log.Warn("snapshot: save failed", "kind", it.Kind.String(), "error", err)
	}
	return t.next.Render(ctx, it)
}

// Sleep forwards to the wrapped sink when it can sleep.
func (t *Tee) Sleep(ctx context.Context) error {
	if s, ok := t.next.(display.Sleeper); ok {
		return s.Sleep(ctx)
	}
	return nil
}

func (t *Tee) save(it content.Item) error {
	b, err := t.composer.PNG(it)
	if err != nil {
		return err
	}
	kind := it.Kind.String()
	name := fmt.Sprintf("%s_%s.png", kind, t.now().UTC().Format(stampLayout))
	if err := os.WriteFile(filepath.Join(t.dir, name), b, 0o644); err != nil {
		return err
	}
	return t.prune(kind)
}

// prune removes all but the newest keep snapshots of kind.
// Names sort chronologically because of the fixed-width stamp.
func (t *Tee) prune(kind string) error {
	matches, err := filepath.Glob(filepath.Join(t.dir, kind+"_*.png"))
	if err != nil {
		return err
	}
	if len(matches) <= t.keep {
		return nil
	}
	sort.Strings(matches)

	var errs []error
	for _, m := range matches[:len(matches)-t.keep] {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// List returns the retained snapshot files of kind, oldest first.
func (t *Tee) List(kind content.Kind) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(t.dir, kind.String()+"_*.png"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	for i, m := range matches {
		matches[i] = strings.TrimPrefix(m, t.dir+string(filepath.Separator))
	}
	return matches, nil
}
