// internal/rotation/scheduler.go
package rotation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tamzrod/infohud/internal/content"
)

// ErrNothingToShow means no slot could produce or re-display an item.
var ErrNothingToShow = errors.New("rotation: nothing to show")

// Fetcher produces a fresh item for a kind.
// content.Registry satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, k content.Kind) (content.Item, error)
}

// Selection is the scheduler's pick for one tick.
type Selection struct {
	Slot      string
	Item      content.Item
	Redisplay bool // item came from cache; no provider was called
}

// Scheduler picks the next regular item. It holds no mutable state:
// bookkeeping is passed in by the caller on every call.
type Scheduler struct {
	policy Policy
	fetch  Fetcher
	log    *slog.Logger
}

func NewScheduler(p Policy, f Fetcher, log *slog.Logger) (*Scheduler, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, errors.New("rotation: fetcher required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{policy: append(Policy(nil), p...), fetch: f, log: log}, nil
}

// Policy returns a copy of the configured slots.
func (s *Scheduler) Policy() Policy {
	return append(Policy(nil), s.policy...)
}

// NextRegular selects the first due slot in policy order and fetches it.
// On provider failure it falls back to the previous slot (wrapping) until
// every slot was tried. When nothing is due it re-displays the cached item
// of the least-overdue slot. lastShown and cache are read only.
func (s *Scheduler) NextRegular(
	ctx context.Context,
	now time.Time,
	lastShown map[string]time.Time,
	cache map[string]content.Item,
) (Selection, error) {
	first := -1
	for i, sl := range s.policy {
		if sl.due(now, lastShown) {
			first = i
			break
		}
	}

	if first < 0 {
		return s.redisplay(now, lastShown, cache)
	}

	var errs []error
	n := len(s.policy)
	for step := 0; step < n; step++ {
		sl := s.policy[((first-step)%n+n)%n]

		it, err := s.fetch.Fetch(ctx, sl.Kind)
		if err == nil {
			return Selection{Slot: sl.Name, Item: it.WithSlot(sl.Name, sl.TTL)}, nil
		}

		errs = append(errs, err)
		s.log.Warn("rotation: provider failed, falling back",
			"slot", sl.Name,
			"kind", sl.Kind.String(),
			"error", err,
		)
		if ctx.Err() != nil {
			break
		}
	}

	return Selection{}, fmt.Errorf("%w: %w", ErrNothingToShow, errors.Join(errs...))
}

// redisplay returns the cached item of the slot furthest from being due.
// Slots without a usable cached item are skipped.
func (s *Scheduler) redisplay(
	now time.Time,
	lastShown map[string]time.Time,
	cache map[string]content.Item,
) (Selection, error) {
	best := -1
	var bestOver time.Duration

	for i, sl := range s.policy {
		it, ok := cache[sl.Name]
		if !ok || it.Expired(now) {
			continue
		}
		over := sl.overdue(now, lastShown)
		if best < 0 || over < bestOver {
			best, bestOver = i, over
		}
	}

	if best < 0 {
		return Selection{}, fmt.Errorf("%w: no slot due and no cached item", ErrNothingToShow)
	}

	sl := s.policy[best]
	return Selection{Slot: sl.Name, Item: cache[sl.Name], Redisplay: true}, nil
}
