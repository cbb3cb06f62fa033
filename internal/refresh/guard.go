// internal/refresh/guard.go
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tamzrod/infohud/internal/content"
	"github.com/tamzrod/infohud/internal/rotation"
)

var (
	// ErrTimeout wraps any external call that exceeded the call timeout.
	ErrTimeout = errors.New("refresh: timeout")
	// ErrBusy is returned while an abandoned call to the same collaborator
	// is still running.
	ErrBusy = errors.New("refresh: previous call still running")
)

// gate admits one call at a time to a collaborator. The slot is held
// until fn returns, even after the tick gave up on it.
type gate chan struct{}

func newGate() gate { return make(gate, 1) }

func (g gate) enter() bool {
	if g == nil {
		return true
	}
	select {
	case g <- struct{}{}:
		return true
	default:
		return false
	}
}

func (g gate) leave() {
	if g != nil {
		<-g
	}
}

// call runs fn under a deadline of d.
// The tick returns at the deadline even if fn ignores its context;
// the late result is discarded and g stays closed until fn returns.
func call[T any](ctx context.Context, g gate, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if !g.enter() {
		var zero T
		return zero, ErrBusy
	}
	if d <= 0 {
		defer g.leave()
		return fn(ctx)
	}

	cctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn(cctx)
		// free the gate before the caller can observe the result
		g.leave()
		ch <- result{v, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil && ctx.Err() == nil && errors.Is(cctx.Err(), context.DeadlineExceeded) {
			return r.v, fmt.Errorf("%w: %w", ErrTimeout, r.err)
		}
		return r.v, r.err
	case <-cctx.Done():
		var zero T
		if ctx.Err() == nil {
			return zero, fmt.Errorf("%w after %s", ErrTimeout, d)
		}
		return zero, ctx.Err()
	}
}

// do is call for functions without a result value.
func do(ctx context.Context, g gate, d time.Duration, fn func(context.Context) error) error {
	_, err := call(ctx, g, d, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// BoundFetcher bounds every provider fetch by d.
// Timeouts follow the provider failure path.
func BoundFetcher(f rotation.Fetcher, d time.Duration) rotation.Fetcher {
	return &boundFetcher{f: f, d: d, gates: make(map[content.Kind]gate)}
}

type boundFetcher struct {
	f rotation.Fetcher
	d time.Duration

	mu    sync.Mutex
	gates map[content.Kind]gate // one per provider kind
}

func (b *boundFetcher) gate(k content.Kind) gate {
	b.mu.Lock()
	defer b.mu.Unlock()
	g, ok := b.gates[k]
	if !ok {
		g = newGate()
		b.gates[k] = g
	}
	return g
}

func (b *boundFetcher) Fetch(ctx context.Context, k content.Kind) (content.Item, error) {
	it, err := call(ctx, b.gate(k), b.d, func(ctx context.Context) (content.Item, error) {
		return b.f.Fetch(ctx, k)
	})
	if err != nil && !errors.Is(err, content.ErrProviderUnavailable) {
		err = fmt.Errorf("%w: %w", content.ErrProviderUnavailable, err)
	}
	return it, err
}
