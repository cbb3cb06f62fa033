// internal/rotation/scheduler_test.go
package rotation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tamzrod/infohud/internal/content"
)

type fakeFetcher struct {
	fail  map[content.Kind]bool
	calls []content.Kind
	n     int
}

func (f *fakeFetcher) Fetch(ctx context.Context, k content.Kind) (content.Item, error) {
	f.calls = append(f.calls, k)
	if f.fail[k] {
		return content.Item{}, fmt.Errorf("%w: %s down", content.ErrProviderUnavailable, k)
	}
	f.n++
	return content.Item{ID: fmt.Sprintf("%s-%d", k, f.n), Kind: k}, nil
}

var t0 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func policy() Policy {
	return Policy{
		{Name: "news", Kind: content.KindNews, Interval: 10 * time.Minute},
		{Name: "stocks", Kind: content.KindStock, Interval: 30 * time.Minute},
		{Name: "pics", Kind: content.KindImage, Interval: 5 * time.Minute, TTL: time.Hour},
	}
}

func newScheduler(t *testing.T, f Fetcher) *Scheduler {
	t.Helper()
	s, err := NewScheduler(policy(), f, nil)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	return s
}

func TestNextRegular_ColdStartFirstSlot(t *testing.T) {
	f := &fakeFetcher{}
	s := newScheduler(t, f)

	sel, err := s.NextRegular(context.Background(), t0, nil, nil)
	if err != nil {
		t.Fatalf("NextRegular: %v", err)
	}
	if sel.Slot != "news" || sel.Redisplay || sel.Item.Slot != "news" {
		t.Fatalf("unexpected selection %+v", sel)
	}
}

func TestNextRegular_FirstDueWins(t *testing.T) {
	f := &fakeFetcher{}
	s := newScheduler(t, f)

	last := map[string]time.Time{
		"news":   t0.Add(-11 * time.Minute), // due
		"stocks": t0.Add(-5 * time.Minute),  // not due
		"pics":   t0.Add(-6 * time.Minute),  // due, later in policy
	}

	sel, err := s.NextRegular(context.Background(), t0, last, nil)
	if err != nil {
		t.Fatalf("NextRegular: %v", err)
	}
	if sel.Slot != "news" {
		t.Fatalf("slot=%s want news", sel.Slot)
	}
}

func TestNextRegular_TTLAppliedFromSlot(t *testing.T) {
	f := &fakeFetcher{}
	s := newScheduler(t, f)

	last := map[string]time.Time{"news": t0, "stocks": t0}
	sel, err := s.NextRegular(context.Background(), t0, last, nil)
	if err != nil {
		t.Fatalf("NextRegular: %v", err)
	}
	if sel.Slot != "pics" || sel.Item.TTL != time.Hour {
		t.Fatalf("unexpected selection %+v", sel)
	}
}

func TestNextRegular_FallbackToPreviousSlot(t *testing.T) {
	f := &fakeFetcher{fail: map[content.Kind]bool{content.KindStock: true}}
	s := newScheduler(t, f)

	last := map[string]time.Time{
		"news":   t0.Add(-time.Minute),
		"stocks": t0.Add(-time.Hour), // due but failing
		"pics":   t0.Add(-time.Minute),
	}

	sel, err := s.NextRegular(context.Background(), t0, last, nil)
	if err != nil {
		t.Fatalf("NextRegular: %v", err)
	}
	if sel.Slot != "news" {
		t.Fatalf("fallback slot=%s want news", sel.Slot)
	}
	if fmt.Sprint(f.calls) != "[stock news]" {
		t.Fatalf("calls=%v", f.calls)
	}
}

func TestNextRegular_FallbackWraps(t *testing.T) {
	f := &fakeFetcher{fail: map[content.Kind]bool{content.KindNews: true}}
	s := newScheduler(t, f)

	sel, err := s.NextRegular(context.Background(), t0, nil, nil)
	if err != nil {
		t.Fatalf("NextRegular: %v", err)
	}
	if sel.Slot != "pics" {
		t.Fatalf("wrapped fallback slot=%s want pics", sel.Slot)
	}
}

func TestNextRegular_AllFail(t *testing.T) {
	f := &fakeFetcher{fail: map[content.Kind]bool{
		content.KindNews: true, content.KindStock: true, content.KindImage: true,
	}}
	s := newScheduler(t, f)

	_, err := s.NextRegular(context.Background(), t0, nil, nil)
	if !errors.Is(err, ErrNothingToShow) {
		t.Fatalf("expected ErrNothingToShow, got %v", err)
	}
	if !errors.Is(err, content.ErrProviderUnavailable) {
		t.Fatalf("cause lost: %v", err)
	}
	if len(f.calls) != 3 {
		t.Fatalf("each slot must be tried once, calls=%v", f.calls)
	}
}

func TestNextRegular_RedisplayWithoutFetch(t *testing.T) {
	f := &fakeFetcher{}
	s := newScheduler(t, f)

	last := map[string]time.Time{
		"news":   t0.Add(-9 * time.Minute), // 1m from due
		"stocks": t0.Add(-time.Minute),     // 29m from due
		"pics":   t0.Add(-4 * time.Minute), // 1m from due
	}
	cache := map[string]content.Item{
		"news":   {ID: "n1", Slot: "news", GeneratedAt: t0},
		"stocks": {ID: "s1", Slot: "stocks", GeneratedAt: t0},
	}

	sel, err := s.NextRegular(context.Background(), t0, last, cache)
	if err != nil {
		t.Fatalf("NextRegular: %v", err)
	}
	if !sel.Redisplay || sel.Slot != "stocks" || sel.Item.ID != "s1" {
		t.Fatalf("unexpected selection %+v", sel)
	}
	if len(f.calls) != 0 {
		t.Fatalf("re-display must not call providers: %v", f.calls)
	}
}

func TestNextRegular_RedisplaySkipsExpiredCache(t *testing.T) {
	s := newScheduler(t, &fakeFetcher{})

	last := map[string]time.Time{"news": t0, "stocks": t0, "pics": t0}
	cache := map[string]content.Item{
		"stocks": {ID: "old", GeneratedAt: t0.Add(-2 * time.Hour), TTL: time.Hour},
	}

	if _, err := s.NextRegular(context.Background(), t0, last, cache); !errors.Is(err, ErrNothingToShow) {
		t.Fatalf("expected ErrNothingToShow, got %v", err)
	}
}

// Over a long run every slot is refreshed at least once per interval.
func TestNextRegular_Fairness(t *testing.T) {
	f := &fakeFetcher{}
	s := newScheduler(t, f)

	last := map[string]time.Time{}
	cache := map[string]content.Item{}
	renders := map[string]int{}

	const tick = time.Minute
	const run = 24 * time.Hour

	for now := t0; now.Before(t0.Add(run)); now = now.Add(tick) {
		sel, err := s.NextRegular(context.Background(), now, last, cache)
		if err != nil {
			t.Fatalf("tick %v: %v", now, err)
		}
		if sel.Redisplay {
			continue
		}
		last[sel.Slot] = now
		cache[sel.Slot] = sel.Item
		renders[sel.Slot]++
	}

	for _, sl := range policy() {
		min := int(run/sl.Interval) * 9 / 10
		if renders[sl.Name] < min {
			t.Fatalf("slot %s rendered %d times, want >= %d", sl.Name, renders[sl.Name], min)
		}
	}
}

func TestPolicy_Validate(t *testing.T) {
	if err := (Policy{}).Validate(); err == nil {
		t.Fatalf("empty policy accepted")
	}
	p := policy()
	p[1].Name = "news"
	if err := p.Validate(); err == nil {
		t.Fatalf("duplicate slot accepted")
	}
	p = policy()
	p[0].Interval = 0
	if err := p.Validate(); err == nil {
		t.Fatalf("zero interval accepted")
	}
}
