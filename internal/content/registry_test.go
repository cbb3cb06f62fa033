// internal/content/registry_test.go
package content

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeProvider struct {
	kind Kind
	err  error
}

func (f fakeProvider) Kind() Kind { return f.kind }

func (f fakeProvider) Fetch(ctx context.Context) (Item, error) {
	if f.err != nil {
		return Item{}, f.err
	}
	return Item{ID: "x", Payload: Payload{Title: f.kind.String()}}, nil
}

func TestRegistry_FetchFillsKind(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(fakeProvider{kind: KindNews}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	it, err := r.Fetch(context.Background(), KindNews)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if it.Kind != KindNews {
		t.Fatalf("kind=%v", it.Kind)
	}
}

func TestRegistry_DuplicateRejected(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(fakeProvider{kind: KindStock})
	if err := r.Register(fakeProvider{kind: KindStock}); err == nil {
		t.Fatalf("expected duplicate error")
	}
}

func TestRegistry_ErrorsWrapUnavailable(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(fakeProvider{kind: KindImage, err: errors.New("disk gone")})

	if _, err := r.Fetch(context.Background(), KindImage); !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	if _, err := r.Fetch(context.Background(), KindWeather); !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("missing provider: expected ErrProviderUnavailable, got %v", err)
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("weather")
	if err != nil || k != KindWeather {
		t.Fatalf("ParseKind(weather)=%v,%v", k, err)
	}
	if _, err := ParseKind("flash"); err == nil {
		t.Fatalf("flash must not be a rotation kind")
	}
}

func TestItem_Expired(t *testing.T) {
	at := time.Unix(1000, 0)
	it := Item{GeneratedAt: at, TTL: time.Minute}

	if it.Expired(at.Add(time.Minute)) {
		t.Fatalf("expired at exact TTL")
	}
	if !it.Expired(at.Add(time.Minute + time.Second)) {
		t.Fatalf("not expired past TTL")
	}
	if (Item{GeneratedAt: at}).Expired(at.Add(100 * time.Hour)) {
		t.Fatalf("zero TTL must never expire")
	}
}
