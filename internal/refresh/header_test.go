package refresh

import (
	"context"
	"testing"
	"time"

	"github.com/tamzrod/infohud/internal/content"
)

func weatherItem(id, brief string, at time.Time) content.Item {
	return content.Item{
		ID:          id,
		Kind:        content.KindWeather,
		Slot:        "wx",
		Payload:     content.Payload{Title: "Irvine", Brief: brief},
		GeneratedAt: at,
	}
}

func TestStep_HeaderFromCachedWeather(t *testing.T) {
	h := newHarness(t)
	cfg := DefaultConfig()
	cfg.Header = true
	m := h.build(t, cfg, h.sink)

	st := newsDue()
	st.Cache = map[string]content.Item{
		"wx": weatherItem("wx-1", "64°F Sunny", t0.Add(-5*time.Minute)),
	}

	d, next := m.Step(context.Background(), t0, st)

	if d.Action != ActionRenderContent || d.Slot != "news" {
		t.Fatalf("decision=%+v", d)
	}
	if got := h.sink.rendered[0].Payload.Header; got != "Wed May 1  09:00  64°F Sunny" {
		t.Fatalf("header=%q", got)
	}
	if next.Cache["news"].Payload.Header != "" {
		t.Fatalf("cached item carries the header")
	}
}

func TestStep_HeaderOffByDefault(t *testing.T) {
	h := newHarness(t)

	st := newsDue()
	st.Cache = map[string]content.Item{
		"wx": weatherItem("wx-1", "64°F Sunny", t0.Add(-5*time.Minute)),
	}
	h.m.Step(context.Background(), t0, st)

	if got := h.sink.rendered[0].Payload.Header; got != "" {
		t.Fatalf("header=%q", got)
	}
}

func TestHeaderLine(t *testing.T) {
	old := weatherItem("wx-old", "50°F Rain", t0.Add(-2*time.Hour))
	fresh := weatherItem("wx-new", "64°F Sunny", t0.Add(-time.Minute))
	expired := weatherItem("wx-exp", "90°F Hot", t0.Add(-10*time.Minute)).WithSlot("exp", 5*time.Minute)
	news := content.Item{ID: "n", Kind: content.KindNews}

	cases := []struct {
		name  string
		it    content.Item
		cache map[string]content.Item
		want  string
	}{
		{"no weather", news, nil, "Wed May 1  09:00"},
		{"newest cached", news, map[string]content.Item{"a": old, "b": fresh}, "Wed May 1  09:00  64°F Sunny"},
		{"expired skipped", news, map[string]content.Item{"a": old, "exp": expired}, "Wed May 1  09:00  50°F Rain"},
		{"weather on screen", weatherItem("live", "70°F Clear", t0), map[string]content.Item{"b": fresh}, "Wed May 1  09:00  70°F Clear"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := headerLine(t0, tc.it, tc.cache); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}
