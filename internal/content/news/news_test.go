// internal/content/news/news_test.go
package news

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tamzrod/infohud/internal/content"
)

const feedOK = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>AP</title>
<item>
  <title> Rover finds water </title>
  <link>https://example.org/a</link>
  <description><![CDATA[<img src="https://example.org/t.jpg"/><p>The rover found traces of water ice.</p><p>Scientists  are   thrilled.</p>]]></description>
</item>
<item><title>Second</title><description>ignored</description></item>
</channel></rss>`

const feedThin = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>AP</title>
<item><title>Thin</title><description><![CDATA[<p>Too short.</p>]]></description></item>
</channel></rss>`

func serve(t *testing.T, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestFetch_TopEntry(t *testing.T) {
	p, err := New(Config{FeedURL: serve(t, feedOK)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	it, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if it.Kind != content.KindNews || it.ID == "" {
		t.Fatalf("unexpected item %+v", it)
	}
	if it.Payload.Title != "Rover finds water" {
		t.Fatalf("title=%q", it.Payload.Title)
	}
	if len(it.Payload.Lines) != 2 || it.Payload.Lines[1] != "Scientists are thrilled." {
		t.Fatalf("lines=%q", it.Payload.Lines)
	}
	if it.Payload.ImageURL != "https://example.org/t.jpg" {
		t.Fatalf("image=%q", it.Payload.ImageURL)
	}
}

func TestFetch_RejectsThinSummary(t *testing.T) {
	p, _ := New(Config{FeedURL: serve(t, feedThin)})
	if _, err := p.Fetch(context.Background()); !errors.Is(err, content.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestFetch_HTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	p, _ := New(Config{FeedURL: srv.URL})
	if _, err := p.Fetch(context.Background()); !errors.Is(err, content.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestExtract_NoParagraphs(t *testing.T) {
	paras, img := extract("plain text summary without markup")
	if len(paras) != 1 || img != "" {
		t.Fatalf("paras=%q img=%q", paras, img)
	}
}

type stubSummarizer struct {
	reply string
	err   error
	got   string
}

func (s *stubSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	s.got = text
	return s.reply, s.err
}

func TestFetch_SummarizerReplacesParagraphs(t *testing.T) {
	sum := &stubSummarizer{reply: "A rover found water ice on the surface."}
	p, _ := New(Config{FeedURL: serve(t, feedOK), Summarizer: sum})

	it, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if sum.got != "The rover found traces of water ice. Scientists are thrilled." {
		t.Fatalf("summarizer input=%q", sum.got)
	}
	if len(it.Payload.Lines) != 1 || it.Payload.Lines[0] != sum.reply {
		t.Fatalf("lines=%q", it.Payload.Lines)
	}
}

func TestFetch_SummarizerFallback(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		err   error
	}{
		{"error", "", errors.New("connection refused")},
		{"empty", "", nil},
		{"too short", "Water found.", nil},
		{"refusal", "I need to summarize this article about a rover.", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, _ := New(Config{
				FeedURL:    serve(t, feedOK),
				Summarizer: &stubSummarizer{reply: tc.reply, err: tc.err},
			})
			it, err := p.Fetch(context.Background())
			if err != nil {
				t.Fatalf("Fetch: %v", err)
			}
			if len(it.Payload.Lines) != 2 || it.Payload.Lines[0] != "The rover found traces of water ice." {
				t.Fatalf("lines=%q", it.Payload.Lines)
			}
		})
	}
}

func TestOllama_Summarize(t *testing.T) {
	var req generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method=%s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		// streamed form: partial objects first, final object last
		w.Write([]byte(`{"response":"partial"}` + "\n" + `{"response":"  Rover finds water ice near the pole. "}` + "\n"))
	}))
	defer srv.Close()

	o, err := NewOllama(OllamaConfig{URL: srv.URL})
	if err != nil {
		t.Fatalf("NewOllama: %v", err)
	}
	got, err := o.Summarize(context.Background(), "long article")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "Rover finds water ice near the pole." {
		t.Fatalf("got %q", got)
	}
	if req.Model != DefaultModel || req.Stream || !strings.HasSuffix(req.Prompt, "long article") {
		t.Fatalf("request=%+v", req)
	}
}

func TestOllama_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	o, _ := NewOllama(OllamaConfig{URL: srv.URL})
	if _, err := o.Summarize(context.Background(), "x"); err == nil {
		t.Fatalf("expected error")
	}
}
