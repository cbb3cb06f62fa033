// internal/content/news/news.go
package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"

	"github.com/tamzrod/infohud/internal/content"
)

// MinSummaryWords rejects entries whose summary is too thin to display.
const MinSummaryWords = 5

// Provider renders the top entry of an RSS/Atom feed.
type Provider struct {
	feedURL    string
	parser     *gofeed.Parser
	summarizer Summarizer
	log        *slog.Logger
	now        func() time.Time
}

type Config struct {
	FeedURL string
	Client  *http.Client // optional

	// Summarizer, when set, replaces the extracted paragraphs with a
	// one-sentence summary. Unusable replies keep the extracted text.
	Summarizer Summarizer
	Log        *slog.Logger
}

func New(cfg Config) (*Provider, error) {
	if cfg.FeedURL == "" {
		return nil, errors.New("news: feed url required")
	}
	p := gofeed.NewParser()
	if cfg.Client != nil {
		p.Client = cfg.Client
	}
	p.UserAgent = "infohud"
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	return &Provider{
		feedURL:    cfg.FeedURL,
		parser:     p,
		summarizer: cfg.Summarizer,
		log:        log,
		now:        time.Now,
	}, nil
}

func (p *Provider) Kind() content.Kind { return content.KindNews }

// Fetch parses the feed and turns its first entry into an Item.
func (p *Provider) Fetch(ctx context.Context) (content.Item, error) {
	feed, err := p.parser.ParseURLWithContext(p.feedURL, ctx)
	if err != nil {
		return content.Item{}, fmt.Errorf("%w: news: %v", content.ErrProviderUnavailable, err)
	}
	if len(feed.Items) == 0 {
		return content.Item{}, fmt.Errorf("%w: news: feed has no entries", content.ErrProviderUnavailable)
	}

	entry := feed.Items[0]
	body := entry.Description
	if body == "" {
		body = entry.Content
	}

	paras, img := extract(body)
	if wordCount(paras) < MinSummaryWords {
		return content.Item{}, fmt.Errorf("%w: news: entry %q has no usable summary", content.ErrProviderUnavailable, entry.Title)
	}
	paras = p.summarize(ctx, paras)
	if img == "" && entry.Image != nil {
		img = entry.Image.URL
	}

	return content.Item{
		ID:   uuid.NewString(),
		Kind: content.KindNews,
		Payload: content.Payload{
			Title:    strings.TrimSpace(entry.Title),
			Lines:    paras,
			ImageURL: img,
			Link:     entry.Link,
		},
		GeneratedAt: p.now(),
	}, nil
}

// summarize returns the summarizer's reply as the only paragraph, or paras
// when there is no summarizer or the reply is unusable.
func (p *Provider) summarize(ctx context.Context, paras []string) []string {
	if p.summarizer == nil {
		return paras
	}
	text := strings.Join(paras, " ")
	s, err := p.summarizer.Summarize(ctx, text)
	if err != nil {
		p.log.Warn("news: summarize failed, using extracted text", "error", err)
		return paras
	}
	if !usable(s) {
		p.log.Warn("news: unusable summary, using extracted text", "reply", s)
		return paras
	}
	return []string{s}
}

// extract returns the text of every <p> and the src of the first <img>.
// Markup without paragraphs yields its flattened text as one paragraph.
func extract(raw string) ([]string, string) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, ""
	}

	var (
		paras []string
		img   string
	)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p":
				if t := strings.TrimSpace(textOf(n)); t != "" {
					paras = append(paras, t)
				}
				return
			case "img":
				if img == "" {
					for _, a := range n.Attr {
						if a.Key == "src" {
							img = a.Val
						}
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if len(paras) == 0 {
		if t := strings.TrimSpace(textOf(doc)); t != "" {
			paras = []string{t}
		}
	}
	return paras, img
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func wordCount(paras []string) int {
	n := 0
	for _, p := range paras {
		n += len(strings.Fields(p))
	}
	return n
}
