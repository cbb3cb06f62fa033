// internal/content/stocks/stocks.go
package stocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tamzrod/infohud/internal/content"
)

// Quote is one symbol's latest close against the previous one.
type Quote struct {
	Symbol        string
	Price         decimal.Decimal
	Change        decimal.Decimal
	PercentChange decimal.Decimal
	Direction     string // "▲", "▼" or "" when no data
	NoData        bool
}

// Line formats a quote for a text panel.
func (q Quote) Line() string {
	if q.NoData {
		return fmt.Sprintf("%-6s No Data", q.Symbol)
	}
	return fmt.Sprintf("%-6s %s %s %s (%s%%)",
		q.Symbol,
		q.Price.StringFixed(2),
		q.Direction,
		q.Change.Abs().StringFixed(2),
		q.PercentChange.StringFixed(2),
	)
}

// Provider fetches daily closes from a Yahoo-style chart endpoint.
type Provider struct {
	baseURL string
	symbols []string
	client  *http.Client
	now     func() time.Time
}

type Config struct {
	BaseURL string
	Symbols []string
	Client  *http.Client // optional
}

func New(cfg Config) (*Provider, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("stocks: base url required")
	}
	if len(cfg.Symbols) == 0 {
		return nil, errors.New("stocks: at least one symbol required")
	}
	cli := cfg.Client
	if cli == nil {
		cli = http.DefaultClient
	}
	return &Provider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		symbols: append([]string(nil), cfg.Symbols...),
		client:  cli,
		now:     time.Now,
	}, nil
}

func (p *Provider) Kind() content.Kind { return content.KindStock }

// Fetch quotes every symbol. Symbols without data render as "No Data";
// the fetch only fails when no symbol produced data.
func (p *Provider) Fetch(ctx context.Context) (content.Item, error) {
	lines := make([]string, 0, len(p.symbols))
	var (
		got  int
		errs []string
	)

	for _, sym := range p.symbols {
		q, err := p.quote(ctx, sym)
		if err != nil {
			errs = append(errs, err.Error())
			q = Quote{Symbol: sym, NoData: true}
		} else {
			got++
		}
		lines = append(lines, q.Line())
	}

	if got == 0 {
		return content.Item{}, fmt.Errorf("%w: stocks: %s", content.ErrProviderUnavailable, strings.Join(errs, " | "))
	}

	return content.Item{
		ID:   uuid.NewString(),
		Kind: content.KindStock,
		Payload: content.Payload{
			Title: "Markets",
			Lines: lines,
		},
		GeneratedAt: p.now(),
	}, nil
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (p *Provider) quote(ctx context.Context, sym string) (Quote, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=5d&interval=1d", p.baseURL, url.PathEscape(sym))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Quote{}, err
	}
	req.Header.Set("User-Agent", "infohud")

	resp, err := p.client.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("%s: %v", sym, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("%s: http %d", sym, resp.StatusCode)
	}

	var cr chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return Quote{}, fmt.Errorf("%s: decode: %v", sym, err)
	}
	if cr.Chart.Error != nil {
		return Quote{}, fmt.Errorf("%s: %s", sym, cr.Chart.Error.Description)
	}
	if len(cr.Chart.Result) == 0 || len(cr.Chart.Result[0].Indicators.Quote) == 0 {
		return Quote{}, fmt.Errorf("%s: empty chart", sym)
	}

	var closes []decimal.Decimal
	for _, c := range cr.Chart.Result[0].Indicators.Quote[0].Close {
		if c != nil {
			closes = append(closes, decimal.NewFromFloat(*c))
		}
	}
	if len(closes) == 0 {
		return Quote{}, fmt.Errorf("%s: no close data", sym)
	}

	return buildQuote(sym, closes), nil
}

// buildQuote compares the last close with the one before it.
// A single close compares against itself.
func buildQuote(sym string, closes []decimal.Decimal) Quote {
	cur := closes[len(closes)-1]
	prev := cur
	if len(closes) > 1 {
		prev = closes[len(closes)-2]
	}

	change := cur.Sub(prev)
	pct := decimal.Zero
	if prev.IsPositive() {
		pct = change.Div(prev).Mul(decimal.NewFromInt(100))
	}

	dir := "▼"
	if change.IsPositive() {
		dir = "▲"
	}

	return Quote{
		Symbol:        sym,
		Price:         cur.Round(2),
		Change:        change.Round(2),
		PercentChange: pct.Round(2),
		Direction:     dir,
	}
}
