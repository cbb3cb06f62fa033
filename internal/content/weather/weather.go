// internal/content/weather/weather.go
package weather

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

	"github.com/tamzrod/infohud/internal/content"
)

// ForecastDays is the number of daily rows rendered below current conditions.
const ForecastDays = 3

// Provider reads current conditions and a short forecast from a wttr.in-style
// JSON endpoint (format=j1). Units are imperial.
type Provider struct {
	baseURL  string
	location string
	client   *http.Client
	now      func() time.Time
}

type Config struct {
	BaseURL  string
	Location string
	Client   *http.Client // optional
}

func New(cfg Config) (*Provider, error) {
	if cfg.BaseURL == "" || cfg.Location == "" {
		return nil, errors.New("weather: base url and location required")
	}
	cli := cfg.Client
	if cli == nil {
		cli = http.DefaultClient
	}
	return &Provider{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		location: cfg.Location,
		client:   cli,
		now:      time.Now,
	}, nil
}

func (p *Provider) Kind() content.Kind { return content.KindWeather }

type report struct {
	Current []struct {
		TempF       string `json:"temp_F"`
		Humidity    string `json:"humidity"`
		WindMiles   string `json:"windspeedMiles"`
		WeatherDesc []desc `json:"weatherDesc"`
	} `json:"current_condition"`
	Weather []struct {
		Date      string `json:"date"`
		MaxTempF  string `json:"maxtempF"`
		MinTempF  string `json:"mintempF"`
		Astronomy []struct {
			Sunrise   string `json:"sunrise"`
			Sunset    string `json:"sunset"`
			MoonPhase string `json:"moon_phase"`
		} `json:"astronomy"`
	} `json:"weather"`
}

type desc struct {
	Value string `json:"value"`
}

func (p *Provider) Fetch(ctx context.Context) (content.Item, error) {
	u := fmt.Sprintf("%s/%s?format=j1", p.baseURL, url.PathEscape(p.location))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return content.Item{}, fmt.Errorf("%w: weather: %v", content.ErrProviderUnavailable, err)
	}
	req.Header.Set("User-Agent", "infohud")

	resp, err := p.client.Do(req)
	if err != nil {
		return content.Item{}, fmt.Errorf("%w: weather: %v", content.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return content.Item{}, fmt.Errorf("%w: weather: http %d", content.ErrProviderUnavailable, resp.StatusCode)
	}

	var r report
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return content.Item{}, fmt.Errorf("%w: weather: decode: %v", content.ErrProviderUnavailable, err)
	}
	if len(r.Current) == 0 {
		return content.Item{}, fmt.Errorf("%w: weather: no current conditions", content.ErrProviderUnavailable)
	}

	cur := r.Current[0]
	cond := "Unknown"
	if len(cur.WeatherDesc) > 0 && cur.WeatherDesc[0].Value != "" {
		cond = strings.TrimSpace(cur.WeatherDesc[0].Value)
	}

	lines := []string{
		fmt.Sprintf("%s %s°F", cond, cur.TempF),
		fmt.Sprintf("Wind %s mph  Humidity %s%%", cur.WindMiles, cur.Humidity),
	}

	for i, d := range r.Weather {
		if i >= ForecastDays {
			break
		}
		day := d.Date
		if t, err := time.Parse("2006-01-02", d.Date); err == nil {
			day = t.Format("Mon")
		}
		line := fmt.Sprintf("%s %s/%s°F", day, d.MaxTempF, d.MinTempF)
		if len(d.Astronomy) > 0 {
			a := d.Astronomy[0]
			line += fmt.Sprintf("  ↑%s ↓%s", a.Sunrise, a.Sunset)
		}
		lines = append(lines, line)
	}

	return content.Item{
		ID:   uuid.NewString(),
		Kind: content.KindWeather,
		Payload: content.Payload{
			Title: p.location,
			Lines: lines,
			Brief: fmt.Sprintf("%s°F %s", cur.TempF, cond),
		},
		GeneratedAt: p.now(),
	}, nil
}
