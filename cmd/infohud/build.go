// cmd/infohud/build.go
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tamzrod/infohud/internal/config"
	"github.com/tamzrod/infohud/internal/content"
	"github.com/tamzrod/infohud/internal/content/images"
	"github.com/tamzrod/infohud/internal/content/news"
	"github.com/tamzrod/infohud/internal/content/stocks"
	"github.com/tamzrod/infohud/internal/content/weather"
	"github.com/tamzrod/infohud/internal/display"
	"github.com/tamzrod/infohud/internal/display/compose"
	"github.com/tamzrod/infohud/internal/display/oled"
	"github.com/tamzrod/infohud/internal/display/pngsink"
	"github.com/tamzrod/infohud/internal/display/quote0sink"
	"github.com/tamzrod/infohud/internal/display/snapshot"
	"github.com/tamzrod/infohud/internal/power"
	"github.com/tamzrod/infohud/internal/power/i2cgauge"
	"github.com/tamzrod/infohud/internal/power/modbusups"
	"github.com/tamzrod/infohud/internal/power/pisugar"
	"github.com/tamzrod/infohud/internal/refresh"
	"github.com/tamzrod/infohud/internal/rotation"
	"github.com/tamzrod/infohud/internal/update"
)

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

func noop() error { return nil }

// buildPower returns the configured battery monitor and its closer.
func buildPower(p config.PowerConfig) (power.Monitor, func() error, error) {
	switch p.Driver {
	case "pisugar":
		m, err := pisugar.New(pisugar.Config{Endpoint: p.PiSugar.Endpoint})
		return m, noop, err

	case "i2c":
		bus, closeBus, err := i2cgauge.OpenHostBus(p.I2C.Bus)
		if err != nil {
			return nil, nil, err
		}
		g, err := i2cgauge.New(bus, p.I2C.Addr)
		if err != nil {
			closeBus()
			return nil, nil, err
		}
		return g, closeBus, nil

	case "modbus":
		mb := p.Modbus
		cli, err := modbusups.Dial(modbusups.TransportConfig{
			Endpoint: mb.Endpoint,
			Mode:     mb.Mode,
			BaudRate: mb.BaudRate,
			UnitID:   mb.UnitID,
			Timeout:  ms(mb.TimeoutMs),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("modbus ups dial %s: %w", mb.Endpoint, err)
		}
		m, err := modbusups.New(modbusups.Config{
			FC:               mb.FC,
			PercentRegister:  mb.PercentRegister,
			PercentScale:     mb.PercentScale,
			ChargingRegister: mb.ChargingRegister,
		}, cli)
		if err != nil {
			cli.Close()
			return nil, nil, err
		}
		return m, cli.Close, nil

	case "static":
		return power.Static{Percent: p.Static.Percent, Charging: p.Static.Charging}, noop, nil
	}
	return nil, nil, fmt.Errorf("unknown power driver %q", p.Driver)
}

// buildRotation registers one provider per configured kind and builds the scheduler.
func buildRotation(h config.HUDConfig, log *slog.Logger) (*rotation.Scheduler, error) {
	httpc := &http.Client{Timeout: ms(h.Tick.CallTimeoutMs)}
	reg := content.NewRegistry()

	if c := h.Providers.News; c != nil {
		nc := news.Config{FeedURL: c.FeedURL, Client: httpc, Log: log}
		if sc := c.Summarizer; sc != nil {
			sum, err := news.NewOllama(news.OllamaConfig{URL: sc.URL, Model: sc.Model, Client: httpc})
			if err != nil {
				return nil, err
			}
			nc.Summarizer = sum
		}
		p, err := news.New(nc)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(p); err != nil {
			return nil, err
		}
	}
	if c := h.Providers.Stocks; c != nil {
		p, err := stocks.New(stocks.Config{BaseURL: c.BaseURL, Symbols: c.Symbols, Client: httpc})
		if err != nil {
			return nil, err
		}
		if err := reg.Register(p); err != nil {
			return nil, err
		}
	}
	if c := h.Providers.Images; c != nil {
		p, err := images.New(c.Dir)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(p); err != nil {
			return nil, err
		}
	}
	if c := h.Providers.Weather; c != nil {
		p, err := weather.New(weather.Config{BaseURL: c.BaseURL, Location: c.Location, Client: httpc})
		if err != nil {
			return nil, err
		}
		if err := reg.Register(p); err != nil {
			return nil, err
		}
	}

	policy := make(rotation.Policy, 0, len(h.Rotation.Slots))
	for _, s := range h.Rotation.Slots {
		k, err := content.ParseKind(s.Kind)
		if err != nil {
			return nil, err
		}
		policy = append(policy, rotation.Slot{
			Name:     s.Name,
			Kind:     k,
			Interval: ms(s.IntervalMs),
			TTL:      ms(s.TTLMs),
		})
	}

	// every fetch is bounded by the call timeout
	return rotation.NewScheduler(policy, refresh.BoundFetcher(reg, ms(h.Tick.CallTimeoutMs)), log)
}

// buildSink returns the configured display sink, optionally teed into
// snapshot files, and its closer.
func buildSink(d config.DisplayConfig, log *slog.Logger) (display.Sink, func() error, error) {
	var (
		sink    display.Sink
		closeFn = noop
	)

	switch d.Driver {
	case "quote0":
		s, err := quote0sink.New(d.Quote0.Token, d.Quote0.DeviceID, d.Quote0.BaseURL)
		if err != nil {
			return nil, nil, err
		}
		sink = s

	case "oled":
		s, closeBus, err := oled.Open(d.OLED.Bus)
		if err != nil {
			return nil, nil, err
		}
		sink, closeFn = s, closeBus

	case "png":
		c, err := compose.New(d.Width, d.Height)
		if err != nil {
			return nil, nil, err
		}
		s, err := pngsink.New(d.PNG.Dir, c)
		if err != nil {
			return nil, nil, err
		}
		sink = s

	case "log":
		sink = display.LogSink{Log: log}

	default:
		return nil, nil, fmt.Errorf("unknown display driver %q", d.Driver)
	}

	if d.SnapshotDir == "" {
		return sink, closeFn, nil
	}

	c, err := compose.New(d.Width, d.Height)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	tee, err := snapshot.New(sink, d.SnapshotDir, d.KeepLatest, c, log)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return tee, closeFn, nil
}

// buildUpdate returns nil checker and applier when updates are disabled.
func buildUpdate(u config.UpdateConfig, running string) (update.Checker, update.Applier, error) {
	if !u.Enabled {
		return nil, nil, nil
	}
	current := u.CurrentVersion
	if current == "" {
		current = running
	}
	a, err := update.NewCommandApplier(u.ApplyCommand, current)
	if err != nil {
		return nil, nil, err
	}
	return update.NewHTTPChecker(u.ManifestURL, current), a, nil
}
