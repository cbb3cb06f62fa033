// internal/config/validate.go
package config

import (
	"fmt"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
// Zero values are accepted wherever Normalize supplies a default.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil config")
	}
	h := &cfg.HUD

	// hud name sanity (ASCII only, exported into the status block)
	for i := 0; i < len(h.Name); i++ {
		if h.Name[i] > 0x7F {
			return fmt.Errorf("hud name must contain ASCII characters only")
		}
	}

	// ------------------------------------------------------------
	// TIMING
	// ------------------------------------------------------------

	if h.Tick.IntervalMs < 0 {
		return fmt.Errorf("tick.interval_ms must be >= 0")
	}
	if h.Tick.CallTimeoutMs < 0 {
		return fmt.Errorf("tick.call_timeout_ms must be >= 0")
	}

	if err := validatePower(&h.Power); err != nil {
		return err
	}

	// ------------------------------------------------------------
	// UPDATE
	// ------------------------------------------------------------

	if h.Update.Enabled {
		if h.Update.ManifestURL == "" {
			return fmt.Errorf("update.manifest_url is required when update is enabled")
		}
		if h.Update.ApplyCommand == "" {
			return fmt.Errorf("update.apply_command is required when update is enabled")
		}
	}

	// ------------------------------------------------------------
	// FLASH
	// ------------------------------------------------------------

	f := &h.Flash
	if f.MaxRenderAttempts < 0 {
		return fmt.Errorf("flash.max_render_attempts must be >= 0")
	}
	if f.DefaultDisplayMs < 0 || f.DefaultTTLMs < 0 {
		return fmt.Errorf("flash default durations must be >= 0")
	}
	switch f.TieBreak {
	case "", "arrival", "id":
	default:
		return fmt.Errorf("flash.tie_break %q: want arrival or id", f.TieBreak)
	}
	if f.MQTT != nil && (f.MQTT.Broker == "" || f.MQTT.Topic == "") {
		return fmt.Errorf("flash.mqtt requires broker and topic")
	}
	if f.MQTT != nil && f.MQTT.QoS > 2 {
		return fmt.Errorf("flash.mqtt.qos %d out of range", f.MQTT.QoS)
	}
	if f.Discord != nil && f.Discord.Token == "" {
		return fmt.Errorf("flash.discord requires token")
	}

	if err := validateRotation(h); err != nil {
		return err
	}
	if err := validateDisplay(&h.Display); err != nil {
		return err
	}

	// ------------------------------------------------------------
	// STATUS EXPORT (OPT-IN)
	// ------------------------------------------------------------

	if h.Status != nil && h.Status.Endpoint == "" {
		return fmt.Errorf("status is set but status.endpoint is empty")
	}

	switch h.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q unknown", h.Log.Level)
	}

	return nil
}

func validatePower(p *PowerConfig) error {
	if p.ShutdownPercent < 0 || p.ShutdownPercent > 100 {
		return fmt.Errorf("power.shutdown_percent %d out of range 0-100", p.ShutdownPercent)
	}
	if p.StaleAfterMs < 0 {
		return fmt.Errorf("power.stale_after_ms must be >= 0")
	}

	switch p.Driver {
	case "pisugar":
		// endpoint defaults to the local pisugar-server
	case "i2c":
		// bus and address default to the PiSugar 3 gauge
	case "modbus":
		if p.Modbus == nil || p.Modbus.Endpoint == "" {
			return fmt.Errorf("power driver modbus requires power.modbus.endpoint")
		}
		switch p.Modbus.FC {
		case 0, 3, 4:
		default:
			return fmt.Errorf("power.modbus.fc %d: want 3 or 4", p.Modbus.FC)
		}
		switch p.Modbus.Mode {
		case "", "tcp", "rtu":
		default:
			return fmt.Errorf("power.modbus.mode %q: want tcp or rtu", p.Modbus.Mode)
		}
	case "static":
		if p.Static == nil {
			return fmt.Errorf("power driver static requires power.static")
		}
		if p.Static.Percent < 0 || p.Static.Percent > 100 {
			return fmt.Errorf("power.static.percent %d out of range 0-100", p.Static.Percent)
		}
	case "":
		return fmt.Errorf("power.driver is required")
	default:
		return fmt.Errorf("power.driver %q unknown", p.Driver)
	}
	return nil
}

func validateRotation(h *HUDConfig) error {
	if len(h.Rotation.Slots) == 0 {
		return fmt.Errorf("rotation requires at least one slot")
	}

	seen := make(map[string]struct{}, len(h.Rotation.Slots))
	for i, s := range h.Rotation.Slots {
		if s.Name == "" {
			return fmt.Errorf("rotation slot %d: name required", i)
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("rotation slot %q defined twice", s.Name)
		}
		seen[s.Name] = struct{}{}

		if s.IntervalMs <= 0 {
			return fmt.Errorf("rotation slot %q: interval_ms must be > 0", s.Name)
		}
		if s.TTLMs < 0 {
			return fmt.Errorf("rotation slot %q: ttl_ms must be >= 0", s.Name)
		}

		switch s.Kind {
		case "news":
			if h.Providers.News == nil || h.Providers.News.FeedURL == "" {
				return fmt.Errorf("rotation slot %q: providers.news.feed_url required", s.Name)
			}
			if sum := h.Providers.News.Summarizer; sum != nil && sum.URL == "" {
				return fmt.Errorf("providers.news.summarizer.url required")
			}
		case "stock":
			if h.Providers.Stocks == nil || len(h.Providers.Stocks.Symbols) == 0 {
				return fmt.Errorf("rotation slot %q: providers.stocks.symbols required", s.Name)
			}
		case "image":
			if h.Providers.Images == nil || h.Providers.Images.Dir == "" {
				return fmt.Errorf("rotation slot %q: providers.images.dir required", s.Name)
			}
		case "weather":
			if h.Providers.Weather == nil || h.Providers.Weather.Location == "" {
				return fmt.Errorf("rotation slot %q: providers.weather.location required", s.Name)
			}
		default:
			return fmt.Errorf("rotation slot %q: kind %q unknown", s.Name, s.Kind)
		}
	}
	return nil
}

func validateDisplay(d *DisplayConfig) error {
	if d.Width < 0 || d.Height < 0 || d.KeepLatest < 0 {
		return fmt.Errorf("display geometry and keep_latest must be >= 0")
	}

	switch d.Driver {
	case "quote0":
		if d.Quote0 == nil || d.Quote0.Token == "" || d.Quote0.DeviceID == "" {
			return fmt.Errorf("display driver quote0 requires token and device_id")
		}
	case "oled":
		// bus defaults to the first one periph finds
	case "png":
		if d.PNG == nil || d.PNG.Dir == "" {
			return fmt.Errorf("display driver png requires display.png.dir")
		}
	case "log":
	case "":
		return fmt.Errorf("display.driver is required")
	default:
		return fmt.Errorf("display.driver %q unknown", d.Driver)
	}
	return nil
}
