// internal/config/normalize.go
package config

// Defaults applied by Normalize.
const (
	DefaultTickIntervalMs    = 30_000
	DefaultCallTimeoutMs     = 10_000
	DefaultShutdownPercent   = 5
	DefaultStaleAfterMs      = 120_000
	DefaultDeferralPriority  = 5
	DefaultMaxRenderAttempts = 3
	DefaultFlashDisplayMs    = 60_000
	DefaultFlashTTLMs        = 3_600_000
	DefaultKeepLatest        = 10

	DefaultPiSugarEndpoint = "127.0.0.1:8423"
	DefaultPiSugarI2CAddr  = 0x57
	DefaultDisplayWidth    = 296
	DefaultDisplayHeight   = 152
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	h := &cfg.HUD

	if h.Name == "" {
		h.Name = "infohud"
	}
	// status block holds at most 16 characters of name
	if len(h.Name) > 16 {
		h.Name = h.Name[:16]
	}

	intDefault(&h.Tick.IntervalMs, DefaultTickIntervalMs)
	intDefault(&h.Tick.CallTimeoutMs, DefaultCallTimeoutMs)

	// ---- power ----
	intDefault(&h.Power.ShutdownPercent, DefaultShutdownPercent)
	intDefault(&h.Power.StaleAfterMs, DefaultStaleAfterMs)
	switch h.Power.Driver {
	case "pisugar":
		if h.Power.PiSugar == nil {
			h.Power.PiSugar = &PiSugarConfig{}
		}
		if h.Power.PiSugar.Endpoint == "" {
			h.Power.PiSugar.Endpoint = DefaultPiSugarEndpoint
		}
	case "i2c":
		if h.Power.I2C == nil {
			h.Power.I2C = &I2CConfig{}
		}
		if h.Power.I2C.Addr == 0 {
			h.Power.I2C.Addr = DefaultPiSugarI2CAddr
		}
	case "modbus":
		m := h.Power.Modbus
		if m.Mode == "" {
			m.Mode = "tcp"
		}
		if m.FC == 0 {
			m.FC = 3
		}
		if m.PercentScale == 0 {
			m.PercentScale = 1
		}
		if m.BaudRate == 0 {
			m.BaudRate = 9600
		}
		intDefault(&m.TimeoutMs, 2000)
	}

	// ---- update ----
	if h.Update.DeferralPriority == nil {
		v := DefaultDeferralPriority
		h.Update.DeferralPriority = &v
	}

	// ---- flash ----
	intDefault(&h.Flash.MaxRenderAttempts, DefaultMaxRenderAttempts)
	intDefault(&h.Flash.DefaultDisplayMs, DefaultFlashDisplayMs)
	intDefault(&h.Flash.DefaultTTLMs, DefaultFlashTTLMs)
	if h.Flash.TieBreak == "" {
		h.Flash.TieBreak = "arrival"
	}
	if h.Flash.MQTT != nil && h.Flash.MQTT.ClientID == "" {
		h.Flash.MQTT.ClientID = h.Name
	}

	// ---- providers ----
	if p := h.Providers.Stocks; p != nil && p.BaseURL == "" {
		p.BaseURL = "https://query1.finance.yahoo.com"
	}
	if p := h.Providers.Weather; p != nil && p.BaseURL == "" {
		p.BaseURL = "https://wttr.in"
	}

	// ---- display ----
	intDefault(&h.Display.Width, DefaultDisplayWidth)
	intDefault(&h.Display.Height, DefaultDisplayHeight)
	intDefault(&h.Display.KeepLatest, DefaultKeepLatest)
	if h.Display.Driver == "oled" && h.Display.OLED == nil {
		h.Display.OLED = &OLEDDisplay{}
	}

	if h.Status != nil {
		intDefault(&h.Status.TimeoutMs, 2000)
	}

	if h.Log.Level == "" {
		h.Log.Level = "info"
	}
	intDefault(&h.Log.MaxSizeMB, 10)
	intDefault(&h.Log.MaxBackups, 7)
}

func intDefault(v *int, d int) {
	if *v == 0 {
		*v = d
	}
}
