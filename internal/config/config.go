// internal/config/config.go
package config

type Config struct {
	HUD HUDConfig `yaml:"hud"`
}

type HUDConfig struct {
	Name      string          `yaml:"name"`
	Tick      TickConfig      `yaml:"tick"`
	Power     PowerConfig     `yaml:"power"`
	Update    UpdateConfig    `yaml:"update"`
	Flash     FlashConfig     `yaml:"flash"`
	Rotation  RotationConfig  `yaml:"rotation"`
	Providers ProvidersConfig `yaml:"providers"`
	Display   DisplayConfig   `yaml:"display"`
	Status    *StatusConfig   `yaml:"status"` // optional, opt-in
	Log       LogConfig       `yaml:"log"`
}

// ---- TICK ----

type TickConfig struct {
	IntervalMs    int `yaml:"interval_ms"`
	CallTimeoutMs int `yaml:"call_timeout_ms"` // bound on every external call
}

// ---- POWER ----

type PowerConfig struct {
	Driver          string `yaml:"driver"` // pisugar | i2c | modbus | static
	ShutdownPercent int    `yaml:"shutdown_percent"`
	StaleAfterMs    int    `yaml:"stale_after_ms"`
	ShutdownCommand string `yaml:"shutdown_command"`

	PiSugar *PiSugarConfig `yaml:"pisugar"`
	I2C     *I2CConfig     `yaml:"i2c"`
	Modbus  *ModbusUPS     `yaml:"modbus"`
	Static  *StaticPower   `yaml:"static"`
}

type PiSugarConfig struct {
	Endpoint string `yaml:"endpoint"`
}

type I2CConfig struct {
	Bus  string `yaml:"bus"` // "" = first bus
	Addr uint16 `yaml:"addr"`
}

type ModbusUPS struct {
	Endpoint         string  `yaml:"endpoint"` // host:port for TCP, device path for RTU
	Mode             string  `yaml:"mode"`     // tcp | rtu
	BaudRate         int     `yaml:"baud_rate"`
	UnitID           uint8   `yaml:"unit_id"`
	TimeoutMs        int     `yaml:"timeout_ms"`
	FC               uint8   `yaml:"fc"` // 3 (holding) or 4 (input)
	PercentRegister  uint16  `yaml:"percent_register"`
	PercentScale     float64 `yaml:"percent_scale"`
	ChargingRegister *uint16 `yaml:"charging_register"`
}

type StaticPower struct {
	Percent  int  `yaml:"percent"`
	Charging bool `yaml:"charging"`
}

// ---- UPDATE ----

type UpdateConfig struct {
	Enabled          bool   `yaml:"enabled"`
	CurrentVersion   string `yaml:"current_version"`
	ManifestURL      string `yaml:"manifest_url"`
	ApplyCommand     string `yaml:"apply_command"`
	DeferralPriority *int   `yaml:"deferral_priority"`
}

// ---- FLASH ----

type FlashConfig struct {
	MaxRenderAttempts int    `yaml:"max_render_attempts"`
	DefaultDisplayMs  int    `yaml:"default_display_ms"`
	DefaultTTLMs      int    `yaml:"default_ttl_ms"`
	TieBreak          string `yaml:"tie_break"` // arrival | id

	HTTP    *HTTPIngest    `yaml:"http"`
	MQTT    *MQTTIngest    `yaml:"mqtt"`
	Discord *DiscordIngest `yaml:"discord"`
}

type HTTPIngest struct {
	Listen string `yaml:"listen"`
	Token  string `yaml:"token"`
}

type MQTTIngest struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
	QoS      byte   `yaml:"qos"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type DiscordIngest struct {
	Token     string `yaml:"token"`
	ChannelID string `yaml:"channel_id"`
	Priority  int    `yaml:"priority"`
}

// ---- ROTATION ----

type RotationConfig struct {
	Slots []SlotConfig `yaml:"slots"`
}

type SlotConfig struct {
	Name       string `yaml:"name"`
	Kind       string `yaml:"kind"` // news | stock | image | weather
	IntervalMs int    `yaml:"interval_ms"`
	TTLMs      int    `yaml:"ttl_ms"` // cached item lifetime for re-display, 0 = no limit
}

// ---- PROVIDERS ----

type ProvidersConfig struct {
	News    *NewsConfig    `yaml:"news"`
	Stocks  *StocksConfig  `yaml:"stocks"`
	Images  *ImagesConfig  `yaml:"images"`
	Weather *WeatherConfig `yaml:"weather"`
}

type NewsConfig struct {
	FeedURL    string            `yaml:"feed_url"`
	Summarizer *SummarizerConfig `yaml:"summarizer"` // optional
}

// SummarizerConfig points at an Ollama generate endpoint.
type SummarizerConfig struct {
	URL   string `yaml:"url"`
	Model string `yaml:"model"` // "" = deepseek-r1:14b
}

type StocksConfig struct {
	BaseURL string   `yaml:"base_url"`
	Symbols []string `yaml:"symbols"`
}

type ImagesConfig struct {
	Dir string `yaml:"dir"`
}

type WeatherConfig struct {
	BaseURL  string `yaml:"base_url"`
	Location string `yaml:"location"`
}

// ---- DISPLAY ----

type DisplayConfig struct {
	Driver      string `yaml:"driver"` // quote0 | oled | png | log
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	SnapshotDir string `yaml:"snapshot_dir"`
	KeepLatest  int    `yaml:"keep_latest"`
	Header      bool   `yaml:"header"` // date, time and cached weather on every frame

	Quote0 *Quote0Display `yaml:"quote0"`
	OLED   *OLEDDisplay   `yaml:"oled"`
	PNG    *PNGDisplay    `yaml:"png"`
}

type Quote0Display struct {
	Token    string `yaml:"token"`
	DeviceID string `yaml:"device_id"`
	BaseURL  string `yaml:"base_url"`
}

// OLEDDisplay drives an SSD1306 at its fixed address 0x3C.
type OLEDDisplay struct {
	Bus string `yaml:"bus"`
}

type PNGDisplay struct {
	Dir string `yaml:"dir"`
}

// ---- STATUS EXPORT ----

type StatusConfig struct {
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	BaseSlot  uint16 `yaml:"base_slot"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- LOG ----

type LogConfig struct {
	Level      string `yaml:"level"` // debug | info | warn | error
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}
