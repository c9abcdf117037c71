package config

// Config is the root configuration. Field tags follow the YAML keys in
// configs/config.yaml.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Crawler  CrawlerConfig  `mapstructure:"crawler"`
	Broker   BrokerConfig   `mapstructure:"broker"`
	Accounts []AccountSeed  `mapstructure:"accounts"`
	Notifier NotifierConfig `mapstructure:"notifier"`
	OCR      OCRConfig      `mapstructure:"ocr"`
	Features FeatureConfig  `mapstructure:"features"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Sched    SchedConfig    `mapstructure:"sched"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
	LogPath  string `mapstructure:"log_path"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type CalendarConfig struct {
	// Location is the market timezone, default Asia/Shanghai.
	Location string `mapstructure:"location"`
	// Holidays lists non-trading dates as "2006-01-02". Weekends are implicit.
	Holidays []string `mapstructure:"holidays"`
	// Sessions are trading windows as "HH:MM-HH:MM" pairs.
	Sessions []string `mapstructure:"sessions"`
}

type CrawlerConfig struct {
	RosterURL      string `mapstructure:"roster_url"`
	QuoteURL       string `mapstructure:"quote_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type BrokerConfig struct {
	BaseURL          string `mapstructure:"base_url"`
	CaptchaURL       string `mapstructure:"captcha_url"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
	BreakerThreshold int    `mapstructure:"breaker_threshold"`
	BreakerCooldown  int    `mapstructure:"breaker_cooldown_seconds"`
}

// AccountSeed seeds the trade_user table on first boot; live session state
// (cookie, validate key) stays in the database afterwards.
type AccountSeed struct {
	Account  string `mapstructure:"account"`
	Password string `mapstructure:"password"`
}

type NotifierConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

type OCRConfig struct {
	// Provider selects a registered OCR implementation by name.
	Provider       string `mapstructure:"provider"`
	Endpoint       string `mapstructure:"endpoint"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type FeatureConfig struct {
	// Margin enables the credit-trading (cr) channel variants.
	Margin bool `mapstructure:"margin"`
	// ConvertibleBond enables convertible-bond auto subscription.
	ConvertibleBond bool `mapstructure:"convertible_bond"`
}

type AdminConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type SchedConfig struct {
	// TickerIntervalSeconds controls how often the ticker/tradeTicker
	// categories fire inside trading sessions.
	TickerIntervalSeconds int `mapstructure:"ticker_interval_seconds"`
	// HeartbeatMinutes are the minutes of each hour the liveness probe runs.
	HeartbeatMinutes []int `mapstructure:"heartbeat_minutes"`
}
