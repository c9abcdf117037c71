package config

const (
	defaultRosterURL = "https://push2.eastmoney.com/api/qt/clist/get"
	defaultQuoteURL  = "https://push2.eastmoney.com/api/qt/ulist.np/get"
)

func (c *Config) applyDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.Env == "" {
		c.App.Env = "prod"
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/stockd.db"
	}
	if c.Calendar.Location == "" {
		c.Calendar.Location = "Asia/Shanghai"
	}
	if len(c.Calendar.Sessions) == 0 {
		c.Calendar.Sessions = []string{"09:15-11:30", "13:00-15:00"}
	}
	if c.Crawler.RosterURL == "" {
		c.Crawler.RosterURL = defaultRosterURL
	}
	if c.Crawler.QuoteURL == "" {
		c.Crawler.QuoteURL = defaultQuoteURL
	}
	if c.Crawler.TimeoutSeconds <= 0 {
		c.Crawler.TimeoutSeconds = 15
	}
	if c.Broker.TimeoutSeconds <= 0 {
		c.Broker.TimeoutSeconds = 15
	}
	if c.Broker.BreakerThreshold <= 0 {
		c.Broker.BreakerThreshold = 5
	}
	if c.Broker.BreakerCooldown <= 0 {
		c.Broker.BreakerCooldown = 60
	}
	if c.OCR.Provider == "" {
		c.OCR.Provider = "http"
	}
	if c.OCR.TimeoutSeconds <= 0 {
		c.OCR.TimeoutSeconds = 30
	}
	if c.Admin.Addr == "" {
		c.Admin.Addr = ":8088"
	}
	if c.Sched.TickerIntervalSeconds <= 0 {
		c.Sched.TickerIntervalSeconds = 15
	}
	if len(c.Sched.HeartbeatMinutes) == 0 {
		c.Sched.HeartbeatMinutes = []int{10, 30, 50}
	}
}
