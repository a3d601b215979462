// Package config provides configuration loading for payment-verifier.
//
// Values come from a YAML file overridden by PAYMENT_VERIFIER_*
// environment variables, on top of hardcoded defaults. Configuration
// is loaded once and treated as read-only afterwards.
package config

// Config holds the complete payment-verifier configuration.
type Config struct {
	AppName      string             `koanf:"app_name"`
	Server       ServerConfig       `koanf:"server"`
	Gmail        GmailConfig        `koanf:"gmail"`
	Verification VerificationConfig `koanf:"verification"`
	OCR          OCRConfig          `koanf:"ocr"`
	Scheduler    SchedulerConfig    `koanf:"scheduler"`
	Logging      LoggingConfig      `koanf:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// GmailConfig holds mailbox search configuration.
type GmailConfig struct {
	WatchQuery string `koanf:"watch_query"`
	MaxResults int64  `koanf:"max_results"`
}

// VerificationConfig holds the matching policy knobs.
type VerificationConfig struct {
	AmountTolerancePct float64 `koanf:"amount_tolerance_pct"`
	TimeWindowHours    int     `koanf:"time_window_hours"`
}

// OCRConfig holds image text extraction configuration.
type OCRConfig struct {
	Language string `koanf:"language"`
}

// SchedulerConfig holds the periodic inbox sweep configuration.
type SchedulerConfig struct {
	Enabled         bool `koanf:"enabled"`
	IntervalMinutes int  `koanf:"interval_minutes"`
}

// LoggingConfig controls log level and optional file output.
type LoggingConfig struct {
	Level string `koanf:"level"`
	File  string `koanf:"file"`
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		AppName: "PaymentVerifierAI",
		Server: ServerConfig{
			Addr: "localhost:8080",
		},
		Gmail: GmailConfig{
			WatchQuery: "in:inbox newer_than:7d",
			MaxResults: 50,
		},
		Verification: VerificationConfig{
			AmountTolerancePct: 1.0,
			TimeWindowHours:    168,
		},
		OCR: OCRConfig{
			Language: "eng+fra",
		},
		Scheduler: SchedulerConfig{
			Enabled:         false,
			IntervalMinutes: 5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
