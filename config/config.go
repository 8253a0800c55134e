package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE" envDefault:"risk_monitor.log"`
	API      API
	Jobs     Jobs
	Metrics  Metrics
	Telegram Telegram
	Export   Export
}

type API struct {
	Debug   bool          `env:"API_DEBUG" envDefault:"false"`
	Timeout time.Duration `env:"API_TIMEOUT" envDefault:"5s"`
	Backend Backend
}

type Backend struct {
	Url string `env:"BACKEND_URL" envDefault:"http://localhost:5000"`
}

type Jobs struct {
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"10s"`
}

type Metrics struct {
	// empty disables the /metrics endpoint
	Addr string `env:"METRICS_ADDR" envDefault:""`
}

type Telegram struct {
	// empty disables the bot
	Token            string        `env:"TELEGRAM_TOKEN" envDefault:""`
	ApiURL           string        `env:"TELEGRAM_API_URL" envDefault:"https://api.telegram.org"`
	UpdTimeout       time.Duration `env:"TELEGRAM_UPD_TIMEOUT" envDefault:"10s"`
	FileLimitInBytes int           `env:"TELEGRAM_FILE_LIMIT_IN_BYTES" envDefault:"52428800"`
	AlertChatID      int64         `env:"TELEGRAM_ALERT_CHAT_ID" envDefault:"0"`
}

type Export struct {
	Dir string `env:"EXPORT_DIR" envDefault:"."`
}

func (t Telegram) Enabled() bool {
	return t.Token != ""
}

func (t Telegram) AlertsEnabled() bool {
	return t.Enabled() && t.AlertChatID != 0
}

func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, err
	}

	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}
