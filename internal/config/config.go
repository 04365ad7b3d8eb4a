package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the report API.
type Config struct {
	AppName               string
	AppEnv                string
	AppPort               string
	DatabaseURL           string
	RedisURL              string
	JWTSecret             string
	ReportLocation        *time.Location
	ReportDefaultPageSize int
	RenderTimeout         time.Duration
	RenderMaxBytes        int64
	RenderBrowserPath     string
	RenderInstallBrowsers bool
	ExportRateLimit       int
	ExportRateWindow      time.Duration
	CORSAllowOrigins      string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("REPORTS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Activity Report API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("report.timezone", "UTC")
	v.SetDefault("report.default_page_size", 50)
	v.SetDefault("render.timeout", "30s")
	v.SetDefault("render.max_bytes", 20*1024*1024)
	v.SetDefault("render.install_browsers", false)
	v.SetDefault("export.rate_limit", 10)
	v.SetDefault("export.rate_window", "1m")
	v.SetDefault("http.allow_origins", "*")
}

func fromViper(v *viper.Viper) (Config, error) {
	setDefaults(v)

	location, err := time.LoadLocation(v.GetString("report.timezone"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid report timezone: %w", err)
	}

	renderTimeout, err := time.ParseDuration(v.GetString("render.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid render timeout: %w", err)
	}

	rateWindow, err := time.ParseDuration(v.GetString("export.rate_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid export rate window: %w", err)
	}

	cfg := Config{
		AppName:               v.GetString("app.name"),
		AppEnv:                v.GetString("app.env"),
		AppPort:               v.GetString("app.port"),
		DatabaseURL:           v.GetString("database.url"),
		RedisURL:              v.GetString("redis.url"),
		JWTSecret:             v.GetString("jwt.secret"),
		ReportLocation:        location,
		ReportDefaultPageSize: v.GetInt("report.default_page_size"),
		RenderTimeout:         renderTimeout,
		RenderMaxBytes:        v.GetInt64("render.max_bytes"),
		RenderBrowserPath:     v.GetString("render.browser_path"),
		RenderInstallBrowsers: v.GetBool("render.install_browsers"),
		ExportRateLimit:       v.GetInt("export.rate_limit"),
		ExportRateWindow:      rateWindow,
		CORSAllowOrigins:      v.GetString("http.allow_origins"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.ReportDefaultPageSize <= 0 {
		cfg.ReportDefaultPageSize = 50
	}

	if cfg.ExportRateLimit <= 0 {
		cfg.ExportRateLimit = 10
	}

	return cfg, nil
}
