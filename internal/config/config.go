package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                  string
	AppEnv                   string
	AppPort                  string
	DatabaseURL              string
	RedisURL                 string
	NatsURL                  string
	JWTSecret                string
	ApplicationDirectoryURL  string
	ApplicationDirectoryKey  string
	StaffDirectoryURL        string
	DirectoryTimeout         time.Duration
	WorkdayStart             string
	WorkdayEnd               string
	SlotGranularityMinutes   int
	DefaultInterviewDuration int
	OutcomeChannel           string
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
	v.SetEnvPrefix("ESM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "ESM Interview API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("directory.timeout", "5s")
	v.SetDefault("workday.start", "08:00")
	v.SetDefault("workday.end", "17:00")
	v.SetDefault("slot.granularity_minutes", 30)
	v.SetDefault("interview.default_duration_minutes", 30)
	v.SetDefault("outcome.channel", "esm")

	timeoutString := v.GetString("directory.timeout")
	if timeoutString == "" {
		timeoutString = "5s"
	}

	timeout, err := time.ParseDuration(timeoutString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid directory timeout: %w", err)
	}

	cfg := Config{
		AppName:                  v.GetString("app.name"),
		AppEnv:                   v.GetString("app.env"),
		AppPort:                  v.GetString("app.port"),
		DatabaseURL:              v.GetString("database.url"),
		RedisURL:                 v.GetString("redis.url"),
		NatsURL:                  v.GetString("nats.url"),
		JWTSecret:                v.GetString("jwt.secret"),
		ApplicationDirectoryURL:  v.GetString("directory.application_url"),
		ApplicationDirectoryKey:  v.GetString("directory.api_key"),
		StaffDirectoryURL:        v.GetString("directory.staff_url"),
		DirectoryTimeout:         timeout,
		WorkdayStart:             v.GetString("workday.start"),
		WorkdayEnd:               v.GetString("workday.end"),
		SlotGranularityMinutes:   v.GetInt("slot.granularity_minutes"),
		DefaultInterviewDuration: v.GetInt("interview.default_duration_minutes"),
		OutcomeChannel:           v.GetString("outcome.channel"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}
	if cfg.ApplicationDirectoryURL == "" {
		return Config{}, fmt.Errorf("application directory url must be provided")
	}
	if cfg.StaffDirectoryURL == "" {
		cfg.StaffDirectoryURL = cfg.ApplicationDirectoryURL
	}

	if cfg.SlotGranularityMinutes <= 0 {
		cfg.SlotGranularityMinutes = 30
	}
	if cfg.DefaultInterviewDuration <= 0 {
		cfg.DefaultInterviewDuration = 30
	}

	return cfg, nil
}
