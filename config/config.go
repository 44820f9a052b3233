package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB    int    `mapstructure:"REDIS_CACHE_DB"`
	RedisJobQueueDB int    `mapstructure:"REDIS_JOB_QUEUE_DB"`

	// Google Calendar OAuth credentials.
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`

	// Scheduling settings.
	HomeTimezone         string `mapstructure:"HOME_TIMEZONE"`
	BusinessHoursStart   string `mapstructure:"BUSINESS_HOURS_START"`
	BusinessHoursEnd     string `mapstructure:"BUSINESS_HOURS_END"`
	DefaultBufferMinutes int    `mapstructure:"DEFAULT_BUFFER_MINUTES"`
	MaxDailyBookings     int    `mapstructure:"MAX_DAILY_BOOKINGS"`
	MaxStopsPerRoute     int    `mapstructure:"MAX_STOPS_PER_ROUTE"`
	MaxRouteTravelMins   int    `mapstructure:"MAX_ROUTE_TRAVEL_MINS"`
	CalendarTimeoutSecs  int    `mapstructure:"CALENDAR_TIMEOUT_SECS"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_JOB_QUEUE_DB", 1)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("GOOGLE_CLIENT_ID", "")
	viper.SetDefault("GOOGLE_CLIENT_SECRET", "")
	viper.SetDefault("HOME_TIMEZONE", "America/Chicago")
	viper.SetDefault("BUSINESS_HOURS_START", "08:00")
	viper.SetDefault("BUSINESS_HOURS_END", "18:00")
	viper.SetDefault("DEFAULT_BUFFER_MINUTES", 15)
	viper.SetDefault("MAX_DAILY_BOOKINGS", 8)
	viper.SetDefault("MAX_STOPS_PER_ROUTE", 8)
	viper.SetDefault("MAX_ROUTE_TRAVEL_MINS", 45)
	viper.SetDefault("CALENDAR_TIMEOUT_SECS", 10)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
