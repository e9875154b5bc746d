package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// Detection tuning knobs.
	StdDevMultiplier     float64
	DuplicateWindowDays  int
	HistoryWindowDays    int
	MinBaselineDataPoint int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("DETECTION_STDDEV_MULTIPLIER", 3.0)
	viper.SetDefault("DETECTION_DUPLICATE_WINDOW_DAYS", 30)
	viper.SetDefault("DETECTION_HISTORY_WINDOW_DAYS", 90)
	viper.SetDefault("DETECTION_MIN_BASELINE_POINTS", 10)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.StdDevMultiplier = viper.GetFloat64("DETECTION_STDDEV_MULTIPLIER")
	if cfg.StdDevMultiplier <= 0 {
		log.Printf("Warning: Invalid DETECTION_STDDEV_MULTIPLIER (%v). Defaulting to 3.\n", cfg.StdDevMultiplier)
		cfg.StdDevMultiplier = 3.0
	}

	cfg.DuplicateWindowDays = viper.GetInt("DETECTION_DUPLICATE_WINDOW_DAYS")
	if cfg.DuplicateWindowDays <= 0 {
		log.Printf("Warning: Invalid DETECTION_DUPLICATE_WINDOW_DAYS (%d). Defaulting to 30.\n", cfg.DuplicateWindowDays)
		cfg.DuplicateWindowDays = 30
	}

	cfg.HistoryWindowDays = viper.GetInt("DETECTION_HISTORY_WINDOW_DAYS")
	if cfg.HistoryWindowDays <= 0 {
		log.Printf("Warning: Invalid DETECTION_HISTORY_WINDOW_DAYS (%d). Defaulting to 90.\n", cfg.HistoryWindowDays)
		cfg.HistoryWindowDays = 90
	}

	cfg.MinBaselineDataPoint = viper.GetInt("DETECTION_MIN_BASELINE_POINTS")
	if cfg.MinBaselineDataPoint <= 0 {
		log.Printf("Warning: Invalid DETECTION_MIN_BASELINE_POINTS (%d). Defaulting to 10.\n", cfg.MinBaselineDataPoint)
		cfg.MinBaselineDataPoint = 10
	}

	return cfg, nil
}
