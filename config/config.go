/*
Package config loads server configuration.

PURPOSE:
  Collects everything the server needs at startup from three layers, each
  overriding the previous: built-in defaults, an optional config.toml read
  via viper, and environment variables (with a .env file loaded first via
  godotenv). Command-line flags in cmd/server override the result last.

KEYS:
  service_host / OPENSAM_HOST         bind address        (default "")
  service_port / OPENSAM_PORT         listen port         (default 8080)
  data_dir     / OPENSAM_DATA_DIR     CSV directory       (default "./data")
  db_path      / OPENSAM_DB_PATH      session store path  (default ":memory:")
  count_by_user / OPENSAM_COUNT_BY_USER  default counting mode (default false)
  thresholds.low_usage_days, thresholds.renewal_window_days,
  thresholds.urgent_window_days, thresholds.high_value_usd
*/
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/PaulSemaan007/OpenSAM/sam"
)

type Config struct {
	ServiceHost string
	ServicePort int

	// DataDir is where the CSV tables live; DBPath is the SQLite session
	// store, ":memory:" by default so nothing survives the process.
	DataDir string
	DBPath  string

	// CountByUser selects the default counting mode for new sessions.
	CountByUser bool

	Thresholds sam.Thresholds
}

const (
	envHost        = "OPENSAM_HOST"
	envPort        = "OPENSAM_PORT"
	envDataDir     = "OPENSAM_DATA_DIR"
	envDBPath      = "OPENSAM_DB_PATH"
	envCountByUser = "OPENSAM_COUNT_BY_USER"
)

func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath("config")
	v.AddConfigPath(".")

	v.SetDefault("service_host", "")
	v.SetDefault("service_port", 8080)
	v.SetDefault("data_dir", "./data")
	v.SetDefault("db_path", ":memory:")
	v.SetDefault("count_by_user", false)

	th := sam.DefaultThresholds()
	v.SetDefault("thresholds.low_usage_days", th.LowUsageDays)
	v.SetDefault("thresholds.renewal_window_days", th.RenewalWindowDays)
	v.SetDefault("thresholds.urgent_window_days", th.UrgentWindowDays)
	v.SetDefault("thresholds.high_value_usd", th.HighValueSavingsUSD.String())

	// The config file is optional; defaults plus env carry a bare checkout.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &Config{
		ServiceHost: v.GetString("service_host"),
		ServicePort: v.GetInt("service_port"),
		DataDir:     v.GetString("data_dir"),
		DBPath:      v.GetString("db_path"),
		CountByUser: v.GetBool("count_by_user"),
		Thresholds: sam.Thresholds{
			LowUsageDays:      v.GetInt("thresholds.low_usage_days"),
			RenewalWindowDays: v.GetInt("thresholds.renewal_window_days"),
			UrgentWindowDays:  v.GetInt("thresholds.urgent_window_days"),
		},
	}

	highValue, err := decimal.NewFromString(v.GetString("thresholds.high_value_usd"))
	if err != nil {
		return nil, err
	}
	cfg.Thresholds.HighValueSavingsUSD = highValue

	applyEnv(cfg)

	log.Info("config parsed")
	return cfg, nil
}

// applyEnv overlays environment variables onto the loaded config. Malformed
// numeric values are logged and skipped rather than failing startup.
func applyEnv(cfg *Config) {
	if host, ok := os.LookupEnv(envHost); ok {
		cfg.ServiceHost = host
	}
	if port, ok := os.LookupEnv(envPort); ok {
		n, err := strconv.Atoi(port)
		if err != nil {
			log.WithField("value", port).Warnf("%s must be an integer, ignoring", envPort)
		} else {
			cfg.ServicePort = n
		}
	}
	if dir, ok := os.LookupEnv(envDataDir); ok {
		cfg.DataDir = dir
	}
	if path, ok := os.LookupEnv(envDBPath); ok {
		cfg.DBPath = path
	}
	if raw, ok := os.LookupEnv(envCountByUser); ok {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			log.WithField("value", raw).Warnf("%s must be a boolean, ignoring", envCountByUser)
		} else {
			cfg.CountByUser = b
		}
	}
}
