package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the bookkeeping tools.
type Config struct {
	Ledger     Ledger     `mapstructure:"ledger"`
	MarketData MarketData `mapstructure:"marketdata"`
	Logger     Logger     `mapstructure:"logger"`
	Server     Server     `mapstructure:"server"`
	Sizing     Sizing     `mapstructure:"sizing"`
	Ranking    Ranking    `mapstructure:"ranking"`
}

// Ledger holds the configuration for the CSV trade ledger.
type Ledger struct {
	Path string `mapstructure:"path"`
}

// MarketData holds the configuration for the market data API.
type MarketData struct {
	BaseURL        string  `mapstructure:"base_url"`
	ApiKey         string  `mapstructure:"api_key"`
	SecretKey      string  `mapstructure:"secret_key"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Server holds the configuration for the ledger viewer server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Sizing holds the configuration for the position sizing calculator.
type Sizing struct {
	MaxTotalRisk float64 `mapstructure:"max_total_risk"`
	LookbackDays int     `mapstructure:"lookback_days"`
}

// Ranking holds the configuration for the ticker ranking tool.
type Ranking struct {
	Input           string `mapstructure:"input"`
	Output          string `mapstructure:"output"`
	MaxWalkbackDays int    `mapstructure:"max_walkback_days"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
// A missing config file is not an error: the tools run fine on defaults
// plus environment overrides.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.AddConfigPath(".")
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("ledger.path", "trades_log.csv")
	viper.SetDefault("marketdata.base_url", "https://data.alpaca.markets/v2")
	viper.SetDefault("marketdata.rate_limit", 3) // requests per second
	viper.SetDefault("marketdata.rate_limit_burst", 2)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("sizing.max_total_risk", 1.00)
	viper.SetDefault("sizing.lookback_days", 7) // buffer for weekends/holidays
	viper.SetDefault("ranking.input", "tickers.csv")
	viper.SetDefault("ranking.output", "sorted_tickers.csv")
	viper.SetDefault("ranking.max_walkback_days", 10)

	if err = viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}

	err = viper.Unmarshal(&config)
	return
}
