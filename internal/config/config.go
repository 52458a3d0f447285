package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	Logger   Logger   `mapstructure:"logger"`
	Auth     Auth     `mapstructure:"auth"`
	Broker   Broker   `mapstructure:"broker"`
	Finnhub  Finnhub  `mapstructure:"finnhub"`
	OpenAI   OpenAI   `mapstructure:"openai"`
	SMTP     SMTP     `mapstructure:"smtp"`
	Journal  Journal  `mapstructure:"journal"`
	Badges   Badges   `mapstructure:"badges"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port    int    `mapstructure:"port"`
	BaseURL string `mapstructure:"base_url"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Auth holds JWT and password settings.
type Auth struct {
	SecretKey          string `mapstructure:"secret_key"`
	AccessTokenTTLMin  int    `mapstructure:"access_token_ttl_min"`
	RefreshTokenTTLMin int    `mapstructure:"refresh_token_ttl_min"`
	VerifyTokenTTLHrs  int    `mapstructure:"verify_token_ttl_hrs"`
	PasswordMinLength  int    `mapstructure:"password_min_length"`
}

// Broker holds the configuration for the MT5 bridge terminal.
type Broker struct {
	BridgeURL      string  `mapstructure:"bridge_url"`
	Login          int64   `mapstructure:"login"`
	Password       string  `mapstructure:"password"`
	Server         string  `mapstructure:"server"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Finnhub holds the configuration for the market data / news API.
type Finnhub struct {
	APIKey         string  `mapstructure:"api_key"`
	BaseURL        string  `mapstructure:"base_url"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	MaxArticles    int     `mapstructure:"max_articles"`
}

// OpenAI holds the configuration for the LLM analysis API.
type OpenAI struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// SMTP holds the configuration for outgoing mail.
type SMTP struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	User      string `mapstructure:"user"`
	Password  string `mapstructure:"password"`
	FromEmail string `mapstructure:"from_email"`
	FromName  string `mapstructure:"from_name"`
}

// Journal holds the configuration for trade reconciliation.
type Journal struct {
	// PipMultiplier converts a price distance into pips. The default of
	// 10000 assumes 4/5-decimal forex quotes; it is numerically wrong for
	// JPY pairs and non-forex instruments.
	PipMultiplier float64 `mapstructure:"pip_multiplier"`
	SyncDays      int     `mapstructure:"sync_days"`
}

// Badges holds the thresholds for the badge engine.
type Badges struct {
	WinRate            float64 `mapstructure:"win_rate"`
	ConsistencyOverall float64 `mapstructure:"consistency_overall"`
	ConsistencyRecent  float64 `mapstructure:"consistency_recent"`
	MinTrades          int     `mapstructure:"min_trades"`
	HighProfit         float64 `mapstructure:"high_profit"`
	DisciplineShare    float64 `mapstructure:"discipline_share"`
	RewardRiskTarget   float64 `mapstructure:"reward_risk_target"`
	RewardRiskShare    float64 `mapstructure:"reward_risk_share"`
	DrawdownPercent    float64 `mapstructure:"drawdown_percent"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.base_url", "http://localhost:8000")
	viper.SetDefault("database.dsn", "trading_journal.db")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")

	viper.SetDefault("auth.access_token_ttl_min", 30)
	viper.SetDefault("auth.refresh_token_ttl_min", 60*24*7)
	viper.SetDefault("auth.verify_token_ttl_hrs", 24)
	viper.SetDefault("auth.password_min_length", 8)

	viper.SetDefault("broker.rate_limit", 10) // requests per second
	viper.SetDefault("broker.rate_limit_burst", 5)

	viper.SetDefault("finnhub.base_url", "https://finnhub.io/api/v1")
	viper.SetDefault("finnhub.rate_limit", 55.0/60) // free tier is 60/min, keep a buffer
	viper.SetDefault("finnhub.rate_limit_burst", 5)
	viper.SetDefault("finnhub.max_articles", 20)

	viper.SetDefault("openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("openai.model", "gpt-3.5-turbo")
	viper.SetDefault("openai.max_tokens", 1500)
	viper.SetDefault("openai.temperature", 0.7)

	viper.SetDefault("smtp.port", 587)
	viper.SetDefault("smtp.from_email", "noreply@tradingjournal.com")
	viper.SetDefault("smtp.from_name", "MT5 Trading Journal")

	viper.SetDefault("journal.pip_multiplier", 10000)
	viper.SetDefault("journal.sync_days", 30)

	viper.SetDefault("badges.win_rate", 70)
	viper.SetDefault("badges.consistency_overall", 60)
	viper.SetDefault("badges.consistency_recent", 55)
	viper.SetDefault("badges.min_trades", 20)
	viper.SetDefault("badges.high_profit", 1000)
	viper.SetDefault("badges.discipline_share", 0.8)
	viper.SetDefault("badges.reward_risk_target", 1.5)
	viper.SetDefault("badges.reward_risk_share", 0.7)
	viper.SetDefault("badges.drawdown_percent", 20)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
