package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dkeye/LiveRoom/internal/domain"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel string        `mapstructure:"log_level"`
	Server   ServerConfig  `mapstructure:"server"`
	Auth     AuthConfig    `mapstructure:"auth"`
	Store    StoreConfig   `mapstructure:"store"`
	Redis    RedisConfig   `mapstructure:"redis"`
	PK       PKConfig      `mapstructure:"pk"`
	Wallet   WalletConfig  `mapstructure:"wallet"`
	Rate     RateConfig    `mapstructure:"rate"`
	Outbox   OutboxConfig  `mapstructure:"outbox"`
	Gifts    []domain.Gift `mapstructure:"gifts"`
	Seed     []SeedUser    `mapstructure:"seed"`
}

type ServerConfig struct {
	Mode           string        `mapstructure:"mode"`
	Port           int           `mapstructure:"port"`
	ReadLimit      int64         `mapstructure:"read_limit"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	SlowTolerance  int           `mapstructure:"slow_tolerance"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

type AuthConfig struct {
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// StoreConfig selects the user store: memory, sqlite or postgres.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type PKConfig struct {
	Duration int           `mapstructure:"duration"`
	Tick     time.Duration `mapstructure:"tick"`
}

type WalletConfig struct {
	CashPerEarning string `mapstructure:"cash_per_earning"`
	FanClubGift    string `mapstructure:"fan_club_gift"`
}

// CashRate parses CashPerEarning.
func (w WalletConfig) CashRate() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(w.CashPerEarning)
	if err != nil {
		return decimal.Zero, fmt.Errorf("wallet.cash_per_earning: %w", err)
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("wallet.cash_per_earning must not be negative")
	}
	return d, nil
}

type RateConfig struct {
	Limit    int           `mapstructure:"limit"`
	Interval time.Duration `mapstructure:"interval"`
}

type OutboxConfig struct {
	Size int `mapstructure:"size"`
}

// SeedUser is a demo account created at startup when missing.
type SeedUser struct {
	Username string `mapstructure:"username"`
	Diamonds int64  `mapstructure:"diamonds"`
}

// Load reads .env, then config/config.<CONFIG_ENV>.yaml, then environment
// overrides such as SERVER_PORT or AUTH_SECRET.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Info().Str("module", "config").Msg("loaded .env")
	}

	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	v.SetConfigFile(fileName)

	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Auth.Secret == "" {
		return nil, errors.New("auth.secret is required (AUTH_SECRET)")
	}
	if _, err := cfg.Wallet.CashRate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Server.Mode).Int("port", cfg.Server.Port).
		Str("store", cfg.Store.Driver).Bool("redis", cfg.Redis.Enabled).Msg("config ready")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("server.mode", "release")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_limit", 32768)
	v.SetDefault("server.ping_period", "54s")
	v.SetDefault("server.send_buffer", 32)
	v.SetDefault("server.slow_tolerance", 8)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_ttl", "24h")

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.dsn", "")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "room_contribution:")

	v.SetDefault("pk.duration", 420)
	v.SetDefault("pk.tick", "1s")

	v.SetDefault("wallet.cash_per_earning", "0.01")
	v.SetDefault("wallet.fan_club_gift", "Fan Club")

	v.SetDefault("rate.limit", 10)
	v.SetDefault("rate.interval", "1s")

	v.SetDefault("outbox.size", 64)
}
