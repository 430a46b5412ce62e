package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"investgame/src/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Service         ServiceConfig        `mapstructure:"service"`
	Databases       DatabasesConfig      `mapstructure:"databases"`
	ExternalClients ExternalClientConfig `mapstructure:"externalClients"`
	Game            GameConfig           `mapstructure:"game"`
	Worker          WorkerConfig         `mapstructure:"worker"`
	Auth            AuthConfig           `mapstructure:"auth"`
	Logging         LoggingConfig        `mapstructure:"logging"`
}

type ServiceType string

const (
	API    ServiceType = "API"
	WORKER ServiceType = "WORKER"
)

type ServiceConfig struct {
	Type ServiceType `mapstructure:"type" validate:"oneof=API WORKER"`
	Port string      `mapstructure:"port" validate:"required"`
}

type DatabasesConfig struct {
	SQL   SQLConfig   `mapstructure:"sql"`
	Redis RedisConfig `mapstructure:"redis"`
}

type SQLConfig struct {
	Host             string        `mapstructure:"host"`
	Port             string        `mapstructure:"port"`
	Username         string        `mapstructure:"username"`
	Password         string        `mapstructure:"password"`
	Database         string        `mapstructure:"database"`
	SSLMode          string        `mapstructure:"sslmode"`
	ConnectionString string        `mapstructure:"connection_string"`
	RetryAttempts    int           `mapstructure:"retryAttempts" validate:"min=1"`
	RetryDelay       time.Duration `mapstructure:"retryDelay"`
	MaxConns         int32         `mapstructure:"maxConns" validate:"min=1"`
	MinConns         int32         `mapstructure:"minConns" validate:"min=0"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Database int           `mapstructure:"database"`
	TLS      bool          `mapstructure:"tls"`
	QuoteTTL time.Duration `mapstructure:"quoteTTL"`
}

type ExternalClientConfig struct {
	Yahoo YahooConfig `mapstructure:"yahoo"`
}

type YahooConfig struct {
	BaseURL   string        `mapstructure:"baseUrl" validate:"required,url"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"required"`
	RateLimit int           `mapstructure:"rateLimit" validate:"min=1"`
}

type GameConfig struct {
	MinRefreshMinutes int    `mapstructure:"minRefreshMinutes" validate:"min=0"`
	StartingBalance   string `mapstructure:"startingBalance" validate:"required,numeric"`
	SnapshotSource    string `mapstructure:"snapshotSource" validate:"required"`
	RefreshOnOverview bool   `mapstructure:"refreshOnOverview"`
}

// MinRefreshInterval is the minimum time between two accepted refresh windows.
func (g GameConfig) MinRefreshInterval() time.Duration {
	return time.Duration(g.MinRefreshMinutes) * time.Minute
}

type WorkerConfig struct {
	RefreshCron string `mapstructure:"refreshCron"`
}

type AuthConfig struct {
	JWTSecret        string        `mapstructure:"jwtSecret" validate:"required"`
	TokenTTL         time.Duration `mapstructure:"tokenTTL" validate:"required"`
	FailedLoginDelay time.Duration `mapstructure:"failedLoginDelay"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.type", string(API))
	v.SetDefault("service.port", "8000")

	v.SetDefault("databases.sql.host", "localhost")
	v.SetDefault("databases.sql.port", "5432")
	v.SetDefault("databases.sql.database", "invest-game")
	v.SetDefault("databases.sql.sslmode", "require")
	v.SetDefault("databases.sql.retryAttempts", 3)
	v.SetDefault("databases.sql.retryDelay", "3s")
	v.SetDefault("databases.sql.maxConns", 10)
	v.SetDefault("databases.sql.minConns", 1)

	v.SetDefault("databases.redis.enabled", false)
	v.SetDefault("databases.redis.host", "localhost")
	v.SetDefault("databases.redis.port", "6379")
	v.SetDefault("databases.redis.quoteTTL", "60s")

	v.SetDefault("externalClients.yahoo.baseUrl", "https://query1.finance.yahoo.com")
	v.SetDefault("externalClients.yahoo.timeout", "10s")
	v.SetDefault("externalClients.yahoo.rateLimit", 5)

	v.SetDefault("game.minRefreshMinutes", 15)
	v.SetDefault("game.startingBalance", "100000.00")
	v.SetDefault("game.snapshotSource", utils.QuoteSourceYahoo)
	v.SetDefault("game.refreshOnOverview", true)

	v.SetDefault("worker.refreshCron", "@every 15m")

	v.SetDefault("auth.jwtSecret", "superhemmelig_lang_random")
	v.SetDefault("auth.tokenTTL", "45m")
	v.SetDefault("auth.failedLoginDelay", "300ms")

	v.SetDefault("logging.level", "info")
}

// LoadConfig reads settings/appsettings.yaml, the optional appsettings.<env>.yaml
// override, a .env file and INVESTGAME_* environment variables, in that order.
func LoadConfig(path string, env string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("appsettings")
	v.SetConfigType("yaml")
	var notFound viper.ConfigFileNotFoundError
	if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return nil, err
	}

	if env != "" {
		v.SetConfigName("appsettings." + env)
		if err := v.MergeInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, err
		}
	}

	v.SetEnvPrefix("investgame")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Databases.SQL.ConnectionString = NormalizeDatabaseURL(dsn)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// NormalizeDatabaseURL rewrites Heroku-style postgres:// URLs and adds
// sslmode=require when the URL does not specify one.
func NormalizeDatabaseURL(raw string) string {
	dsn := raw
	if strings.HasPrefix(dsn, "postgres://") {
		dsn = "postgresql://" + strings.TrimPrefix(dsn, "postgres://")
	}
	if !strings.Contains(dsn, "sslmode=") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "sslmode=require"
	}
	return dsn
}

// DSN returns the connection string for the configured database.
func (c SQLConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   c.Host + ":" + c.Port,
		Path:   "/" + c.Database,
	}
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
