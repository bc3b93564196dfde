// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all service configuration.
type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	Solana SolanaConfig `mapstructure:"solana"`
	Wallet WalletConfig `mapstructure:"wallet"`
	Pinata PinataConfig `mapstructure:"pinata"`
	Mint   MintConfig   `mapstructure:"mint"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Kafka  KafkaConfig  `mapstructure:"kafka"`
	OTel   OTelConfig   `mapstructure:"otel"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"` // development, staging, production
	Debug       bool   `mapstructure:"debug"`
	Version     string `mapstructure:"version"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// SolanaConfig holds chain connection settings.
type SolanaConfig struct {
	RPCURL     string `mapstructure:"rpc_url"`
	ProgramID  string `mapstructure:"program_id"`
	Commitment string `mapstructure:"commitment"` // confirmed or finalized
}

// WalletConfig holds the service signing key.
type WalletConfig struct {
	// PrivateKey is the base58-encoded authority key. Required in
	// production; development falls back to a throwaway key.
	PrivateKey string `mapstructure:"private_key"`
}

// PinataConfig holds pinning service credentials.
type PinataConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	GatewayURL string        `mapstructure:"gateway_url"`
	JWT        string        `mapstructure:"jwt"`
	APIKey     string        `mapstructure:"api_key"`
	APISecret  string        `mapstructure:"api_secret"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// MintConfig tunes the mint pipeline.
type MintConfig struct {
	KeypairRetryLimit int           `mapstructure:"keypair_retry_limit"`
	ConfirmAttempts   int           `mapstructure:"confirm_attempts"`
	ConfirmInterval   time.Duration `mapstructure:"confirm_interval"`
	SignTimeout       time.Duration `mapstructure:"sign_timeout"`
	SkipPreflight     bool          `mapstructure:"skip_preflight"`

	// ProgramErrors maps custom program error codes to operator-facing
	// messages, encoded as "0x1780=message;0x1781=message".
	ProgramErrors string `mapstructure:"program_errors"`
}

// ProgramErrorTable parses the configured code table.
func (m *MintConfig) ProgramErrorTable() map[string]string {
	table := map[string]string{}
	for _, pair := range strings.Split(m.ProgramErrors, ";") {
		code, message, ok := strings.Cut(pair, "=")
		code = strings.TrimSpace(code)
		if !ok || code == "" {
			continue
		}
		table[code] = strings.TrimSpace(message)
	}
	return table
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the Redis address.
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// KafkaConfig holds Kafka/Redpanda connection settings.
type KafkaConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Brokers  []string `mapstructure:"brokers"`
	ClientID string   `mapstructure:"client_id"`
}

// OTelConfig holds OpenTelemetry settings.
type OTelConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	ServiceName   string  `mapstructure:"service_name"`
	CollectorAddr string  `mapstructure:"collector_addr"`
	SampleRatio   float64 `mapstructure:"sample_ratio"`
}

// Load loads configuration from environment variables and an optional .env
// file.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Missing .env is fine, env vars may carry everything.
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &Config{}
	if err := bindConfig(v, cfg); err != nil {
		return nil, fmt.Errorf("failed to bind config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadWithPath loads configuration from a specific env file.
func LoadWithPath(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &Config{}
	if err := bindConfig(v, cfg); err != nil {
		return nil, fmt.Errorf("failed to bind config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("APP_NAME", "haus-mint")
	v.SetDefault("APP_ENVIRONMENT", "development")
	v.SetDefault("APP_DEBUG", true)
	v.SetDefault("APP_VERSION", "1.0.0")

	// Server defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "30s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "120s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "120s")

	// Solana defaults
	v.SetDefault("SOLANA_RPC_URL", "https://api.devnet.solana.com")
	v.SetDefault("SOLANA_PROGRAM_ID", "")
	v.SetDefault("SOLANA_COMMITMENT", "confirmed")

	// Wallet defaults
	v.SetDefault("WALLET_PRIVATE_KEY", "")

	// Pinata defaults
	v.SetDefault("PINATA_BASE_URL", "https://api.pinata.cloud")
	v.SetDefault("PINATA_GATEWAY_URL", "https://gateway.pinata.cloud/ipfs")
	v.SetDefault("PINATA_JWT", "")
	v.SetDefault("PINATA_API_KEY", "")
	v.SetDefault("PINATA_API_SECRET", "")
	v.SetDefault("PINATA_TIMEOUT", "30s")

	// Mint pipeline defaults
	v.SetDefault("MINT_KEYPAIR_RETRY_LIMIT", 3)
	v.SetDefault("MINT_CONFIRM_ATTEMPTS", 20)
	v.SetDefault("MINT_CONFIRM_INTERVAL", "1s")
	v.SetDefault("MINT_SIGN_TIMEOUT", "90s")
	v.SetDefault("MINT_SKIP_PREFLIGHT", true)
	v.SetDefault("MINT_PROGRAM_ERRORS",
		"0x1780=ticket collection is not valid for this event;"+
			"0x1781=event duration is not an allowed length")

	// Redis defaults
	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 100)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 10)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "5s")
	v.SetDefault("REDIS_READ_TIMEOUT", "3s")
	v.SetDefault("REDIS_WRITE_TIMEOUT", "3s")

	// Kafka defaults
	v.SetDefault("KAFKA_ENABLED", false)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_CLIENT_ID", "haus-mint")

	// OTel defaults
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "haus-mint")
	v.SetDefault("OTEL_COLLECTOR_ADDR", "localhost:4317")
	v.SetDefault("OTEL_SAMPLE_RATIO", 1.0)
}

func bindConfig(v *viper.Viper, cfg *Config) error {
	// App
	cfg.App.Name = v.GetString("APP_NAME")
	cfg.App.Environment = v.GetString("APP_ENVIRONMENT")
	cfg.App.Debug = v.GetBool("APP_DEBUG")
	cfg.App.Version = v.GetString("APP_VERSION")

	// Server
	cfg.Server.Host = v.GetString("SERVER_HOST")
	cfg.Server.Port = v.GetInt("SERVER_PORT")
	cfg.Server.ReadTimeout = v.GetDuration("SERVER_READ_TIMEOUT")
	cfg.Server.WriteTimeout = v.GetDuration("SERVER_WRITE_TIMEOUT")
	cfg.Server.IdleTimeout = v.GetDuration("SERVER_IDLE_TIMEOUT")

	// Solana
	cfg.Solana.RPCURL = v.GetString("SOLANA_RPC_URL")
	cfg.Solana.ProgramID = v.GetString("SOLANA_PROGRAM_ID")
	cfg.Solana.Commitment = v.GetString("SOLANA_COMMITMENT")

	// Wallet
	cfg.Wallet.PrivateKey = v.GetString("WALLET_PRIVATE_KEY")

	// Pinata
	cfg.Pinata.BaseURL = v.GetString("PINATA_BASE_URL")
	cfg.Pinata.GatewayURL = v.GetString("PINATA_GATEWAY_URL")
	cfg.Pinata.JWT = v.GetString("PINATA_JWT")
	cfg.Pinata.APIKey = v.GetString("PINATA_API_KEY")
	cfg.Pinata.APISecret = v.GetString("PINATA_API_SECRET")
	cfg.Pinata.Timeout = v.GetDuration("PINATA_TIMEOUT")

	// Mint pipeline
	cfg.Mint.KeypairRetryLimit = v.GetInt("MINT_KEYPAIR_RETRY_LIMIT")
	cfg.Mint.ConfirmAttempts = v.GetInt("MINT_CONFIRM_ATTEMPTS")
	cfg.Mint.ConfirmInterval = v.GetDuration("MINT_CONFIRM_INTERVAL")
	cfg.Mint.SignTimeout = v.GetDuration("MINT_SIGN_TIMEOUT")
	cfg.Mint.SkipPreflight = v.GetBool("MINT_SKIP_PREFLIGHT")
	cfg.Mint.ProgramErrors = v.GetString("MINT_PROGRAM_ERRORS")

	// Redis
	cfg.Redis.Enabled = v.GetBool("REDIS_ENABLED")
	cfg.Redis.Host = v.GetString("REDIS_HOST")
	cfg.Redis.Port = v.GetInt("REDIS_PORT")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")
	cfg.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	cfg.Redis.MinIdleConns = v.GetInt("REDIS_MIN_IDLE_CONNS")
	cfg.Redis.DialTimeout = v.GetDuration("REDIS_DIAL_TIMEOUT")
	cfg.Redis.ReadTimeout = v.GetDuration("REDIS_READ_TIMEOUT")
	cfg.Redis.WriteTimeout = v.GetDuration("REDIS_WRITE_TIMEOUT")

	// Kafka
	cfg.Kafka.Enabled = v.GetBool("KAFKA_ENABLED")
	cfg.Kafka.Brokers = strings.Split(v.GetString("KAFKA_BROKERS"), ",")
	cfg.Kafka.ClientID = v.GetString("KAFKA_CLIENT_ID")

	// OTel
	cfg.OTel.Enabled = v.GetBool("OTEL_ENABLED")
	cfg.OTel.ServiceName = v.GetString("OTEL_SERVICE_NAME")
	cfg.OTel.CollectorAddr = v.GetString("OTEL_COLLECTOR_ADDR")
	cfg.OTel.SampleRatio = v.GetFloat64("OTEL_SAMPLE_RATIO")

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Solana.RPCURL == "" {
		return fmt.Errorf("SOLANA_RPC_URL is required")
	}
	if c.Solana.Commitment != "confirmed" && c.Solana.Commitment != "finalized" {
		return fmt.Errorf("invalid commitment: %s", c.Solana.Commitment)
	}

	if c.IsProduction() {
		if c.Solana.ProgramID == "" {
			return fmt.Errorf("SOLANA_PROGRAM_ID is required in production")
		}
		if c.Wallet.PrivateKey == "" {
			return fmt.Errorf("WALLET_PRIVATE_KEY is required in production")
		}
	}

	if c.Mint.KeypairRetryLimit <= 0 {
		return fmt.Errorf("MINT_KEYPAIR_RETRY_LIMIT must be positive")
	}
	if c.Mint.ConfirmAttempts <= 0 {
		return fmt.Errorf("MINT_CONFIRM_ATTEMPTS must be positive")
	}

	return nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
