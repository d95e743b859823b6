package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Config is the process-wide configuration. It is resolved once at start-up and
// passed explicitly into every component that needs a slice of it.
type Config struct {
	Server   Server
	Ledger   LedgerConfig
	Admin    AdminConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Tracing  TracingConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	LogLevel        slog.Level
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// LedgerConfig points the ledger client at a NEAR RPC node and contract.
type LedgerConfig struct {
	NodeURL         string
	ContractID      string
	SignerAccountID string
	// SignerKey is an "ed25519:<base58>" secret key. Change calls are rejected
	// when it is empty.
	SignerKey string
	Timeout   time.Duration
}

// AdminConfig names the single account allowed to see the administrative listing.
type AdminConfig struct {
	AccountID string
}

// PostgresConfig selects the Postgres account store. Empty URL keeps accounts in memory.
type PostgresConfig struct {
	URL          string
	MaxOpenConns int
}

// RedisConfig enables the shared view cache. Empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// CacheConfig controls how long ledger view results are reused.
type CacheConfig struct {
	TTL time.Duration
}

// TracingConfig enables OTLP span export. Empty Endpoint leaves tracing off.
type TracingConfig struct {
	Endpoint    string
	Insecure    bool
	SampleRatio float64
}

const (
	DefaultAddr           = ":8080"
	DefaultNodeURL        = "https://rpc.testnet.near.org"
	DefaultContractID     = "ea_nft.wabinab.testnet"
	DefaultAdminAccountID = "somebodyelse.testnet"
	DefaultLedgerTimeout  = 30 * time.Second
	DefaultCacheTTL       = 30 * time.Second
)

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            envOr("EANFT_ADDR", DefaultAddr),
			LogLevel:        parseLevel(os.Getenv("EANFT_LOG_LEVEL")),
			RequestTimeout:  envDuration("EANFT_REQUEST_TIMEOUT", 60*time.Second),
			ShutdownTimeout: envDuration("EANFT_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Ledger: LedgerConfig{
			NodeURL:         envOr("NEAR_NODE_URL", DefaultNodeURL),
			ContractID:      envOr("NEAR_CONTRACT_ID", DefaultContractID),
			SignerAccountID: os.Getenv("NEAR_SIGNER_ACCOUNT_ID"),
			SignerKey:       os.Getenv("NEAR_SIGNER_KEY"),
			Timeout:         envDuration("NEAR_TIMEOUT", DefaultLedgerTimeout),
		},
		Admin: AdminConfig{
			AccountID: envOr("EANFT_ADMIN_ACCOUNT_ID", DefaultAdminAccountID),
		},
		Postgres: PostgresConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 10),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Cache: CacheConfig{
			TTL: envDuration("EANFT_CACHE_TTL", DefaultCacheTTL),
		},
		Tracing: TracingConfig{
			Endpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			Insecure:    envBool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envFloat("OTEL_TRACES_SAMPLER_ARG", 1),
		},
	}
}

// Validate reports every problem at once rather than stopping at the first.
func (c Config) Validate() error {
	var result *multierror.Error
	if c.Server.Addr == "" {
		result = multierror.Append(result, errors.New("server address is required"))
	}
	if c.Ledger.NodeURL == "" {
		result = multierror.Append(result, errors.New("ledger node URL is required"))
	}
	if c.Ledger.ContractID == "" {
		result = multierror.Append(result, errors.New("ledger contract ID is required"))
	}
	if c.Ledger.Timeout <= 0 {
		result = multierror.Append(result, errors.New("ledger timeout must be positive"))
	}
	if (c.Ledger.SignerAccountID == "") != (c.Ledger.SignerKey == "") {
		result = multierror.Append(result, errors.New("ledger signer account and key must be set together"))
	}
	if c.Admin.AccountID == "" {
		result = multierror.Append(result, errors.New("administrator account ID is required"))
	}
	if c.Cache.TTL < 0 {
		result = multierror.Append(result, errors.New("cache TTL must not be negative"))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		result = multierror.Append(result, errors.New("trace sample ratio must be between 0 and 1"))
	}
	return result.ErrorOrNil()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func envFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return d
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}
