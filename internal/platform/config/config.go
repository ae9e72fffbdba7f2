package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"invitegate/pkg/domain"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Nonce backends. "sql" shares the storage driver's database.
const (
	NonceBackendSQL    = "sql"
	NonceBackendRedis  = "redis"
	NonceBackendMemory = "memory"
)

// Config is the full process configuration, read once at startup.
type Config struct {
	Server    Server
	Chains    Chains
	Invite    Invite
	Session   Session
	Storage   Storage
	Redis     RedisConfig
	Oracle    Oracle
	Issuer    Issuer
	RateLimit RateLimit
	Events    Events
	Telemetry Telemetry
	Log       Log
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"INVITEGATE_ADDR" envDefault:":8080"`
	CookieSecure    bool          `env:"COOKIE_SECURE" envDefault:"false"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// TrustForwardedFor takes the client IP from X-Forwarded-For/X-Real-IP.
	// Enable only behind a proxy that sets those headers.
	TrustForwardedFor bool `env:"TRUST_FORWARDED_FOR" envDefault:"false"`
}

// Chains is the chain allow-list.
type Chains struct {
	Primary int64 `env:"PRIMARY_CHAIN_ID" envDefault:"1"`
	Test    int64 `env:"TEST_CHAIN_ID" envDefault:"5"`
}

// Invite controls issuance policy.
type Invite struct {
	DomainSuffix string `env:"DOMAIN_SUFFIX" envDefault:".eth"`
	// MaxInvites caps primary-chain grants; 0 disables the cap.
	MaxInvites    int    `env:"MAX_INVITES" envDefault:"0"`
	AdminKey      string `env:"ADMIN_KEY"`
	TestChainCode string `env:"TEST_CHAIN_INVITE_CODE" envDefault:"stems-social-fakeinvite"`
	// SIWEDomain, when set, must equal the domain of every signed message.
	SIWEDomain string `env:"SIWE_DOMAIN"`
}

// Session configures the cookie that binds an issued nonce to the caller.
type Session struct {
	Secret     string        `env:"SESSION_SECRET"`
	CookieName string        `env:"SESSION_COOKIE" envDefault:"siwe"`
	TTL        time.Duration `env:"SESSION_TTL" envDefault:"1h"`
}

// Storage selects where consumed nonces and grants live.
type Storage struct {
	Driver        string        `env:"STORAGE_DRIVER" envDefault:"sqlite"`
	DatabaseURL   string        `env:"DATABASE_URL" envDefault:"file:invitegate.sqlite"`
	NonceBackend  string        `env:"NONCE_BACKEND" envDefault:"sql"`
	NonceRetain   time.Duration `env:"NONCE_RETENTION" envDefault:"12h"`
	SweepInterval time.Duration `env:"NONCE_SWEEP_INTERVAL" envDefault:"1h"`
}

// RedisConfig configures the optional Redis nonce store.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Oracle configures the subgraph endpoints per chain.
type Oracle struct {
	PrimaryURL string        `env:"SUBGRAPH_URL_PRIMARY" envDefault:"https://api.thegraph.com/subgraphs/name/ensdomains/ens"`
	TestURL    string        `env:"SUBGRAPH_URL_TEST" envDefault:"https://api.thegraph.com/subgraphs/name/ensdomains/ensgoerli"`
	Timeout    time.Duration `env:"ORACLE_TIMEOUT" envDefault:"10s"`
}

// Issuer configures the upstream invite authority.
type Issuer struct {
	BaseURL       string        `env:"PDS_BASE_URL"`
	AdminUser     string        `env:"PDS_ADMIN_USER" envDefault:"admin"`
	AdminPassword string        `env:"PDS_ADMIN_PASSWORD"`
	Timeout       time.Duration `env:"ISSUER_TIMEOUT" envDefault:"10s"`
}

// RateLimit bounds invite requests per client IP; Limit 0 disables it.
type RateLimit struct {
	Limit  int           `env:"INVITE_RATE_LIMIT" envDefault:"20"`
	Window time.Duration `env:"INVITE_RATE_WINDOW" envDefault:"1m"`
}

// Events configures grant event publishing; no brokers means log-only.
type Events struct {
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	Topic   string   `env:"KAFKA_GRANT_TOPIC" envDefault:"invitegate.grants"`
}

// Telemetry configures tracing export; an empty endpoint disables it.
type Telemetry struct {
	Endpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"invitegate"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

const minSessionSecretLen = 32

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ChainSet returns the allow-list as a domain value.
func (c Config) ChainSet() domain.Chains {
	return domain.Chains{Primary: domain.ChainID(c.Chains.Primary), Test: domain.ChainID(c.Chains.Test)}
}

// Validate checks cross-field invariants.
func (c Config) Validate() error {
	var errs []error

	if c.Chains.Primary <= 0 || c.Chains.Test <= 0 {
		errs = append(errs, errors.New("chain ids must be positive"))
	}
	if c.Chains.Primary == c.Chains.Test {
		errs = append(errs, errors.New("PRIMARY_CHAIN_ID and TEST_CHAIN_ID must differ"))
	}
	if !strings.HasPrefix(c.Invite.DomainSuffix, ".") || len(c.Invite.DomainSuffix) < 2 {
		errs = append(errs, fmt.Errorf("DOMAIN_SUFFIX %q must start with '.'", c.Invite.DomainSuffix))
	}
	if c.Invite.MaxInvites < 0 {
		errs = append(errs, errors.New("MAX_INVITES must not be negative"))
	}

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			errs = append(errs, fmt.Errorf("DATABASE_URL is required for driver %s", c.Storage.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver))
	}

	switch c.Storage.NonceBackend {
	case NonceBackendMemory:
	case NonceBackendSQL:
		if c.Storage.Driver == DriverMemory {
			errs = append(errs, errors.New("NONCE_BACKEND=sql needs a sql STORAGE_DRIVER"))
		}
	case NonceBackendRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for NONCE_BACKEND=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown NONCE_BACKEND %q", c.Storage.NonceBackend))
	}

	if c.Storage.NonceRetain <= 0 || c.Storage.SweepInterval <= 0 {
		errs = append(errs, errors.New("NONCE_RETENTION and NONCE_SWEEP_INTERVAL must be positive"))
	}
	// A consumed nonce swept while its session is still valid could be replayed.
	if c.Session.TTL <= 0 || c.Session.TTL > c.Storage.NonceRetain {
		errs = append(errs, fmt.Errorf("SESSION_TTL %s must be positive and not exceed NONCE_RETENTION %s", c.Session.TTL, c.Storage.NonceRetain))
	}
	if len(c.Session.Secret) < minSessionSecretLen {
		errs = append(errs, fmt.Errorf("SESSION_SECRET must be at least %d bytes", minSessionSecretLen))
	}

	if c.Oracle.PrimaryURL == "" || c.Oracle.TestURL == "" {
		errs = append(errs, errors.New("SUBGRAPH_URL_PRIMARY and SUBGRAPH_URL_TEST are required"))
	}
	if c.Issuer.BaseURL == "" {
		errs = append(errs, errors.New("PDS_BASE_URL is required"))
	}
	if c.Oracle.Timeout <= 0 || c.Issuer.Timeout <= 0 {
		errs = append(errs, errors.New("ORACLE_TIMEOUT and ISSUER_TIMEOUT must be positive"))
	}
	if c.RateLimit.Limit < 0 {
		errs = append(errs, errors.New("INVITE_RATE_LIMIT must not be negative"))
	}

	return errors.Join(errs...)
}
