package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Configuration is the explicit configuration struct injected into every
// component at construction. No component reads global state directly.
type Configuration struct {
	// Domain is the host the federation engine signs and serves as; actor
	// URIs and activity ids are derived from it.
	Domain string
	// PublicDomain is the host used in human-facing URLs (profile pages,
	// post permalinks). Usually equal to Domain.
	PublicDomain string
	// Url is the instance's base URL, derived from Domain.
	Url *url.URL
	// PublicUrl is the base URL for human-facing pages, derived from
	// PublicDomain.
	PublicUrl *url.URL

	// ActorUsername names the instance actor; ActorName, ActorSummary and
	// ActorIcon fill its published profile.
	ActorUsername string
	ActorName     string
	ActorSummary  string
	ActorIcon     string

	// AutoAcceptFollows makes the engine answer inbound Follow activities
	// with an immediate Accept.
	AutoAcceptFollows bool

	// HttpTimeout bounds every outbound network call. Retries and
	// RetryDelay drive the fixed delay-then-retry delivery policy.
	HttpTimeout time.Duration
	Retries     int
	RetryDelay  time.Duration

	// RequireSignatures controls whether inbound activities with invalid
	// or missing signatures are rejected. When false the failure is only
	// logged, for non-production setups.
	RequireSignatures    bool
	LogSignatureFailures bool

	// ValidateDns enables resolving outbound hosts and checking every
	// A record against the private/reserved ranges. Disabled only in tests.
	ValidateDns bool

	// RsaKeySize specifies the size of the RSA keys generated for actors.
	RsaKeySize int

	// DbUrl is the path to the SQLite database file.
	DbUrl string
	// MigrationsFolder holds the SQL migration files applied at setup.
	MigrationsFolder string

	Debug bool
	Port  uint16
}

// ReadConfig loads config.yml from the working directory, allowing
// TARN_-prefixed environment variables to override individual keys.
func ReadConfig() (Configuration, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("tarn")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("actor.username", "instance")
	v.SetDefault("autoAcceptFollows", true)
	v.SetDefault("http.timeout", "10s")
	v.SetDefault("http.retries", 3)
	v.SetDefault("http.retryDelay", "5s")
	v.SetDefault("signatures.require", true)
	v.SetDefault("signatures.logFailures", true)
	v.SetDefault("ssrf.validateDns", true)
	v.SetDefault("rsaKeySize", 2048)
	v.SetDefault("dbUrl", "tarn.db")
	v.SetDefault("migrationsFolder", "migrations")
	v.SetDefault("port", 8080)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Configuration{}, err
		}
	}

	cfg := Configuration{
		Domain:               v.GetString("domain"),
		PublicDomain:         v.GetString("publicDomain"),
		ActorUsername:        v.GetString("actor.username"),
		ActorName:            v.GetString("actor.name"),
		ActorSummary:         v.GetString("actor.summary"),
		ActorIcon:            v.GetString("actor.icon"),
		AutoAcceptFollows:    v.GetBool("autoAcceptFollows"),
		HttpTimeout:          v.GetDuration("http.timeout"),
		Retries:              v.GetInt("http.retries"),
		RetryDelay:           v.GetDuration("http.retryDelay"),
		RequireSignatures:    v.GetBool("signatures.require"),
		LogSignatureFailures: v.GetBool("signatures.logFailures"),
		ValidateDns:          v.GetBool("ssrf.validateDns"),
		RsaKeySize:           v.GetInt("rsaKeySize"),
		DbUrl:                v.GetString("dbUrl"),
		MigrationsFolder:     v.GetString("migrationsFolder"),
		Debug:                v.GetBool("debug"),
		Port:                 uint16(v.GetUint32("port")),
	}

	if cfg.Domain == "" {
		return cfg, fmt.Errorf("configuration: domain is required")
	}
	if cfg.PublicDomain == "" {
		cfg.PublicDomain = cfg.Domain
	}

	var err error
	cfg.Url, err = url.Parse("https://" + cfg.Domain)
	if err != nil {
		return cfg, fmt.Errorf("configuration: bad domain: %w", err)
	}
	cfg.PublicUrl, err = url.Parse("https://" + cfg.PublicDomain)
	if err != nil {
		return cfg, fmt.Errorf("configuration: bad publicDomain: %w", err)
	}

	return cfg, nil
}
