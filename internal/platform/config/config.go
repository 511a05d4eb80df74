package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"

	"fhir-server/internal/capability"
	"fhir-server/pkg/platform/middleware/format"
	"fhir-server/pkg/platform/strings"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr                  string        `env:"FHIR_SERVER_ADDR"                    envDefault:":8080"`
	BaseURL               string        `env:"FHIR_SERVER_BASE_URL"`
	TrustForwardedHeaders bool          `env:"FHIR_SERVER_TRUST_FORWARDED_HEADERS"`
	ReadHeaderTimeout     time.Duration `env:"FHIR_SERVER_READ_HEADER_TIMEOUT"     envDefault:"5s"`
	WriteTimeout          time.Duration `env:"FHIR_SERVER_WRITE_TIMEOUT"           envDefault:"15s"`
	IdleTimeout           time.Duration `env:"FHIR_SERVER_IDLE_TIMEOUT"            envDefault:"60s"`
	ShutdownTimeout       time.Duration `env:"FHIR_SERVER_SHUTDOWN_TIMEOUT"        envDefault:"10s"`
}

// Logging controls the slog handler.
type Logging struct {
	Level  string `env:"FHIR_SERVER_LOG_LEVEL"  envDefault:"info"`
	Format string `env:"FHIR_SERVER_LOG_FORMAT" envDefault:"json"`
}

// Conformance holds the descriptive fields of the capability statement.
type Conformance struct {
	FHIRVersion     string   `env:"FHIR_SERVER_FHIR_VERSION"     envDefault:"4.0.1"`
	Formats         []string `env:"FHIR_SERVER_FORMATS"          envDefault:"json"      envSeparator:","`
	SoftwareName    string   `env:"FHIR_SERVER_SOFTWARE_NAME"    envDefault:"fhir-server"`
	SoftwareVersion string   `env:"FHIR_SERVER_SOFTWARE_VERSION" envDefault:"dev"`
}

// Features holds the optional server features that advertise operations.
type Features struct {
	ExportEnabled           bool   `env:"FHIR_SERVER_EXPORT_ENABLED"`
	ExportStorageURI        string `env:"FHIR_SERVER_EXPORT_STORAGE_URI"`
	ReindexEnabled          bool   `env:"FHIR_SERVER_REINDEX_ENABLED"`
	AnonymizedExportEnabled bool   `env:"FHIR_SERVER_ANONYMIZED_EXPORT_ENABLED"`
}

// Config is the full server configuration.
type Config struct {
	Server      Server
	Logging     Logging
	Conformance Conformance
	Features    Features
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Conformance.Formats = strings.DedupeAndTrimLower(cfg.Conformance.Formats)
	return cfg, cfg.Validate()
}

// Validate checks settings that do not depend on which features are on.
// Feature dependencies are reported by the contributors themselves.
func (c Config) Validate() error {
	if c.Server.BaseURL != "" {
		u, err := url.Parse(c.Server.BaseURL)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return fmt.Errorf("FHIR_SERVER_BASE_URL %q must be an absolute url", c.Server.BaseURL)
		}
	}
	if len(c.Conformance.Formats) == 0 {
		return fmt.Errorf("FHIR_SERVER_FORMATS must list at least one format")
	}
	for _, f := range c.Conformance.Formats {
		if !format.Producible(f) {
			return fmt.Errorf("FHIR_SERVER_FORMATS: format %q cannot be produced, only json is supported", f)
		}
	}
	return nil
}

// FeatureFlags returns the read-only flag snapshot handed to contributors.
func (c Config) FeatureFlags() capability.FeatureFlags {
	return capability.FeatureFlags{
		ExportEnabled:           c.Features.ExportEnabled,
		ReindexEnabled:          c.Features.ReindexEnabled,
		AnonymizedExportEnabled: c.Features.AnonymizedExportEnabled,
	}
}
