// Package config loads the triage run configuration from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/stix-triage/internal/correlate"
)

// #region config
// Config controls one triage run.
type Config struct {
	CaseDB       string `yaml:"case_db" validate:"required"`
	ScratchDir   string `yaml:"scratch_dir" validate:"required"`
	Workers      int    `yaml:"workers" validate:"gte=1,lte=64"`
	ShortCircuit bool   `yaml:"short_circuit"`
	ReportAll    bool   `yaml:"report_all"`
	ArtifactCap  int    `yaml:"artifact_cap" validate:"gte=1"`
	LogLevel     string `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat    string `yaml:"log_format" validate:"oneof=text json"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		CaseDB:      "case.db",
		ScratchDir:  os.TempDir(),
		Workers:     4,
		ArtifactCap: correlate.DefaultCap,
		LogLevel:    "info",
		LogFormat:   "text",
	}
}
// #endregion config

// #region load
var validate = validator.New()

// Load reads path over Default, applies the STIX_* environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.CaseDB = envOr("STIX_CASE_DB", cfg.CaseDB)
	cfg.ScratchDir = envOr("STIX_SCRATCH_DIR", cfg.ScratchDir)
	cfg.LogLevel = envOr("STIX_LOG_LEVEL", cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid config: %s failed %s", verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
// #endregion load

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
// #endregion helpers
