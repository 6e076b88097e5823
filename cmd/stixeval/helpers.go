package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/stix-triage/internal/casedb"
	"github.com/danielpatrickdp/stix-triage/internal/config"
	"github.com/danielpatrickdp/stix-triage/internal/logging"
)

// #region setup
// setup loads the config, applies the persistent flag overrides, initialises
// logging to stderr and opens the case store.
func setup(cmd *cobra.Command) (config.Config, *casedb.Store, error) {
	cfg, err := config.Load(rootFlags.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if rootFlags.caseDB != "" {
		cfg.CaseDB = rootFlags.caseDB
	}
	if rootFlags.logLevel != "" {
		cfg.LogLevel = rootFlags.logLevel
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	logging.Init(level, cfg.LogFormat, cmd.ErrOrStderr())

	store, err := casedb.NewStore(cfg.CaseDB)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("open case: %w", err)
	}
	return cfg, store, nil
}
// #endregion setup
