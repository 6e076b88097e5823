package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/stix-triage/internal/casedb"
)

// #region seed
var seedCmd = &cobra.Command{
	Use:   "seed <seed.yaml>",
	Short: "Load files and artifacts from a YAML seed into the case database",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	_, store, err := setup(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	seed, err := casedb.LoadSeed(args[0])
	if err != nil {
		return err
	}
	refs, err := store.ApplySeed(cmd.Context(), seed)
	if err != nil {
		return fmt.Errorf("apply seed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d files and %d artifacts (%d named refs)\n",
		len(seed.Files), len(seed.Artifacts), len(refs))
	return nil
}
// #endregion seed
