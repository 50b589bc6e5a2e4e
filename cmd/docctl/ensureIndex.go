package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ensureIndexCmd = &cobra.Command{
	Use:   "ensure-index",
	Short: "Create the configured index if it does not exist",
	Long: `Creates the index named by INDEX_NAME with the configured vector field and
dimensions. An existing index is checked for a dimension mismatch.`,
	Args: cobra.NoArgs,
	RunE: runEnsureIndex,
}

func init() {
	rootCmd.AddCommand(ensureIndexCmd)
}

func runEnsureIndex(cmd *cobra.Command, args []string) error {
	schema := clients.Schema
	result, err := clients.Indexes.EnsureIndex(cmdContext, schema.Index, schema.VectorField, schema.Dimensions)
	if err != nil {
		return fmt.Errorf("ensuring index %s: %w", schema.Index, err)
	}
	cmd.Printf("Index %s on %s: %s\n", schema.Index, clients.Backend.Name(), result)
	return nil
}
