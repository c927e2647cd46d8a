package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codedrop/relay/pkg/client"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate JSON Schema files for the relay API payloads",
	RunE:  runSchema,
}

func init() {
	schemaCmd.Flags().String("dir", "schema", "Output directory for generated files")
}

func runSchema(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	paths, err := client.WriteSchemas(dir)
	if err != nil {
		return fmt.Errorf("generate JSON schema: %w", err)
	}
	for _, path := range paths {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Generated %s\n", path)
	}
	return nil
}
