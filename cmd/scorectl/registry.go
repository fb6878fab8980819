// cmd/scorectl/registry.go
package main

import (
	"fmt"

	"startup-scoring/pkg/registry"

	"github.com/spf13/cobra"
)

func newRegistryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the activity registry",
	}

	var path string
	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check task types, function ids and that every schema compiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(path)
			if err != nil {
				return err
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("registry invalid: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "registry %s OK: %d activities, %d functions\n",
				reg.Version, len(reg.Activities), len(reg.Functions))
			return nil
		},
	}
	validate.Flags().StringVar(&path, "path", "", "registry file (default: the embedded registry)")

	cmd.AddCommand(validate)
	return cmd
}

func loadRegistry(path string) (*registry.ActivityRegistry, error) {
	if path == "" {
		return registry.Default()
	}
	return registry.LoadRegistry(path)
}
