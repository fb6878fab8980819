// cmd/scorectl/root.go
package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "scorectl",
		Short: "Operator tooling for startup scoring",
		Long: `scorectl runs the scoring engine offline and inspects the
configuration compiled into the workers: the trigger rule table and
the activity registry.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newScoreCmd(), newRulesCmd(), newRegistryCmd())
	return root
}
