// cmd/scorectl/rules.go
package main

import (
	"fmt"

	"startup-scoring/internal/triggers"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type rulesDocument struct {
	Count int             `yaml:"count"`
	Rules []triggers.Rule `yaml:"rules"`
}

func newRulesCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the workflow trigger rules as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			rules := triggers.DefaultRules()
			if source != "" {
				s := triggers.Source(source)
				if !s.Valid() {
					return fmt.Errorf("rules: unknown source %q", source)
				}
				rules = triggers.FilterBySource(rules, s)
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(rulesDocument{Count: len(rules), Rules: rules})
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "only rules for this score source")
	return cmd
}
