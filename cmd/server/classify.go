package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"triage-chatbot/internal/core"
)

// newClassifyCmd runs the local classifiers only, which is handy for
// tuning keyword rules without a text generator.
func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <text>",
		Short: "Show the keyword intent verdict and matched specialty for text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "normalized: %s\n", core.Normalize(text))
			fmt.Fprintf(out, "intent:     %s\n", core.RuleIntent(text))
			fmt.Fprintf(out, "specialty:  %s\n", core.MatchSpecialty(text))
			return nil
		},
	}
}
