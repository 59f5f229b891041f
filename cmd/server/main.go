package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "triage-chatbot",
		Short:         "Patient chat with specialist triage and handoff",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("TRIAGE_CONFIG"), "path to YAML config file")
	root.AddCommand(newServeCmd(), newClassifyCmd(), newWatchHandoffsCmd(), newInitConfigCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
