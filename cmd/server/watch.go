package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"triage-chatbot/internal/config"
	"triage-chatbot/internal/db"
	"triage-chatbot/internal/logging"
)

func newWatchHandoffsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch-handoffs",
		Short: "Print handoff notifications published on the Postgres channel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cfg.Store.Backend != "postgres" || cfg.Notify.Channel == "" {
				return errors.New("watch-handoffs needs the postgres store and notify.channel")
			}
			log, err := logging.New(cfg.Logging)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			n := db.NewNotifier(nil, cfg.Store.DatabaseURL, cfg.Notify.Channel, log)
			handoffs, err := n.Listen(ctx)
			if err != nil {
				return err
			}
			for h := range handoffs {
				fmt.Fprintf(cmd.OutOrStdout(), "conversation %s -> specialist %s\n", h.ConversationID, h.SpecialistID)
			}
			return nil
		},
	}
}
