package cmd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Bitlatte/redefine/internal/schema"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validates the content collections without building",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore(appConfig, logger)
		if err := store.Load(cmd.Context()); err != nil {
			n := reportLoadErrors(logger, err)
			return fmt.Errorf("content check failed with %d problem(s)", n)
		}

		for _, name := range schema.NewRegistry().Names() {
			entries, err := store.Entries(cmd.Context(), name)
			if err != nil {
				return err
			}
			logger.WithFields(log.Fields{"collection": name, "entries": len(entries)}).Info("Collection is valid")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
