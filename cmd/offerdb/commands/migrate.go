package commands

import (
	"github.com/spf13/cobra"

	"github.com/offerlab/offerdb/internal/infra/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		url, err := dsn(cfg)
		if err != nil {
			return err
		}
		return db.Migrate(cmd.Context(), url, log)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
