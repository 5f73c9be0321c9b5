package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/offerlab/offerdb/internal/infra/db"
	"github.com/offerlab/offerdb/internal/infra/tabledump"
)

var xlsxPath string

var dumpCmd = &cobra.Command{
	Use:   "dump <table>",
	Short: "Print a table, or save it as a workbook",
	Long: `Print every row of a table, tab separated with a header line.

Tables: ` + strings.Join(tabledump.Tables, ", ") + `

Examples:
  offerdb dump packages
  offerdb dump offers --xlsx offers.xlsx`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: tabledump.Tables,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		pool, err := connect(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer pool.Close()
		q := db.Instrument(pool)

		if xlsxPath == "" {
			return tabledump.Write(ctx, q, args[0], os.Stdout)
		}

		f, err := tabledump.Workbook(ctx, q, args[0])
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		if err := f.SaveAs(xlsxPath); err != nil {
			return fmt.Errorf("save %s: %w", xlsxPath, err)
		}
		log.Info().Str("table", args[0]).Str("file", xlsxPath).Msg("table saved")
		return nil
	},
}

func init() {
	dumpCmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Write an .xlsx workbook to this path instead of printing")
	rootCmd.AddCommand(dumpCmd)
}
