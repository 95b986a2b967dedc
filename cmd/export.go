package cmd

import (
	"fmt"

	"point-record/core/point"
	"point-record/core/storage"
	"point-record/feature/export"

	"github.com/spf13/cobra"
)

var (
	exportStart int64
	exportEnd   int64
	exportName  string
)

// exportCmd uploads a range snapshot of a series to object storage.
var exportCmd = &cobra.Command{
	Use:   "export <series>",
	Short: "Upload the points of a series within a range to object storage",
	Long: `Reads the points of a series within [--start, --end] through the record and
uploads them as JSON to exports/<series>/<start>-<end>.json in the configured
bucket. --name overrides the object name.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.Close()

		client, err := storage.NewClient(rt.cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to create storage client: %w", err)
		}

		svc := export.NewService(rt.record, client, rt.cfg.Storage, rt.logger)
		res, err := svc.Export(cmd.Context(), args[0], point.TimeRange{Start: exportStart, End: exportEnd}, exportName)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

func init() {
	exportCmd.Flags().Int64Var(&exportStart, "start", 0, "Range start (unix seconds)")
	exportCmd.Flags().Int64Var(&exportEnd, "end", 0, "Range end (unix seconds)")
	exportCmd.Flags().StringVar(&exportName, "name", "", "Object name inside the series prefix")
	_ = exportCmd.MarkFlagRequired("start")
	_ = exportCmd.MarkFlagRequired("end")

	RootCmd.AddCommand(exportCmd)
}
