package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var registerUnits string

// registerCmd registers a series with its units.
var registerCmd = &cobra.Command{
	Use:   "register <series>",
	Short: "Register a series with its engineering units",
	Long: `Registers a series against the backing store. If the series exists with
different units on a writable store, its persisted points are dropped and the
series is re-created.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.Close()

		if !rt.record.RegisterSeries(cmd.Context(), args[0], registerUnits) {
			return fmt.Errorf("register %s: %w", args[0], rt.record.LastError())
		}
		rt.logger.Info("Series registered", zap.String("series", args[0]), zap.String("units", registerUnits))
		return nil
	},
}

// invalidateCmd removes the persisted record of a series.
var invalidateCmd = &cobra.Command{
	Use:   "invalidate <series>",
	Short: "Remove the persisted record of a series",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.Close()

		if !rt.record.Invalidate(cmd.Context(), args[0]) {
			if rt.record.IsReadOnly() {
				return fmt.Errorf("invalidate %s: record is read-only", args[0])
			}
			return fmt.Errorf("invalidate %s: %w", args[0], rt.record.LastError())
		}
		rt.logger.Info("Series invalidated", zap.String("series", args[0]))
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&registerUnits, "units", "", "Engineering units of the series")

	RootCmd.AddCommand(registerCmd)
	RootCmd.AddCommand(invalidateCmd)
}
