package cmd

import (
	"errors"
	"fmt"

	"point-record/core/point"

	"github.com/spf13/cobra"
)

var (
	queryStart int64
	queryEnd   int64
)

// queryCmd prints the points of a series within a range.
var queryCmd = &cobra.Command{
	Use:   "query <series>",
	Short: "Print the points of a series within a time range",
	Long: `Reads the points of a series within [--start, --end] (unix seconds) through
the record and prints them as JSON.

Examples:
  point-record query flow --start 1700000000 --end 1700086400`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := point.TimeRange{Start: queryStart, End: queryEnd}
		if !r.IsValid() {
			return fmt.Errorf("invalid range %s", r)
		}

		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.Close()

		pts := rt.record.PointsInRange(cmd.Context(), args[0], r)
		if pts == nil {
			pts = []point.Point{}
		}
		return printJSON(cmd.OutOrStdout(), pts)
	},
}

var (
	pointAt     int64
	pointBefore int64
	pointAfter  int64
)

// errNotFound is returned when a lookup finds no point.
var errNotFound = errors.New("point not found")

// pointCmd prints a single point of a series.
var pointCmd = &cobra.Command{
	Use:   "point <series>",
	Short: "Print the point at, before or after a time",
	Long: `Looks up one point of a series. Exactly one of --at, --before or --after
(unix seconds) must be given.

Examples:
  point-record point flow --at 1700000000
  point-record point flow --before 1700000000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		id := args[0]

		var (
			p  point.Point
			ok bool
		)
		switch {
		case cmd.Flags().Changed("at"):
			p, ok = rt.record.PointAt(ctx, id, pointAt)
		case cmd.Flags().Changed("before"):
			p, ok = rt.record.PointBefore(ctx, id, pointBefore)
		default:
			p, ok = rt.record.PointAfter(ctx, id, pointAfter)
		}
		if !ok {
			return errNotFound
		}
		return printJSON(cmd.OutOrStdout(), p)
	},
}

func init() {
	queryCmd.Flags().Int64Var(&queryStart, "start", 0, "Range start (unix seconds)")
	queryCmd.Flags().Int64Var(&queryEnd, "end", 0, "Range end (unix seconds)")
	_ = queryCmd.MarkFlagRequired("start")
	_ = queryCmd.MarkFlagRequired("end")

	pointCmd.Flags().Int64Var(&pointAt, "at", 0, "Exact time (unix seconds)")
	pointCmd.Flags().Int64Var(&pointBefore, "before", 0, "Latest point strictly before this time")
	pointCmd.Flags().Int64Var(&pointAfter, "after", 0, "Earliest point strictly after this time")
	pointCmd.MarkFlagsMutuallyExclusive("at", "before", "after")
	pointCmd.MarkFlagsOneRequired("at", "before", "after")

	RootCmd.AddCommand(queryCmd)
	RootCmd.AddCommand(pointCmd)
}
