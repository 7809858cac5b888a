package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/relvacode/iso8601"
	"github.com/spf13/cobra"
	"github.com/wkalt/ros2dyn/mcap"
	"github.com/wkalt/ros2dyn/resolver"
	"github.com/wkalt/ros2dyn/schemastore"
	"github.com/wkalt/ros2dyn/util/log"
)

var (
	catStartDate   string
	catEndDate     string
	catTopics      []string
	catSkipErrors  bool
	catSaveSchemas bool
)

// parseTimeRange converts ISO 8601 dates to a nanosecond range. Empty bounds
// are unbounded.
func parseTimeRange(start, end string) (uint64, uint64, error) {
	var lo, hi uint64
	if start != "" {
		t, err := iso8601.Parse([]byte(start))
		if err != nil {
			return 0, 0, fmt.Errorf("error parsing start date: %w", err)
		}
		lo = uint64(t.UnixNano())
	}
	if end != "" {
		t, err := iso8601.Parse([]byte(end))
		if err != nil {
			return 0, 0, fmt.Errorf("error parsing end date: %w", err)
		}
		hi = uint64(t.UnixNano())
	}
	return lo, hi, nil
}

func runCat(
	ctx context.Context,
	w io.Writer,
	file string,
	registry resolver.Registry,
	store *schemastore.SchemaStore,
) error {
	start, end, err := parseTimeRange(catStartDate, catEndDate)
	if err != nil {
		return err
	}
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", file, err)
	}
	defer f.Close()
	ctx = log.AddTags(ctx, "file", file)
	opts := []mcap.Option{mcap.WithTimeRange(start, end)}
	if len(catTopics) > 0 {
		opts = append(opts, mcap.WithTopics(catTopics...))
	}
	if registry != nil {
		opts = append(opts, mcap.WithRegistry(registry))
	}
	if catSkipErrors {
		opts = append(opts, mcap.WithSkipUndecodable())
	}
	if store != nil {
		opts = append(opts, mcap.WithGraphCallback(func(g *resolver.Graph) error {
			return store.PutGraph(ctx, g)
		}))
	}
	return mcap.MCAPToJSON(ctx, w, f, opts...)
}

var catCmd = &cobra.Command{
	Use:   "cat [file]...",
	Short: "Print the messages of ROS2 MCAP files as JSON lines",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		store, registry := setup(ctx)
		if !catSaveSchemas {
			store = nil
		}
		for _, file := range args {
			checkErr(runCat(ctx, os.Stdout, file, registry, store))
		}
	},
}

func init() {
	rootCmd.AddCommand(catCmd)
	catCmd.Flags().StringVarP(&catStartDate, "start", "s", "", "start date (ISO 8601, inclusive)")
	catCmd.Flags().StringVarP(&catEndDate, "end", "e", "", "end date (ISO 8601, exclusive)")
	catCmd.Flags().StringArrayVarP(&catTopics, "topics", "t", []string{}, "topics to print")
	catCmd.Flags().BoolVarP(&catSkipErrors, "skip-errors", "", false, "skip messages that cannot be decoded")
	catCmd.Flags().BoolVarP(&catSaveSchemas, "save-schemas", "", false, "store the definitions found in the files")
}
