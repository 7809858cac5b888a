package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	cliutil "github.com/wkalt/ros2dyn/cli/util"
	"github.com/wkalt/ros2dyn/mcap"
	"github.com/wkalt/ros2dyn/util"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func tableHeaders(names ...string) []string {
	caser := cases.Title(language.English)
	headers := make([]string, len(names))
	for i, name := range names {
		headers[i] = caser.String(name)
	}
	return headers
}

func formatNanos(nanos uint64) string {
	return util.ParseNanos(nanos).UTC().Format(time.RFC3339Nano)
}

func runTopics(w io.Writer, file string, width int) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	summary, err := mcap.Summarize(f)
	if err != nil {
		return err
	}
	data := make([][]string, 0, len(summary.Topics))
	for _, t := range summary.Topics {
		data = append(data, []string{
			t.Topic,
			t.Schema,
			t.SchemaEncoding + "/" + t.MessageEncoding,
			strconv.FormatUint(t.MessageCount, 10),
		})
	}
	cliutil.PrintTableWidth(w, width, tableHeaders("topic", "schema", "encoding", "messages"), data)
	if summary.End > 0 {
		fmt.Fprintf(w, "start: %s\nend:   %s\n", formatNanos(summary.Start), formatNanos(summary.End))
	}
	return nil
}

var topicsCmd = &cobra.Command{
	Use:   "topics [file]",
	Short: "List the channels of an MCAP file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		checkErr(runTopics(os.Stdout, args[0], cliutil.TermWidth()))
	},
}

func init() {
	rootCmd.AddCommand(topicsCmd)
}
