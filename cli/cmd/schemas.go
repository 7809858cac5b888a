package cmd

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	cliutil "github.com/wkalt/ros2dyn/cli/util"
	"github.com/wkalt/ros2dyn/resolver"
	"github.com/wkalt/ros2dyn/schemastore"
	"github.com/wkalt/ros2dyn/util"
)

func runSchemas(ctx context.Context, w io.Writer, store *schemastore.SchemaStore, width int) error {
	ids, err := store.List(ctx)
	if err != nil {
		return err
	}
	data := make([][]string, 0, len(ids))
	for _, id := range ids {
		record, err := store.GetRecord(ctx, id)
		if err != nil {
			if errors.Is(err, resolver.ErrNotFound) {
				continue
			}
			return err
		}
		data = append(data, []string{
			id.String(),
			util.When(record.Fingerprint != "", record.Fingerprint, "-"),
			util.HumanBytes(uint64(len(record.Text))),
		})
	}
	cliutil.PrintTableWidth(w, width, tableHeaders("type", "fingerprint", "size"), data)
	return nil
}

var schemasCmd = &cobra.Command{
	Use:   "schemas",
	Short: "List the definitions in the schema store",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openSchemaStore()
		checkErr(err)
		checkErr(runSchemas(context.Background(), os.Stdout, store, cliutil.TermWidth()))
	},
}

func init() {
	rootCmd.AddCommand(schemasCmd)
}
