package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wkalt/ros2dyn/schemastore"
	"github.com/wkalt/ros2dyn/util/ros2msg"
	"github.com/wkalt/ros2dyn/util/schema"
)

var (
	parsePackage string
	parseSave    bool
)

// definitionName derives the package and type name of a definition file
// stored at <pkg>/{msg,srv}/<Name>.<ext>.
func definitionName(file string) (string, string) {
	base := filepath.Base(file)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", name
	}
	return filepath.Base(filepath.Dir(filepath.Dir(abs))), name
}

func runParse(ctx context.Context, w io.Writer, file string, pkg string, store *schemastore.SchemaStore) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}
	derived, name := definitionName(file)
	if pkg == "" {
		pkg = derived
	}
	if !schema.ValidPackageName(pkg) {
		return fmt.Errorf("invalid package name %q, use --package", pkg)
	}
	var schemas []*schema.Schema
	switch filepath.Ext(file) {
	case ".srv":
		service, err := ros2msg.ParseService(pkg, name, data)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", file, err)
		}
		fmt.Fprintf(w, "%s---\n%s", service.Request, service.Response)
		schemas = append(schemas, service.Request, service.Response)
	default:
		s, err := ros2msg.Parse(pkg, name, data)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", file, err)
		}
		fmt.Fprint(w, s)
		schemas = append(schemas, s)
	}
	if store == nil {
		return nil
	}
	for _, s := range schemas {
		if err := store.Put(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a .msg or .srv file and print its normalized form",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		var store *schemastore.SchemaStore
		if parseSave {
			var err error
			store, err = openSchemaStore()
			checkErr(err)
		}
		checkErr(runParse(ctx, os.Stdout, args[0], parsePackage, store))
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parsePackage, "package", "p", "", "package name (default: derived from the file path)")
	parseCmd.Flags().BoolVarP(&parseSave, "save", "", false, "store the parsed definition in the schema store")
}
