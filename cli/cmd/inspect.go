package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/wkalt/ros2dyn/fingerprint"
	"github.com/wkalt/ros2dyn/resolver"
	"github.com/wkalt/ros2dyn/util/schema"
)

var inspectConstants bool

var colors = []*color.Color{
	color.New(color.FgBlue),
	color.New(color.FgYellow),
	color.New(color.FgCyan),
	color.New(color.FgGreen),
	color.New(color.FgMagenta),
	color.New(color.FgHiBlue),
	color.New(color.FgHiYellow),
	color.New(color.FgHiCyan),
	color.New(color.FgHiGreen),
	color.New(color.FgHiMagenta),
}

var (
	typeColor     = color.New(color.FgWhite, color.Faint)
	constantColor = color.New(color.FgRed)
)

func getColor(depth int) *color.Color {
	return colors[depth%len(colors)]
}

// printTree writes the fields of a message, expanding complex fields to
// their own fields.
func printTree(w io.Writer, graph *resolver.Graph, id schema.MessageIdentifier, depth int, constants bool) error {
	s, ok := graph.Lookup(id)
	if !ok {
		return resolver.UnresolvedTypeError{ID: id}
	}
	space := strings.Repeat("  ", depth)
	c := getColor(depth)
	if constants {
		for _, k := range s.Constants {
			constantColor.Fprintf(w, "%s%s", space, k.Name)
			typeColor.Fprintf(w, " %s", k.Type.Format())
			fmt.Fprintf(w, " = %s\n", k.Raw)
		}
	}
	for _, f := range s.Fields {
		c.Fprintf(w, "%s%s", space, f.Name)
		typeColor.Fprintf(w, " %s", f.Type.Format())
		if f.Default != "" {
			fmt.Fprintf(w, " (default %s)", f.Default)
		}
		fmt.Fprintln(w)
		if base := f.Type.Base(); base.IsComplex() {
			if err := printTree(w, graph, base.Ref, depth+1, constants); err != nil {
				return err
			}
		}
	}
	return nil
}

func runInspect(w io.Writer, registry resolver.Registry, name string, constants bool) error {
	graph, err := resolve(registry, name)
	if err != nil {
		return err
	}
	color.New(color.Bold).Fprintf(w, "%s", graph.Root.ID)
	fmt.Fprintf(w, " %s\n", fingerprint.Of(graph))
	return printTree(w, graph, graph.Root.ID, 1, constants)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [type]",
	Short: "Print the field tree of a message type",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, registry := setup(context.Background())
		checkErr(runInspect(os.Stdout, registry, args[0], inspectConstants))
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVarP(&inspectConstants, "constants", "c", false, "include constants")
}
