package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wkalt/ros2dyn/fingerprint"
	"github.com/wkalt/ros2dyn/resolver"
)

var hashCanonical bool

func runHash(w io.Writer, registry resolver.Registry, name string, canonical bool) error {
	graph, err := resolve(registry, name)
	if err != nil {
		return err
	}
	if canonical {
		text := graph.CanonicalText()
		fmt.Fprint(w, text)
		if !strings.HasSuffix(text, "\n") {
			fmt.Fprintln(w)
		}
		return nil
	}
	fmt.Fprintf(w, "%s  %s\n", fingerprint.Of(graph), graph.Root.ID)
	return nil
}

var hashCmd = &cobra.Command{
	Use:   "hash [type]...",
	Short: "Print the MD5 fingerprint of message types",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, registry := setup(context.Background())
		for _, name := range args {
			checkErr(runHash(os.Stdout, registry, name, hashCanonical))
		}
	},
}

func init() {
	rootCmd.AddCommand(hashCmd)
	hashCmd.Flags().BoolVarP(&hashCanonical, "canonical", "c", false, "print the canonical text that is hashed")
}
