package cmd

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/wkalt/ros2dyn/cdr"
	"github.com/wkalt/ros2dyn/resolver"
)

var (
	decodeHex               bool
	decodePretty            bool
	decodeStrict            bool
	decodeMaxSequenceLength int
)

type decodeOptions struct {
	hex    bool
	pretty bool
	opts   []cdr.Option
}

func runDecode(w io.Writer, r io.Reader, registry resolver.Registry, name string, o decodeOptions) error {
	graph, err := resolve(registry, name)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if o.hex {
		data, err = hex.DecodeString(strings.Join(strings.Fields(string(data)), ""))
		if err != nil {
			return fmt.Errorf("failed to decode hex input: %w", err)
		}
	}
	v, err := cdr.Decode(graph, graph.Root.ID, data, o.opts...)
	if err != nil {
		return err
	}
	out, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	if o.pretty {
		buf := &bytes.Buffer{}
		if err := json.Indent(buf, out, "", "  "); err != nil {
			return fmt.Errorf("failed to indent output: %w", err)
		}
		out = buf.Bytes()
	}
	_, err = fmt.Fprintf(w, "%s\n", out)
	return err
}

var decodeCmd = &cobra.Command{
	Use:   "decode [type] [file]",
	Short: "Decode a CDR payload and print it as JSON",
	Long: `Decode a CDR payload, including its 4-byte encapsulation header, and print
it as JSON. The payload is read from file, or from stdin if no file is given.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		_, registry := setup(context.Background())
		var input io.Reader = os.Stdin
		if len(args) == 2 {
			f, err := os.Open(args[1])
			checkErr(err)
			defer f.Close()
			input = f
		}
		o := decodeOptions{hex: decodeHex, pretty: decodePretty}
		if decodeStrict {
			o.opts = append(o.opts, cdr.WithStrictTrailingBytes())
		}
		if decodeMaxSequenceLength > 0 {
			o.opts = append(o.opts, cdr.WithMaxSequenceLength(decodeMaxSequenceLength))
		}
		checkErr(runDecode(os.Stdout, input, registry, args[0], o))
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().BoolVarP(&decodeHex, "hex", "x", false, "input is hex encoded")
	decodeCmd.Flags().BoolVarP(&decodePretty, "pretty", "", false, "indent output")
	decodeCmd.Flags().BoolVarP(&decodeStrict, "strict", "", false, "fail on unconsumed trailing bytes")
	decodeCmd.Flags().IntVarP(&decodeMaxSequenceLength, "max-sequence-length", "", 0, "reject sequences longer than this")
}
