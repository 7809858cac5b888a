package util

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

/*
Table output for the CLI. A table that fits the terminal is written as a grid:

	|  Topic  |  Count  |
	|---------|---------|
	| /temp   | 2       |

Otherwise each row is written as a block of header/value pairs:

	-[ RECORD 1 ]+------
	Topic        | /temp
	Count        | 2

Both layouts follow foxglove-cli's tablewriter (MIT License, Copyright (c)
Foxglove Technologies Inc).
*/

////////////////////////////////////////////////////////////////////////////////

const defaultTermWidth = 80

type table struct {
	headers []string
	rows    [][]string
}

// columnWidths returns the padded width of each grid column. Headers get two
// spaces of padding per side and values one. Widths are rounded so that
// headers center evenly.
func (t table) columnWidths() []int {
	widths := make([]int, len(t.headers))
	for i, header := range t.headers {
		widths[i] = len(header) + 4
	}
	for _, row := range t.rows {
		for i, value := range row {
			widths[i] = max(widths[i], len(value)+2)
		}
	}
	for i, header := range t.headers {
		widths[i] += (widths[i] - len(header)) % 2
	}
	return widths
}

// gridWidth is the total width of the grid, borders included.
func (t table) gridWidth() int {
	total := len(t.headers) + 1
	for _, width := range t.columnWidths() {
		total += width
	}
	return total
}

func (t table) writeGrid(w io.Writer) {
	widths := t.columnWidths()
	sb := &strings.Builder{}
	sb.WriteString("|")
	for i, header := range t.headers {
		pad := strings.Repeat(" ", (widths[i]-len(header))/2)
		sb.WriteString(pad + header + pad + "|")
	}
	sb.WriteString("\n|")
	for _, width := range widths {
		sb.WriteString(strings.Repeat("-", width) + "|")
	}
	sb.WriteString("\n")
	for _, row := range t.rows {
		sb.WriteString("|")
		for i, value := range row {
			sb.WriteString(" " + value + strings.Repeat(" ", widths[i]-len(value)-1) + "|")
		}
		sb.WriteString("\n")
	}
	fmt.Fprint(w, sb.String())
}

func (t table) writeRecords(w io.Writer, termWidth int) {
	label := func(i int) string { return fmt.Sprintf("-[ RECORD %d ]", i) }
	keyWidth := len(label(len(t.rows) + 1))
	valueWidth := 0
	for _, header := range t.headers {
		keyWidth = max(keyWidth, len(header))
	}
	for _, row := range t.rows {
		for _, value := range row {
			valueWidth = max(valueWidth, len(value))
		}
	}
	// the rule extends past the widest value, up to the terminal edge.
	ruleWidth := max(min(valueWidth+15, termWidth-keyWidth-1), 1)
	rule := strings.Repeat("-", ruleWidth)
	for i, row := range t.rows {
		header := label(i + 1)
		fmt.Fprintf(w, "%s%s+%s\n", header, strings.Repeat("-", keyWidth-len(header)), rule)
		for j, value := range row {
			fmt.Fprintf(w, "%-*s| %-*s\n", keyWidth, t.headers[j], ruleWidth-1, value)
		}
	}
}

// TermWidth returns the width of the terminal, or 80 if it cannot be
// determined.
func TermWidth() int {
	cmd := exec.Command("stty", "size")
	cmd.Stdin = os.Stdin
	out, err := cmd.Output()
	if err != nil {
		return defaultTermWidth
	}
	var rows, cols int
	if _, err := fmt.Sscanf(string(out), "%d %d", &rows, &cols); err != nil {
		return defaultTermWidth
	}
	return cols
}

// PrintTable writes a table sized to the terminal.
func PrintTable(w io.Writer, headers []string, data [][]string) {
	PrintTableWidth(w, TermWidth(), headers, data)
}

// PrintTableWidth writes a table for a terminal termWidth columns wide. Tables
// wider than the terminal are written as one block per record.
func PrintTableWidth(w io.Writer, termWidth int, headers []string, data [][]string) {
	t := table{headers: headers, rows: data}
	if termWidth < t.gridWidth() {
		t.writeRecords(w, termWidth)
		return
	}
	t.writeGrid(w)
}
