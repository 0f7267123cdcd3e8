package formatter

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Style selects how a Table lays out its cells.
type Style int

const (
	// StyleColumns aligns cells with spaces for terminal output.
	StyleColumns Style = iota
	// StyleMarkdown renders a GitHub-flavored pipe table.
	StyleMarkdown
)

// Table formats columnar output using tabwriter or markdown pipes.
type Table struct {
	out           io.Writer
	w             *tabwriter.Writer
	style         Style
	headers       []string
	maxWidth      map[int]int // column index -> max width (0 = unlimited)
	headerWritten bool
	err           error
}

// NewTable creates a column-aligned table that writes to w with the given headers.
func NewTable(w io.Writer, headers ...string) *Table {
	return &Table{
		out:      w,
		w:        tabwriter.NewWriter(w, 0, 0, 2, ' ', 0),
		headers:  headers,
		maxWidth: make(map[int]int),
	}
}

// NewMarkdownTable creates a pipe table that writes to w.
func NewMarkdownTable(w io.Writer, headers ...string) *Table {
	t := NewTable(w, headers...)
	t.style = StyleMarkdown
	return t
}

// SetMaxWidth sets the maximum display width for a column (0-indexed).
// Values exceeding the limit are truncated with "...".
func (t *Table) SetMaxWidth(col, width int) *Table {
	t.maxWidth[col] = width
	return t
}

// AddRow appends a data row. Extra values beyond the header count are ignored;
// missing values are filled with empty strings.
func (t *Table) AddRow(values ...string) {
	if !t.headerWritten {
		t.headerWritten = true
		t.writeHeaderAndSeparator()
	}

	cells := make([]string, len(t.headers))
	for i := range cells {
		if i < len(values) {
			cells[i] = t.truncate(i, values[i])
		}
	}
	t.writeLine(cells, false)
}

// Render flushes buffered output and reports the first write error.
// Must be called after all AddRow calls.
func (t *Table) Render() error {
	if t.style == StyleMarkdown {
		return t.err
	}
	if err := t.w.Flush(); err != nil {
		return err
	}
	return t.err
}

func (t *Table) writeHeaderAndSeparator() {
	t.writeLine(t.headers, false)

	sep := make([]string, len(t.headers))
	for i, h := range t.headers {
		n := len(h)
		if t.style == StyleMarkdown {
			n += 2
		}
		sep[i] = strings.Repeat("-", n)
	}
	t.writeLine(sep, true)
}

func (t *Table) writeLine(cells []string, separator bool) {
	if t.err != nil {
		return
	}
	var line string
	switch t.style {
	case StyleMarkdown:
		escaped := make([]string, len(cells))
		for i, c := range cells {
			escaped[i] = strings.ReplaceAll(c, "|", `\|`)
		}
		if separator {
			line = "|" + strings.Join(escaped, "|") + "|"
		} else {
			line = "| " + strings.Join(escaped, " | ") + " |"
		}
		_, t.err = fmt.Fprintln(t.out, line)
	default:
		line = strings.Join(cells, "\t")
		_, t.err = fmt.Fprintln(t.w, line)
	}
}

func (t *Table) truncate(col int, s string) string {
	max, ok := t.maxWidth[col]
	if !ok || max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
