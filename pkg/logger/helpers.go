package logger

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

const (
	IconSuccess = "✅"
	IconRocket  = "🚀"
	IconConfig  = "⚙️"
	IconRefresh = "🔄"
	IconDot     = "•"
)

var (
	sectionColor = color.New(color.FgCyan, color.Bold)
	keyColor     = color.New(color.FgCyan)
)

func out() io.Writer {
	return defaultLogger.(*logger).sink.writer
}

// Success logs a success message with a green checkmark
func Success(args ...interface{}) {
	defaultLogger.Info(IconSuccess + " " + fmt.Sprint(args...))
}

// Successf logs a formatted success message
func Successf(format string, args ...interface{}) {
	Success(fmt.Sprintf(format, args...))
}

// Progress logs a progress message with a refresh icon
func Progress(args ...interface{}) {
	defaultLogger.Info(IconRefresh + " " + fmt.Sprint(args...))
}

// Progressf logs a formatted progress message
func Progressf(format string, args ...interface{}) {
	Progress(fmt.Sprintf(format, args...))
}

// Launch logs the start of a solver process
func Launch(args ...interface{}) {
	defaultLogger.Info(IconRocket + " " + fmt.Sprint(args...))
}

// LogSection creates a visual section separator
func LogSection(title string) {
	line := strings.Repeat("=", 50)
	w := out()
	_, _ = sectionColor.Fprintln(w, line)
	_, _ = sectionColor.Fprintln(w, title)
	_, _ = sectionColor.Fprintln(w, line)
}

// LogList logs a list of items with bullets
func LogList(title string, items []string) {
	Info(title)
	w := out()
	for _, item := range items {
		_, _ = fmt.Fprintf(w, "  %s %s\n", IconDot, item)
	}
}

// LogKeyValue logs a key-value pair
func LogKeyValue(key string, value interface{}) {
	_, _ = fmt.Fprintf(out(), "%s %v\n", keyColor.Sprint(key+":"), value)
}

// Table is a plain aligned table
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates a new table
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow adds a row to the table
func (t *Table) AddRow(values ...string) {
	t.rows = append(t.rows, values)
}

// Fprint writes the table to w
func (t *Table) Fprint(w io.Writer) {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	line := func(cells []string) {
		var b strings.Builder
		for i, cell := range cells {
			if i < len(widths) {
				fmt.Fprintf(&b, "%-*s  ", widths[i], cell)
			}
		}
		_, _ = fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}

	line(t.headers)
	separator := make([]string, len(t.headers))
	for i := range t.headers {
		separator[i] = strings.Repeat("-", widths[i])
	}
	line(separator)
	for _, row := range t.rows {
		line(row)
	}
}
