// Package output prints styled messages, tables and JSON for the airline
// commands.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#0EA5E9")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	primaryStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
)

// Out receives everything this package prints.
var Out io.Writer = os.Stdout

// Success prints a success message
func Success(format string, args ...any) {
	line(successStyle.Render("✓ "), format, args...)
}

// Warning prints a warning message
func Warning(format string, args ...any) {
	line(warningStyle.Render("⚠ "), format, args...)
}

// Error prints an error message
func Error(format string, args ...any) {
	line(errorStyle.Render("✗ "), format, args...)
}

// Info prints an info message
func Info(format string, args ...any) {
	line(infoStyle.Render("ℹ "), format, args...)
}

// Muted prints a muted message
func Muted(format string, args ...any) {
	_, _ = fmt.Fprintln(Out, mutedStyle.Render(fmt.Sprintf(format, args...)))
}

func line(icon, format string, args ...any) {
	_, _ = fmt.Fprint(Out, icon)
	_, _ = fmt.Fprintf(Out, format+"\n", args...)
}

// Section prints a section header
func Section(title string) {
	_, _ = fmt.Fprintln(Out)
	_, _ = fmt.Fprintln(Out, primaryStyle.Render(title))
	_, _ = fmt.Fprintln(Out, mutedStyle.Render(strings.Repeat("═", lipgloss.Width(title))))
	_, _ = fmt.Fprintln(Out)
}

// StatusIcon returns a colored icon for a migration or reservation status.
func StatusIcon(status string) string {
	switch status {
	case "applied", "C", "confirmed":
		return successStyle.Render("✓")
	case "pending", "W", "waitlisted":
		return warningStyle.Render("○")
	case "failed":
		return errorStyle.Render("✗")
	case "R", "reserved":
		return infoStyle.Render("◉")
	default:
		return mutedStyle.Render("•")
	}
}

// Table writes rows under headers as aligned columns, with a dashed rule
// below the header.
func Table(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	rule := make([]string, len(headers))
	for i, h := range headers {
		rule[i] = strings.Repeat("-", len(h))
	}

	_, _ = fmt.Fprintln(tw, strings.Join(headers, "\t"))
	_, _ = fmt.Fprintln(tw, strings.Join(rule, "\t"))
	for _, row := range rows {
		_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
