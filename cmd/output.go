package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/shaharia-lab/notifier/internal/notification"
)

// Output formats accepted by --output.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

var (
	accent = lipgloss.Color("#2563EB")
	dim    = lipgloss.Color("#6B7280")

	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2)

	headerCellStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	dimStyle        = lipgloss.NewStyle().Foreground(dim)

	statusStyles = map[notification.Status]lipgloss.Style{
		notification.StatusSent:    lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E")).Bold(true),
		notification.StatusFailed:  lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true),
		notification.StatusPending: lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true),
	}
)

var tableColumns = []string{"ID", "USER", "CHANNEL", "RECIPIENT", "STATUS", "CREATED", "DETAIL"}

func validateFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unsupported output format %q (want table, json or yaml)", format)
}

func writeNotifications(w io.Writer, format string, list []notification.Notification) error {
	if list == nil {
		list = []notification.Notification{}
	}
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	case formatYAML:
		return writeYAML(w, list)
	default:
		return writeTable(w, list)
	}
}

func writeNotification(w io.Writer, format string, n *notification.Notification) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(n)
	case formatYAML:
		return writeYAML(w, n)
	default:
		return writeTable(w, []notification.Notification{*n})
	}
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

func writeTable(w io.Writer, list []notification.Notification) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, dimStyle.Render("no notifications"))
		return err
	}

	rows := make([][]string, 0, len(list))
	for _, n := range list {
		rows = append(rows, []string{
			n.ID,
			n.UserID,
			string(n.Channel),
			n.Recipient,
			string(n.Status),
			n.CreatedAt.UTC().Format(time.RFC3339),
			detail(n),
		})
	}

	widths := make([]int, len(tableColumns))
	for i, c := range tableColumns {
		widths[i] = len(c)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	var b strings.Builder
	for i, c := range tableColumns {
		b.WriteString(headerCellStyle.Render(pad(c, widths[i])))
		b.WriteString("  ")
	}
	b.WriteString("\n")
	for _, row := range rows {
		for i, cell := range row {
			padded := pad(cell, widths[i])
			if i == 4 {
				padded = statusStyles[notification.Status(cell)].Render(padded)
			}
			b.WriteString(padded)
			b.WriteString("  ")
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// detail is the sent time for SENT records and the error for FAILED ones.
func detail(n notification.Notification) string {
	switch {
	case n.SentAt != nil:
		return "sent " + n.SentAt.UTC().Format(time.RFC3339)
	case n.Error != "":
		return n.Error
	}
	return "-"
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
