// Package report renders usage reports as terminal tables.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/okian/loadwatch/internal/domain/model"
	"github.com/okian/loadwatch/internal/domain/workload"
)

const (
	resourceColumnWidth = 24
	numberColumnWidth   = 10
	statusColumnWidth   = 20
	dateLayout          = "2006-01-02"
	columnGap           = "  "
)

var headers = []string{"Resource", "Capacity", "Assigned", "Available", "Peak", "Status", "Overload windows"}

// Printer writes reports to an output stream. Styling follows the
// capabilities of that stream: plain text when it is not a terminal.
type Printer struct {
	out io.Writer

	header    lipgloss.Style
	separator lipgloss.Style
	summary   lipgloss.Style
	overload  lipgloss.Style
	spread    lipgloss.Style
	cell      lipgloss.Style
}

// NewPrinter creates a printer for w.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		out:       w,
		header:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		separator: r.NewStyle().Foreground(lipgloss.Color("240")),
		summary:   r.NewStyle().Bold(true),
		overload:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		spread:    r.NewStyle().Foreground(lipgloss.Color("11")),
		cell:      r.NewStyle(),
	}
}

// Print writes rep as a summary line followed by one row per resource.
func (p *Printer) Print(rep workload.Report) error {
	_, err := io.WriteString(p.out, p.Render(rep))
	return err
}

// Render returns the table text.
func (p *Printer) Render(rep workload.Report) string {
	var b strings.Builder

	s := rep.Summary
	title := "Usage"
	if rep.ProjectID != "" {
		title = fmt.Sprintf("Usage of %s (revision %d)", rep.ProjectID, rep.Revision)
	}
	b.WriteString(p.summary.Render(fmt.Sprintf(
		"%s: %d resources, %d overloaded, %d distributed, %d busy, %d partial, %d available [%s]",
		title, s.Resources, s.Overloaded, s.Distributed, s.Busy, s.Partial, s.Available, rep.Boundary,
	)))
	b.WriteString("\n\n")

	if len(rep.Resources) == 0 {
		b.WriteString("No resources.\n")
		return b.String()
	}

	widths := []int{resourceColumnWidth, numberColumnWidth, numberColumnWidth, numberColumnWidth, numberColumnWidth, statusColumnWidth}
	cols := make([]string, 0, len(headers))
	for i, h := range headers {
		if i < len(widths) {
			h = padRight(h, widths[i])
		}
		cols = append(cols, h)
	}
	b.WriteString(p.header.Render(strings.Join(cols, columnGap)))
	b.WriteString("\n")

	total := len(headers) * len(columnGap)
	for _, w := range widths {
		total += w
	}
	b.WriteString(p.separator.Render(strings.Repeat("─", total)))
	b.WriteString("\n")

	for _, u := range rep.Resources {
		name := u.ResourceName
		if name == "" {
			name = u.ResourceID.String()
		}
		line := strings.Join([]string{
			padRight(truncate(name, resourceColumnWidth), resourceColumnWidth),
			padLeft(percent(u.Capacity), numberColumnWidth),
			padLeft(percent(u.AssignedPercent), numberColumnWidth),
			padLeft(percent(u.AvailablePercent), numberColumnWidth),
			padLeft(percent(u.PeakUnits), numberColumnWidth),
			padRight(u.Status, statusColumnWidth),
			windows(u.OverloadWindows),
		}, columnGap)
		b.WriteString(p.styleFor(u).Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func (p *Printer) styleFor(u model.ResourceUsage) lipgloss.Style {
	switch workload.Status(u.StatusKey) {
	case workload.StatusOverloaded:
		return p.overload
	case workload.StatusDistributed:
		return p.spread
	default:
		return p.cell
	}
}

// percent formats a unit fraction to two decimals: 1.5 is "150%".
func percent(f float64) string {
	return strconv.FormatFloat(math.Round(f*10_000)/100, 'f', -1, 64) + "%"
}

// windows lists the first overload window and how many follow it.
func windows(ws []model.Range) string {
	if len(ws) == 0 {
		return "-"
	}
	first := ws[0].Start.Format(dateLayout) + ".." + ws[0].End.Format(dateLayout)
	if len(ws) == 1 {
		return first
	}
	return fmt.Sprintf("%s (+%d)", first, len(ws)-1)
}

// padRight pads a string to the specified display width.
func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func padLeft(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return strings.Repeat(" ", width-w) + s
	}
	return s
}

// truncate truncates a string to the specified width with ellipsis.
func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if width <= 3 || len(r) <= 3 {
		return string(r[:min(width, len(r))])
	}
	for len(r) > 0 && lipgloss.Width(string(r))+3 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
