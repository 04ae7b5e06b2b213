package dashboard

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/msgdash/internal/adapters/export/csv"
	"github.com/bnema/msgdash/internal/application"
	"github.com/bnema/msgdash/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
)

const (
	defaultBodyWidth = 40
	defaultBarWidth  = 30
	ellipsis         = "…"
)

// Glyphs distinguish pie slices when the terminal has no colors.
var sliceGlyphs = []string{"#", "=", "*", "+", "o", "~"}

type RenderOptions struct {
	// MaxRows caps the messages table; zero shows every row.
	MaxRows   int
	BodyWidth int
	BarWidth  int
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.BodyWidth <= 0 {
		o.BodyWidth = defaultBodyWidth
	}
	if o.BarWidth <= 0 {
		o.BarWidth = defaultBarWidth
	}
	if o.MaxRows < 0 {
		o.MaxRows = 0
	}

	return o
}

// View renders the dashboard without starting a program. The interactive
// TUI calls it from its own View.
func View(d application.Dashboard, opts RenderOptions) string {
	return renderView(d, opts.withDefaults(), newStyles())
}

func renderView(d application.Dashboard, opts RenderOptions, s styles) string {
	lines := []string{s.title.Render("WhatsApp Messages")}
	if d.Loaded {
		lines = append(lines, s.header.Render(rangeLine(d)))
	}

	for _, notice := range d.Notices {
		lines = append(lines, renderNotice(notice, s))
	}

	if !d.Loaded {
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	lines = append(lines,
		s.header.Render(selectionLine(d)),
		s.section.Render(renderMetrics(d.Aggregate, s)),
	)

	if len(d.Records) == 0 {
		lines = append(lines, s.section.Render(s.empty.Render("No messages match the current filters.")))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	lines = append(lines,
		s.section.Render(renderMessages(d.Records, opts, s)),
		s.section.Render(renderStatusBars(d.Aggregate, opts, s)),
		s.section.Render(renderStatusShare(d.Aggregate, opts, s)),
		s.section.Render(renderCrossTab(d.Aggregate.CrossTab, s)),
	)

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func rangeLine(d application.Dashboard) string {
	line := fmt.Sprintf("range: %s to %s", d.Range.Start.Format(domain.DateLayout), d.Range.End.Format(domain.DateLayout))
	if !d.FetchedAt.IsZero() {
		line += " | fetched " + d.FetchedAt.UTC().Format(time.RFC3339)
	}

	return line
}

func selectionLine(d application.Dashboard) string {
	recipients := fmt.Sprintf("all (%d)", len(d.RecipientOptions))
	if picked := d.Selection.Recipients.Values; len(picked) > 0 && len(picked) < len(d.RecipientOptions) {
		recipients = strings.Join(picked, ", ")
	}

	directions := make([]string, 0, len(d.Selection.Directions.Values))
	for _, direction := range d.Selection.Directions.Values {
		directions = append(directions, string(direction))
	}
	directionText := "all"
	if len(directions) > 0 {
		directionText = strings.Join(directions, ", ")
	}

	return fmt.Sprintf("recipients: %s | directions: %s", recipients, directionText)
}

func renderNotice(notice application.Notice, s styles) string {
	if notice.Level == application.NoticeError {
		return s.errorText.Render("error: " + notice.Message)
	}

	return s.warning.Render("warning: " + notice.Message)
}

func renderMetrics(view application.AggregateView, s styles) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		s.metricKey.Render("Distinct recipients: ")+s.metric.Render(strconv.Itoa(view.DistinctRecipients)),
		s.metricKey.Render("Messages: ")+s.metric.Render(strconv.Itoa(view.Total)),
		s.metricKey.Render("Outbound: ")+s.metric.Render(strconv.Itoa(view.Outbound)),
	)
}

func renderMessages(records []domain.MessageRecord, opts RenderOptions, s styles) string {
	shown := records
	if opts.MaxRows > 0 && len(shown) > opts.MaxRows {
		shown = shown[:opts.MaxRows]
	}

	rows := make([][]string, 0, len(shown))
	for _, record := range shown {
		row := csv.Row(record, csv.Options{})
		row[1] = truncate(row[1], opts.BodyWidth)
		rows = append(rows, row)
	}

	parts := []string{
		s.heading.Render("Messages"),
		newTable(s, csv.Columns, rows),
	}
	if hidden := len(records) - len(shown); hidden > 0 {
		parts = append(parts, s.empty.Render(fmt.Sprintf("%d more rows not shown", hidden)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderStatusBars(view application.AggregateView, opts RenderOptions, s styles) string {
	maxCount := 0
	labelWidth := 0
	for _, count := range view.StatusCounts {
		if count.Count > maxCount {
			maxCount = count.Count
		}
		if w := runewidth.StringWidth(statusLabel(count.Status)); w > labelWidth {
			labelWidth = w
		}
	}

	lines := []string{s.heading.Render("Messages by status")}
	for _, count := range view.StatusCounts {
		filled := 0
		if maxCount > 0 {
			filled = int(math.Round(float64(opts.BarWidth) * float64(count.Count) / float64(maxCount)))
		}
		if filled == 0 && count.Count > 0 {
			filled = 1
		}

		lines = append(lines, lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.barLabel.Render(runewidth.FillRight(statusLabel(count.Status), labelWidth)),
			" ",
			s.barFill.Render(strings.Repeat("=", filled)),
			s.barEmpty.Render(strings.Repeat("-", opts.BarWidth-filled)),
			" ",
			s.barText.Render(strconv.Itoa(count.Count)),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderStatusShare draws the pie as one stacked bar plus a legend of shares.
func renderStatusShare(view application.AggregateView, opts RenderOptions, s styles) string {
	widths := sliceWidths(view, opts.BarWidth)

	segments := make([]string, 0, len(view.StatusCounts)+2)
	segments = append(segments, s.barEmpty.Render("["))
	legend := make([]string, 0, len(view.StatusCounts))
	for i, count := range view.StatusCounts {
		glyph := sliceGlyphs[i%len(sliceGlyphs)]
		style := s.slice(i)
		segments = append(segments, style.Render(strings.Repeat(glyph, widths[i])))
		legend = append(legend, fmt.Sprintf("%s %s %5.1f%% (%d)",
			style.Render(glyph),
			s.barLabel.Render(statusLabel(count.Status)),
			view.Share(count),
			count.Count,
		))
	}
	segments = append(segments, s.barEmpty.Render("]"))

	lines := []string{
		s.heading.Render("Status share"),
		lipgloss.JoinHorizontal(lipgloss.Top, segments...),
	}

	return lipgloss.JoinVertical(lipgloss.Left, append(lines, legend...)...)
}

// sliceWidths splits width across statuses by share using largest remainders,
// so the slices always add up to exactly width.
func sliceWidths(view application.AggregateView, width int) []int {
	widths := make([]int, len(view.StatusCounts))
	if view.Total == 0 || width <= 0 {
		return widths
	}

	remainders := make([]float64, len(view.StatusCounts))
	used := 0
	for i, count := range view.StatusCounts {
		exact := float64(width) * float64(count.Count) / float64(view.Total)
		widths[i] = int(math.Floor(exact))
		remainders[i] = exact - float64(widths[i])
		used += widths[i]
	}

	for used < width {
		best := 0
		for i := range remainders {
			if remainders[i] > remainders[best] {
				best = i
			}
		}
		widths[best]++
		remainders[best] = -1
		used++
	}

	return widths
}

func renderCrossTab(crossTab application.CrossTab, s styles) string {
	headers := make([]string, 0, len(crossTab.Statuses)+1)
	headers = append(headers, "To")
	for _, status := range crossTab.Statuses {
		headers = append(headers, statusLabel(status))
	}

	rows := make([][]string, 0, len(crossTab.Recipients))
	for i, recipient := range crossTab.Recipients {
		row := make([]string, 0, len(headers))
		row = append(row, recipient)
		for j := range crossTab.Statuses {
			row = append(row, strconv.Itoa(crossTab.Counts[i][j]))
		}
		rows = append(rows, row)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		s.heading.Render("Messages per recipient and status"),
		newTable(s, headers, rows),
	)
}

func newTable(s styles, headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.border).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.headerCell
			}
			return s.cell
		}).
		Headers(headers...).
		Rows(rows...).
		Render()
}

func statusLabel(status domain.MessageStatus) string {
	if status == "" {
		return "(none)"
	}

	return string(status)
}

func truncate(value string, width int) string {
	flat := strings.Join(strings.Fields(value), " ")
	return runewidth.Truncate(flat, width, ellipsis)
}
