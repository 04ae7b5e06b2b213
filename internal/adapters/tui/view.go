package tui

import (
	"fmt"
	"strings"

	"github.com/bnema/msgdash/internal/adapters/render/dashboard"
	"github.com/bnema/msgdash/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1)
	activeStyle  = panelStyle.BorderForeground(lipgloss.Color("39"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	disabledText = lipgloss.NewStyle().Faint(true)
)

const dashboardHelp = "space toggle | a select all | tab switch list | d dates | r reload | e export csv | q quit"

func (m Model) View() string {
	switch m.view {
	case viewCredentials:
		return m.credentialsView()
	case viewDates:
		return m.datesView()
	}

	sections := []string{
		titleStyle.Render("msgdash") + "  " + helpStyle.Render(dashboardHelp),
		lipgloss.JoinHorizontal(lipgloss.Top, m.recipientPanel(), " ", m.directionPanel()),
	}

	if m.loading {
		sections = append(sections, fmt.Sprintf("%s Fetching messages...", m.spinner.View()))
	}
	if m.status != "" {
		sections = append(sections, statusStyle.Render(m.status))
	}

	d := m.dashboard
	d.Notices = append(append(m.reloadNotices[:0:0], m.reloadNotices...), d.Notices...)
	sections = append(sections, dashboard.View(d, m.opts.Render))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) credentialsView() string {
	lines := []string{
		titleStyle.Render("msgdash"),
		helpStyle.Render("Enter your Twilio credentials. enter next/submit | tab switch | esc quit"),
		"",
	}
	for _, input := range m.inputs {
		lines = append(lines, input.View())
	}
	if m.status != "" {
		lines = append(lines, "", statusStyle.Render(m.status))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) datesView() string {
	lines := []string{
		titleStyle.Render("msgdash"),
		helpStyle.Render("Edit the date range, both days included. enter next/apply | tab switch | esc cancel"),
		"",
	}
	for _, input := range m.dateInputs {
		lines = append(lines, input.View())
	}
	if m.status != "" {
		lines = append(lines, "", statusStyle.Render(m.status))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) recipientPanel() string {
	heading := fmt.Sprintf("Recipients (max %d)", m.opts.MaxRecipients)
	if m.allRecipients {
		heading = "Recipients: all selected"
	}

	rows := make([]string, 0, len(m.dashboard.RecipientOptions))
	for i, recipient := range m.dashboard.RecipientOptions {
		checked := m.allRecipients || indexOf(m.pickedRecipients, recipient) >= 0
		row := m.checkboxRow(panelRecipients, i, checked, recipient)
		if m.allRecipients {
			row = disabledText.Render(row)
		}
		rows = append(rows, row)
	}

	return m.panelBox(panelRecipients, heading, rows)
}

func (m Model) directionPanel() string {
	rows := make([]string, 0, len(m.dashboard.DirectionOptions))
	for i, direction := range m.dashboard.DirectionOptions {
		checked := indexOf(m.dashboard.Selection.Directions.Values, direction) >= 0
		rows = append(rows, m.checkboxRow(panelDirections, i, checked, directionLabel(direction)))
	}

	return m.panelBox(panelDirections, "Directions", rows)
}

func (m Model) checkboxRow(p panel, i int, checked bool, label string) string {
	cursor := "  "
	if m.panel == p && m.cursor == i {
		cursor = cursorStyle.Render("> ")
	}
	box := "[ ]"
	if checked {
		box = "[x]"
	}
	return cursor + box + " " + label
}

func (m Model) panelBox(p panel, heading string, rows []string) string {
	if len(rows) == 0 {
		rows = []string{disabledText.Render("(none)")}
	}

	style := panelStyle
	if m.panel == p {
		style = activeStyle
	}

	return style.Render(titleStyle.Render(heading) + "\n" + strings.Join(rows, "\n"))
}

func directionLabel(direction domain.Direction) string {
	if direction == "" {
		return "(none)"
	}
	return string(direction)
}
