package dashboard

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	section    lipgloss.Style
	heading    lipgloss.Style
	metric     lipgloss.Style
	metricKey  lipgloss.Style
	warning    lipgloss.Style
	errorText  lipgloss.Style
	empty      lipgloss.Style
	cell       lipgloss.Style
	headerCell lipgloss.Style
	border     lipgloss.Style
	barLabel   lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style
	barText    lipgloss.Style
	slices     []lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		section:    lipgloss.NewStyle().MarginTop(1),
		heading:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		metric:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("159")),
		metricKey:  lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		warning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		errorText:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		empty:      lipgloss.NewStyle().Faint(true),
		cell:       lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("252")),
		headerCell: lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("245")),
		border:     lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		barLabel:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		barText:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		slices: []lipgloss.Style{
			lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
			lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
			lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
			lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			lipgloss.NewStyle().Foreground(lipgloss.Color("170")),
			lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		},
	}
}

func (s styles) slice(i int) lipgloss.Style {
	return s.slices[i%len(s.slices)]
}
