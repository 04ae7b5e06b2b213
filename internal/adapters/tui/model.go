// Package tui is the interactive terminal dashboard.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	csvexport "github.com/bnema/msgdash/internal/adapters/export/csv"
	"github.com/bnema/msgdash/internal/adapters/render/dashboard"
	"github.com/bnema/msgdash/internal/application"
	"github.com/bnema/msgdash/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type Service interface {
	CheckRange(r domain.DateRange) (domain.DateRange, []application.Notice, error)
	Reload(ctx context.Context, cmd application.ReloadCommand) (application.ReloadResult, error)
	Dashboard(ctx context.Context, query application.DashboardQuery) (application.Dashboard, error)
}

type Options struct {
	SessionID     domain.SessionID
	Credentials   domain.Credentials
	Range         domain.DateRange
	MaxRecipients int
	ExportPath    string
	Render        dashboard.RenderOptions

	// Window and Now fill in dates left empty in the date editor.
	Window time.Duration
	Now    func() time.Time
}

type viewState int

const (
	viewCredentials viewState = iota
	viewDashboard
	viewDates
)

type panel int

const (
	panelRecipients panel = iota
	panelDirections
)

type reloadDoneMsg struct {
	result application.ReloadResult
	err    error
}

type Model struct {
	ctx     context.Context
	service Service
	opts    Options

	view    viewState
	inputs  []textinput.Model
	focused int

	dateInputs  []textinput.Model
	dateFocused int

	spinner spinner.Model
	loading bool

	dashboard     application.Dashboard
	reloadNotices []application.Notice

	allRecipients    bool
	pickedRecipients []string
	directionsChosen bool
	pickedDirections []domain.Direction

	panel  panel
	cursor int

	status string
}

func New(ctx context.Context, service Service, opts Options) Model {
	if opts.SessionID == "" {
		opts.SessionID = application.DefaultSessionID
	}
	if opts.MaxRecipients <= 0 {
		opts.MaxRecipients = domain.MaxManualRecipients
	}
	if opts.ExportPath == "" {
		opts.ExportPath = csvexport.FileName
	}
	if opts.Window <= 0 {
		opts.Window = domain.DefaultWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	sid := textinput.New()
	sid.Prompt = "Account SID: "
	sid.Placeholder = "AC..."
	sid.SetValue(opts.Credentials.AccountSID)

	token := textinput.New()
	token.Prompt = "Auth token:  "
	token.EchoMode = textinput.EchoPassword
	token.EchoCharacter = '*'
	token.SetValue(opts.Credentials.AuthToken)

	start := textinput.New()
	start.Prompt = "Start: "
	start.Placeholder = domain.DateLayout
	start.CharLimit = len(domain.DateLayout)

	end := textinput.New()
	end.Prompt = "End:   "
	end.Placeholder = domain.DateLayout
	end.CharLimit = len(domain.DateLayout)

	m := Model{
		ctx:        ctx,
		service:    service,
		opts:       opts,
		inputs:     []textinput.Model{sid, token},
		dateInputs: []textinput.Model{start, end},
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
		),
		allRecipients: true,
	}

	if opts.Credentials.Validate() != nil {
		m.view = viewCredentials
		m.focused = 0
		if opts.Credentials.AccountSID != "" {
			m.focused = 1
		}
		m.inputs[m.focused].Focus()
	} else {
		m.view = viewDashboard
		m.loading = true
	}

	m.recompute()
	return m
}

// Init starts the first fetch right away when credentials are already known.
func (m Model) Init() tea.Cmd {
	if m.view == viewCredentials {
		return textinput.Blink
	}

	return tea.Batch(m.spinner.Tick, m.reload())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.view {
		case viewCredentials:
			return m.updateCredentials(msg)
		case viewDates:
			return m.updateDates(msg)
		}
		return m.updateDashboard(msg)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case reloadDoneMsg:
		m.loading = false
		m.reloadNotices = msg.result.Notices
		m.status = ""
		if msg.err != nil {
			var fetchErr *application.FetchError
			if !errors.As(msg.err, &fetchErr) && !errors.Is(msg.err, domain.ErrInvalidDateRange) && !errors.Is(msg.err, domain.ErrMissingCredentials) {
				m.status = "reload failed: " + msg.err.Error()
			}
		} else {
			m.opts.Range = msg.result.Range
			m.status = fmt.Sprintf("fetched %d messages", msg.result.Fetched)
		}
		m.recompute()
		return m, nil
	}

	var cmd tea.Cmd
	switch m.view {
	case viewCredentials:
		m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	case viewDates:
		m.dateInputs[m.dateFocused], cmd = m.dateInputs[m.dateFocused].Update(msg)
	}

	return m, cmd
}

func (m Model) updateCredentials(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		m.focusInput((m.focused + 1) % len(m.inputs))
		return m, textinput.Blink
	case tea.KeyEnter:
		if m.focused == 0 {
			m.focusInput(1)
			return m, textinput.Blink
		}

		m.opts.Credentials = domain.Credentials{
			AccountSID: m.inputs[0].Value(),
			AuthToken:  m.inputs[1].Value(),
		}
		if err := m.opts.Credentials.Validate(); err != nil {
			m.status = "Provide the account SID and auth token."
			return m, nil
		}

		m.inputs[m.focused].Blur()
		m.view = viewDashboard
		m.status = ""
		return m, m.startReload()
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m *Model) focusInput(i int) {
	m.inputs[m.focused].Blur()
	m.focused = i
	m.inputs[m.focused].Focus()
}

func (m Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "r":
		if m.loading {
			return m, nil
		}
		return m, m.startReload()
	case "e":
		m.export()
		return m, nil
	case "d":
		if m.loading {
			return m, nil
		}
		return m, m.openDates()
	case "tab":
		if m.panel == panelRecipients {
			m.panel = panelDirections
		} else {
			m.panel = panelRecipients
		}
		m.cursor = 0
		return m, nil
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < m.panelLen()-1 {
			m.cursor++
		}
		return m, nil
	case "a":
		m.allRecipients = !m.allRecipients
		m.status = ""
		m.recompute()
		return m, nil
	case " ":
		m.toggle()
		m.recompute()
		return m, nil
	}

	return m, nil
}

func (m *Model) openDates() tea.Cmd {
	m.dateInputs[0].SetValue(m.opts.Range.Start.Format(domain.DateLayout))
	m.dateInputs[1].SetValue(m.opts.Range.End.Format(domain.DateLayout))
	m.dateFocused = 0
	m.dateInputs[0].Focus()
	m.dateInputs[1].Blur()
	m.view = viewDates
	m.status = ""
	return textinput.Blink
}

func (m *Model) focusDate(i int) {
	m.dateInputs[m.dateFocused].Blur()
	m.dateFocused = i
	m.dateInputs[m.dateFocused].Focus()
}

func (m Model) updateDates(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.dateInputs[m.dateFocused].Blur()
		m.view = viewDashboard
		m.status = ""
		return m, nil
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		m.focusDate((m.dateFocused + 1) % len(m.dateInputs))
		return m, textinput.Blink
	case tea.KeyEnter:
		if m.dateFocused == 0 {
			m.focusDate(1)
			return m, textinput.Blink
		}
		return m.applyDates()
	}

	var cmd tea.Cmd
	m.dateInputs[m.dateFocused], cmd = m.dateInputs[m.dateFocused].Update(msg)
	return m, cmd
}

// applyDates checks the edited range before fetching, so an inverted range
// never leaves the editor and a clamp warning shows while the fetch runs.
func (m Model) applyDates() (tea.Model, tea.Cmd) {
	r, err := domain.ParseDateRangeWindow(
		strings.TrimSpace(m.dateInputs[0].Value()),
		strings.TrimSpace(m.dateInputs[1].Value()),
		m.opts.Now(),
		m.opts.Window,
	)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}

	_, notices, err := m.service.CheckRange(r)
	if err != nil {
		m.status = noticeText(notices, err)
		return m, nil
	}

	m.dateInputs[m.dateFocused].Blur()
	m.opts.Range = r
	m.view = viewDashboard
	cmd := m.startReload()
	m.reloadNotices = notices
	return m, cmd
}

func noticeText(notices []application.Notice, err error) string {
	messages := make([]string, 0, len(notices))
	for _, notice := range notices {
		if notice.Level == application.NoticeError {
			messages = append(messages, notice.Message)
		}
	}
	if len(messages) == 0 {
		return err.Error()
	}
	return strings.Join(messages, " ")
}

func (m Model) panelLen() int {
	if m.panel == panelRecipients {
		return len(m.dashboard.RecipientOptions)
	}
	return len(m.dashboard.DirectionOptions)
}

func (m *Model) toggle() {
	m.status = ""

	switch m.panel {
	case panelRecipients:
		if m.cursor >= len(m.dashboard.RecipientOptions) {
			return
		}
		if m.allRecipients {
			m.status = "select all is on, press a to pick recipients"
			return
		}
		recipient := m.dashboard.RecipientOptions[m.cursor]
		if i := indexOf(m.pickedRecipients, recipient); i >= 0 {
			m.pickedRecipients = append(m.pickedRecipients[:i:i], m.pickedRecipients[i+1:]...)
			return
		}
		if len(m.pickedRecipients) >= m.opts.MaxRecipients {
			m.status = fmt.Sprintf("at most %d recipients can be picked", m.opts.MaxRecipients)
			return
		}
		m.pickedRecipients = append(m.pickedRecipients, recipient)

	case panelDirections:
		if m.cursor >= len(m.dashboard.DirectionOptions) {
			return
		}
		if !m.directionsChosen {
			m.directionsChosen = true
			m.pickedDirections = append([]domain.Direction(nil), m.dashboard.Selection.Directions.Values...)
		}
		direction := m.dashboard.DirectionOptions[m.cursor]
		if i := indexOf(m.pickedDirections, direction); i >= 0 {
			m.pickedDirections = append(m.pickedDirections[:i:i], m.pickedDirections[i+1:]...)
			return
		}
		m.pickedDirections = append(m.pickedDirections, direction)
	}
}

func (m Model) selection() domain.FilterSelection {
	return domain.FilterSelection{
		Recipients: domain.RecipientSelection{All: m.allRecipients, Values: m.pickedRecipients},
		Directions: domain.DirectionSelection{Chosen: m.directionsChosen, Values: m.pickedDirections},
	}
}

// recompute rebuilds the dashboard from the stored table and current filters.
func (m *Model) recompute() {
	d, err := m.service.Dashboard(m.ctx, application.DashboardQuery{
		SessionID: m.opts.SessionID,
		Selection: m.selection(),
	})
	if err != nil {
		m.status = err.Error()
		return
	}

	m.dashboard = d
	if m.cursor >= m.panelLen() {
		m.cursor = max(m.panelLen()-1, 0)
	}
}

func (m *Model) startReload() tea.Cmd {
	m.loading = true
	m.status = ""
	return tea.Batch(m.spinner.Tick, m.reload())
}

func (m Model) reload() tea.Cmd {
	ctx := m.ctx
	service := m.service
	cmd := application.ReloadCommand{
		SessionID:   m.opts.SessionID,
		Credentials: m.opts.Credentials,
		Range:       m.opts.Range,
	}

	return func() tea.Msg {
		result, err := service.Reload(ctx, cmd)
		return reloadDoneMsg{result: result, err: err}
	}
}

func (m *Model) export() {
	if !m.dashboard.Loaded {
		m.status = "nothing to export yet, press r to reload"
		return
	}

	if err := writeExport(m.opts.ExportPath, m.dashboard.Records); err != nil {
		m.status = "export failed: " + err.Error()
		return
	}

	m.status = fmt.Sprintf("exported %d rows to %s", len(m.dashboard.Records), m.opts.ExportPath)
}

func writeExport(path string, records []domain.MessageRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}

	if err := csvexport.Write(file, records, csvexport.Options{}); err != nil {
		_ = file.Close()
		return err
	}

	return file.Close()
}

func indexOf[T comparable](values []T, value T) int {
	for i, v := range values {
		if v == value {
			return i
		}
	}
	return -1
}

// Run blocks until the user quits.
func Run(ctx context.Context, service Service, opts Options, input io.Reader, output io.Writer) error {
	p := tea.NewProgram(
		New(ctx, service, opts),
		tea.WithContext(ctx),
		tea.WithInput(input),
		tea.WithOutput(output),
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	if _, ok := finalModel.(Model); !ok {
		return fmt.Errorf("unexpected final tui model type %T", finalModel)
	}

	return nil
}
