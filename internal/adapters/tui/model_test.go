package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/msgdash/internal/adapters/session/memory"
	"github.com/bnema/msgdash/internal/application"
	"github.com/bnema/msgdash/internal/domain"
	"github.com/bnema/msgdash/internal/ports/mocks"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	testNow   = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	testCreds = domain.Credentials{AccountSID: "AC123", AuthToken: "token"}
	testRange = domain.NewDateRange(time.Date(2026, 10, 7, 0, 0, 0, 0, time.UTC), time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC))
)

func sampleRecords() []domain.MessageRecord {
	return []domain.MessageRecord{
		{SID: "SM1", To: "A", Body: "oi", Status: domain.StatusDelivered, Direction: domain.DirectionOutboundAPI},
		{SID: "SM2", To: "B", Body: "falhou", Status: domain.StatusFailed, Direction: domain.DirectionOutboundAPI},
		{SID: "SM3", To: "C", Body: "resposta", Status: domain.StatusReceived, Direction: domain.DirectionInbound},
	}
}

func newTestService(t *testing.T) (*application.Service, *mocks.MockMessageSource) {
	t.Helper()

	source := mocks.NewMockMessageSource(t)
	clock := mocks.NewMockClock(t)
	clock.EXPECT().Now().Return(testNow).Maybe()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return application.NewService(source, memory.NewStore(), clock, application.DefaultOptions(), logger), source
}

func anyContext() interface{} {
	return mock.MatchedBy(func(context.Context) bool { return true })
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(Model)
	}
	return m
}

// loaded returns a model whose first reload already completed.
func loaded(t *testing.T, opts Options) Model {
	t.Helper()

	m, _ := loadedWithSource(t, opts)
	return m
}

func loadedWithSource(t *testing.T, opts Options) (Model, *mocks.MockMessageSource) {
	t.Helper()

	service, source := newTestService(t)
	source.EXPECT().ListMessages(anyContext(), testCreds, testRange.Start, testRange.EndExclusive()).Return(sampleRecords(), nil).Once()

	if opts.Credentials == (domain.Credentials{}) {
		opts.Credentials = testCreds
	}
	opts.Range = testRange

	m := New(context.Background(), service, opts)
	require.True(t, m.loading)

	next, _ := m.Update(m.reload()())
	return next.(Model), source
}

func TestReloadLoadsDashboardWithEveryRecipient(t *testing.T) {
	m := loaded(t, Options{})

	assert.False(t, m.loading)
	assert.Equal(t, "fetched 3 messages", m.status)
	assert.True(t, m.dashboard.Loaded)
	assert.Len(t, m.dashboard.Records, 3)
	assert.Equal(t, 3, m.dashboard.Aggregate.DistinctRecipients)

	view := m.View()
	assert.Contains(t, view, "Recipients: all selected")
	assert.Contains(t, view, "[x] outbound-api")
	assert.Contains(t, view, "Distinct recipients: 3")
}

func TestManualRecipientPicking(t *testing.T) {
	m := loaded(t, Options{})

	m = press(t, m, "a")
	assert.False(t, m.allRecipients)
	assert.Len(t, m.dashboard.Records, 3, "no manual pick applies no recipient filter")

	m = press(t, m, " ", "down", " ")
	assert.Equal(t, []string{"A", "B"}, m.pickedRecipients)
	assert.Len(t, m.dashboard.Records, 2)

	m = press(t, m, " ")
	assert.Equal(t, []string{"A"}, m.pickedRecipients)
	assert.Len(t, m.dashboard.Records, 1)

	m = press(t, m, "a")
	assert.Len(t, m.dashboard.Records, 3, "select all overrides the manual pick")
}

func TestSpaceWhileSelectAllIsOnKeepsSelection(t *testing.T) {
	m := loaded(t, Options{})

	m = press(t, m, " ")

	assert.True(t, m.allRecipients)
	assert.Empty(t, m.pickedRecipients)
	assert.Contains(t, m.status, "press a")
}

func TestRecipientCap(t *testing.T) {
	m := loaded(t, Options{MaxRecipients: 2})

	m = press(t, m, "a", " ", "down", " ", "down", " ")

	assert.Equal(t, []string{"A", "B"}, m.pickedRecipients)
	assert.Equal(t, "at most 2 recipients can be picked", m.status)
}

func TestDirectionToggleStartsFromEveryObservedDirection(t *testing.T) {
	m := loaded(t, Options{})

	m = press(t, m, "tab", " ")

	assert.True(t, m.directionsChosen)
	assert.Equal(t, []domain.Direction{domain.DirectionInbound}, m.pickedDirections)
	require.Len(t, m.dashboard.Records, 1)
	assert.Equal(t, "SM3", m.dashboard.Records[0].SID)

	m = press(t, m, "down", " ")
	assert.Empty(t, m.pickedDirections)
	assert.Len(t, m.dashboard.Records, 3, "an empty direction choice applies no filter")
}

func TestExportWritesFilteredView(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	m := loaded(t, Options{ExportPath: path})

	m = press(t, m, "a", " ", "e")

	assert.Equal(t, "exported 1 rows to "+path, m.status)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "To,Body,DateSent,Status,Direction\nA,oi,,delivered,outbound-api\n", string(data))
}

func TestExportBeforeReload(t *testing.T) {
	service, _ := newTestService(t)
	m := New(context.Background(), service, Options{})

	m.view = viewDashboard
	m = press(t, m, "e")

	assert.Contains(t, m.status, "nothing to export")
}

func TestFailedReloadKeepsPreviousTableAndShowsGenericNotice(t *testing.T) {
	service, source := newTestService(t)
	source.EXPECT().ListMessages(anyContext(), testCreds, testRange.Start, testRange.EndExclusive()).Return(sampleRecords(), nil).Once()
	source.EXPECT().ListMessages(anyContext(), testCreds, testRange.Start, testRange.EndExclusive()).Return(nil, errors.Join(domain.ErrAuthentication)).Once()

	m := New(context.Background(), service, Options{Credentials: testCreds, Range: testRange})
	next, _ := m.Update(m.reload()())
	m = next.(Model)

	next, cmd := m.Update(key("r"))
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.loading)

	next, _ = m.Update(m.reload()())
	m = next.(Model)

	assert.Len(t, m.dashboard.Records, 3)
	assert.Contains(t, m.View(), "error: "+application.FetchFailureMessage)
}

func TestCredentialsPromptThenReload(t *testing.T) {
	service, source := newTestService(t)
	source.EXPECT().ListMessages(anyContext(), testCreds, testRange.Start, testRange.EndExclusive()).Return(sampleRecords(), nil).Once()

	m := New(context.Background(), service, Options{Credentials: domain.Credentials{AccountSID: "AC123"}, Range: testRange})
	require.Equal(t, viewCredentials, m.view)
	assert.Equal(t, 1, m.focused)
	assert.Contains(t, m.View(), "Auth token:")

	next, _ := m.Update(key("token"))
	m = next.(Model)
	assert.Equal(t, "token", m.inputs[1].Value())
	assert.NotContains(t, m.View(), "Auth token:  token")

	next, cmd := m.Update(key("enter"))
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Equal(t, viewDashboard, m.view)
	assert.Equal(t, testCreds, m.opts.Credentials)

	next, _ = m.Update(m.reload()())
	m = next.(Model)
	assert.True(t, m.dashboard.Loaded)
}

func TestCredentialsPromptRejectsEmptyToken(t *testing.T) {
	service, _ := newTestService(t)
	m := New(context.Background(), service, Options{})

	m = press(t, m, "enter", "enter")

	assert.Equal(t, viewCredentials, m.view)
	assert.Equal(t, "Provide the account SID and auth token.", m.status)
}

func TestQuit(t *testing.T) {
	m := loaded(t, Options{})

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func day(d int) time.Time {
	return time.Date(2026, 10, d, 0, 0, 0, 0, time.UTC)
}

// editDates opens the date editor, fills both fields and submits.
func editDates(t *testing.T, m Model, start, end string) (Model, tea.Cmd) {
	t.Helper()

	m = press(t, m, "d")
	require.Equal(t, viewDates, m.view)
	m.dateInputs[0].SetValue(start)
	m.dateInputs[1].SetValue(end)

	m = press(t, m, "enter")
	require.Equal(t, 1, m.dateFocused)
	next, cmd := m.Update(key("enter"))
	return next.(Model), cmd
}

func TestDateEditorPrefillsCurrentRange(t *testing.T) {
	m := loaded(t, Options{Now: func() time.Time { return testNow }})

	m = press(t, m, "d")
	assert.Equal(t, viewDates, m.view)
	assert.Equal(t, "2026-10-07", m.dateInputs[0].Value())
	assert.Equal(t, "2026-10-14", m.dateInputs[1].Value())
	assert.Contains(t, m.View(), "Edit the date range")
}

func TestDateEditorReloadsWithNewRange(t *testing.T) {
	m, source := loadedWithSource(t, Options{Now: func() time.Time { return testNow }})
	source.EXPECT().ListMessages(anyContext(), testCreds, day(10), day(13)).Return(sampleRecords()[:1], nil).Once()

	m, cmd := editDates(t, m, "2026-10-10", "2026-10-12")
	require.NotNil(t, cmd)
	assert.Equal(t, viewDashboard, m.view)
	assert.True(t, m.loading)
	assert.Equal(t, domain.NewDateRange(day(10), day(12)), m.opts.Range)

	next, _ := m.Update(m.reload()())
	m = next.(Model)
	assert.False(t, m.loading)
	assert.Len(t, m.dashboard.Records, 1)
}

func TestDateEditorRejectsInvertedRange(t *testing.T) {
	m := loaded(t, Options{Now: func() time.Time { return testNow }})

	m, cmd := editDates(t, m, "2026-10-12", "2026-10-10")
	assert.Nil(t, cmd)
	assert.Equal(t, viewDates, m.view)
	assert.False(t, m.loading)
	assert.Equal(t, "Start date cannot be after end date.", m.status)
	assert.Equal(t, testRange, m.opts.Range)
	assert.Contains(t, m.View(), "Start date cannot be after end date.")
}

func TestDateEditorShowsClampWarningBeforeFetch(t *testing.T) {
	m, source := loadedWithSource(t, Options{Now: func() time.Time { return testNow }})
	floor := testNow.Add(-domain.MaxQueryAge)
	source.EXPECT().ListMessages(anyContext(), testCreds, floor, day(15)).Return(sampleRecords(), nil).Once()

	m, _ = editDates(t, m, "2025-01-01", "2026-10-14")
	assert.True(t, m.loading)
	require.Len(t, m.reloadNotices, 1)
	assert.Equal(t, application.NoticeDateRangeClamped, m.reloadNotices[0].Kind)
	assert.Contains(t, m.View(), "Start date was moved to")

	next, _ := m.Update(m.reload()())
	m = next.(Model)
	assert.False(t, m.loading)
	assert.Len(t, m.dashboard.Records, 3)
}

func TestDateEditorReportsMalformedDate(t *testing.T) {
	m := loaded(t, Options{Now: func() time.Time { return testNow }})

	m, cmd := editDates(t, m, "14/10/2026", "2026-10-14")
	assert.Nil(t, cmd)
	assert.Equal(t, viewDates, m.view)
	assert.Contains(t, m.status, "parse start date")
}

func TestDateEditorEscKeepsRange(t *testing.T) {
	m := loaded(t, Options{Now: func() time.Time { return testNow }})

	m = press(t, m, "d")
	m.dateInputs[0].SetValue("2026-10-01")
	m = press(t, m, "esc")

	assert.Equal(t, viewDashboard, m.view)
	assert.False(t, m.loading)
	assert.Equal(t, testRange, m.opts.Range)
}

func TestDateEditorIgnoredWhileLoading(t *testing.T) {
	m := loaded(t, Options{})
	m.loading = true

	m = press(t, m, "d")
	assert.Equal(t, viewDashboard, m.view)
}
