package web

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bnema/msgdash/internal/adapters/session/memory"
	"github.com/bnema/msgdash/internal/application"
	"github.com/bnema/msgdash/internal/domain"
	"github.com/bnema/msgdash/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	testNow   = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	testCreds = domain.Credentials{AccountSID: "AC123", AuthToken: "token"}
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func anyContext() interface{} {
	return mock.MatchedBy(func(context.Context) bool { return true })
}

func sampleRecords() []domain.MessageRecord {
	return []domain.MessageRecord{
		{SID: "SM1", To: "A", Body: "oi", Status: domain.StatusDelivered, Direction: domain.DirectionOutboundAPI},
		{SID: "SM2", To: "A", Body: "tudo bem?", Status: domain.StatusDelivered, Direction: domain.DirectionOutboundAPI},
		{SID: "SM3", To: "B", Body: "falhou", Status: domain.StatusFailed, Direction: domain.DirectionOutboundAPI},
		{SID: "SM4", To: "C", Body: "resposta", Status: domain.StatusReceived, Direction: domain.DirectionInbound},
	}
}

type fixture struct {
	server *Server
	source *mocks.MockMessageSource
	store  *memory.Store
}

func newFixture(t *testing.T, cfg Config) fixture {
	t.Helper()

	source := mocks.NewMockMessageSource(t)
	clock := mocks.NewMockClock(t)
	clock.EXPECT().Now().Return(testNow).Maybe()
	store := memory.NewStore()

	service := application.NewService(source, store, clock, application.DefaultOptions(), testLogger())
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return testNow }
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = 1000
		cfg.Burst = 1000
	}

	return fixture{server: NewServer(cfg, service, testLogger()), source: source, store: store}
}

func (f fixture) do(t *testing.T, method, target string, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	f.server.Router().ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == sessionCookieName {
			return cookie
		}
	}
	require.FailNow(t, "session cookie not set")
	return nil
}

func (f fixture) reload(t *testing.T, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	return f.do(t, http.MethodPost, "/api/v1/reload", `{"account_sid":"AC123","auth_token":"token","start":"2026-10-07","end":"2026-10-14"}`, cookies...)
}

func TestHealthEndpoint(t *testing.T) {
	f := newFixture(t, Config{})

	w := f.do(t, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestReloadThenDashboard(t *testing.T) {
	f := newFixture(t, Config{})
	start := time.Date(2026, 10, 7, 0, 0, 0, 0, time.UTC)
	// the end day is inclusive, so the query runs up to the following midnight
	end := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	f.source.EXPECT().ListMessages(anyContext(), testCreds, start, end).Return(sampleRecords(), nil).Once()

	w := f.reload(t)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reloaded ReloadResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&reloaded))
	assert.Equal(t, 4, reloaded.Fetched)
	assert.Equal(t, RangeResponse{Start: "2026-10-07", End: "2026-10-14"}, reloaded.Range)
	assert.Empty(t, reloaded.Notices)

	cookie := sessionCookie(t, w)
	assert.True(t, cookie.HttpOnly)

	w = f.do(t, http.MethodGet, "/api/v1/dashboard?all_recipients=true", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var dashboard DashboardResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&dashboard))
	assert.True(t, dashboard.Loaded)
	assert.Equal(t, []string{"A", "B", "C"}, dashboard.RecipientOptions)
	assert.Equal(t, []string{"outbound-api", "inbound"}, dashboard.Selection.Directions)
	assert.Len(t, dashboard.Messages, 4)
	assert.Equal(t, 3, dashboard.Aggregate.DistinctRecipients)
	assert.Equal(t, 4, dashboard.Aggregate.Total)
	assert.Equal(t, 3, dashboard.Aggregate.Outbound)
	require.NotEmpty(t, dashboard.Aggregate.StatusCounts)
	assert.Equal(t, StatusCountResponse{Status: "delivered", Count: 2, Share: 50}, dashboard.Aggregate.StatusCounts[0])
	assert.Equal(t, []string{"A", "B", "C"}, dashboard.Aggregate.CrossTab.Recipients)
	assert.Equal(t, []string{"delivered", "failed", "received"}, dashboard.Aggregate.CrossTab.Statuses)
	assert.Equal(t, [][]int{{2, 0, 0}, {0, 1, 0}, {0, 0, 1}}, dashboard.Aggregate.CrossTab.Counts)
}

func TestDashboardFilters(t *testing.T) {
	f := newFixture(t, Config{})
	f.source.EXPECT().ListMessages(anyContext(), testCreds, mock.Anything, mock.Anything).Return(sampleRecords(), nil).Once()
	cookie := sessionCookie(t, f.reload(t))

	tests := []struct {
		name     string
		query    string
		wantSIDs []string
	}{
		{name: "single recipient", query: "recipient=A", wantSIDs: []string{"SM1", "SM2"}},
		{name: "comma separated recipients", query: "recipient=A,C", wantSIDs: []string{"SM1", "SM2", "SM4"}},
		{name: "direction filter", query: "all_recipients=1&direction=inbound", wantSIDs: []string{"SM4"}},
		{name: "empty direction passes everything", query: "all_recipients=1&direction=", wantSIDs: []string{"SM1", "SM2", "SM3", "SM4"}},
		{name: "select all ignores manual picks", query: "all_recipients=true&recipient=B", wantSIDs: []string{"SM1", "SM2", "SM3", "SM4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodGet, "/api/v1/dashboard?"+tt.query, "", cookie)
			require.Equal(t, http.StatusOK, w.Code)

			var dashboard DashboardResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&dashboard))
			sids := make([]string, 0, len(dashboard.Messages))
			for _, message := range dashboard.Messages {
				sids = append(sids, message.SID)
			}
			assert.Equal(t, tt.wantSIDs, sids)
		})
	}
}

func TestDashboardRejectsTooManyRecipients(t *testing.T) {
	f := newFixture(t, Config{})
	f.source.EXPECT().ListMessages(anyContext(), testCreds, mock.Anything, mock.Anything).Return(sampleRecords(), nil).Once()
	cookie := sessionCookie(t, f.reload(t))

	w := f.do(t, http.MethodGet, "/api/v1/dashboard?recipient=1,2,3,4,5,6,7,8,9,10,11", "", cookie)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "too_many_recipients", resp.Error)
}

func TestDashboardWithoutSessionReportsNoData(t *testing.T) {
	f := newFixture(t, Config{})

	w := f.do(t, http.MethodGet, "/api/v1/dashboard", "")

	require.Equal(t, http.StatusOK, w.Code)
	var dashboard DashboardResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&dashboard))
	assert.False(t, dashboard.Loaded)
	assert.Nil(t, dashboard.Range)
	require.Len(t, dashboard.Notices, 1)
	assert.Equal(t, application.NoticeNoData, dashboard.Notices[0].Kind)
	assert.Empty(t, dashboard.Messages)
}

func TestReloadFailures(t *testing.T) {
	t.Run("missing credentials", func(t *testing.T) {
		f := newFixture(t, Config{})
		w := f.do(t, http.MethodPost, "/api/v1/reload", `{"start":"2026-10-07"}`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "missing_credentials", resp.Error)
	})

	t.Run("inverted range never fetches", func(t *testing.T) {
		f := newFixture(t, Config{})
		w := f.do(t, http.MethodPost, "/api/v1/reload", `{"account_sid":"AC123","auth_token":"token","start":"2026-10-14","end":"2026-10-01"}`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "invalid_date_range", resp.Error)
		f.source.AssertNotCalled(t, "ListMessages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed date", func(t *testing.T) {
		f := newFixture(t, Config{})
		w := f.do(t, http.MethodPost, "/api/v1/reload", `{"account_sid":"AC123","auth_token":"token","start":"07/10/2026"}`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_request")
	})

	t.Run("remote failure uses the generic message", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.source.EXPECT().ListMessages(anyContext(), testCreds, mock.Anything, mock.Anything).
			Return(nil, errors.Join(domain.ErrAuthentication, errors.New("status 401"))).Once()

		w := f.reload(t)

		require.Equal(t, http.StatusBadGateway, w.Code)
		var resp ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "fetch_failed", resp.Error)
		assert.Equal(t, application.FetchFailureMessage, resp.Message)
		assert.NotContains(t, w.Body.String(), "401")
	})
}

func TestReloadUsesConfiguredCredentialsAndDefaultWindow(t *testing.T) {
	f := newFixture(t, Config{Credentials: testCreds, DefaultWindow: 3 * 24 * time.Hour})
	start := time.Date(2026, 10, 11, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	f.source.EXPECT().ListMessages(anyContext(), testCreds, start, end).Return(nil, nil).Once()

	w := f.do(t, http.MethodPost, "/api/v1/reload", "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestSessionsAreIsolatedPerCookie(t *testing.T) {
	f := newFixture(t, Config{})
	f.source.EXPECT().ListMessages(anyContext(), testCreds, mock.Anything, mock.Anything).Return(sampleRecords()[:1], nil).Once()
	f.source.EXPECT().ListMessages(anyContext(), testCreds, mock.Anything, mock.Anything).Return(sampleRecords(), nil).Once()

	first := sessionCookie(t, f.reload(t))
	second := sessionCookie(t, f.reload(t))
	require.NotEqual(t, first.Value, second.Value)
	assert.Equal(t, 2, f.store.Len())

	var dashboard DashboardResponse
	require.NoError(t, json.NewDecoder(f.do(t, http.MethodGet, "/api/v1/dashboard", "", first).Body).Decode(&dashboard))
	assert.Len(t, dashboard.Messages, 1)

	require.NoError(t, json.NewDecoder(f.do(t, http.MethodGet, "/api/v1/dashboard", "", second).Body).Decode(&dashboard))
	assert.Len(t, dashboard.Messages, 4)
}

func TestReloadReusesExistingSession(t *testing.T) {
	f := newFixture(t, Config{})
	f.source.EXPECT().ListMessages(anyContext(), testCreds, mock.Anything, mock.Anything).Return(sampleRecords(), nil).Twice()

	cookie := sessionCookie(t, f.reload(t))
	w := f.reload(t, cookie)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Result().Cookies())
	assert.Equal(t, 1, f.store.Len())
}

func TestExportCSV(t *testing.T) {
	f := newFixture(t, Config{})
	f.source.EXPECT().ListMessages(anyContext(), testCreds, mock.Anything, mock.Anything).Return(sampleRecords(), nil).Once()
	cookie := sessionCookie(t, f.reload(t))

	w := f.do(t, http.MethodGet, "/api/v1/export.csv?recipient=A", "", cookie)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="mensagens_whatsapp.csv"`, w.Header().Get("Content-Disposition"))

	rows, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"To", "Body", "DateSent", "Status", "Direction"}, rows[0])
	assert.Equal(t, []string{"A", "oi", "", "delivered", "outbound-api"}, rows[1])
}

func TestExportWithoutSessionIsNotFound(t *testing.T) {
	f := newFixture(t, Config{})

	w := f.do(t, http.MethodGet, "/api/v1/export.csv", "")

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "no_data")
}

func TestEndSessionDropsStateAndCookie(t *testing.T) {
	f := newFixture(t, Config{})
	f.source.EXPECT().ListMessages(anyContext(), testCreds, mock.Anything, mock.Anything).Return(sampleRecords(), nil).Once()
	cookie := sessionCookie(t, f.reload(t))

	w := f.do(t, http.MethodDelete, "/api/v1/session", "", cookie)

	require.Equal(t, http.StatusNoContent, w.Code)
	cleared := sessionCookie(t, w)
	assert.Equal(t, -1, cleared.MaxAge)
	assert.Zero(t, f.store.Len())
}

func TestInvalidCookieStartsFreshSession(t *testing.T) {
	f := newFixture(t, Config{})
	f.source.EXPECT().ListMessages(anyContext(), testCreds, mock.Anything, mock.Anything).Return(nil, nil).Once()

	w := f.reload(t, &http.Cookie{Name: sessionCookieName, Value: "not-a-uuid"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, "not-a-uuid", sessionCookie(t, w).Value)
}

func TestNewServerDefaultsListenAddress(t *testing.T) {
	f := newFixture(t, Config{})
	assert.Equal(t, DefaultListen, f.server.server.Addr)
}

func TestStartReturnsNilAfterShutdown(t *testing.T) {
	f := newFixture(t, Config{Listen: "127.0.0.1:0"})

	errCh := make(chan error, 1)
	go func() { errCh <- f.server.Start() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.server.Shutdown(ctx))

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "server did not stop")
	}
}
