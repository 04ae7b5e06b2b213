package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	csvexport "github.com/bnema/msgdash/internal/adapters/export/csv"
	"github.com/bnema/msgdash/internal/application"
	"github.com/bnema/msgdash/internal/domain"
)

const maxReloadBodyBytes = 64 << 10

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error   string               `json:"error"`
	Message string               `json:"message,omitempty"`
	Notices []application.Notice `json:"notices,omitempty"`
}

type ReloadRequest struct {
	AccountSID string `json:"account_sid"`
	AuthToken  string `json:"auth_token"`
	Start      string `json:"start"`
	End        string `json:"end"`
}

type RangeResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type ReloadResponse struct {
	Range     RangeResponse        `json:"range"`
	Fetched   int                  `json:"fetched"`
	FetchedAt string               `json:"fetched_at"`
	Notices   []application.Notice `json:"notices"`
}

type MessageResponse struct {
	SID          string   `json:"sid"`
	From         string   `json:"from"`
	To           string   `json:"to"`
	Body         string   `json:"body"`
	DateSent     string   `json:"date_sent,omitempty"`
	Status       string   `json:"status"`
	Direction    string   `json:"direction"`
	NumSegments  int      `json:"num_segments"`
	ErrorCode    *int     `json:"error_code"`
	ErrorMessage *string  `json:"error_message"`
	Price        *float64 `json:"price"`
	PriceUnit    string   `json:"price_unit,omitempty"`
}

type StatusCountResponse struct {
	Status string  `json:"status"`
	Count  int     `json:"count"`
	Share  float64 `json:"share"`
}

type CrossTabResponse struct {
	Recipients []string `json:"recipients"`
	Statuses   []string `json:"statuses"`
	Counts     [][]int  `json:"counts"`
}

type AggregateResponse struct {
	StatusCounts       []StatusCountResponse `json:"status_counts"`
	CrossTab           CrossTabResponse      `json:"cross_tab"`
	DistinctRecipients int                   `json:"distinct_recipients"`
	Outbound           int                   `json:"outbound"`
	Total              int                   `json:"total"`
}

type SelectionResponse struct {
	Recipients []string `json:"recipients"`
	Directions []string `json:"directions"`
}

type DashboardResponse struct {
	Loaded           bool                 `json:"loaded"`
	Range            *RangeResponse       `json:"range,omitempty"`
	FetchedAt        string               `json:"fetched_at,omitempty"`
	RecipientOptions []string             `json:"recipient_options"`
	DirectionOptions []string             `json:"direction_options"`
	Selection        SelectionResponse    `json:"selection"`
	Messages         []MessageResponse    `json:"messages"`
	Aggregate        AggregateResponse    `json:"aggregate"`
	Notices          []application.Notice `json:"notices"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err string, message string) {
	writeJSON(w, status, ErrorResponse{Error: err, Message: message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReload fetches the requested range into the caller's session.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	var req ReloadRequest
	body := io.LimitReader(r.Body, maxReloadBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_request", "Request body must be a JSON object")
		return
	}

	dateRange, err := domain.ParseDateRangeWindow(strings.TrimSpace(req.Start), strings.TrimSpace(req.End), s.cfg.Now(), s.cfg.DefaultWindow)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Dates must use the YYYY-MM-DD format")
		return
	}

	creds := domain.Credentials{
		AccountSID: firstNonEmpty(req.AccountSID, s.cfg.Credentials.AccountSID),
		AuthToken:  firstNonEmpty(req.AuthToken, s.cfg.Credentials.AuthToken),
	}

	id := s.ensureSession(w, r)
	result, err := s.service.Reload(r.Context(), application.ReloadCommand{
		SessionID:   id,
		Credentials: creds,
		Range:       dateRange,
	})
	if err != nil {
		status, code, message := reloadFailure(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("reload failed", "session", id, "error", err)
		}
		writeJSON(w, status, ErrorResponse{Error: code, Message: message, Notices: result.Notices})
		return
	}

	writeJSON(w, http.StatusOK, ReloadResponse{
		Range:     toRangeResponse(result.Range),
		Fetched:   result.Fetched,
		FetchedAt: result.FetchedAt.UTC().Format(time.RFC3339),
		Notices:   nonNilNotices(result.Notices),
	})
}

func reloadFailure(err error) (int, string, string) {
	var fetchErr *application.FetchError
	switch {
	case errors.Is(err, domain.ErrMissingCredentials):
		return http.StatusBadRequest, "missing_credentials", "Provide the account SID and auth token."
	case errors.Is(err, domain.ErrInvalidDateRange):
		return http.StatusBadRequest, "invalid_date_range", "Start date cannot be after end date."
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway, "fetch_failed", fetchErr.UserMessage()
	default:
		return http.StatusInternalServerError, "internal_error", "Failed to reload messages"
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, ok := s.loadDashboard(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, NewDashboardResponse(dashboard))
}

// handleExport streams the filtered view as CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	dashboard, ok := s.loadDashboard(w, r)
	if !ok {
		return
	}
	if !dashboard.Loaded {
		writeError(w, http.StatusNotFound, "no_data", "No messages loaded yet. Reload to fetch messages.")
		return
	}

	full, _ := strconv.ParseBool(r.URL.Query().Get("full"))

	w.Header().Set("Content-Type", csvexport.ContentType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", csvexport.FileName))
	w.WriteHeader(http.StatusOK)
	if err := csvexport.Write(w, dashboard.Records, csvexport.Options{Full: full}); err != nil {
		s.logger.Error("write csv export", "error", err)
	}
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if id, ok := sessionID(r); ok {
		if err := s.service.EndSession(r.Context(), id); err != nil {
			s.logger.Error("end session failed", "session", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "Failed to end session")
			return
		}
	}

	s.clearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) loadDashboard(w http.ResponseWriter, r *http.Request) (application.Dashboard, bool) {
	id, _ := sessionID(r)

	dashboard, err := s.service.Dashboard(r.Context(), application.DashboardQuery{
		SessionID: id,
		Selection: parseSelection(r),
	})
	if err != nil {
		if errors.Is(err, domain.ErrTooManyRecipients) {
			writeError(w, http.StatusBadRequest, "too_many_recipients", err.Error())
			return application.Dashboard{}, false
		}
		s.logger.Error("build dashboard failed", "session", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to build dashboard")
		return application.Dashboard{}, false
	}

	return dashboard, true
}

// parseSelection reads recipient=, all_recipients= and direction= filters.
// Sending direction at all, even empty, marks the direction filter as chosen.
func parseSelection(r *http.Request) domain.FilterSelection {
	query := r.URL.Query()
	all, _ := strconv.ParseBool(query.Get("all_recipients"))

	rawDirections, chosen := query["direction"]
	directions := make([]domain.Direction, 0, len(rawDirections))
	for _, value := range splitValues(rawDirections) {
		directions = append(directions, domain.Direction(value))
	}

	return domain.FilterSelection{
		Recipients: domain.RecipientSelection{All: all, Values: splitValues(query["recipient"])},
		Directions: domain.DirectionSelection{Chosen: chosen, Values: directions},
	}
}

// splitValues accepts both repeated parameters and comma separated lists.
func splitValues(raw []string) []string {
	values := make([]string, 0, len(raw))
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				values = append(values, trimmed)
			}
		}
	}
	return values
}

// NewDashboardResponse is the JSON shape of a dashboard, shared with the CLI.
func NewDashboardResponse(d application.Dashboard) DashboardResponse {
	resp := DashboardResponse{
		Loaded:           d.Loaded,
		RecipientOptions: nonNilStrings(d.RecipientOptions),
		DirectionOptions: directionStrings(d.DirectionOptions),
		Selection: SelectionResponse{
			Recipients: nonNilStrings(d.Selection.Recipients.Values),
			Directions: directionStrings(d.Selection.Directions.Values),
		},
		Messages:  make([]MessageResponse, 0, len(d.Records)),
		Aggregate: toAggregateResponse(d.Aggregate),
		Notices:   nonNilNotices(d.Notices),
	}

	if d.Loaded {
		rangeResp := toRangeResponse(d.Range)
		resp.Range = &rangeResp
		resp.FetchedAt = d.FetchedAt.UTC().Format(time.RFC3339)
	}

	for _, record := range d.Records {
		resp.Messages = append(resp.Messages, MessageResponse{
			SID:          record.SID,
			From:         record.From,
			To:           record.To,
			Body:         record.Body,
			DateSent:     csvexport.FormatTime(record.DateSent),
			Status:       string(record.Status),
			Direction:    string(record.Direction),
			NumSegments:  record.NumSegments,
			ErrorCode:    record.ErrorCode,
			ErrorMessage: record.ErrorMessage,
			Price:        record.Price,
			PriceUnit:    record.PriceUnit,
		})
	}

	return resp
}

func toAggregateResponse(view application.AggregateView) AggregateResponse {
	resp := AggregateResponse{
		StatusCounts: make([]StatusCountResponse, 0, len(view.StatusCounts)),
		CrossTab: CrossTabResponse{
			Recipients: nonNilStrings(view.CrossTab.Recipients),
			Statuses:   make([]string, 0, len(view.CrossTab.Statuses)),
			Counts:     view.CrossTab.Counts,
		},
		DistinctRecipients: view.DistinctRecipients,
		Outbound:           view.Outbound,
		Total:              view.Total,
	}
	if resp.CrossTab.Counts == nil {
		resp.CrossTab.Counts = [][]int{}
	}

	for _, count := range view.StatusCounts {
		resp.StatusCounts = append(resp.StatusCounts, StatusCountResponse{
			Status: string(count.Status),
			Count:  count.Count,
			Share:  view.Share(count),
		})
	}
	for _, status := range view.CrossTab.Statuses {
		resp.CrossTab.Statuses = append(resp.CrossTab.Statuses, string(status))
	}

	return resp
}

func toRangeResponse(r domain.DateRange) RangeResponse {
	return RangeResponse{
		Start: r.Start.Format(domain.DateLayout),
		End:   r.End.Format(domain.DateLayout),
	}
}

func directionStrings(directions []domain.Direction) []string {
	values := make([]string, 0, len(directions))
	for _, direction := range directions {
		values = append(values, string(direction))
	}
	return values
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nonNilNotices(notices []application.Notice) []application.Notice {
	if notices == nil {
		return []application.Notice{}
	}
	return notices
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
