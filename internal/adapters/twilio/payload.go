package twilio

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/msgdash/internal/domain"
)

const dateLayout = time.RFC1123Z

type messagePage struct {
	Messages    []messagePayload `json:"messages"`
	NextPageURI string           `json:"next_page_uri"`
}

type messagePayload struct {
	SID          string  `json:"sid"`
	From         string  `json:"from"`
	To           string  `json:"to"`
	Body         string  `json:"body"`
	DateSent     string  `json:"date_sent"`
	Status       string  `json:"status"`
	NumSegments  string  `json:"num_segments"`
	ErrorCode    *int    `json:"error_code"`
	ErrorMessage *string `json:"error_message"`
	URI          string  `json:"uri"`
	DateCreated  string  `json:"date_created"`
	DateUpdated  string  `json:"date_updated"`
	Direction    string  `json:"direction"`
	Price        *string `json:"price"`
	PriceUnit    string  `json:"price_unit"`
	APIVersion   string  `json:"api_version"`
}

type apiError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
}

func (p messagePayload) toRecord() (domain.MessageRecord, error) {
	dateSent, err := parseDate(p.DateSent)
	if err != nil {
		return domain.MessageRecord{}, fmt.Errorf("message %s: date_sent: %w", p.SID, err)
	}
	dateCreated, err := parseDate(p.DateCreated)
	if err != nil {
		return domain.MessageRecord{}, fmt.Errorf("message %s: date_created: %w", p.SID, err)
	}
	dateUpdated, err := parseDate(p.DateUpdated)
	if err != nil {
		return domain.MessageRecord{}, fmt.Errorf("message %s: date_updated: %w", p.SID, err)
	}

	segments := 1
	if raw := strings.TrimSpace(p.NumSegments); raw != "" {
		segments, err = strconv.Atoi(raw)
		if err != nil {
			return domain.MessageRecord{}, fmt.Errorf("message %s: num_segments: %w", p.SID, err)
		}
		if segments < 1 {
			segments = 1
		}
	}

	price, err := parsePrice(p.Price)
	if err != nil {
		return domain.MessageRecord{}, fmt.Errorf("message %s: price: %w", p.SID, err)
	}

	return domain.MessageRecord{
		SID:          p.SID,
		From:         p.From,
		To:           p.To,
		Body:         p.Body,
		DateSent:     dateSent,
		Status:       domain.MessageStatus(p.Status),
		NumSegments:  segments,
		ErrorCode:    p.ErrorCode,
		ErrorMessage: p.ErrorMessage,
		URI:          p.URI,
		DateCreated:  dateCreated,
		DateUpdated:  dateUpdated,
		Direction:    domain.Direction(p.Direction),
		Price:        price,
		PriceUnit:    p.PriceUnit,
		APIVersion:   p.APIVersion,
	}, nil
}

func parseDate(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, nil
	}

	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, err
	}

	return parsed.UTC(), nil
}

func parsePrice(raw *string) (*float64, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
	if err != nil {
		return nil, err
	}

	return &value, nil
}
