package application

import (
	"time"

	"github.com/bnema/msgdash/internal/domain"
)

type DashboardQuery struct {
	SessionID domain.SessionID
	Selection domain.FilterSelection
}

type StatusCount struct {
	Status domain.MessageStatus
	Count  int
}

// CrossTab holds Counts[recipient][status] for every recipient/status pair.
type CrossTab struct {
	Recipients []string
	Statuses   []domain.MessageStatus
	Counts     [][]int
}

func (c CrossTab) Count(recipient string, status domain.MessageStatus) int {
	for i, r := range c.Recipients {
		if r != recipient {
			continue
		}
		for j, s := range c.Statuses {
			if s == status {
				return c.Counts[i][j]
			}
		}
	}

	return 0
}

type AggregateView struct {
	StatusCounts       []StatusCount
	CrossTab           CrossTab
	DistinctRecipients int
	// Outbound counts messages sent from the account, whatever the channel.
	Outbound int
	Total    int
}

// Share returns the percentage of the view held by one status, for pie charts.
func (v AggregateView) Share(count StatusCount) float64 {
	if v.Total == 0 {
		return 0
	}

	return float64(count.Count) * 100 / float64(v.Total)
}

type Dashboard struct {
	Loaded    bool
	Range     domain.DateRange
	FetchedAt time.Time

	// Options offered by the filter widgets.
	RecipientOptions []string
	DirectionOptions []domain.Direction

	Selection domain.FilterSelection
	Records   []domain.MessageRecord
	Aggregate AggregateView
	Notices   []Notice
}
