package application

import (
	"sort"

	"github.com/bnema/msgdash/internal/domain"
)

// Summarize computes the aggregate view of a (filtered) table.
//
// Status counts are ordered by descending count; equal counts keep the order in
// which the statuses first appear. The cross-tab is dense over the sorted
// distinct recipients and sorted distinct statuses.
func Summarize(records []domain.MessageRecord) AggregateView {
	return AggregateView{
		StatusCounts:       statusCounts(records),
		CrossTab:           crossTab(records),
		DistinctRecipients: len(DistinctRecipients(records)),
		Outbound:           outboundCount(records),
		Total:              len(records),
	}
}

func outboundCount(records []domain.MessageRecord) int {
	n := 0
	for _, record := range records {
		if record.Direction.IsOutbound() {
			n++
		}
	}

	return n
}

func statusCounts(records []domain.MessageRecord) []StatusCount {
	index := make(map[domain.MessageStatus]int)
	counts := make([]StatusCount, 0)
	for _, record := range records {
		i, ok := index[record.Status]
		if !ok {
			i = len(counts)
			index[record.Status] = i
			counts = append(counts, StatusCount{Status: record.Status})
		}
		counts[i].Count++
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	return counts
}

func crossTab(records []domain.MessageRecord) CrossTab {
	recipients := DistinctRecipients(records)
	sort.Strings(recipients)

	statusSet := make(map[domain.MessageStatus]struct{})
	for _, record := range records {
		statusSet[record.Status] = struct{}{}
	}
	statuses := make([]domain.MessageStatus, 0, len(statusSet))
	for status := range statusSet {
		statuses = append(statuses, status)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i] < statuses[j] })

	rowIndex := make(map[string]int, len(recipients))
	for i, recipient := range recipients {
		rowIndex[recipient] = i
	}
	colIndex := make(map[domain.MessageStatus]int, len(statuses))
	for i, status := range statuses {
		colIndex[status] = i
	}

	counts := make([][]int, len(recipients))
	for i := range counts {
		counts[i] = make([]int, len(statuses))
	}
	for _, record := range records {
		counts[rowIndex[record.To]][colIndex[record.Status]]++
	}

	return CrossTab{Recipients: recipients, Statuses: statuses, Counts: counts}
}
