package application

import (
	"fmt"
	"time"

	"github.com/bnema/msgdash/internal/domain"
)

var baseSent = time.Date(2026, 10, 10, 9, 0, 0, 0, time.UTC)

func record(to string, status domain.MessageStatus, direction domain.Direction) domain.MessageRecord {
	return domain.MessageRecord{
		To:          to,
		From:        "whatsapp:+15550000000",
		Body:        "hello " + to,
		Status:      status,
		Direction:   direction,
		NumSegments: 1,
	}
}

// withSIDs assigns sequential SIDs and sent timestamps.
func withSIDs(records ...domain.MessageRecord) []domain.MessageRecord {
	for i := range records {
		records[i].SID = fmt.Sprintf("SM%032d", i+1)
		records[i].DateSent = baseSent.Add(time.Duration(i) * time.Minute)
	}
	return records
}
