package domain

import "time"

type MessageStatus string

const (
	StatusQueued             MessageStatus = "queued"
	StatusSending            MessageStatus = "sending"
	StatusSent               MessageStatus = "sent"
	StatusFailed             MessageStatus = "failed"
	StatusDelivered          MessageStatus = "delivered"
	StatusUndelivered        MessageStatus = "undelivered"
	StatusReceiving          MessageStatus = "receiving"
	StatusReceived           MessageStatus = "received"
	StatusAccepted           MessageStatus = "accepted"
	StatusScheduled          MessageStatus = "scheduled"
	StatusRead               MessageStatus = "read"
	StatusPartiallyDelivered MessageStatus = "partially_delivered"
	StatusCanceled           MessageStatus = "canceled"
)

type Direction string

const (
	DirectionInbound       Direction = "inbound"
	DirectionOutboundAPI   Direction = "outbound-api"
	DirectionOutboundCall  Direction = "outbound-call"
	DirectionOutboundReply Direction = "outbound-reply"
)

func (d Direction) IsOutbound() bool {
	switch d {
	case DirectionOutboundAPI, DirectionOutboundCall, DirectionOutboundReply:
		return true
	default:
		return false
	}
}

// MessageRecord is one flattened row of the remote message list.
// Status and Direction keep whatever value the API returned, known or not.
type MessageRecord struct {
	SID          string
	From         string
	To           string
	Body         string
	DateSent     time.Time
	Status       MessageStatus
	NumSegments  int
	ErrorCode    *int
	ErrorMessage *string
	URI          string
	DateCreated  time.Time
	DateUpdated  time.Time
	Direction    Direction
	Price        *float64
	PriceUnit    string
	APIVersion   string
}
