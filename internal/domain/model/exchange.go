package model

import "time"

type ExchangeDirection string

const (
	DirectionOutbound ExchangeDirection = "outbound"
	DirectionInbound  ExchangeDirection = "inbound"
)

type ExchangeStatus string

const (
	ExchangeStatusSigned   ExchangeStatus = "signed"
	ExchangeStatusVerified ExchangeStatus = "verified"
	ExchangeStatusRejected ExchangeStatus = "rejected"
)

// Exchange is the journal entry for one banklink protocol exchange: one
// outbound signed packet or one inbound verification attempt.
type Exchange struct {
	ID        string
	BankID    string
	Direction ExchangeDirection
	PacketID  string
	Stamp     string // VK_STAMP, the merchant transaction stamp
	Amount    string // decimal text as carried on the wire
	Currency  string
	Reference string
	MAC       string
	Status    ExchangeStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
