package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RecordKind string

const (
	RecordGiftSent     RecordKind = "gift_sent"
	RecordGiftReceived RecordKind = "gift_received"
	RecordRecharge     RecordKind = "recharge"
	RecordWithdraw     RecordKind = "withdraw"
	// RecordGiftRefund reverses a gift whose room closed before it landed.
	RecordGiftRefund RecordKind = "gift_refund"
)

// PurchaseRecord is one append-only row of the economic audit log.
// Diamonds and Earnings are signed deltas applied to UserID.
type PurchaseRecord struct {
	ID           string          `json:"id"`
	UserID       UserID          `json:"userId"`
	Kind         RecordKind      `json:"kind"`
	Diamonds     int64           `json:"diamonds"`
	Earnings     int64           `json:"earnings"`
	Cash         decimal.Decimal `json:"cash"`
	RoomID       RoomID          `json:"roomId,omitempty"`
	Counterparty UserID          `json:"counterparty,omitempty"`
	Gift         string          `json:"gift,omitempty"`
	Quantity     int64           `json:"quantity,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}
