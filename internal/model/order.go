package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentMethodPeerToPeer = "PEER_TO_PEER"
	PaymentMethodOther      = "OTHER"
)

const (
	PaymentStatusUnverifiable = "UNVERIFIABLE"
	PaymentStatusPending      = "PENDING"
	PaymentStatusConfirmed    = "CONFIRMED"
)

type Order struct {
	ID            string      `json:"id"`
	BuyerID       string      `json:"buyerID"`
	FundraiserID  string      `json:"fundraiserID"`
	PaymentMethod string      `json:"paymentMethod"`
	PaymentStatus string      `json:"paymentStatus"`
	PickedUp      bool        `json:"pickedUp"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
	Lines         []OrderLine `json:"lines"`
}

// OrderLine carries the current item price when loaded through the
// fundraiser listing; the reconciliation path re-reads prices itself.
type OrderLine struct {
	ItemID    string          `json:"itemID"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

type OrderOutput struct {
	ID            string          `json:"id"`
	BuyerID       string          `json:"buyerID"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentStatus string          `json:"paymentStatus"`
	PickedUp      bool            `json:"pickedUp"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"createdAt"`
}
