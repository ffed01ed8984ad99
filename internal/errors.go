package internal

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrSenderRejected   = errors.New("sender is not allow-listed")
	ErrNoContent        = errors.New("notification has no content")
	ErrParseFailure     = errors.New("notification parse failure")
	ErrParsedIncomplete = errors.New("notification parsed incomplete")

	ErrOrderNotFound = errors.New("order not found")
	ErrItemNotFound  = errors.New("item not found")
	ErrNoRecords     = errors.New("no records")
)

// AmountMismatchError carries both sides of a failed reconciliation so the
// discrepancy can be reviewed without replaying the notification.
type AmountMismatchError struct {
	Expected decimal.Decimal
	Received decimal.Decimal
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("amount mismatch: expected %s, received %s",
		e.Expected.StringFixed(2), e.Received.StringFixed(2))
}
