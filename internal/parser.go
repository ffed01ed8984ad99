package internal

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html"
)

var (
	amountRe  = regexp.MustCompile(`\$\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)
	orderIDRe = regexp.MustCompile(`(?i)order\s*#?\s*([A-Za-z0-9][A-Za-z0-9-]{5,})`)
)

// ParsedPayment is the raw extraction result. No semantic validation
// happens here; the reconciliation step owns that.
type ParsedPayment struct {
	Amount  decimal.Decimal
	OrderID string
}

func Parse(body string, f Format) (ParsedPayment, error) {
	if f == FormatVerified {
		return ParseVerified(body)
	}
	return ParseUnverified(body)
}

// ParseVerified reads the amount from the template's amount container and
// the order id from the payment note. A missing container is a parse
// failure; a present note without an order token yields an incomplete
// result and is left to the caller.
func ParseVerified(body string) (ParsedPayment, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return ParsedPayment{}, fmt.Errorf("%w: %s", ErrParseFailure, err)
	}

	amountNode := findByClass(doc, amountMarkerClass)
	if amountNode == nil {
		return ParsedPayment{}, fmt.Errorf("%w: amount container is missing", ErrParseFailure)
	}

	amount, err := extractAmount(textContent(amountNode))
	if err != nil {
		return ParsedPayment{}, err
	}

	p := ParsedPayment{Amount: amount}
	if note := findByClass(doc, noteMarkerClass); note != nil {
		if m := orderIDRe.FindStringSubmatch(textContent(note)); m != nil {
			p.OrderID = m[1]
		}
	}
	return p, nil
}

// ParseUnverified flattens the document to text and scans for the amount
// and order tokens anywhere in it.
func ParseUnverified(body string) (ParsedPayment, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return ParsedPayment{}, fmt.Errorf("%w: %s", ErrParseFailure, err)
	}

	text := textContent(doc)
	amount, err := extractAmount(text)
	if err != nil {
		return ParsedPayment{}, err
	}

	p := ParsedPayment{Amount: amount}
	if m := orderIDRe.FindStringSubmatch(text); m != nil {
		p.OrderID = m[1]
	}
	return p, nil
}

func extractAmount(s string) (decimal.Decimal, error) {
	m := amountRe.FindStringSubmatch(s)
	if m == nil {
		return decimal.Decimal{}, fmt.Errorf("%w: no amount found", ErrParseFailure)
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrParseFailure, err)
	}
	return d, nil
}
