package models

import "github.com/shopspring/decimal"

// Quote is a price/change snapshot for a ticker
type Quote struct {
	Ticker        string
	Price         decimal.Decimal
	Open          decimal.Decimal
	High          decimal.Decimal
	Low           decimal.Decimal
	PreviousClose decimal.Decimal
	Change        decimal.Decimal
	ChangePercent decimal.Decimal
}

// IsEmpty reports whether every price field is zero, which is how quote
// sources answer for symbols they do not know
func (q *Quote) IsEmpty() bool {
	for _, d := range []decimal.Decimal{q.Price, q.Open, q.High, q.Low, q.PreviousClose} {
		if !d.IsZero() {
			return false
		}
	}
	return true
}
