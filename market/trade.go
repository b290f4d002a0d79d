package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is a normalized fill for a single instrument. Ingestion builds it
// after validating every field; the accounting code never re-checks it.
type Trade struct {
	Time       time.Time
	Instrument string
	Direction  Direction
	Price      decimal.Decimal
	Size       decimal.Decimal

	// Carried for exports only.
	Dir       string
	Notional  decimal.Decimal
	Fee       decimal.Decimal
	ClosedPnL decimal.Decimal
}

// Notional value of the fill, price times size.
func (t Trade) Value() decimal.Decimal {
	return t.Price.Mul(t.Size)
}

// TimeLayout is the exchange export timestamp format, DD/MM/YYYY - HH:mm:ss.
const TimeLayout = "02/01/2006 - 15:04:05"
