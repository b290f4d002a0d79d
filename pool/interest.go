package pool

import (
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// DaysHeld counts started days between open and close. Any fraction of a
// day is charged as a whole day. A close at or before the open is 0 days.
func DaysHeld(openTime, closeTime time.Time) int64 {
	elapsed := closeTime.Sub(openTime)
	if elapsed <= 0 {
		return 0
	}
	days := int64(elapsed / day)
	if elapsed%day != 0 {
		days++
	}
	return days
}

// Interest is the simple borrowing cost owed on closedSize units opened at
// openPrice: notional * dailyRate * daysHeld.
func Interest(openPrice, closedSize decimal.Decimal, openTime, closeTime time.Time, dailyRate decimal.Decimal) decimal.Decimal {
	days := decimal.NewFromInt(DaysHeld(openTime, closeTime))
	return openPrice.Mul(closedSize).Mul(dailyRate).Mul(days)
}
