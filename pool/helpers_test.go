package pool

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/lendpool/market"
)

var t0 = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s, got %s", want, got.String())
}

func trade(dir market.Direction, at time.Time, price, size string) market.Trade {
	return market.Trade{
		Time:       at,
		Instrument: "ETH",
		Direction:  dir,
		Price:      d(price),
		Size:       d(size),
	}
}

func openLong(at time.Time, price, size string) market.Trade {
	return trade(market.OpenLong, at, price, size)
}

func closeLong(at time.Time, price, size string) market.Trade {
	return trade(market.CloseLong, at, price, size)
}
