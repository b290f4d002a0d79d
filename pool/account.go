package pool

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the pool's running state for one backtest. Only the Engine
// that owns it mutates it.
type Account struct {
	InitialBalance decimal.Decimal
	Balance        decimal.Decimal

	CumulativeLoss              decimal.Decimal
	CumulativeInterestCollected decimal.Decimal
	CumulativeUserGrossProfit   decimal.Decimal
	CumulativeUserNetProfit     decimal.Decimal
}

func NewAccount(initialBalance decimal.Decimal) *Account {
	return &Account{
		InitialBalance:              initialBalance,
		Balance:                     initialBalance,
		CumulativeLoss:              decimal.Zero,
		CumulativeInterestCollected: decimal.Zero,
		CumulativeUserGrossProfit:   decimal.Zero,
		CumulativeUserNetProfit:     decimal.Zero,
	}
}

// CanFund reports whether the pool holds at least cost.
func (a *Account) CanFund(cost decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(cost)
}

func (a *Account) debit(cost decimal.Decimal) {
	a.Balance = a.Balance.Sub(cost)
}

// apply credits the pool with the recovered principal and interest of one
// settled chunk and rolls its profit and loss into the cumulative counters.
func (a *Account) apply(s Settlement) {
	a.Balance = a.Balance.Add(s.ToPool).Add(s.Interest)
	a.CumulativeLoss = a.CumulativeLoss.Add(s.Loss)
	a.CumulativeInterestCollected = a.CumulativeInterestCollected.Add(s.Interest)
	a.CumulativeUserGrossProfit = a.CumulativeUserGrossProfit.Add(s.Profit)
	a.CumulativeUserNetProfit = a.CumulativeUserGrossProfit.Sub(a.CumulativeInterestCollected)
}

// Settlement is the accounting outcome of one matched chunk.
type Settlement struct {
	Size       decimal.Decimal
	OpenPrice  decimal.Decimal
	ClosePrice decimal.Decimal
	OpenTime   time.Time
	CloseTime  time.Time
	DaysHeld   int64

	ClosingValue decimal.Decimal
	InitialCost  decimal.Decimal
	Interest     decimal.Decimal
	ToPool       decimal.Decimal
	Profit       decimal.Decimal
	Loss         decimal.Decimal
}

// Settle prices a matched chunk closed at closePrice. The pool recovers at
// most the principal it lent; anything above is the trader's profit and any
// shortfall is the pool's loss. Interest is owed regardless of outcome.
func Settle(m Match, closePrice, dailyRate decimal.Decimal) Settlement {
	closingValue := closePrice.Mul(m.Size)
	initialCost := m.Size.Mul(m.OpenPrice)

	return Settlement{
		Size:         m.Size,
		OpenPrice:    m.OpenPrice,
		ClosePrice:   closePrice,
		OpenTime:     m.OpenTime,
		CloseTime:    m.CloseTime,
		DaysHeld:     DaysHeld(m.OpenTime, m.CloseTime),
		ClosingValue: closingValue,
		InitialCost:  initialCost,
		Interest:     Interest(m.OpenPrice, m.Size, m.OpenTime, m.CloseTime, dailyRate),
		ToPool:       decimal.Min(closingValue, initialCost),
		Profit:       decimal.Max(decimal.Zero, closingValue.Sub(initialCost)),
		Loss:         decimal.Max(decimal.Zero, initialCost.Sub(closingValue)),
	}
}
