package journal

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrRunNotFound = errors.New("run not found")

// FillRecord is one close chunk matched against one open position.
type FillRecord struct {
	RunID      string
	FillID     string
	Instrument string

	Size       decimal.Decimal
	OpenPrice  decimal.Decimal
	ClosePrice decimal.Decimal
	OpenTime   time.Time
	CloseTime  time.Time
	DaysHeld   int64

	Interest decimal.Decimal
	ToPool   decimal.Decimal
	Profit   decimal.Decimal
	Loss     decimal.Decimal
}

// DiagnosticRecord is a non-fatal anomaly raised while replaying trades.
type DiagnosticRecord struct {
	RunID      string
	Kind       string
	Instrument string
	Time       time.Time
	Size       decimal.Decimal
	Amount     decimal.Decimal
	Message    string
}

// RunRecord summarizes a finished backtest.
type RunRecord struct {
	RunID      string
	Created    time.Time
	Instrument string
	Dataset    string
	DailyRate  decimal.Decimal

	InitialBalance  decimal.Decimal
	FinalBalance    decimal.Decimal
	InterestEarned  decimal.Decimal
	LossBorne       decimal.Decimal
	OverallProfit   decimal.Decimal
	UserGrossProfit decimal.Decimal
	InterestPaid    decimal.Decimal
	UserNetProfit   decimal.Decimal

	Trades     int
	Opens      int
	Closes     int
	Fills      int
	Rejected   int
	OverCloses int
}

type Journal interface {
	RecordFill(FillRecord) error
	RecordDiagnostic(DiagnosticRecord) error
	RecordRun(RunRecord) error
	Close() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordFill(FillRecord) error             { return nil }
func (Nop) RecordDiagnostic(DiagnosticRecord) error { return nil }
func (Nop) RecordRun(RunRecord) error               { return nil }
func (Nop) Close() error                            { return nil }
