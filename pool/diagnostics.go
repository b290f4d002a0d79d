package pool

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DiagnosticKind names a non-fatal anomaly seen during a run.
type DiagnosticKind int

const (
	// InsufficientLiquidity: an open cost more than the pool held and was dropped.
	InsufficientLiquidity DiagnosticKind = iota + 1
	// OverClose: a close asked for more size than was open.
	OverClose
)

func (k DiagnosticKind) String() string {
	switch k {
	case InsufficientLiquidity:
		return "insufficient_liquidity"
	case OverClose:
		return "over_close"
	default:
		return "unknown"
	}
}

// Diagnostic records one anomaly. For InsufficientLiquidity, Size is the
// rejected open size and Amount its cost. For OverClose, Size is the
// unmatched excess and Amount the size that was requested.
type Diagnostic struct {
	Kind       DiagnosticKind
	Instrument string
	Time       time.Time
	Size       decimal.Decimal
	Amount     decimal.Decimal
	Balance    decimal.Decimal
}

func (d Diagnostic) String() string {
	switch d.Kind {
	case InsufficientLiquidity:
		return fmt.Sprintf("insufficient liquidity to open %s %s: cost %s, pool balance %s",
			d.Size, d.Instrument, d.Amount.StringFixed(2), d.Balance.StringFixed(2))
	case OverClose:
		return fmt.Sprintf("close of %s %s exceeds open positions, excess %s",
			d.Amount, d.Instrument, d.Size)
	default:
		return fmt.Sprintf("%s at %s", d.Kind, d.Time.Format(time.RFC3339))
	}
}
