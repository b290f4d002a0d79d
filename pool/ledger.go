package pool

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is a live long financed by the pool. RemainingSize is always
// positive while the position sits in a Ledger.
type Position struct {
	RemainingSize decimal.Decimal
	OpenPrice     decimal.Decimal
	OpenTime      time.Time
}

// Match is the part of a close filled against a single open position.
type Match struct {
	Size      decimal.Decimal
	OpenPrice decimal.Decimal
	OpenTime  time.Time
	CloseTime time.Time
}

// Ledger is a FIFO queue of open positions for one instrument. It is a ring
// buffer with a head index so closing the oldest position is O(1).
type Ledger struct {
	buf  []Position
	head int
	n    int
}

const minLedgerCap = 16

func NewLedger() *Ledger {
	return &Ledger{}
}

// Len returns the number of live positions.
func (l *Ledger) Len() int { return l.n }

// Push appends p at the tail. Positions without size are not queued and
// Push reports false.
func (l *Ledger) Push(p Position) bool {
	if !p.RemainingSize.IsPositive() {
		return false
	}
	if l.n == len(l.buf) {
		l.grow()
	}
	l.buf[(l.head+l.n)%len(l.buf)] = p
	l.n++
	return true
}

// Peek returns the oldest live position.
func (l *Ledger) Peek() (Position, bool) {
	if l.n == 0 {
		return Position{}, false
	}
	return l.buf[l.head], true
}

// MatchClose fills size against the oldest positions first, shrinking or
// removing them. Whatever could not be matched is returned as unmatched.
func (l *Ledger) MatchClose(size decimal.Decimal, closeTime time.Time) ([]Match, decimal.Decimal) {
	remaining := size
	var matches []Match

	for remaining.IsPositive() && l.n > 0 {
		head := &l.buf[l.head]
		chunk := decimal.Min(remaining, head.RemainingSize)

		matches = append(matches, Match{
			Size:      chunk,
			OpenPrice: head.OpenPrice,
			OpenTime:  head.OpenTime,
			CloseTime: closeTime,
		})

		head.RemainingSize = head.RemainingSize.Sub(chunk)
		remaining = remaining.Sub(chunk)

		if !head.RemainingSize.IsPositive() {
			l.pop()
		}
	}

	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return matches, remaining
}

// OpenSize is the total remaining size across live positions.
func (l *Ledger) OpenSize() decimal.Decimal {
	total := decimal.Zero
	for i := 0; i < l.n; i++ {
		total = total.Add(l.at(i).RemainingSize)
	}
	return total
}

// Positions returns a copy of the live positions, oldest first.
func (l *Ledger) Positions() []Position {
	out := make([]Position, l.n)
	for i := range out {
		out[i] = *l.at(i)
	}
	return out
}

func (l *Ledger) at(i int) *Position {
	return &l.buf[(l.head+i)%len(l.buf)]
}

func (l *Ledger) pop() {
	l.buf[l.head] = Position{}
	l.head = (l.head + 1) % len(l.buf)
	l.n--
	if l.n == 0 {
		l.head = 0
	}
}

func (l *Ledger) grow() {
	size := len(l.buf) * 2
	if size < minLedgerCap {
		size = minLedgerCap
	}
	buf := make([]Position, size)
	for i := 0; i < l.n; i++ {
		buf[i] = *l.at(i)
	}
	l.buf = buf
	l.head = 0
}
