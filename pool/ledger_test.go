package pool

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerMatchCloseFIFO(t *testing.T) {
	l := NewLedger()
	require.True(t, l.Push(Position{RemainingSize: d("3"), OpenPrice: d("100"), OpenTime: t0}))
	require.True(t, l.Push(Position{RemainingSize: d("2"), OpenPrice: d("200"), OpenTime: t0.Add(time.Hour)}))
	require.True(t, l.Push(Position{RemainingSize: d("4"), OpenPrice: d("300"), OpenTime: t0.Add(2 * time.Hour)}))

	closeAt := t0.Add(3 * time.Hour)
	matches, unmatched := l.MatchClose(d("6"), closeAt)

	require.Len(t, matches, 3)
	assertDec(t, "3", matches[0].Size)
	assertDec(t, "100", matches[0].OpenPrice)
	assertDec(t, "2", matches[1].Size)
	assertDec(t, "200", matches[1].OpenPrice)
	assertDec(t, "1", matches[2].Size)
	assertDec(t, "300", matches[2].OpenPrice)
	for _, m := range matches {
		assert.True(t, m.CloseTime.Equal(closeAt))
	}
	assert.True(t, unmatched.IsZero())

	require.Equal(t, 1, l.Len())
	head, ok := l.Peek()
	require.True(t, ok)
	assertDec(t, "3", head.RemainingSize)
	assertDec(t, "300", head.OpenPrice)
	assert.True(t, head.OpenTime.Equal(t0.Add(2*time.Hour)))
}

func TestLedgerPartialCloseKeepsHead(t *testing.T) {
	l := NewLedger()
	l.Push(Position{RemainingSize: d("10"), OpenPrice: d("100"), OpenTime: t0})

	for i := 0; i < 3; i++ {
		matches, unmatched := l.MatchClose(d("2.5"), t0.Add(time.Hour))
		require.Len(t, matches, 1)
		assertDec(t, "2.5", matches[0].Size)
		assert.True(t, unmatched.IsZero())
	}

	require.Equal(t, 1, l.Len())
	assertDec(t, "2.5", l.OpenSize())

	matches, _ := l.MatchClose(d("2.5"), t0.Add(time.Hour))
	require.Len(t, matches, 1)
	assert.Equal(t, 0, l.Len())
	_, ok := l.Peek()
	assert.False(t, ok)
}

func TestLedgerOverClose(t *testing.T) {
	l := NewLedger()
	l.Push(Position{RemainingSize: d("5"), OpenPrice: d("100"), OpenTime: t0})

	matches, unmatched := l.MatchClose(d("8"), t0.Add(time.Hour))
	require.Len(t, matches, 1)
	assertDec(t, "5", matches[0].Size)
	assertDec(t, "3", unmatched)
	assert.Equal(t, 0, l.Len())

	matches, unmatched = l.MatchClose(d("1"), t0.Add(2*time.Hour))
	assert.Empty(t, matches)
	assertDec(t, "1", unmatched)
}

func TestLedgerRejectsEmptyPositions(t *testing.T) {
	l := NewLedger()
	assert.False(t, l.Push(Position{RemainingSize: decimal.Zero, OpenPrice: d("1")}))
	assert.False(t, l.Push(Position{RemainingSize: d("-1"), OpenPrice: d("1")}))
	assert.Equal(t, 0, l.Len())
}

func TestLedgerZeroCloseMatchesNothing(t *testing.T) {
	l := NewLedger()
	l.Push(Position{RemainingSize: d("5"), OpenPrice: d("100"), OpenTime: t0})

	matches, unmatched := l.MatchClose(decimal.Zero, t0)
	assert.Empty(t, matches)
	assert.True(t, unmatched.IsZero())
	assertDec(t, "5", l.OpenSize())
}

func TestLedgerWrapAndGrowPreservesOrder(t *testing.T) {
	l := NewLedger()

	// Fill past the initial capacity, drain half, then refill so the ring
	// wraps before it grows again.
	next := 0
	for ; next < minLedgerCap; next++ {
		l.Push(Position{RemainingSize: d("1"), OpenPrice: decimal.NewFromInt(int64(next)), OpenTime: t0})
	}
	_, _ = l.MatchClose(decimal.NewFromInt(minLedgerCap/2), t0)
	for ; next < 3*minLedgerCap; next++ {
		l.Push(Position{RemainingSize: d("1"), OpenPrice: decimal.NewFromInt(int64(next)), OpenTime: t0})
	}

	positions := l.Positions()
	require.Len(t, positions, 3*minLedgerCap-minLedgerCap/2)
	for i, p := range positions {
		assert.Equal(t, int64(i+minLedgerCap/2), p.OpenPrice.IntPart())
	}

	matches, unmatched := l.MatchClose(decimal.NewFromInt(int64(len(positions))), t0)
	assert.True(t, unmatched.IsZero())
	for i, m := range matches {
		assert.Equal(t, int64(i+minLedgerCap/2), m.OpenPrice.IntPart())
	}
	assert.Equal(t, 0, l.Len())
}

func TestLedgerPositionsIsCopy(t *testing.T) {
	l := NewLedger()
	l.Push(Position{RemainingSize: d("5"), OpenPrice: d("100"), OpenTime: t0})

	snap := l.Positions()
	snap[0].RemainingSize = d("1")

	head, _ := l.Peek()
	assertDec(t, "5", head.RemainingSize)
}
