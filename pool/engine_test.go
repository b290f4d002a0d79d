package pool

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rustyeddy/lendpool/journal"
	"github.com/rustyeddy/lendpool/market"
)

type testJournal struct {
	fills  []journal.FillRecord
	diags  []journal.DiagnosticRecord
	runs   []journal.RunRecord
	failOn string
}

var errJournal = errors.New("journal write failed")

func (j *testJournal) RecordFill(rec journal.FillRecord) error {
	if j.failOn == "fill" {
		return errJournal
	}
	j.fills = append(j.fills, rec)
	return nil
}

func (j *testJournal) RecordDiagnostic(rec journal.DiagnosticRecord) error {
	if j.failOn == "diagnostic" {
		return errJournal
	}
	j.diags = append(j.diags, rec)
	return nil
}

func (j *testJournal) RecordRun(rec journal.RunRecord) error {
	if j.failOn == "run" {
		return errJournal
	}
	j.runs = append(j.runs, rec)
	return nil
}

func (j *testJournal) Close() error { return nil }

func newEngine(t *testing.T, balance string, opts ...Option) *Engine {
	t.Helper()
	cfg := DefaultConfig("ETH")
	cfg.InitialBalance = d(balance)
	e, err := New(cfg, opts...)
	require.NoError(t, err)
	return e
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"missing instrument", func(c *Config) { c.Instrument = "" }, true},
		{"negative balance", func(c *Config) { c.InitialBalance = d("-1") }, true},
		{"negative rate", func(c *Config) { c.DailyInterestRate = d("-0.01") }, true},
		{"zero rate", func(c *Config) { c.DailyInterestRate = d("0") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig("ETH")
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			assert.NoError(t, err)
		})
	}

	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("BTC")
	assertDec(t, "100000000", cfg.InitialBalance)
	assertDec(t, "0.01", cfg.DailyInterestRate)
	assert.Equal(t, "BTC", cfg.Instrument)
}

func TestOpenLongDebitsPool(t *testing.T) {
	e := newEngine(t, "1000000")

	r, err := e.Run([]market.Trade{openLong(t0, "100", "10")})
	require.NoError(t, err)

	assertDec(t, "999000", r.FinalBalance)
	assertDec(t, "-1000", r.OverallProfit)
	assert.Equal(t, 1, r.OpenPositions)
	assertDec(t, "10", r.OpenSize)
	assert.Empty(t, r.Diagnostics)

	positions := e.ledger.Positions()
	require.Len(t, positions, 1)
	assertDec(t, "10", positions[0].RemainingSize)
	assertDec(t, "100", positions[0].OpenPrice)
}

func TestCloseLongInProfit(t *testing.T) {
	e := newEngine(t, "1000000")

	res, err := runClose(t, e,
		[]market.Trade{openLong(t0, "100", "10")},
		closeLong(t0.Add(48*time.Hour), "110", "10"),
	)
	require.NoError(t, err)

	require.Len(t, res.Fills, 1)
	s := res.Fills[0]
	assertDec(t, "1100", s.ClosingValue)
	assertDec(t, "1000", s.InitialCost)
	assert.Equal(t, int64(2), s.DaysHeld)
	assertDec(t, "20", s.Interest)
	assertDec(t, "1000", s.ToPool)
	assertDec(t, "100", s.Profit)

	assertDec(t, "100", res.GrossProfit)
	assertDec(t, "80", res.NetProfit)
	assertDec(t, "20", res.InterestPaid)
	assertDec(t, "1000020", e.account.Balance)
	assert.Equal(t, 0, e.ledger.Len())
}

func TestCloseLongAtLossStillOwesInterest(t *testing.T) {
	e := newEngine(t, "1000000")

	res, err := runClose(t, e,
		[]market.Trade{openLong(t0, "200", "5")},
		closeLong(t0.Add(24*time.Hour), "150", "5"),
	)
	require.NoError(t, err)

	require.Len(t, res.Fills, 1)
	s := res.Fills[0]
	assertDec(t, "750", s.ClosingValue)
	assertDec(t, "10", s.Interest)
	assertDec(t, "750", s.ToPool)
	assertDec(t, "250", s.Loss)
	assertDec(t, "0", s.Profit)

	assertDec(t, "0", res.GrossProfit)
	assertDec(t, "-10", res.NetProfit)
	assertDec(t, "250", e.account.CumulativeLoss)
	// 1,000,000 - 1,000 + 750 + 10
	assertDec(t, "999760", e.account.Balance)
}

func TestCloseLongOverClose(t *testing.T) {
	j := &testJournal{}
	e := newEngine(t, "1000000", WithJournal(j), WithRunID("run-1"))

	r, err := e.Run([]market.Trade{
		openLong(t0, "100", "5"),
		closeLong(t0.Add(time.Hour), "100", "8"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, r.Fills)
	require.Len(t, r.Diagnostics, 1)
	diag := r.Diagnostics[0]
	assert.Equal(t, OverClose, diag.Kind)
	assertDec(t, "3", diag.Size)
	assertDec(t, "8", diag.Amount)
	assert.Contains(t, diag.String(), "excess 3")

	require.Len(t, j.diags, 1)
	assert.Equal(t, "over_close", j.diags[0].Kind)
	assert.Equal(t, "run-1", j.diags[0].RunID)
	assert.Equal(t, 1, j.runs[0].OverCloses)
	assert.Equal(t, 0, r.OpenPositions)
}

func TestCloseLongWithoutOpenPositions(t *testing.T) {
	e := newEngine(t, "1000")

	r, err := e.Run([]market.Trade{closeLong(t0, "100", "2")})
	require.NoError(t, err)

	assert.Equal(t, 0, r.Fills)
	require.Len(t, r.Diagnostics, 1)
	assertDec(t, "2", r.Diagnostics[0].Size)
	assertDec(t, "1000", r.FinalBalance)
	assertDec(t, "0", r.TotalUserGrossProfit)
}

func TestOpenLongInsufficientLiquidity(t *testing.T) {
	j := &testJournal{}
	e := newEngine(t, "1000", WithJournal(j))

	r, err := e.Run([]market.Trade{
		openLong(t0, "100", "11"),
		openLong(t0.Add(time.Minute), "100", "10"),
		openLong(t0.Add(2*time.Minute), "0.01", "1"),
	})
	require.NoError(t, err)

	require.Len(t, r.Diagnostics, 2)
	first := r.Diagnostics[0]
	assert.Equal(t, InsufficientLiquidity, first.Kind)
	assertDec(t, "1100", first.Amount)
	assertDec(t, "1000", first.Balance)
	assert.Equal(t, InsufficientLiquidity, r.Diagnostics[1].Kind)

	// The exact-balance open still goes through.
	assertDec(t, "0", r.FinalBalance)
	assert.Equal(t, 1, r.OpenPositions)
	assertDec(t, "10", r.OpenSize)

	require.Len(t, j.runs, 1)
	assert.Equal(t, 2, j.runs[0].Rejected)
	assert.Equal(t, 3, j.runs[0].Opens)
	assert.NotEmpty(t, j.runs[0].RunID)
}

func TestRunScenario(t *testing.T) {
	e := newEngine(t, "1000000")

	r, err := e.Run([]market.Trade{
		openLong(t0, "100", "10"),
		closeLong(t0.Add(48*time.Hour), "110", "10"),
		openLong(t0.Add(49*time.Hour), "200", "5"),
		closeLong(t0.Add(73*time.Hour), "150", "5"),
	})
	require.NoError(t, err)

	assertDec(t, "1000000", r.InitialBalance)
	// 1,000,000 - 1,000 + 1,020 - 1,000 + 760
	assertDec(t, "999780", r.FinalBalance)
	assertDec(t, "-220", r.OverallProfit)
	assertDec(t, "30", r.TotalInterestEarnedByPool)
	assertDec(t, "30", r.TotalInterestPaidByUsers)
	assertDec(t, "250", r.TotalLossBorneByPool)
	assertDec(t, "100", r.TotalUserGrossProfit)
	assertDec(t, "70", r.TotalUserNetProfit)
	assert.True(t, r.TotalUserNetProfit.Equal(r.TotalUserGrossProfit.Sub(r.TotalInterestPaidByUsers)))

	assert.Equal(t, 2, r.Counts[market.OpenLong])
	assert.Equal(t, 2, r.Counts[market.CloseLong])
	assert.Equal(t, 4, r.Trades())
	assert.Equal(t, 2, r.Fills)
	assert.Empty(t, r.Diagnostics)
}

func TestRunMatchesAcrossPositionsFIFO(t *testing.T) {
	j := &testJournal{}
	e := newEngine(t, "1000000", WithJournal(j))

	r, err := e.Run([]market.Trade{
		openLong(t0, "100", "3"),
		openLong(t0.Add(24*time.Hour), "120", "3"),
		closeLong(t0.Add(36*time.Hour), "110", "4"),
	})
	require.NoError(t, err)

	require.Len(t, j.fills, 2)
	assertDec(t, "3", j.fills[0].Size)
	assertDec(t, "100", j.fills[0].OpenPrice)
	assert.Equal(t, int64(2), j.fills[0].DaysHeld)
	assertDec(t, "1", j.fills[1].Size)
	assertDec(t, "120", j.fills[1].OpenPrice)
	assert.Equal(t, int64(1), j.fills[1].DaysHeld)

	// Chunk one earns 30 profit, chunk two loses 10: loss is per chunk.
	assertDec(t, "30", r.TotalUserGrossProfit)
	assertDec(t, "10", r.TotalLossBorneByPool)
	// 100*3*0.01*2 + 120*1*0.01*1
	assertDec(t, "7.2", r.TotalInterestPaidByUsers)
	assert.Equal(t, 1, r.OpenPositions)
	assertDec(t, "2", r.OpenSize)
	assert.Less(t, j.fills[0].FillID, j.fills[1].FillID)
}

func TestRunIgnoresOtherInstrumentsAndDirections(t *testing.T) {
	e := newEngine(t, "1000000")

	btc := openLong(t0, "40000", "1")
	btc.Instrument = "BTC"

	r, err := e.Run([]market.Trade{
		btc,
		trade(market.OpenShort, t0, "100", "1"),
		trade(market.CloseShort, t0.Add(time.Hour), "90", "1"),
		trade(market.Other, t0.Add(2*time.Hour), "90", "1"),
	})
	require.NoError(t, err)

	assertDec(t, "1000000", r.FinalBalance)
	assert.Equal(t, 0, r.Counts[market.OpenLong])
	assert.Equal(t, 1, r.Counts[market.OpenShort])
	assert.Equal(t, 1, r.Counts[market.CloseShort])
	assert.Equal(t, 1, r.Counts[market.Other])
	assert.Equal(t, 3, r.Trades())
}

func TestRunIsRepeatable(t *testing.T) {
	trades := []market.Trade{
		openLong(t0, "100", "10"),
		openLong(t0.Add(time.Hour), "105", "4"),
		closeLong(t0.Add(30*time.Hour), "98", "12"),
		openLong(t0.Add(31*time.Hour), "1000000", "1000"),
		closeLong(t0.Add(80*time.Hour), "130", "5"),
	}

	e := newEngine(t, "1000000")
	first, err := e.Run(trades)
	require.NoError(t, err)
	second, err := e.Run(trades)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other := newEngine(t, "1000000")
	third, err := other.Run(trades)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestRunEnginesInParallel(t *testing.T) {
	trades := []market.Trade{
		openLong(t0, "100", "10"),
		closeLong(t0.Add(48*time.Hour), "110", "10"),
	}

	var wg sync.WaitGroup
	reports := make([]*Report, 8)
	for i := range reports {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cfg := DefaultConfig("ETH")
			cfg.InitialBalance = d("1000000")
			e, err := New(cfg)
			if err != nil {
				return
			}
			reports[i], _ = e.Run(trades)
		}(i)
	}
	wg.Wait()

	for _, r := range reports {
		require.NotNil(t, r)
		assertDec(t, "1000020", r.FinalBalance)
	}
}

func TestRunReportsProgress(t *testing.T) {
	var calls [][2]int
	e := newEngine(t, "1000", WithProgress(func(done, total int) {
		calls = append(calls, [2]int{done, total})
	}))

	_, err := e.Run([]market.Trade{openLong(t0, "1", "1"), openLong(t0, "1", "1")})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 2}, {2, 2}}, calls)
}

func TestRunJournalErrors(t *testing.T) {
	trades := []market.Trade{
		openLong(t0, "100", "1"),
		closeLong(t0.Add(time.Hour), "100", "2"),
	}

	for _, failOn := range []string{"fill", "diagnostic", "run"} {
		t.Run(failOn, func(t *testing.T) {
			e := newEngine(t, "1000", WithJournal(&testJournal{failOn: failOn}))
			_, err := e.Run(trades)
			assert.ErrorIs(t, err, errJournal)
		})
	}
}

func TestRunLogsDiagnostics(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	e := newEngine(t, "10", WithLogger(zap.New(core)))

	_, err := e.Run([]market.Trade{openLong(t0, "100", "1")})
	require.NoError(t, err)

	entries := logs.FilterMessageSnippet("insufficient liquidity").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
}

func runClose(t *testing.T, e *Engine, opens []market.Trade, c market.Trade) (CloseResult, error) {
	t.Helper()
	e.reset()
	log := zap.NewNop()
	for _, o := range opens {
		require.NoError(t, e.openLong(log, o))
	}
	return e.closeLong(log, c)
}
