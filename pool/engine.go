package pool

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rustyeddy/lendpool/internal/id"
	"github.com/rustyeddy/lendpool/journal"
	"github.com/rustyeddy/lendpool/market"
)

var ErrInvalidConfig = errors.New("invalid pool config")

var (
	DefaultInitialBalance    = decimal.NewFromInt(100_000_000)
	DefaultDailyInterestRate = decimal.RequireFromString("0.01")
)

// Config holds the parameters of a single backtest run.
type Config struct {
	InitialBalance    decimal.Decimal
	DailyInterestRate decimal.Decimal
	Instrument        string
}

// DefaultConfig returns the standard pool parameters for instrument.
func DefaultConfig(instrument string) Config {
	return Config{
		InitialBalance:    DefaultInitialBalance,
		DailyInterestRate: DefaultDailyInterestRate,
		Instrument:        instrument,
	}
}

func (c Config) Validate() error {
	if c.Instrument == "" {
		return fmt.Errorf("%w: instrument is required", ErrInvalidConfig)
	}
	if c.InitialBalance.IsNegative() {
		return fmt.Errorf("%w: initial balance must not be negative", ErrInvalidConfig)
	}
	if c.DailyInterestRate.IsNegative() {
		return fmt.Errorf("%w: daily interest rate must not be negative", ErrInvalidConfig)
	}
	return nil
}

// CloseResult is what a single close event meant for the trader.
type CloseResult struct {
	GrossProfit  decimal.Decimal
	NetProfit    decimal.Decimal
	InterestPaid decimal.Decimal
	Fills        []Settlement
	Unmatched    decimal.Decimal
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func WithJournal(j journal.Journal) Option {
	return func(e *Engine) {
		if j != nil {
			e.journal = j
		}
	}
}

// WithRunID fixes the run identifier written to the journal and report.
func WithRunID(runID string) Option {
	return func(e *Engine) { e.runID = runID }
}

// WithDataset labels the journal run record with the input source.
func WithDataset(name string) Option {
	return func(e *Engine) { e.dataset = name }
}

// WithProgress is called after every input trade with the number processed
// so far and the total.
func WithProgress(fn func(done, total int)) Option {
	return func(e *Engine) { e.progress = fn }
}

// Engine replays trades for one instrument against a lending pool. Each call
// to Run starts from a fresh account and ledger.
type Engine struct {
	cfg      Config
	log      *zap.Logger
	journal  journal.Journal
	runID    string
	dataset  string
	progress func(done, total int)

	account *Account
	ledger  *Ledger
	report  *Report
}

func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:     cfg,
		log:     zap.NewNop(),
		journal: journal.Nop{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if _, nop := e.journal.(journal.Nop); e.runID == "" && !nop {
		e.runID = id.New()
	}
	return e, nil
}

func (e *Engine) Config() Config { return e.cfg }

// RunID is empty unless set with WithRunID or a journal is attached.
func (e *Engine) RunID() string { return e.runID }

// Run replays trades, which must already be in time order, and returns the
// end-of-run report. Liquidity shortfalls and over-closes are recorded as
// diagnostics and never stop the run; an error means the journal failed.
func (e *Engine) Run(trades []market.Trade) (*Report, error) {
	e.reset()

	log := e.log.With(zap.String("run_id", e.runID), zap.String("instrument", e.cfg.Instrument))
	log.Info("backtest started", zap.Int("trades", len(trades)), zap.Stringer("initial_balance", e.cfg.InitialBalance))

	for i, t := range trades {
		if err := e.process(log, t); err != nil {
			return nil, err
		}
		if e.progress != nil {
			e.progress(i+1, len(trades))
		}
	}

	e.finish()
	if err := e.journal.RecordRun(e.runRecord()); err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}

	log.Info("backtest finished",
		zap.Stringer("final_balance", e.report.FinalBalance),
		zap.Stringer("overall_profit", e.report.OverallProfit),
		zap.Int("fills", e.report.Fills),
		zap.Int("diagnostics", len(e.report.Diagnostics)),
	)
	return e.report, nil
}

func (e *Engine) reset() {
	e.account = NewAccount(e.cfg.InitialBalance)
	e.ledger = NewLedger()
	e.report = newReport(e.runID, e.cfg)
}

func (e *Engine) process(log *zap.Logger, t market.Trade) error {
	if t.Instrument != e.cfg.Instrument {
		return nil
	}
	e.report.Counts[t.Direction]++

	switch t.Direction {
	case market.OpenLong:
		return e.openLong(log, t)
	case market.CloseLong:
		res, err := e.closeLong(log, t)
		if err != nil {
			return err
		}
		e.report.TotalUserGrossProfit = e.report.TotalUserGrossProfit.Add(res.GrossProfit)
		e.report.TotalUserNetProfit = e.report.TotalUserNetProfit.Add(res.NetProfit)
		e.report.TotalInterestPaidByUsers = e.report.TotalInterestPaidByUsers.Add(res.InterestPaid)
	}
	return nil
}

// openLong lends the full notional of t out of the pool, or drops the trade
// if the pool cannot cover it.
func (e *Engine) openLong(log *zap.Logger, t market.Trade) error {
	cost := t.Value()
	if !e.account.CanFund(cost) {
		return e.diagnose(log, Diagnostic{
			Kind:       InsufficientLiquidity,
			Instrument: t.Instrument,
			Time:       t.Time,
			Size:       t.Size,
			Amount:     cost,
			Balance:    e.account.Balance,
		})
	}

	e.account.debit(cost)
	if !e.ledger.Push(Position{RemainingSize: t.Size, OpenPrice: t.Price, OpenTime: t.Time}) {
		log.Debug("open long without size", zap.Time("time", t.Time))
		return nil
	}

	log.Debug("opened long",
		zap.Time("time", t.Time),
		zap.Stringer("size", t.Size),
		zap.Stringer("price", t.Price),
		zap.Stringer("cost", cost),
		zap.Stringer("balance", e.account.Balance),
	)
	return nil
}

// closeLong matches t against the open positions oldest first and settles
// each chunk with the pool.
func (e *Engine) closeLong(log *zap.Logger, t market.Trade) (CloseResult, error) {
	matches, unmatched := e.ledger.MatchClose(t.Size, t.Time)

	res := CloseResult{
		GrossProfit:  decimal.Zero,
		InterestPaid: decimal.Zero,
		Unmatched:    unmatched,
	}
	loss := decimal.Zero

	for _, m := range matches {
		s := Settle(m, t.Price, e.cfg.DailyInterestRate)
		e.account.apply(s)

		res.Fills = append(res.Fills, s)
		res.GrossProfit = res.GrossProfit.Add(s.Profit)
		res.InterestPaid = res.InterestPaid.Add(s.Interest)
		loss = loss.Add(s.Loss)

		if err := e.journal.RecordFill(e.fillRecord(s)); err != nil {
			return CloseResult{}, fmt.Errorf("record fill: %w", err)
		}
	}
	res.NetProfit = res.GrossProfit.Sub(res.InterestPaid)
	e.report.Fills += len(matches)

	log.Debug("closed long",
		zap.Time("time", t.Time),
		zap.Stringer("size", t.Size),
		zap.Stringer("price", t.Price),
		zap.Int("chunks", len(matches)),
		zap.Stringer("interest", res.InterestPaid),
		zap.Stringer("pool_loss", loss),
		zap.Stringer("user_gross_profit", res.GrossProfit),
		zap.Stringer("user_net_profit", res.NetProfit),
		zap.Stringer("balance", e.account.Balance),
	)

	if unmatched.IsPositive() {
		err := e.diagnose(log, Diagnostic{
			Kind:       OverClose,
			Instrument: t.Instrument,
			Time:       t.Time,
			Size:       unmatched,
			Amount:     t.Size,
			Balance:    e.account.Balance,
		})
		if err != nil {
			return CloseResult{}, err
		}
	}
	return res, nil
}

func (e *Engine) diagnose(log *zap.Logger, d Diagnostic) error {
	e.report.Diagnostics = append(e.report.Diagnostics, d)
	log.Warn(d.String(), zap.Stringer("kind", d.Kind), zap.Time("time", d.Time))

	err := e.journal.RecordDiagnostic(journal.DiagnosticRecord{
		RunID:      e.runID,
		Kind:       d.Kind.String(),
		Instrument: d.Instrument,
		Time:       d.Time,
		Size:       d.Size,
		Amount:     d.Amount,
		Message:    d.String(),
	})
	if err != nil {
		return fmt.Errorf("record diagnostic: %w", err)
	}
	return nil
}

func (e *Engine) finish() {
	r := e.report
	a := e.account

	r.FinalBalance = a.Balance
	r.OverallProfit = a.Balance.Sub(a.InitialBalance)
	r.TotalInterestEarnedByPool = a.CumulativeInterestCollected
	r.TotalLossBorneByPool = a.CumulativeLoss
	r.OpenPositions = e.ledger.Len()
	r.OpenSize = e.ledger.OpenSize()
}

func (e *Engine) fillRecord(s Settlement) journal.FillRecord {
	return journal.FillRecord{
		RunID:      e.runID,
		FillID:     id.New(),
		Instrument: e.cfg.Instrument,
		Size:       s.Size,
		OpenPrice:  s.OpenPrice,
		ClosePrice: s.ClosePrice,
		OpenTime:   s.OpenTime,
		CloseTime:  s.CloseTime,
		DaysHeld:   s.DaysHeld,
		Interest:   s.Interest,
		ToPool:     s.ToPool,
		Profit:     s.Profit,
		Loss:       s.Loss,
	}
}

func (e *Engine) runRecord() journal.RunRecord {
	r := e.report
	return journal.RunRecord{
		RunID:           e.runID,
		Created:         time.Now().UTC(),
		Instrument:      e.cfg.Instrument,
		Dataset:         e.dataset,
		DailyRate:       e.cfg.DailyInterestRate,
		InitialBalance:  r.InitialBalance,
		FinalBalance:    r.FinalBalance,
		InterestEarned:  r.TotalInterestEarnedByPool,
		LossBorne:       r.TotalLossBorneByPool,
		OverallProfit:   r.OverallProfit,
		UserGrossProfit: r.TotalUserGrossProfit,
		InterestPaid:    r.TotalInterestPaidByUsers,
		UserNetProfit:   r.TotalUserNetProfit,
		Trades:          r.Trades(),
		Opens:           r.Counts[market.OpenLong],
		Closes:          r.Counts[market.CloseLong],
		Fills:           r.Fills,
		Rejected:        r.DiagnosticCount(InsufficientLiquidity),
		OverCloses:      r.DiagnosticCount(OverClose),
	}
}
