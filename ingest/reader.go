// Package ingest turns exchange trade exports into market.Trade values.
//
// Expected columns (header required, any order, case-insensitive):
//
//	time,coin,dir,px,sz[,ntl,fee,closedPnl]
//
// time uses the DD/MM/YYYY - HH:mm:ss layout and is read as UTC. Extra
// columns are ignored.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/lendpool/market"
)

var (
	ErrMalformedRow  = errors.New("malformed trade row")
	ErrMissingColumn = errors.New("missing required column")
)

var requiredColumns = []string{"time", "coin", "dir", "px", "sz"}

type Reader struct {
	r    *csv.Reader
	cols map[string]int
	line int
	loc  *time.Location
}

// NewReader reads the header row from r.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("read header: %w", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, c)
		}
	}

	return &Reader{r: cr, cols: cols, line: 1, loc: time.UTC}, nil
}

// Next returns the next trade. ok is false at end of input.
func (r *Reader) Next() (market.Trade, bool, error) {
	for {
		row, err := r.r.Read()
		if err == io.EOF {
			return market.Trade{}, false, nil
		}
		if err != nil {
			return market.Trade{}, false, err
		}
		r.line, _ = r.r.FieldPos(0)

		if blank(row) {
			continue
		}

		t, err := r.parse(row)
		if err != nil {
			return market.Trade{}, false, fmt.Errorf("line %d: %w", r.line, err)
		}
		return t, true, nil
	}
}

func (r *Reader) parse(row []string) (market.Trade, error) {
	ts := r.field(row, "time")
	tm, err := time.ParseInLocation(market.TimeLayout, ts, r.loc)
	if err != nil {
		return market.Trade{}, fmt.Errorf("%w: bad time %q", ErrMalformedRow, ts)
	}

	coin := r.field(row, "coin")
	if coin == "" {
		return market.Trade{}, fmt.Errorf("%w: empty coin", ErrMalformedRow)
	}

	px, err := r.amount(row, "px", true)
	if err != nil {
		return market.Trade{}, err
	}
	sz, err := r.amount(row, "sz", true)
	if err != nil {
		return market.Trade{}, err
	}
	ntl, err := r.amount(row, "ntl", false)
	if err != nil {
		return market.Trade{}, err
	}
	fee, err := r.number(row, "fee")
	if err != nil {
		return market.Trade{}, err
	}
	pnl, err := r.number(row, "closedpnl")
	if err != nil {
		return market.Trade{}, err
	}

	dir := r.field(row, "dir")
	return market.Trade{
		Time:       tm,
		Instrument: coin,
		Direction:  market.ClassifyDirection(dir),
		Price:      px,
		Size:       sz,
		Dir:        dir,
		Notional:   ntl,
		Fee:        fee,
		ClosedPnL:  pnl,
	}, nil
}

func (r *Reader) field(row []string, name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// amount parses a non-negative decimal column.
func (r *Reader) amount(row []string, name string, required bool) (decimal.Decimal, error) {
	s := r.field(row, name)
	if s == "" && !required {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: bad %s %q", ErrMalformedRow, name, s)
	}
	if v.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative %s %q", ErrMalformedRow, name, s)
	}
	return v, nil
}

// number parses an optional signed decimal column.
func (r *Reader) number(row []string, name string) (decimal.Decimal, error) {
	s := r.field(row, name)
	if s == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: bad %s %q", ErrMalformedRow, name, s)
	}
	return v, nil
}

func blank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// ReadAll reads every trade from r and returns them in time order. Trades
// with equal timestamps keep their input order.
func ReadAll(r io.Reader) ([]market.Trade, error) {
	rd, err := NewReader(r)
	if err != nil {
		return nil, err
	}

	var out []market.Trade
	for {
		t, ok, err := rd.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

// ReadFile is ReadAll on the file at path.
func ReadFile(path string) ([]market.Trade, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	trades, err := ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return trades, nil
}

// FilterInstruments keeps the trades whose instrument is one of coins. No
// coins means no filtering.
func FilterInstruments(trades []market.Trade, coins ...string) []market.Trade {
	if len(coins) == 0 {
		return trades
	}
	keep := make(map[string]bool, len(coins))
	for _, c := range coins {
		keep[c] = true
	}

	out := make([]market.Trade, 0, len(trades))
	for _, t := range trades {
		if keep[t.Instrument] {
			out = append(out, t)
		}
	}
	return out
}
