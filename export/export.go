// Package export splits a trade history by direction and writes one CSV
// per category, with a check that opened and closed size agree.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/lendpool/market"
)

// MismatchTolerance is the largest open/close size difference treated as
// equal.
var MismatchTolerance = decimal.RequireFromString("0.0001")

var header = []string{"Time", "Coin", "Direction", "Price", "Size", "Notional", "Fee", "Closed PnL"}

// Categories groups trades by direction, each group in input order.
type Categories map[market.Direction][]market.Trade

func Partition(trades []market.Trade) Categories {
	c := make(Categories, len(market.Directions))
	for _, d := range market.Directions {
		c[d] = nil
	}
	for _, t := range trades {
		c[t.Direction] = append(c[t.Direction], t)
	}
	return c
}

type CategoryStats struct {
	Direction market.Direction
	Count     int
	Size      decimal.Decimal
}

type Summary struct {
	Total      int
	Stats      []CategoryStats
	OpenSize   decimal.Decimal
	CloseSize  decimal.Decimal
	Difference decimal.Decimal
	Mismatch   bool
}

// Summarize counts each category and compares total opened size (long and
// short) with total closed size.
func Summarize(c Categories) Summary {
	s := Summary{OpenSize: decimal.Zero, CloseSize: decimal.Zero}
	sizes := make(map[market.Direction]decimal.Decimal, len(market.Directions))

	for _, d := range market.Directions {
		size := decimal.Zero
		for _, t := range c[d] {
			size = size.Add(t.Size)
		}
		sizes[d] = size
		s.Total += len(c[d])
		s.Stats = append(s.Stats, CategoryStats{Direction: d, Count: len(c[d]), Size: size})
	}

	s.OpenSize = sizes[market.OpenLong].Add(sizes[market.OpenShort])
	s.CloseSize = sizes[market.CloseLong].Add(sizes[market.CloseShort])
	s.Difference = s.OpenSize.Sub(s.CloseSize).Abs()
	s.Mismatch = s.Difference.GreaterThan(MismatchTolerance)
	return s
}

func (s Summary) Print(w io.Writer) {
	for _, st := range s.Stats {
		if st.Direction == market.Other {
			fmt.Fprintf(w, "Other Trades: %d\n", st.Count)
			continue
		}
		fmt.Fprintf(w, "%s Trades: %d, Total Size: %s\n", st.Direction, st.Count, st.Size.StringFixed(4))
	}
	if s.Mismatch {
		fmt.Fprintln(w, "Warning: Mismatch between open and close trade sizes")
		fmt.Fprintf(w, "Total Open Size: %s, Total Close Size: %s\n", s.OpenSize.StringFixed(4), s.CloseSize.StringFixed(4))
		fmt.Fprintf(w, "Difference: %s\n", s.Difference.StringFixed(4))
		return
	}
	fmt.Fprintf(w, "Open and close trade sizes match: %s\n", s.OpenSize.StringFixed(4))
}

// FileName is the export file for a direction, e.g. open_long_trades.csv.
func FileName(d market.Direction) string {
	return d.Key() + "_trades.csv"
}

// WriteCategories writes one CSV per direction into dir, creating it if
// needed, and returns the paths written.
func WriteCategories(dir string, c Categories) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var paths []string
	for _, d := range market.Directions {
		path := filepath.Join(dir, FileName(d))
		if err := writeFile(path, c[d]); err != nil {
			return paths, fmt.Errorf("write %s: %w", FileName(d), err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, trades []market.Trade) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteTrades(f, trades); err != nil {
		return err
	}
	return f.Close()
}

// WriteTrades writes trades as CSV in the export layout.
func WriteTrades(w io.Writer, trades []market.Trade) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range trades {
		record := []string{
			t.Time.Format(market.TimeLayout),
			t.Instrument,
			t.Dir,
			t.Price.String(),
			t.Size.String(),
			t.Notional.String(),
			t.Fee.String(),
			t.ClosedPnL.String(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
