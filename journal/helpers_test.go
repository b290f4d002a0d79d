package journal

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	testOpen  = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	testClose = time.Date(2024, 1, 4, 4, 5, 6, 0, time.UTC)
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testFill(runID, fillID string) FillRecord {
	return FillRecord{
		RunID:      runID,
		FillID:     fillID,
		Instrument: "ETH",
		Size:       dec("10"),
		OpenPrice:  dec("100"),
		ClosePrice: dec("110"),
		OpenTime:   testOpen,
		CloseTime:  testClose,
		DaysHeld:   3,
		Interest:   dec("30"),
		ToPool:     dec("1000"),
		Profit:     dec("100"),
		Loss:       dec("0"),
	}
}

func testRun(runID string, created time.Time) RunRecord {
	return RunRecord{
		RunID:           runID,
		Created:         created,
		Instrument:      "ETH",
		Dataset:         "trades.csv",
		DailyRate:       dec("0.01"),
		InitialBalance:  dec("1000000"),
		FinalBalance:    dec("1000030"),
		InterestEarned:  dec("30"),
		LossBorne:       dec("0"),
		OverallProfit:   dec("30"),
		UserGrossProfit: dec("100"),
		InterestPaid:    dec("30"),
		UserNetProfit:   dec("70"),
		Trades:          3,
		Opens:           1,
		Closes:          2,
		Fills:           1,
		Rejected:        0,
		OverCloses:      1,
	}
}
