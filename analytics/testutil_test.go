package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/rustyeddy/tradestats/journal"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var base = time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func trade(id string, closeAt time.Time, profit string) journal.TradeRecord {
	return journal.TradeRecord{
		TradeID:   id,
		Symbol:    "EURUSD",
		Direction: journal.Long,
		Volume:    0.1,
		OpenTime:  closeAt.Add(-time.Hour),
		OpenPrice: dec("1.0800"),
		CloseTime: closeAt,
		Profit:    dec(profit),
	}
}

func openTrade(id string, openAt time.Time) journal.TradeRecord {
	return journal.TradeRecord{
		TradeID:   id,
		Symbol:    "EURUSD",
		Direction: journal.Short,
		Volume:    0.1,
		OpenTime:  openAt,
		OpenPrice: dec("1.0800"),
		Profit:    decimal.Zero,
	}
}

// series closes one trade per hour starting at start.
func series(start time.Time, profits ...string) []journal.TradeRecord {
	out := make([]journal.TradeRecord, len(profits))
	for i, p := range profits {
		out[i] = trade(fmt.Sprintf("t%d", i+1), start.Add(time.Duration(i)*time.Hour), p)
	}
	return out
}

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}
