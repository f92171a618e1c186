package journal

import (
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: dec(s), Valid: true}
}

func sampleTrade(id string, closeAt time.Time, profit string) TradeRecord {
	return TradeRecord{
		TradeID:    id,
		Symbol:     "EURUSD",
		Direction:  Long,
		Volume:     0.1,
		OpenTime:   closeAt.Add(-time.Hour),
		OpenPrice:  dec("1.0800"),
		CloseTime:  closeAt,
		ClosePrice: nullDec("1.0850"),
		Commission: dec("-0.70"),
		Swap:       decimal.Zero,
		Profit:     dec(profit),
	}
}
