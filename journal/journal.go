// journal/journal.go
package journal

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side of a trade.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// Result classifies a trade by the sign of its profit.
type Result string

const (
	Win       Result = "WIN"
	Loss      Result = "LOSS"
	Breakeven Result = "BREAKEVEN"
	Open      Result = "OPEN"
)

var ErrTradeNotFound = errors.New("trade not found")

// TradeRecord is a single journal entry. A zero CloseTime means the trade is
// still open. Money fields are exact decimals.
type TradeRecord struct {
	TradeID   string
	Symbol    string
	Direction Direction
	Volume    float64

	OpenTime  time.Time
	OpenPrice decimal.Decimal

	CloseTime  time.Time
	ClosePrice decimal.NullDecimal

	StopLoss   decimal.NullDecimal
	TakeProfit decimal.NullDecimal

	Commission decimal.Decimal
	Swap       decimal.Decimal
	Profit     decimal.Decimal

	BrokerTag *int64
	Note      string
}

func (t TradeRecord) IsClosed() bool {
	return !t.CloseTime.IsZero()
}

// Duration returns close minus open. ok is false for open trades.
func (t TradeRecord) Duration() (d time.Duration, ok bool) {
	if !t.IsClosed() || t.OpenTime.IsZero() {
		return 0, false
	}
	return t.CloseTime.Sub(t.OpenTime), true
}

func (t TradeRecord) Result() Result {
	if !t.IsClosed() {
		return Open
	}
	switch t.Profit.Sign() {
	case 1:
		return Win
	case -1:
		return Loss
	default:
		return Breakeven
	}
}

// Store persists trade records keyed by TradeID. GetTrade returns
// ErrTradeNotFound for an unknown id.
type Store interface {
	UpsertTrade(ctx context.Context, t TradeRecord) error
	UpsertTrades(ctx context.Context, trades []TradeRecord) error
	GetTrade(ctx context.Context, tradeID string) (TradeRecord, error)
	ListTrades(ctx context.Context) ([]TradeRecord, error)
	ListTradesClosedBetween(ctx context.Context, start, end time.Time) ([]TradeRecord, error)
	Close() error
}

// ParseDirection accepts BUY/SELL, LONG/SHORT and their first letters.
// An empty string defaults to Long.
func ParseDirection(s string) (Direction, bool) {
	switch normalize(s) {
	case "", "buy", "b", "long", "l", "buylimit", "buystop":
		return Long, true
	case "sell", "s", "short", "selllimit", "sellstop":
		return Short, true
	}
	return "", false
}
