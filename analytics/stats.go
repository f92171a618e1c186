// Package analytics turns a journal's trade records into performance
// statistics: aggregate stats, drawdown periods, time-of-day patterns and a
// weighted performance score. Every analyzer computes eagerly at construction
// and is read-only afterwards.
package analytics

import (
	"sort"

	"github.com/rustyeddy/tradestats/journal"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

var hundred = decimal.NewFromInt(100)

// StatsResult is the immutable snapshot produced by BasicStats.
type StatsResult struct {
	TotalTrades     int `json:"total_trades"`
	ClosedTrades    int `json:"closed_trades"`
	WinTrades       int `json:"win_trades"`
	LossTrades      int `json:"loss_trades"`
	BreakevenTrades int `json:"breakeven_trades"`
	OpenTrades      int `json:"open_trades"`

	WinRate          float64         `json:"win_rate"`
	ProfitFactor     Ratio           `json:"profit_factor"`
	TotalNetProfit   decimal.Decimal `json:"total_net_profit"`
	TotalGrossProfit decimal.Decimal `json:"total_gross_profit"`
	TotalGrossLoss   decimal.Decimal `json:"total_gross_loss"`
	AvgWin           decimal.Decimal `json:"avg_win"`
	AvgLoss          decimal.Decimal `json:"avg_loss"`
	AvgTrade         decimal.Decimal `json:"avg_trade"`
	Expectancy       decimal.Decimal `json:"expectancy"`

	// MaxDrawdown is a percentage of the running peak of cumulative profit.
	MaxDrawdown          float64         `json:"max_drawdown"`
	MaxDrawdownAmount    decimal.Decimal `json:"max_drawdown_amount"`
	MaxConsecutiveWins   int             `json:"max_consecutive_wins"`
	MaxConsecutiveLosses int             `json:"max_consecutive_losses"`

	LargestWin      decimal.Decimal            `json:"largest_win"`
	LargestLoss     decimal.Decimal            `json:"largest_loss"`
	ProfitPerDay    decimal.Decimal            `json:"profit_per_day"`
	ProfitPerSymbol map[string]decimal.Decimal `json:"profit_per_symbol"`

	// Durations in seconds.
	AvgTradeDuration float64 `json:"avg_trade_duration"`
	AvgWinDuration   float64 `json:"avg_win_duration"`
	AvgLossDuration  float64 `json:"avg_loss_duration"`
}

// BasicStats aggregates a trade collection into a StatsResult.
type BasicStats struct {
	trades    []journal.TradeRecord
	closed    []journal.TradeRecord
	open      []journal.TradeRecord
	winners   []journal.TradeRecord
	losers    []journal.TradeRecord
	breakeven []journal.TradeRecord

	result StatsResult
}

func NewBasicStats(trades []journal.TradeRecord) *BasicStats {
	bs := &BasicStats{trades: trades}
	for _, t := range trades {
		if !t.IsClosed() {
			bs.open = append(bs.open, t)
			continue
		}
		bs.closed = append(bs.closed, t)
		switch t.Profit.Sign() {
		case 1:
			bs.winners = append(bs.winners, t)
		case -1:
			bs.losers = append(bs.losers, t)
		default:
			bs.breakeven = append(bs.breakeven, t)
		}
	}
	bs.result = bs.calculate()
	return bs
}

func (bs *BasicStats) Result() StatsResult {
	return bs.result
}

func (bs *BasicStats) calculate() StatsResult {
	r := StatsResult{
		TotalTrades:     len(bs.trades),
		ClosedTrades:    len(bs.closed),
		WinTrades:       len(bs.winners),
		LossTrades:      len(bs.losers),
		BreakevenTrades: len(bs.breakeven),
		OpenTrades:      len(bs.open),
	}

	if r.ClosedTrades > 0 {
		r.WinRate = float64(r.WinTrades) / float64(r.ClosedTrades)
	}

	r.TotalGrossProfit = sumProfit(bs.winners)
	r.TotalGrossLoss = sumProfit(bs.losers).Abs()
	r.TotalNetProfit = sumProfit(bs.closed)

	if r.TotalGrossLoss.IsZero() {
		r.ProfitFactor = UndefinedRatio()
	} else {
		r.ProfitFactor = FiniteRatio(r.TotalGrossProfit.Div(r.TotalGrossLoss).InexactFloat64())
	}

	r.AvgWin = mean(r.TotalGrossProfit, len(bs.winners))
	r.AvgLoss = mean(r.TotalGrossLoss, len(bs.losers))
	r.AvgTrade = mean(r.TotalNetProfit, len(bs.closed))

	r.Expectancy = decimal.NewFromFloat(r.WinRate).Mul(r.AvgWin).
		Sub(decimal.NewFromFloat(1 - r.WinRate).Mul(r.AvgLoss))

	r.LargestWin = decimal.Zero
	for i, t := range bs.winners {
		if i == 0 || t.Profit.GreaterThan(r.LargestWin) {
			r.LargestWin = t.Profit
		}
	}
	r.LargestLoss = decimal.Zero
	for i, t := range bs.losers {
		if i == 0 || t.Profit.LessThan(r.LargestLoss) {
			r.LargestLoss = t.Profit
		}
	}

	ordered := chronological(bs.closed)
	r.MaxDrawdown, r.MaxDrawdownAmount = cumulativeDrawdown(ordered)
	r.MaxConsecutiveWins, r.MaxConsecutiveLosses = streaks(ordered)
	r.ProfitPerDay = profitPerDay(bs.closed)
	r.ProfitPerSymbol = profitBySymbol(bs.closed)

	r.AvgTradeDuration = avgDuration(bs.closed)
	r.AvgWinDuration = avgDuration(bs.winners)
	r.AvgLossDuration = avgDuration(bs.losers)

	return r
}

// chronological returns closed trades sorted by close time. Trades that close
// at the same instant keep their input order.
func chronological(trades []journal.TradeRecord) []journal.TradeRecord {
	out := make([]journal.TradeRecord, 0, len(trades))
	for _, t := range trades {
		if t.IsClosed() {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CloseTime.Before(out[j].CloseTime)
	})
	return out
}

func sumProfit(trades []journal.TradeRecord) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range trades {
		sum = sum.Add(t.Profit)
	}
	return sum
}

func mean(total decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(n)))
}

// cumulativeDrawdown walks cumulative profit from zero and returns the deepest
// fall from a running peak, as a percentage of that peak and as an amount.
func cumulativeDrawdown(ordered []journal.TradeRecord) (float64, decimal.Decimal) {
	balance := decimal.Zero
	peak := decimal.Zero
	maxDD := decimal.Zero

	for _, t := range ordered {
		balance = balance.Add(t.Profit)
		if balance.GreaterThan(peak) {
			peak = balance
		}
		if dd := peak.Sub(balance); dd.GreaterThan(maxDD) {
			maxDD = dd
		}
	}

	if !peak.IsPositive() {
		return 0, maxDD
	}
	return maxDD.Div(peak).Mul(hundred).InexactFloat64(), maxDD
}

// streaks returns the longest runs of wins and losses. A breakeven trade
// resets both counters.
func streaks(ordered []journal.TradeRecord) (maxWins, maxLosses int) {
	var wins, losses int
	for _, t := range ordered {
		switch t.Profit.Sign() {
		case 1:
			wins++
			losses = 0
			maxWins = max(maxWins, wins)
		case -1:
			losses++
			wins = 0
			maxLosses = max(maxLosses, losses)
		default:
			wins, losses = 0, 0
		}
	}
	return maxWins, maxLosses
}

func profitPerDay(closed []journal.TradeRecord) decimal.Decimal {
	days := map[string]struct{}{}
	for _, t := range closed {
		days[t.CloseTime.Format("2006-01-02")] = struct{}{}
	}
	return mean(sumProfit(closed), len(days))
}

func profitBySymbol(closed []journal.TradeRecord) map[string]decimal.Decimal {
	out := map[string]decimal.Decimal{}
	for _, t := range closed {
		out[t.Symbol] = out[t.Symbol].Add(t.Profit)
	}
	return out
}

func avgDuration(trades []journal.TradeRecord) float64 {
	var secs []float64
	for _, t := range trades {
		if d, ok := t.Duration(); ok {
			secs = append(secs, d.Seconds())
		}
	}
	if len(secs) == 0 {
		return 0
	}
	return stat.Mean(secs, nil)
}
