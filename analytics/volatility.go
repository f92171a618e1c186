package analytics

import (
	"math"
	"sort"

	"github.com/rustyeddy/tradestats/journal"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

const tradingDays = 252

// SessionVolatility describes the spread of trade profits inside a session.
type SessionVolatility struct {
	TotalTrades      int     `json:"total_trades"`
	MinPnL           float64 `json:"min_pnl"`
	MaxPnL           float64 `json:"max_pnl"`
	Range            float64 `json:"pnl_range"`
	StdDev           float64 `json:"pnl_std"`
	Q1               float64 `json:"q1"`
	Q3               float64 `json:"q3"`
	MaxWinStreak     int     `json:"max_win_streak"`
	MaxLossStreak    int     `json:"max_loss_streak"`
	ConsistencyScore float64 `json:"consistency_score"`
}

// BucketRisk is the risk profile of one group of trades.
type BucketRisk struct {
	TotalTrades  int     `json:"total_trades"`
	WinRate      float64 `json:"win_rate"`
	MaxDrawdown  float64 `json:"max_drawdown"`
	SharpeRatio  Ratio   `json:"sharpe_ratio"`
	ProfitFactor Ratio   `json:"profit_factor"`
	RiskScore    float64 `json:"risk_score"`
}

// RiskView groups BucketRisk by hour and session, plus the whole history.
type RiskView struct {
	ByHour    map[int]BucketRisk    `json:"by_hour"`
	BySession map[string]BucketRisk `json:"by_session"`
	Overall   BucketRisk            `json:"overall"`
}

func (ta *TimePatternAnalyzer) computeVolatility() map[string]SessionVolatility {
	out := map[string]SessionVolatility{}
	for name, b := range ta.sessions {
		if b.count() < 2 {
			continue
		}
		out[name] = volatilityOf(b.trades)
	}
	return out
}

func volatilityOf(trades []journal.TradeRecord) SessionVolatility {
	pnl := profits(trades)
	sorted := append([]float64(nil), pnl...)
	sort.Float64s(sorted)

	wins, losses := streaks(trades)
	v := SessionVolatility{
		TotalTrades:   len(pnl),
		MinPnL:        sorted[0],
		MaxPnL:        sorted[len(sorted)-1],
		StdDev:        stat.StdDev(pnl, nil),
		Q1:            quantile(sorted, 0.25),
		Q3:            quantile(sorted, 0.75),
		MaxWinStreak:  wins,
		MaxLossStreak: losses,
	}
	v.Range = v.MaxPnL - v.MinPnL

	m := stat.Mean(pnl, nil)
	switch {
	case m != 0:
		v.ConsistencyScore = clamp(0, 1, 2-v.StdDev/math.Abs(m))
	case v.StdDev == 0:
		v.ConsistencyScore = 1
	}
	return v
}

// quantile interpolates linearly between the order statistics around
// position (n-1)*p of sorted data (numpy's default). LinInterp places
// element i at (i+1)/n, so p is remapped onto that grid.
func quantile(sorted []float64, p float64) float64 {
	n := float64(len(sorted))
	if n == 0 {
		return 0
	}
	return stat.Quantile(math.Min(1, ((n-1)*p+1)/n), stat.LinInterp, sorted, nil)
}

func profits(trades []journal.TradeRecord) []float64 {
	out := make([]float64, len(trades))
	for i, t := range trades {
		out[i] = t.Profit.InexactFloat64()
	}
	return out
}

func (ta *TimePatternAnalyzer) computeRisk() RiskView {
	rv := RiskView{
		ByHour:    map[int]BucketRisk{},
		BySession: map[string]BucketRisk{},
	}
	for h := range ta.hours {
		if ta.hours[h].count() >= minHourTrades {
			rv.ByHour[h] = ta.riskOf(ta.hours[h].trades)
		}
	}
	for name, b := range ta.sessions {
		if b.count() >= minHourTrades {
			rv.BySession[name] = ta.riskOf(b.trades)
		}
	}
	if len(ta.closed) > 0 {
		rv.Overall = ta.riskOf(ta.closed)
	}
	return rv
}

func (ta *TimePatternAnalyzer) riskOf(trades []journal.TradeRecord) BucketRisk {
	n := len(trades)
	var (
		wins     int
		grossWin decimal.Decimal
		grossLos decimal.Decimal
	)
	for _, t := range trades {
		switch t.Profit.Sign() {
		case 1:
			wins++
			grossWin = grossWin.Add(t.Profit)
		case -1:
			grossLos = grossLos.Add(t.Profit.Neg())
		}
	}

	r := BucketRisk{
		TotalTrades: n,
		WinRate:     float64(wins) / float64(n),
		MaxDrawdown: profitDrawdown(trades),
		SharpeRatio: ta.sharpe(trades),
	}
	if grossLos.IsZero() {
		r.ProfitFactor = UndefinedRatio()
	} else {
		r.ProfitFactor = FiniteRatio(grossWin.Div(grossLos).InexactFloat64())
	}
	r.RiskScore = clamp(0, 100, (1-r.WinRate)*50+math.Min(20, 40/math.Sqrt(float64(n))))
	return r
}

// profitDrawdown is the largest fractional fall of a single trade's profit
// below the best profit seen so far.
func profitDrawdown(trades []journal.TradeRecord) float64 {
	var (
		peak  float64
		seen  bool
		maxDD float64
	)
	for _, t := range trades {
		p := t.Profit.InexactFloat64()
		if !seen || p > peak {
			peak = p
			seen = true
		}
		if peak > 0 {
			maxDD = math.Max(maxDD, (peak-p)/peak)
		}
	}
	return maxDD
}

func (ta *TimePatternAnalyzer) sharpe(trades []journal.TradeRecord) Ratio {
	if len(trades) < 2 || !ta.opts.CapitalBase.IsPositive() {
		return UndefinedRatio()
	}
	base := ta.opts.CapitalBase.InexactFloat64()
	returns := make([]float64, len(trades))
	for i, t := range trades {
		returns[i] = t.Profit.InexactFloat64() / base
	}
	m, sd := stat.MeanStdDev(returns, nil)
	if sd == 0 {
		return UndefinedRatio()
	}
	excess := m - ta.opts.RiskFreeRate/tradingDays
	return FiniteRatio(excess / sd * math.Sqrt(tradingDays))
}
