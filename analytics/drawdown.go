package analytics

import (
	"slices"
	"sort"
	"time"

	"github.com/rustyeddy/tradestats/journal"
	"github.com/shopspring/decimal"
)

// DefaultInitialBalance seeds the equity curve when no balance is configured.
var DefaultInitialBalance = decimal.NewFromInt(10000)

// EquityPoint is the cumulative balance after a closed trade.
type EquityPoint struct {
	Time    time.Time       `json:"time"`
	Balance decimal.Decimal `json:"balance"`
}

// DrawdownPeriod spans from the peak that preceded a dip to the point where
// equity first rose above that peak. EndDate and RecoveryDate are nil while
// the drawdown is ongoing.
type DrawdownPeriod struct {
	StartDate    time.Time       `json:"start_date"`
	EndDate      *time.Time      `json:"end_date,omitempty"`
	PeakEquity   decimal.Decimal `json:"peak_equity"`
	TroughEquity decimal.Decimal `json:"trough_equity"`
	MaxDepth     decimal.Decimal `json:"max_depth"`
	MaxDepthPct  float64         `json:"max_depth_pct"`
	Duration     time.Duration   `json:"duration"`
	RecoveryDate *time.Time      `json:"recovery_date,omitempty"`
}

func (p DrawdownPeriod) Recovered() bool {
	return p.RecoveryDate != nil
}

type DrawdownResult struct {
	CurrentDrawdown         decimal.Decimal  `json:"current_drawdown"`
	CurrentDrawdownPct      float64          `json:"current_drawdown_pct"`
	MaxDrawdown             decimal.Decimal  `json:"max_drawdown"`
	MaxDrawdownPct          float64          `json:"max_drawdown_pct"`
	AverageDrawdown         decimal.Decimal  `json:"average_drawdown"`
	AverageDrawdownPct      float64          `json:"average_drawdown_pct"`
	Periods                 []DrawdownPeriod `json:"drawdown_periods"`
	LongestDrawdownDuration time.Duration    `json:"longest_drawdown_duration"`
	AverageRecoveryTime     time.Duration    `json:"average_recovery_time"`
	IsInDrawdown            bool             `json:"is_in_drawdown"`
}

// DrawdownTracker rebuilds the equity curve from closed trades and splits it
// into drawdown periods.
type DrawdownTracker struct {
	trades         []journal.TradeRecord
	initialBalance decimal.Decimal
	curve          []EquityPoint
	periods        []DrawdownPeriod
	result         DrawdownResult
}

// NewDrawdownTracker ignores open trades. initialBalance seeds the curve;
// percentages are relative to the peak each period fell from.
func NewDrawdownTracker(trades []journal.TradeRecord, initialBalance decimal.Decimal) *DrawdownTracker {
	dt := &DrawdownTracker{
		trades:         chronological(trades),
		initialBalance: initialBalance,
	}
	dt.curve = dt.equityCurve()
	dt.periods = dt.identifyPeriods()
	dt.result = dt.analyze()
	return dt
}

func (dt *DrawdownTracker) Result() DrawdownResult {
	r := dt.result
	r.Periods = slices.Clone(r.Periods)
	return r
}

func (dt *DrawdownTracker) EquityCurve() []EquityPoint {
	return slices.Clone(dt.curve)
}

// TopPeriods returns up to n periods ordered by depth, deepest first.
func (dt *DrawdownTracker) TopPeriods(n int) []DrawdownPeriod {
	out := append([]DrawdownPeriod(nil), dt.periods...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MaxDepth.GreaterThan(out[j].MaxDepth)
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}

func (dt *DrawdownTracker) equityCurve() []EquityPoint {
	if len(dt.trades) == 0 {
		return nil
	}

	curve := make([]EquityPoint, 0, len(dt.trades)+1)
	balance := dt.initialBalance
	curve = append(curve, EquityPoint{
		Time:    dt.trades[0].CloseTime.Add(-time.Minute),
		Balance: balance,
	})
	for _, t := range dt.trades {
		balance = balance.Add(t.Profit)
		curve = append(curve, EquityPoint{Time: t.CloseTime, Balance: balance})
	}
	return curve
}

func (dt *DrawdownTracker) identifyPeriods() []DrawdownPeriod {
	if len(dt.curve) == 0 {
		return nil
	}

	var (
		periods    []DrawdownPeriod
		peak       = dt.initialBalance
		peakTime   = dt.curve[0].Time
		trough     = peak
		start      time.Time
		inDrawdown bool
	)

	for _, p := range dt.curve {
		switch {
		case p.Balance.GreaterThan(peak):
			if inDrawdown {
				end := p.Time
				periods = append(periods, newPeriod(start, &end, peak, trough))
				inDrawdown = false
			}
			peak = p.Balance
			peakTime = p.Time
			trough = p.Balance

		case p.Balance.LessThan(peak):
			if !inDrawdown {
				inDrawdown = true
				start = peakTime
				trough = p.Balance
			} else if p.Balance.LessThan(trough) {
				trough = p.Balance
			}
		}
	}

	if inDrawdown {
		last := dt.curve[len(dt.curve)-1].Time
		p := newPeriod(start, nil, peak, trough)
		p.Duration = last.Sub(start)
		periods = append(periods, p)
	}

	return periods
}

func newPeriod(start time.Time, end *time.Time, peak, trough decimal.Decimal) DrawdownPeriod {
	depth := peak.Sub(trough)
	p := DrawdownPeriod{
		StartDate:    start,
		PeakEquity:   peak,
		TroughEquity: trough,
		MaxDepth:     depth,
		MaxDepthPct:  pctOf(depth, peak),
	}
	if end != nil {
		p.EndDate = end
		rec := *end
		p.RecoveryDate = &rec
		p.Duration = end.Sub(start)
	}
	return p
}

// pctOf returns part/whole*100, or 0 when whole is not positive.
func pctOf(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Div(whole).Mul(hundred).InexactFloat64()
}

func (dt *DrawdownTracker) analyze() DrawdownResult {
	r := DrawdownResult{
		CurrentDrawdown: decimal.Zero,
		MaxDrawdown:     decimal.Zero,
		AverageDrawdown: decimal.Zero,
		Periods:         dt.periods,
	}
	if r.Periods == nil {
		r.Periods = []DrawdownPeriod{}
	}
	if len(dt.curve) == 0 {
		return r
	}

	if len(dt.periods) > 0 {
		var (
			maxP       = dt.periods[0]
			sumDepth   = decimal.Zero
			sumPct     float64
			recovered  int
			sumRecover time.Duration
		)
		for _, p := range dt.periods {
			if p.MaxDepth.GreaterThan(maxP.MaxDepth) {
				maxP = p
			}
			sumDepth = sumDepth.Add(p.MaxDepth)
			sumPct += p.MaxDepthPct
			if p.Duration > r.LongestDrawdownDuration {
				r.LongestDrawdownDuration = p.Duration
			}
			if p.Recovered() {
				recovered++
				sumRecover += p.Duration
			}
		}
		n := len(dt.periods)
		r.MaxDrawdown = maxP.MaxDepth
		r.MaxDrawdownPct = maxP.MaxDepthPct
		r.AverageDrawdown = mean(sumDepth, n)
		r.AverageDrawdownPct = sumPct / float64(n)
		if recovered > 0 {
			r.AverageRecoveryTime = sumRecover / time.Duration(recovered)
		}
	}

	peak := dt.curve[0].Balance
	for _, p := range dt.curve {
		if p.Balance.GreaterThan(peak) {
			peak = p.Balance
		}
	}
	last := dt.curve[len(dt.curve)-1].Balance
	r.CurrentDrawdown = peak.Sub(last)
	r.CurrentDrawdownPct = pctOf(r.CurrentDrawdown, peak)
	r.IsInDrawdown = r.CurrentDrawdown.IsPositive()

	return r
}
