package analytics

import (
	"maps"
	"slices"
	"sort"

	"github.com/rustyeddy/tradestats/journal"
	"github.com/shopspring/decimal"
)

const (
	minHourTrades    = 3
	minDayTrades     = 5
	minOverlapTrades = 3
	defaultTopN      = 5
)

var (
	weekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	monthNames   = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
)

// BucketStats aggregates the closed trades that fell into one bucket.
type BucketStats struct {
	TotalTrades int             `json:"total_trades"`
	Wins        int             `json:"wins"`
	Losses      int             `json:"losses"`
	WinRate     float64         `json:"win_rate"`
	LossRate    float64         `json:"loss_rate"`
	TotalPnL    decimal.Decimal `json:"total_pnl"`
	AvgPnL      decimal.Decimal `json:"avg_pnl"`
}

type HourPerformance struct {
	Hour int `json:"hour"`
	BucketStats
}

type WeekdayPerformance struct {
	Weekday int    `json:"weekday"`
	Name    string `json:"name"`
	BucketStats
}

type MonthPerformance struct {
	Month int    `json:"month"`
	Name  string `json:"name"`
	BucketStats
}

type OverlapStats struct {
	Name     string      `json:"overlap_name"`
	Sessions OverlapPair `json:"sessions"`
	Windows  []Window    `json:"windows"`
	BucketStats
}

// bucket accumulates trades in chronological order.
type bucket struct {
	trades []journal.TradeRecord
	pnl    decimal.Decimal
	wins   int
	losses int
}

func (b *bucket) add(t journal.TradeRecord) {
	b.trades = append(b.trades, t)
	b.pnl = b.pnl.Add(t.Profit)
	switch t.Profit.Sign() {
	case 1:
		b.wins++
	case -1:
		b.losses++
	}
}

func (b *bucket) count() int { return len(b.trades) }

func (b *bucket) stats() BucketStats {
	n := b.count()
	return BucketStats{
		TotalTrades: n,
		Wins:        b.wins,
		Losses:      b.losses,
		WinRate:     float64(b.wins) / float64(n),
		LossRate:    float64(b.losses) / float64(n),
		TotalPnL:    b.pnl,
		AvgPnL:      mean(b.pnl, n),
	}
}

// TimeOptions configures the windows and rates a TimePatternAnalyzer uses.
type TimeOptions struct {
	Sessions []Session
	Periods  []Session
	Overlaps []OverlapPair
	// RiskFreeRate is annual; it is spread over 252 trading days.
	RiskFreeRate float64
	// CapitalBase turns a trade's profit into a return.
	CapitalBase decimal.Decimal
}

type TimeOption func(*TimeOptions)

func WithSessions(s []Session) TimeOption { return func(o *TimeOptions) { o.Sessions = s } }
func WithPeriods(p []Session) TimeOption { return func(o *TimeOptions) { o.Periods = p } }
func WithOverlaps(p []OverlapPair) TimeOption { return func(o *TimeOptions) { o.Overlaps = p } }
func WithRiskFreeRate(r float64) TimeOption { return func(o *TimeOptions) { o.RiskFreeRate = r } }
func WithCapitalBase(c decimal.Decimal) TimeOption { return func(o *TimeOptions) { o.CapitalBase = c } }

func DefaultTimeOptions() TimeOptions {
	return TimeOptions{
		Sessions:     DefaultSessions(),
		Periods:      DefaultPeriods(),
		Overlaps:     DefaultOverlaps(),
		RiskFreeRate: 0.02,
		CapitalBase:  DefaultInitialBalance,
	}
}

// TimePatternResult is everything the analyzer computes, for reporting.
type TimePatternResult struct {
	ByHour    map[int]BucketStats    `json:"by_hour"`
	ByWeekday map[int]BucketStats    `json:"by_weekday"`
	ByMonth   map[int]BucketStats    `json:"by_month"`
	BySession map[string]BucketStats `json:"by_session"`
	ByPeriod  map[string]BucketStats `json:"by_period"`

	PeakHours    []HourPerformance   `json:"peak_hours"`
	WorstHours   []HourPerformance   `json:"worst_hours"`
	BestWeekday  *WeekdayPerformance `json:"best_weekday,omitempty"`
	WorstWeekday *WeekdayPerformance `json:"worst_weekday,omitempty"`
	BestMonth    *MonthPerformance   `json:"best_month,omitempty"`
	WorstMonth   *MonthPerformance   `json:"worst_month,omitempty"`

	Overlaps    []OverlapStats               `json:"session_overlaps"`
	BestOverlap *OverlapStats                `json:"best_overlap,omitempty"`
	Volatility  map[string]SessionVolatility `json:"volatility"`
	Risk        RiskView                     `json:"risk"`

	Recommendations []string  `json:"recommendations"`
	Sessions        []Session `json:"sessions"`
}

// TimePatternAnalyzer buckets closed trades by the hour, weekday, month,
// session and period of their close time (UTC).
type TimePatternAnalyzer struct {
	opts   TimeOptions
	closed []journal.TradeRecord

	hours    [24]bucket
	weekdays [7]bucket
	months   [12]bucket
	sessions map[string]*bucket
	periods  map[string]*bucket
	overlaps []overlapBucket

	peakHours    []HourPerformance
	worstHours   []HourPerformance
	bestWeekday  *WeekdayPerformance
	worstWeekday *WeekdayPerformance
	bestMonth    *MonthPerformance
	worstMonth   *MonthPerformance
	overlapStats []OverlapStats
	bestOverlap  *OverlapStats
	volatility   map[string]SessionVolatility
	risk         RiskView
}

type overlapBucket struct {
	pair    OverlapPair
	windows []Window
	bucket
}

func NewTimePatternAnalyzer(trades []journal.TradeRecord, opts ...TimeOption) *TimePatternAnalyzer {
	o := DefaultTimeOptions()
	for _, fn := range opts {
		fn(&o)
	}

	ta := &TimePatternAnalyzer{
		opts:     o,
		closed:   chronological(trades),
		sessions: map[string]*bucket{},
		periods:  map[string]*bucket{},
	}
	ta.overlaps = ta.resolveOverlaps()

	for _, t := range ta.closed {
		ta.addTrade(t)
	}

	ta.findExtremes()
	ta.analyzeOverlaps()
	ta.volatility = ta.computeVolatility()
	ta.risk = ta.computeRisk()
	return ta
}

func (ta *TimePatternAnalyzer) resolveOverlaps() []overlapBucket {
	byName := make(map[string]Window, len(ta.opts.Sessions))
	for _, s := range ta.opts.Sessions {
		byName[s.Name] = s.Window
	}

	var out []overlapBucket
	for _, pair := range ta.opts.Overlaps {
		a, okA := byName[pair.A]
		b, okB := byName[pair.B]
		if !okA || !okB {
			continue
		}
		out = append(out, overlapBucket{pair: pair, windows: Intersect(a, b)})
	}
	return out
}

func (ta *TimePatternAnalyzer) addTrade(t journal.TradeRecord) {
	ct := t.CloseTime.UTC()

	ta.hours[ct.Hour()].add(t)
	ta.weekdays[(int(ct.Weekday())+6)%7].add(t)
	ta.months[int(ct.Month())-1].add(t)

	for _, s := range ta.opts.Sessions {
		if s.Contains(ct) {
			bucketFor(ta.sessions, s.Name).add(t)
		}
	}

	for _, p := range ta.opts.Periods {
		if p.Contains(ct) {
			bucketFor(ta.periods, p.Name).add(t)
			break
		}
	}

	for i := range ta.overlaps {
		ob := &ta.overlaps[i]
		for _, w := range ob.windows {
			if w.Contains(ct) {
				ob.add(t)
				break
			}
		}
	}
}

func bucketFor(m map[string]*bucket, key string) *bucket {
	b, ok := m[key]
	if !ok {
		b = &bucket{}
		m[key] = b
	}
	return b
}

// better ranks by win rate, then average pnl.
func better(a, b BucketStats) bool {
	if a.WinRate != b.WinRate {
		return a.WinRate > b.WinRate
	}
	return a.AvgPnL.GreaterThan(b.AvgPnL)
}

func worse(a, b BucketStats) bool {
	if a.WinRate != b.WinRate {
		return a.WinRate < b.WinRate
	}
	return a.AvgPnL.LessThan(b.AvgPnL)
}

func (ta *TimePatternAnalyzer) findExtremes() {
	for h := range ta.hours {
		if ta.hours[h].count() >= minHourTrades {
			ta.peakHours = append(ta.peakHours, HourPerformance{Hour: h, BucketStats: ta.hours[h].stats()})
		}
	}
	sort.SliceStable(ta.peakHours, func(i, j int) bool {
		return better(ta.peakHours[i].BucketStats, ta.peakHours[j].BucketStats)
	})

	for _, hp := range ta.peakHours {
		if hp.AvgPnL.IsNegative() {
			ta.worstHours = append(ta.worstHours, hp)
		}
	}
	sort.SliceStable(ta.worstHours, func(i, j int) bool {
		return worse(ta.worstHours[i].BucketStats, ta.worstHours[j].BucketStats)
	})

	for d := range ta.weekdays {
		if ta.weekdays[d].count() < minDayTrades {
			continue
		}
		wp := &WeekdayPerformance{Weekday: d, Name: weekdayNames[d], BucketStats: ta.weekdays[d].stats()}
		if ta.bestWeekday == nil || better(wp.BucketStats, ta.bestWeekday.BucketStats) {
			ta.bestWeekday = wp
		}
		if ta.worstWeekday == nil || worse(wp.BucketStats, ta.worstWeekday.BucketStats) {
			ta.worstWeekday = wp
		}
	}

	for m := range ta.months {
		if ta.months[m].count() < minDayTrades {
			continue
		}
		mp := &MonthPerformance{Month: m + 1, Name: monthNames[m], BucketStats: ta.months[m].stats()}
		if ta.bestMonth == nil || better(mp.BucketStats, ta.bestMonth.BucketStats) {
			ta.bestMonth = mp
		}
		if ta.worstMonth == nil || worse(mp.BucketStats, ta.worstMonth.BucketStats) {
			ta.worstMonth = mp
		}
	}
}

func (ta *TimePatternAnalyzer) analyzeOverlaps() {
	ta.overlapStats = []OverlapStats{}
	for _, ob := range ta.overlaps {
		if ob.count() == 0 {
			continue
		}
		ta.overlapStats = append(ta.overlapStats, OverlapStats{
			Name:        ob.pair.Name(),
			Sessions:    ob.pair,
			Windows:     ob.windows,
			BucketStats: ob.stats(),
		})
	}

	sort.SliceStable(ta.overlapStats, func(i, j int) bool {
		a, b := ta.overlapStats[i], ta.overlapStats[j]
		if a.TotalTrades != b.TotalTrades {
			return a.TotalTrades > b.TotalTrades
		}
		return better(a.BucketStats, b.BucketStats)
	})

	var bestScore float64
	for i := range ta.overlapStats {
		o := ta.overlapStats[i]
		if o.TotalTrades < minOverlapTrades {
			continue
		}
		score := o.WinRate * max(0.1, o.AvgPnL.InexactFloat64())
		if ta.bestOverlap == nil || score > bestScore {
			ta.bestOverlap = &o
			bestScore = score
		}
	}
}

func (ta *TimePatternAnalyzer) ByHour() map[int]BucketStats {
	out := map[int]BucketStats{}
	for h := range ta.hours {
		if ta.hours[h].count() > 0 {
			out[h] = ta.hours[h].stats()
		}
	}
	return out
}

// ByWeekday is keyed 0 (Monday) through 6 (Sunday).
func (ta *TimePatternAnalyzer) ByWeekday() map[int]BucketStats {
	out := map[int]BucketStats{}
	for d := range ta.weekdays {
		if ta.weekdays[d].count() > 0 {
			out[d] = ta.weekdays[d].stats()
		}
	}
	return out
}

// ByMonth is keyed 1 through 12.
func (ta *TimePatternAnalyzer) ByMonth() map[int]BucketStats {
	out := map[int]BucketStats{}
	for m := range ta.months {
		if ta.months[m].count() > 0 {
			out[m+1] = ta.months[m].stats()
		}
	}
	return out
}

func (ta *TimePatternAnalyzer) BySession() map[string]BucketStats {
	return namedStats(ta.sessions)
}

func (ta *TimePatternAnalyzer) ByPeriod() map[string]BucketStats {
	return namedStats(ta.periods)
}

func namedStats(m map[string]*bucket) map[string]BucketStats {
	out := make(map[string]BucketStats, len(m))
	for k, b := range m {
		out[k] = b.stats()
	}
	return out
}

// PeakHours returns up to limit hours with at least three trades, best first.
func (ta *TimePatternAnalyzer) PeakHours(limit int) []HourPerformance {
	return head(ta.peakHours, limit)
}

// WorstHours returns up to limit losing hours, worst first.
func (ta *TimePatternAnalyzer) WorstHours(limit int) []HourPerformance {
	return head(ta.worstHours, limit)
}

func head[T any](s []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if n > len(s) {
		n = len(s)
	}
	return append([]T{}, s[:n]...)
}

func (ta *TimePatternAnalyzer) BestWeekday() *WeekdayPerformance { return clonePtr(ta.bestWeekday) }
func (ta *TimePatternAnalyzer) WorstWeekday() *WeekdayPerformance { return clonePtr(ta.worstWeekday) }
func (ta *TimePatternAnalyzer) BestMonth() *MonthPerformance { return clonePtr(ta.bestMonth) }
func (ta *TimePatternAnalyzer) WorstMonth() *MonthPerformance { return clonePtr(ta.worstMonth) }

// SessionOverlaps lists overlaps with at least one trade, busiest first.
func (ta *TimePatternAnalyzer) SessionOverlaps() []OverlapStats {
	out := slices.Clone(ta.overlapStats)
	for i := range out {
		out[i].Windows = slices.Clone(out[i].Windows)
	}
	return out
}

func (ta *TimePatternAnalyzer) BestSessionOverlap() *OverlapStats {
	if ta.bestOverlap == nil {
		return nil
	}
	o := *ta.bestOverlap
	o.Windows = slices.Clone(o.Windows)
	return &o
}

func (ta *TimePatternAnalyzer) Volatility() map[string]SessionVolatility {
	return maps.Clone(ta.volatility)
}

func (ta *TimePatternAnalyzer) RiskMetrics() RiskView {
	rv := ta.risk
	rv.ByHour = maps.Clone(rv.ByHour)
	rv.BySession = maps.Clone(rv.BySession)
	return rv
}

func (ta *TimePatternAnalyzer) Sessions() []Session {
	return slices.Clone(ta.opts.Sessions)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (ta *TimePatternAnalyzer) Result() TimePatternResult {
	return TimePatternResult{
		ByHour:       ta.ByHour(),
		ByWeekday:    ta.ByWeekday(),
		ByMonth:      ta.ByMonth(),
		BySession:    ta.BySession(),
		ByPeriod:     ta.ByPeriod(),
		PeakHours:    ta.PeakHours(defaultTopN),
		WorstHours:   ta.WorstHours(defaultTopN),
		BestWeekday:  ta.BestWeekday(),
		WorstWeekday: ta.WorstWeekday(),
		BestMonth:    ta.BestMonth(),
		WorstMonth:   ta.WorstMonth(),
		Overlaps:     ta.SessionOverlaps(),
		BestOverlap:  ta.BestSessionOverlap(),
		Volatility:   ta.Volatility(),
		Risk:         ta.RiskMetrics(),

		Recommendations: ta.Recommendations(),
		Sessions:        ta.Sessions(),
	}
}
