package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/rustyeddy/tradestats/journal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// closes returns one trade per entry, each closing at day+offset.
func closes(day time.Time, profit string, offsets ...time.Duration) []journal.TradeRecord {
	out := make([]journal.TradeRecord, len(offsets))
	for i, off := range offsets {
		ct := day.Add(off)
		out[i] = trade(fmt.Sprintf("%s-%d", ct.Format("0102T1504"), i), ct, profit)
	}
	return out
}

func hm(h, m int) time.Duration {
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
}

func TestTimePatternOverlappingSessions(t *testing.T) {
	t.Parallel()

	ta := NewTimePatternAnalyzer(closes(base, "25", hm(14, 0)))

	sessions := ta.BySession()
	require.Len(t, sessions, 3)
	for _, name := range []string{"London", "New_York", "London_NY_Overlap"} {
		assert.Equal(t, 1, sessions[name].TotalTrades, name)
	}

	overlaps := ta.SessionOverlaps()
	require.Len(t, overlaps, 1)
	assert.Equal(t, "London/New_York Overlap", overlaps[0].Name)
	assert.Equal(t, 1, overlaps[0].TotalTrades)
	assert.Equal(t, []Window{NewWindow(13, 0, 16, 0)}, overlaps[0].Windows)
	assert.Nil(t, ta.BestSessionOverlap())

	periods := ta.ByPeriod()
	require.Len(t, periods, 1)
	assert.Equal(t, 1, periods["midday"].TotalTrades)

	hours := ta.ByHour()
	require.Contains(t, hours, 14)
	assert.Len(t, hours, 1)

	// 2024-01-10 is a Wednesday.
	assert.Contains(t, ta.ByWeekday(), 2)
	assert.Contains(t, ta.ByMonth(), 1)
}

func TestTimePatternBucketStats(t *testing.T) {
	t.Parallel()

	trades := append(closes(base, "30", hm(9, 0), hm(9, 15)), closes(base, "-15", hm(9, 30))...)
	trades = append(trades, closes(base, "0", hm(9, 45))...)
	trades = append(trades, openTrade("open", base.Add(hm(9, 50))))

	b := NewTimePatternAnalyzer(trades).ByHour()[9]

	assert.Equal(t, 4, b.TotalTrades)
	assert.Equal(t, 2, b.Wins)
	assert.Equal(t, 1, b.Losses)
	assert.InDelta(t, 0.5, b.WinRate, 1e-9)
	assert.InDelta(t, 0.25, b.LossRate, 1e-9)
	assertDec(t, "45", b.TotalPnL)
	assertDec(t, "11.25", b.AvgPnL)
}

func TestTimePatternPeakAndWorstHours(t *testing.T) {
	t.Parallel()

	var trades []journal.TradeRecord
	trades = append(trades, closes(base, "10", hm(3, 0), hm(3, 10), hm(3, 20))...)
	trades = append(trades, closes(base, "10", hm(4, 0), hm(4, 10), hm(4, 20))...)
	trades = append(trades, closes(base, "10", hm(9, 0), hm(9, 10))...)
	trades = append(trades, closes(base, "-5", hm(9, 20))...)
	trades = append(trades, closes(base, "20", hm(15, 0), hm(15, 10), hm(15, 20))...)
	trades = append(trades, closes(base, "-10", hm(20, 0), hm(20, 10), hm(20, 20))...)
	trades = append(trades, closes(base, "-50", hm(22, 0), hm(22, 10))...)

	ta := NewTimePatternAnalyzer(trades)

	var hours []int
	for _, h := range ta.PeakHours(10) {
		hours = append(hours, h.Hour)
	}
	// Hour 15 wins on average pnl, 3 and 4 tie and keep clock order, 22
	// has too few trades.
	assert.Equal(t, []int{15, 3, 4, 9, 20}, hours)

	assert.Len(t, ta.PeakHours(2), 2)
	assert.Empty(t, ta.PeakHours(0))

	worst := ta.WorstHours(5)
	require.Len(t, worst, 1)
	assert.Equal(t, 20, worst[0].Hour)
}

func TestTimePatternBestWorstWeekday(t *testing.T) {
	t.Parallel()

	monday := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)
	wednesday := monday.AddDate(0, 0, 2)

	var trades []journal.TradeRecord
	trades = append(trades, closes(monday, "10", hm(9, 0), hm(10, 0), hm(11, 0), hm(12, 0), hm(13, 0))...)
	trades = append(trades, closes(tuesday, "10", hm(9, 0))...)
	trades = append(trades, closes(tuesday, "-10", hm(10, 0), hm(11, 0), hm(12, 0), hm(13, 0))...)
	trades = append(trades, closes(wednesday, "-100", hm(9, 0), hm(10, 0), hm(11, 0), hm(12, 0))...)

	ta := NewTimePatternAnalyzer(trades)

	require.NotNil(t, ta.BestWeekday())
	assert.Equal(t, 0, ta.BestWeekday().Weekday)
	assert.Equal(t, "Monday", ta.BestWeekday().Name)

	require.NotNil(t, ta.WorstWeekday())
	assert.Equal(t, "Tuesday", ta.WorstWeekday().Name)

	require.NotNil(t, ta.BestMonth())
	assert.Equal(t, "Jan", ta.BestMonth().Name)
	assert.Equal(t, 1, ta.WorstMonth().Month)
	assert.Equal(t, 14, ta.BestMonth().TotalTrades)
}

func TestTimePatternBestOverlap(t *testing.T) {
	t.Parallel()

	ta := NewTimePatternAnalyzer(closes(base, "10", hm(14, 0), hm(14, 10), hm(14, 20)))

	best := ta.BestSessionOverlap()
	require.NotNil(t, best)
	assert.Equal(t, "London/New_York Overlap", best.Name)
	assert.Equal(t, 3, best.TotalTrades)
	assert.Equal(t, OverlapPair{A: "London", B: "New_York"}, best.Sessions)
}

func TestTimePatternAccessorsReturnCopies(t *testing.T) {
	t.Parallel()

	ta := NewTimePatternAnalyzer(closes(base, "10", hm(14, 0), hm(14, 10), hm(14, 20)))

	overlaps := ta.SessionOverlaps()
	require.NotEmpty(t, overlaps)
	require.NotEmpty(t, overlaps[0].Windows)
	overlaps[0].Name = "changed"
	overlaps[0].Windows[0] = Window{}
	assert.Equal(t, "London/New_York Overlap", ta.SessionOverlaps()[0].Name)
	assert.NotEqual(t, Window{}, ta.SessionOverlaps()[0].Windows[0])

	ta.BestSessionOverlap().TotalTrades = 99
	assert.Equal(t, 3, ta.BestSessionOverlap().TotalTrades)

	vol := ta.Volatility()
	delete(vol, "London")
	assert.Contains(t, ta.Volatility(), "London")

	risk := ta.RiskMetrics()
	delete(risk.BySession, "London")
	assert.Contains(t, ta.RiskMetrics().BySession, "London")

	sessions := ta.Sessions()
	sessions[0].Name = "changed"
	assert.Equal(t, "Asian", ta.Sessions()[0].Name)

	r := ta.Result()
	r.Overlaps[0].TotalTrades = 0
	assert.Equal(t, 3, ta.Result().Overlaps[0].TotalTrades)
}

func TestTimePatternCustomSessions(t *testing.T) {
	t.Parallel()

	tokyo := Session{Name: "Tokyo", Window: NewWindow(23, 0, 8, 0)}
	ta := NewTimePatternAnalyzer(
		closes(base, "10", hm(23, 30), hm(2, 0), hm(12, 0)),
		WithSessions([]Session{tokyo}),
	)

	sessions := ta.BySession()
	require.Len(t, sessions, 1)
	assert.Equal(t, 2, sessions["Tokyo"].TotalTrades)
	assert.Empty(t, ta.SessionOverlaps())
	assert.Equal(t, []Session{tokyo}, ta.Sessions())
}

func TestTimePatternVolatility(t *testing.T) {
	t.Parallel()

	var trades []journal.TradeRecord
	for i, p := range []string{"10", "20", "30", "40"} {
		trades = append(trades, closes(base, p, hm(9+i, 0))...)
	}

	vol := NewTimePatternAnalyzer(trades).Volatility()

	require.Contains(t, vol, "London")
	assert.NotContains(t, vol, "New_York")

	v := vol["London"]
	assert.Equal(t, 4, v.TotalTrades)
	assert.Equal(t, 10.0, v.MinPnL)
	assert.Equal(t, 40.0, v.MaxPnL)
	assert.Equal(t, 30.0, v.Range)
	assert.InDelta(t, 12.9099, v.StdDev, 1e-4)
	assert.InDelta(t, 17.5, v.Q1, 1e-9)
	assert.InDelta(t, 32.5, v.Q3, 1e-9)
	assert.Equal(t, 4, v.MaxWinStreak)
	assert.Zero(t, v.MaxLossStreak)
	assert.Equal(t, 1.0, v.ConsistencyScore)

	// Returns of 0.1%..0.4% on 10,000 against a 2% annual rate.
	risk := NewTimePatternAnalyzer(trades).RiskMetrics()
	require.True(t, risk.Overall.SharpeRatio.Defined())
	assert.InDelta(t, 29.765, risk.Overall.SharpeRatio.Value(), 1e-3)
	assert.InDelta(t, 29.765, risk.BySession["London"].SharpeRatio.Value(), 1e-3)

	halfCapital := NewTimePatternAnalyzer(trades, WithCapitalBase(dec("5000")), WithRiskFreeRate(0)).RiskMetrics()
	// Doubling every return leaves mean/sd unchanged, so only the risk-free term moves.
	assert.InDelta(t, 30.7409, halfCapital.Overall.SharpeRatio.Value(), 1e-3)
}

func TestQuantile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		data []float64
		p    float64
		want float64
	}{
		{[]float64{5}, 0.25, 5},
		{[]float64{1, 2, 3, 4, 5}, 0.25, 2},
		{[]float64{1, 2, 3, 4, 5}, 0.75, 4},
		{[]float64{10, 20, 30, 40}, 0.25, 17.5},
		{[]float64{10, 20, 30, 40}, 0.75, 32.5},
		{nil, 0.5, 0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, quantile(tt.data, tt.p), 1e-9, "%v p=%v", tt.data, tt.p)
	}
}

func TestTimePatternConsistencyZeroMean(t *testing.T) {
	t.Parallel()

	trades := append(closes(base, "10", hm(9, 0)), closes(base, "-10", hm(10, 0))...)

	v := NewTimePatternAnalyzer(trades).Volatility()["London"]
	assert.Zero(t, v.ConsistencyScore)
	assert.Equal(t, 1, v.MaxWinStreak)
	assert.Equal(t, 1, v.MaxLossStreak)
}

func TestTimePatternRisk(t *testing.T) {
	t.Parallel()

	ta := NewTimePatternAnalyzer(series(base, "100", "50"))
	risk := ta.RiskMetrics()

	assert.Empty(t, risk.ByHour)
	assert.Equal(t, 2, risk.Overall.TotalTrades)
	assert.Equal(t, 1.0, risk.Overall.WinRate)
	assert.InDelta(t, 0.5, risk.Overall.MaxDrawdown, 1e-9)
	assert.False(t, risk.Overall.ProfitFactor.Defined())
	require.True(t, risk.Overall.SharpeRatio.Defined())
	assert.InDelta(t, 33.3186, risk.Overall.SharpeRatio.Value(), 1e-3)
	assert.InDelta(t, 20.0, risk.Overall.RiskScore, 1e-9)
}

func TestTimePatternSharpeUndefinedWithoutVariance(t *testing.T) {
	t.Parallel()

	risk := NewTimePatternAnalyzer(closes(base, "10", hm(9, 0), hm(9, 10), hm(9, 20))).RiskMetrics()

	require.Contains(t, risk.ByHour, 9)
	assert.False(t, risk.ByHour[9].SharpeRatio.Defined())
	assert.False(t, risk.Overall.SharpeRatio.Defined())
	assert.Contains(t, risk.BySession, "London")
}

func TestTimePatternRecommendations(t *testing.T) {
	t.Parallel()

	trades := append(
		closes(base, "20", hm(10, 0), hm(10, 5), hm(10, 10), hm(10, 15), hm(10, 20)),
		closes(base, "-15", hm(18, 0), hm(18, 5), hm(18, 10), hm(18, 15), hm(18, 20))...,
	)

	recs := NewTimePatternAnalyzer(trades).Recommendations()

	assert.Equal(t, []string{
		"Focus on trading during 10:00 - 100.0% win rate across 5 trades.",
		"Avoid trading during 18:00 - only 0.0% win rate.",
		"London session shows strong performance (100.0% win rate) - focus your trading there.",
		"The London session carries the lowest risk (score 18).",
	}, recs)
}

func TestTimePatternRiskScoreRecommendations(t *testing.T) {
	t.Parallel()

	trades := append(
		closes(base, "-20", hm(2, 0), hm(2, 10), hm(2, 20)),
		closes(base, "20", hm(9, 0), hm(9, 10), hm(9, 20))...,
	)

	ta := NewTimePatternAnalyzer(trades)
	risk := ta.RiskMetrics().BySession
	assert.InDelta(t, 70.0, risk["Asian"].RiskScore, 1e-9)
	assert.InDelta(t, 20.0, risk["London"].RiskScore, 1e-9)

	assert.Equal(t, []string{
		"Reduce position size during the Asian session - risk score 70.",
		"The London session carries the lowest risk (score 20).",
	}, ta.Recommendations())
}

func TestTimePatternRecommendationsFallback(t *testing.T) {
	t.Parallel()

	recs := NewTimePatternAnalyzer(series(base, "10", "-10")).Recommendations()
	assert.Equal(t, []string{noPatternRecommendation}, recs)
}

func TestTimePatternEmpty(t *testing.T) {
	t.Parallel()

	ta := NewTimePatternAnalyzer(nil)

	assert.Empty(t, ta.ByHour())
	assert.Empty(t, ta.ByWeekday())
	assert.Empty(t, ta.ByMonth())
	assert.Empty(t, ta.BySession())
	assert.Empty(t, ta.ByPeriod())
	assert.Empty(t, ta.PeakHours(5))
	assert.Empty(t, ta.WorstHours(5))
	assert.Nil(t, ta.BestWeekday())
	assert.Nil(t, ta.WorstMonth())
	assert.Empty(t, ta.SessionOverlaps())
	assert.Nil(t, ta.BestSessionOverlap())
	assert.Empty(t, ta.Volatility())
	assert.Zero(t, ta.RiskMetrics().Overall.TotalTrades)
	assert.Equal(t, []string{noDataRecommendation}, ta.Recommendations())

	res := ta.Result()
	assert.NotNil(t, res.Overlaps)
	assert.Len(t, res.Sessions, 4)
}
