package analytics

import (
	"fmt"
	"sort"
)

const (
	noDataRecommendation    = "No recommendations - insufficient trade data."
	noPatternRecommendation = "Continue current trading schedule - no strong patterns detected."
)

// Recommendations turns the strongest time patterns into advice. The rules
// are fixed thresholds evaluated in order.
func (ta *TimePatternAnalyzer) Recommendations() []string {
	if len(ta.closed) == 0 {
		return []string{noDataRecommendation}
	}

	var recs []string

	if peak := ta.PeakHours(2); len(peak) >= 2 {
		h := peak[0]
		if h.WinRate >= 0.6 && h.TotalTrades >= 5 {
			recs = append(recs, fmt.Sprintf("Focus on trading during %02d:00 - %s win rate across %d trades.",
				h.Hour, pct(h.WinRate), h.TotalTrades))
		}
	}

	if worst := ta.WorstHours(2); len(worst) >= 1 {
		h := worst[0]
		if h.WinRate <= 0.4 && h.TotalTrades >= 5 {
			recs = append(recs, fmt.Sprintf("Avoid trading during %02d:00 - only %s win rate.", h.Hour, pct(h.WinRate)))
		}
	}

	if best, worst := ta.bestWeekday, ta.worstWeekday; best != nil && worst != nil {
		if best.WinRate >= 0.55 {
			recs = append(recs, fmt.Sprintf("%s is your strongest day - schedule important trades then.", best.Name))
		}
		if worst.WinRate <= 0.45 {
			recs = append(recs, fmt.Sprintf("Consider reducing trading activity on %s.", worst.Name))
		}
	}

	if name, wr, ok := ta.bestSession(); ok && wr >= 0.6 {
		recs = append(recs, fmt.Sprintf("%s session shows strong performance (%s win rate) - focus your trading there.",
			name, pct(wr)))
	}

	if o := ta.bestOverlap; o != nil && o.WinRate >= 0.6 {
		recs = append(recs, fmt.Sprintf("The %s is your best overlap window (%s win rate over %d trades).",
			o.Name, pct(o.WinRate), o.TotalTrades))
	}

	if hi, lo, ok := ta.riskExtremes(); ok {
		if r := ta.risk.BySession[hi]; r.RiskScore >= 70 {
			recs = append(recs, fmt.Sprintf("Reduce position size during the %s session - risk score %.0f.", hi, r.RiskScore))
		}
		if r := ta.risk.BySession[lo]; lo != hi && r.RiskScore <= 30 {
			recs = append(recs, fmt.Sprintf("The %s session carries the lowest risk (score %.0f).", lo, r.RiskScore))
		}
	}

	if len(recs) == 0 {
		return []string{noPatternRecommendation}
	}
	return recs
}

// bestSession picks the session with at least five trades and the highest win
// rate. Names are scanned in order so ties resolve the same way every run.
func (ta *TimePatternAnalyzer) bestSession() (string, float64, bool) {
	var (
		best   string
		bestWR float64
		found  bool
	)
	for _, name := range sortedKeys(ta.sessions) {
		b := ta.sessions[name]
		if b.count() < 5 {
			continue
		}
		if wr := b.stats().WinRate; wr > bestWR {
			best, bestWR, found = name, wr, true
		}
	}
	return best, bestWR, found
}

func (ta *TimePatternAnalyzer) riskExtremes() (hi, lo string, ok bool) {
	names := sortedKeys(ta.risk.BySession)
	if len(names) == 0 {
		return "", "", false
	}

	hi, lo = names[0], names[0]
	for _, name := range names[1:] {
		s := ta.risk.BySession[name].RiskScore
		if s > ta.risk.BySession[hi].RiskScore {
			hi = name
		}
		if s < ta.risk.BySession[lo].RiskScore {
			lo = name
		}
	}
	return hi, lo, true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func pct(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}
