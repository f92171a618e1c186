package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/tradestats/journal"
	"github.com/rustyeddy/tradestats/risk"
	"github.com/shopspring/decimal"
)

// Grades in descending order.
var Grades = []string{"A", "B", "C", "D", "F"}

// LetterGrade maps a 0-100 score to A-F. Boundaries are inclusive.
func LetterGrade(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

type PerformanceScore struct {
	OverallScore      float64            `json:"overall_score"`
	LetterGrade       string             `json:"letter_grade"`
	WinRateScore      float64            `json:"win_rate_score"`
	RiskScore         float64            `json:"risk_score"`
	ProfitFactorScore float64            `json:"profit_factor_score"`
	Recommendations   []string           `json:"recommendations"`
	Strengths         []string           `json:"strengths"`
	Weaknesses        []string           `json:"weaknesses"`
	Breakdown         map[string]float64 `json:"score_breakdown"`
}

type TradeGrade struct {
	TradeID   string             `json:"trade_id"`
	Symbol    string             `json:"symbol"`
	Grade     string             `json:"grade"`
	Score     float64            `json:"score"`
	Breakdown map[string]float64 `json:"breakdown"`
	Feedback  []string           `json:"feedback"`
	Summary   string             `json:"summary"`
}

type GradeCount struct {
	Count int     `json:"count"`
	Pct   float64 `json:"pct"`
}

// PerformanceScorer weighs win rate, risk management and profit factor into a
// single score, and grades trades against the rest of the portfolio.
type PerformanceScorer struct {
	trades []journal.TradeRecord
	stats  StatsResult

	maxWin  decimal.Decimal
	maxLoss decimal.Decimal
}

func NewPerformanceScorer(trades []journal.TradeRecord) *PerformanceScorer {
	ps := &PerformanceScorer{
		trades:  trades,
		stats:   NewBasicStats(trades).Result(),
		maxWin:  decimal.NewFromInt(100),
		maxLoss: decimal.NewFromInt(100),
	}

	var haveWin, haveLoss bool
	for _, t := range trades {
		if !t.IsClosed() {
			continue
		}
		switch t.Profit.Sign() {
		case 1:
			if !haveWin || t.Profit.GreaterThan(ps.maxWin) {
				ps.maxWin, haveWin = t.Profit, true
			}
		case -1:
			if l := t.Profit.Abs(); !haveLoss || l.GreaterThan(ps.maxLoss) {
				ps.maxLoss, haveLoss = l, true
			}
		}
	}
	return ps
}

func (ps *PerformanceScorer) Stats() StatsResult {
	return ps.stats
}

// OverallScore is 40% win rate, 30% risk management and 30% profit factor.
// With no closed trades every score is zero.
func (ps *PerformanceScorer) OverallScore() PerformanceScore {
	if ps.stats.ClosedTrades == 0 {
		return PerformanceScore{
			LetterGrade:     LetterGrade(0),
			Recommendations: []string{},
			Strengths:       []string{},
			Weaknesses:      []string{},
			Breakdown: map[string]float64{
				"win_rate":        0,
				"risk_management": 0,
				"profit_factor":   0,
			},
		}
	}

	wr := ps.winRateScore()
	rm := ps.riskScore()
	pf := ps.profitFactorScore()
	overall := wr*0.4 + rm*0.3 + pf*0.3

	recs, strengths, weaknesses := ps.insights()
	return PerformanceScore{
		OverallScore:      round2(overall),
		LetterGrade:       LetterGrade(overall),
		WinRateScore:      round2(wr),
		RiskScore:         round2(rm),
		ProfitFactorScore: round2(pf),
		Recommendations:   recs,
		Strengths:         strengths,
		Weaknesses:        weaknesses,
		Breakdown: map[string]float64{
			"win_rate":        wr,
			"risk_management": rm,
			"profit_factor":   pf,
		},
	}
}

func (ps *PerformanceScorer) winRateScore() float64 {
	wr := ps.stats.WinRate
	switch {
	case wr >= 0.6:
		return math.Min(100, 90+(wr-0.6)*100)
	case wr >= 0.5:
		return 70 + (wr-0.5)/0.1*20
	case wr >= 0.4:
		return 50 + (wr-0.4)/0.1*20
	default:
		return 30 + wr/0.4*20
	}
}

// profitFactor reads an undefined ratio (no losses) as +Inf, so it ranks
// above any finite factor.
func (ps *PerformanceScorer) profitFactor() float64 {
	if ps.stats.ProfitFactor.Defined() {
		return ps.stats.ProfitFactor.Value()
	}
	return math.Inf(1)
}

func (ps *PerformanceScorer) profitFactorScore() float64 {
	pf := ps.profitFactor()
	switch {
	case pf >= 2.0:
		return math.Min(100, 90+(pf-2.0)/2.0*10)
	case pf >= 1.5:
		return 70 + (pf-1.5)/0.5*20
	case pf >= 1.2:
		return 50 + (pf-1.2)/0.3*20
	default:
		return math.Max(10, pf*30)
	}
}

// rewardRisk is avg win over avg loss; with no losses it is +Inf.
func (ps *PerformanceScorer) rewardRisk() float64 {
	if ps.stats.AvgLoss.IsZero() {
		return math.Inf(1)
	}
	return ps.stats.AvgWin.Div(ps.stats.AvgLoss).InexactFloat64()
}

func (ps *PerformanceScorer) riskScore() float64 {
	e := ps.stats.Expectancy.InexactFloat64()

	score := 50.0
	switch {
	case e > 0:
		score = 50 + math.Min(math.Min(e/100, 1)*50, 50)
	case e < 0:
		score = math.Max(10, 50+e*0.1)
	}

	switch rr := ps.rewardRisk(); {
	case rr >= 2.0:
		score += 20
	case rr >= 1.5:
		score += 10
	case rr >= 1.0:
		score += 5
	default:
		score -= 10
	}
	return clamp(0, 100, score)
}

// insights returns recommendations, strengths and weaknesses, each without
// duplicates and in rule order.
func (ps *PerformanceScorer) insights() (recs, strengths, weaknesses []string) {
	var r, s, w insightList
	st := ps.stats

	switch {
	case st.WinRate >= 0.6:
		s.add("Excellent win rate (>60%)")
	case st.WinRate >= 0.5:
		s.add("Good win rate (>50%)")
	case st.WinRate >= 0.4:
		w.add("Win rate could be improved (try to exceed 50%)")
		r.add("Focus on entry criteria to improve win rate")
	default:
		w.add("Low win rate (<40%)")
		r.add("Analyze entry/exit strategies to improve win rate")
	}

	switch pf := ps.profitFactor(); {
	case pf >= 2.0:
		s.add("Strong profit factor (>2.0)")
	case pf >= 1.5:
		s.add("Decent profit factor")
	default:
		w.add("Low profit factor (<1.5)")
		r.add("Improve profit factor by increasing winners or reducing losers")
	}

	if st.Expectancy.IsPositive() {
		s.add("Positive expectancy (profitable over time)")
	} else {
		w.add("Negative expectancy (unprofitable over time)")
		r.add("Work on improving expectancy through risk management")
	}

	if st.AvgWin.IsPositive() && st.AvgLoss.IsPositive() {
		rr := ps.rewardRisk()
		switch {
		case rr >= 2.0:
			s.add(fmt.Sprintf("Excellent risk-reward ratio (%.2f:1)", rr))
		case rr >= 1.5:
			s.add(fmt.Sprintf("Good risk-reward ratio (%.2f:1)", rr))
		default:
			w.add(fmt.Sprintf("Room for improvement in risk-reward ratio (%.2f:1)", rr))
			r.add("Consider adjusting stop-losses and take-profit levels")
		}
	}

	switch {
	case st.MaxDrawdown <= 10:
		s.add("Well-controlled drawdown")
	case st.MaxDrawdown <= 20:
		w.add("Moderate drawdown - monitor closely")
	default:
		w.add(fmt.Sprintf("High drawdown (%.1f%%)", st.MaxDrawdown))
		r.add("Implement stricter risk controls to reduce drawdown")
	}

	return r.list(), s.list(), w.list()
}

type insightList struct {
	items []string
	seen  map[string]bool
}

func (l *insightList) add(s string) {
	if l.seen == nil {
		l.seen = map[string]bool{}
	}
	if l.seen[s] {
		return
	}
	l.seen[s] = true
	l.items = append(l.items, s)
}

func (l *insightList) list() []string {
	if l.items == nil {
		return []string{}
	}
	return l.items
}

// GradeTrade scores one trade out of 100: profitability relative to the
// portfolio's largest win or loss, a holding-time bonus and a bonus for the
// planned stop/target ratio.
func (ps *PerformanceScorer) GradeTrade(t journal.TradeRecord) TradeGrade {
	profitScore := ps.profitabilityScore(t.Profit)
	durScore := durationScore(t)
	rrScore := setupScore(t)

	total := math.Min(100, profitScore+durScore+rrScore)
	grade := LetterGrade(total)

	var feedback []string
	switch t.Profit.Sign() {
	case 1:
		feedback = append(feedback, fmt.Sprintf("Profitable trade with $%s gain", t.Profit.StringFixed(2)))
	case -1:
		feedback = append(feedback, fmt.Sprintf("Losing trade with $%s loss", t.Profit.Abs().StringFixed(2)))
	default:
		feedback = append(feedback, "Breakeven trade")
	}
	if rrScore > 0 {
		feedback = append(feedback, "Good risk-reward setup")
	}

	return TradeGrade{
		TradeID: t.TradeID,
		Symbol:  t.Symbol,
		Grade:   grade,
		Score:   round2(total),
		Breakdown: map[string]float64{
			"profitability": profitScore,
			"duration":      durScore,
			"risk_reward":   rrScore,
		},
		Feedback: feedback,
		Summary:  fmt.Sprintf("%s %s - %s Grade (%.1f/100)", t.Direction, t.Symbol, grade, total),
	}
}

func (ps *PerformanceScorer) profitabilityScore(profit decimal.Decimal) float64 {
	switch profit.Sign() {
	case 1:
		return math.Min(100, profit.Div(ps.maxWin).InexactFloat64()*70+30)
	case -1:
		return math.Max(0, 50-profit.Abs().Div(ps.maxLoss).InexactFloat64()*50)
	default:
		return 50
	}
}

func durationScore(t journal.TradeRecord) float64 {
	d, ok := t.Duration()
	if !ok || d <= 0 {
		return 0
	}
	hours := d.Hours()

	if t.Profit.IsPositive() {
		switch {
		case hours >= 1 && hours <= 8:
			return 10
		case hours >= 0.5 && hours < 1, hours > 8 && hours <= 24:
			return 5
		default:
			return 0
		}
	}

	switch {
	case d <= 2*time.Hour:
		return 5
	case d <= 8*time.Hour:
		return 2
	default:
		return 0
	}
}

// setupScore rewards a take-profit distance that is a multiple of the
// stop-loss distance. Both levels must be set.
func setupScore(t journal.TradeRecord) float64 {
	if !t.StopLoss.Valid || !t.TakeProfit.Valid {
		return 0
	}
	rr := risk.RR(t.OpenPrice, t.StopLoss.Decimal, t.TakeProfit.Decimal).InexactFloat64()
	switch {
	case rr >= 2:
		return 15
	case rr >= 1.5:
		return 10
	case rr >= 1:
		return 5
	default:
		return 0
	}
}

// GradeAll grades every closed trade in input order.
func (ps *PerformanceScorer) GradeAll() []TradeGrade {
	out := make([]TradeGrade, 0, len(ps.trades))
	for _, t := range ps.trades {
		if t.IsClosed() {
			out = append(out, ps.GradeTrade(t))
		}
	}
	return out
}

// GradeDistribution counts grades per letter. Every letter is present.
func GradeDistribution(grades []TradeGrade) map[string]GradeCount {
	out := make(map[string]GradeCount, len(Grades))
	for _, g := range Grades {
		out[g] = GradeCount{}
	}
	for _, g := range grades {
		c := out[g.Grade]
		c.Count++
		out[g.Grade] = c
	}
	if n := len(grades); n > 0 {
		for g, c := range out {
			c.Pct = float64(c.Count) / float64(n) * 100
			out[g] = c
		}
	}
	return out
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
