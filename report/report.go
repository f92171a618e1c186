// Package report bundles one analysis run of a trade journal and renders it
// as plain text, an Org-mode entry or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rustyeddy/tradestats/analytics"
	"github.com/rustyeddy/tradestats/journal"
	"github.com/rustyeddy/tradestats/pkg/id"
	"github.com/shopspring/decimal"
)

const topDrawdowns = 5

// AnalysisRun is the full output of analyzing a set of trades.
type AnalysisRun struct {
	RunID   string    `json:"run_id"`
	Created time.Time `json:"created"`
	Source  string    `json:"source"`

	// First open and last close across the analyzed trades.
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	StartBalance decimal.Decimal `json:"start_balance"`
	EndBalance   decimal.Decimal `json:"end_balance"`
	ReturnPct    float64         `json:"return_pct"`

	Stats        analytics.StatsResult           `json:"stats"`
	Drawdown     analytics.DrawdownResult        `json:"drawdown"`
	TopDrawdowns []analytics.DrawdownPeriod      `json:"top_drawdowns"`
	Time         analytics.TimePatternResult     `json:"time_patterns"`
	Score        analytics.PerformanceScore      `json:"score"`
	Grades       []analytics.TradeGrade          `json:"grades,omitempty"`
	Distribution map[string]analytics.GradeCount `json:"grade_distribution"`
}

// Options tune a run. The zero value uses the analytics defaults.
type Options struct {
	Source         string
	InitialBalance decimal.Decimal
	TimeOptions    []analytics.TimeOption
	IncludeGrades  bool
	Now            func() time.Time
}

// New runs every analyzer over trades.
func New(trades []journal.TradeRecord, opts Options) *AnalysisRun {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	balance := opts.InitialBalance
	if !balance.IsPositive() {
		balance = analytics.DefaultInitialBalance
	}

	created := now().UTC()
	run := &AnalysisRun{
		RunID:        id.NewAt(created),
		Created:      created,
		Source:       opts.Source,
		StartBalance: balance,
	}
	run.Start, run.End = span(trades)

	run.Stats = analytics.NewBasicStats(trades).Result()

	dt := analytics.NewDrawdownTracker(trades, balance)
	run.Drawdown = dt.Result()
	run.TopDrawdowns = dt.TopPeriods(topDrawdowns)

	run.EndBalance = balance
	if curve := dt.EquityCurve(); len(curve) > 0 {
		run.EndBalance = curve[len(curve)-1].Balance
	}
	run.ReturnPct = run.EndBalance.Sub(balance).Div(balance).Mul(decimal.NewFromInt(100)).InexactFloat64()

	run.Time = analytics.NewTimePatternAnalyzer(trades, opts.TimeOptions...).Result()

	scorer := analytics.NewPerformanceScorer(trades)
	run.Score = scorer.OverallScore()
	grades := scorer.GradeAll()
	run.Distribution = analytics.GradeDistribution(grades)
	if opts.IncludeGrades {
		run.Grades = grades
	}

	return run
}

func span(trades []journal.TradeRecord) (start, end time.Time) {
	for _, t := range trades {
		if start.IsZero() || t.OpenTime.Before(start) {
			start = t.OpenTime
		}
		if t.IsClosed() && t.CloseTime.After(end) {
			end = t.CloseTime
		}
	}
	return start, end
}

// WriteJSON writes the run as indented JSON.
func (r *AnalysisRun) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// WriteFile renders the run to path in the given format.
func (r *AnalysisRun) WriteFile(path, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := r.Write(f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write renders the run as "text", "org" or "json".
func (r *AnalysisRun) Write(w io.Writer, format string) error {
	switch format {
	case "", "text":
		PrintSummary(w, r)
		return nil
	case "org":
		return r.WriteOrg(w)
	case "json":
		return r.WriteJSON(w)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}
