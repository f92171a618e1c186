package report

import (
	"fmt"
	"io"
	"time"
)

const rule = "--------------------------------------------------"

// PrintSummary writes a plain text digest of the run.
func PrintSummary(w io.Writer, r *AnalysisRun) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Trade Journal Analysis")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Run ID:        %s\n", r.RunID)
	fmt.Fprintf(w, "Created:       %s\n", r.Created.Format(time.RFC3339))
	if r.Source != "" {
		fmt.Fprintf(w, "Source:        %s\n", r.Source)
	}
	if !r.Start.IsZero() {
		fmt.Fprintf(w, "Period:        %s .. %s\n", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
	}

	s := r.Stats
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Trades:        %d (%d closed, %d open)\n", s.TotalTrades, s.ClosedTrades, s.OpenTrades)
	fmt.Fprintf(w, "Wins:          %d\n", s.WinTrades)
	fmt.Fprintf(w, "Losses:        %d\n", s.LossTrades)
	fmt.Fprintf(w, "Breakeven:     %d\n", s.BreakevenTrades)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", s.WinRate*100)
	fmt.Fprintf(w, "Profit Factor: %s\n", s.ProfitFactor)
	fmt.Fprintf(w, "Expectancy:    %s\n", s.Expectancy.StringFixed(2))
	fmt.Fprintf(w, "Avg Win:       %s\n", s.AvgWin.StringFixed(2))
	fmt.Fprintf(w, "Avg Loss:      %s\n", s.AvgLoss.StringFixed(2))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account Performance")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Start Balance: %s\n", r.StartBalance.StringFixed(2))
	fmt.Fprintf(w, "End Balance:   %s\n", r.EndBalance.StringFixed(2))
	fmt.Fprintf(w, "Net P/L:       %s\n", s.TotalNetProfit.StringFixed(2))
	fmt.Fprintf(w, "Return:        %.2f%%\n", r.ReturnPct)

	d := r.Drawdown
	if len(d.Periods) > 0 {
		fmt.Fprintf(w, "Max Drawdown:  %s (%.2f%%)\n", d.MaxDrawdown.StringFixed(2), d.MaxDrawdownPct)
	}
	if d.IsInDrawdown {
		fmt.Fprintf(w, "In Drawdown:   %s (%.2f%%)\n", d.CurrentDrawdown.StringFixed(2), d.CurrentDrawdownPct)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Score")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Overall:       %.2f/100 (%s)\n", r.Score.OverallScore, r.Score.LetterGrade)
	for _, s := range r.Score.Strengths {
		fmt.Fprintf(w, "  + %s\n", s)
	}
	for _, s := range r.Score.Weaknesses {
		fmt.Fprintf(w, "  - %s\n", s)
	}

	recs := append(append([]string{}, r.Score.Recommendations...), r.Time.Recommendations...)
	if len(recs) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Recommendations")
		fmt.Fprintln(w, rule)
		for _, rec := range recs {
			fmt.Fprintf(w, "* %s\n", rec)
		}
	}
}
