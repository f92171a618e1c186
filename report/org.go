package report

import (
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/rustyeddy/tradestats/analytics"
	"github.com/shopspring/decimal"
)

var orgFuncs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"f2":    func(f float64) string { return fmt.Sprintf("%.2f", f) },
	"rate":  func(f float64) string { return fmt.Sprintf("%.1f", f*100) },
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("2006-01-02")
	},
	"stamp": func(t time.Time) string { return t.Format("2006-01-02 Mon 15:04") },
	"hours": func(d time.Duration) string { return fmt.Sprintf("%.1fh", d.Hours()) },
	"recovery": func(p analytics.DrawdownPeriod) string {
		if p.RecoveryDate == nil {
			return "open"
		}
		return p.RecoveryDate.Format("2006-01-02 15:04")
	},
}

var orgTemplate = template.Must(template.New("analysis").Funcs(orgFuncs).Parse(OrgTemplate))

// WriteOrg renders the run as an Org-mode entry.
func (r *AnalysisRun) WriteOrg(w io.Writer) error {
	if err := orgTemplate.Execute(w, r); err != nil {
		return fmt.Errorf("render org report: %w", err)
	}
	return nil
}

const OrgTemplate = `* ANALYSIS: {{if .Source}}{{.Source}}{{else}}(source?){{end}}
:PROPERTIES:
:RUN_ID:      {{.RunID}}
:CREATED:     [{{stamp .Created}}]
:START_DATE:  {{date .Start}}
:END_DATE:    {{date .End}}
:START_BAL:   {{money .StartBalance}}
:END_BAL:     {{money .EndBalance}}
:NET_PL:      {{money .Stats.TotalNetProfit}}
:RETURN_PCT:  {{f2 .ReturnPct}}
:MAX_DD_PCT:  {{f2 .Drawdown.MaxDrawdownPct}}
:TRADES:      {{.Stats.TotalTrades}}
:WINS:        {{.Stats.WinTrades}}
:LOSSES:      {{.Stats.LossTrades}}
:WIN_RATE:    {{rate .Stats.WinRate}}
:PROFIT_FAC:  {{.Stats.ProfitFactor}}
:SCORE:       {{f2 .Score.OverallScore}}
:GRADE:       {{.Score.LetterGrade}}
:END:

** Performance Summary
- Net P/L:          *{{money .Stats.TotalNetProfit}}*
- Return:           *{{f2 .ReturnPct}}%*
- Win Rate:         *{{rate .Stats.WinRate}}%* ({{.Stats.WinTrades}}W / {{.Stats.LossTrades}}L / {{.Stats.BreakevenTrades}}BE, {{.Stats.OpenTrades}} open)
- Profit Factor:    *{{.Stats.ProfitFactor}}*
- Expectancy:       *{{money .Stats.Expectancy}}*
- Avg Win / Loss:   {{money .Stats.AvgWin}} / {{money .Stats.AvgLoss}}
- Largest Win/Loss: {{money .Stats.LargestWin}} / {{money .Stats.LargestLoss}}
- Streaks:          {{.Stats.MaxConsecutiveWins}} wins, {{.Stats.MaxConsecutiveLosses}} losses
- Profit per Day:   {{money .Stats.ProfitPerDay}}

** Drawdowns
- Current:          {{money .Drawdown.CurrentDrawdown}} ({{f2 .Drawdown.CurrentDrawdownPct}}%){{if .Drawdown.IsInDrawdown}} IN DRAWDOWN{{end}}
- Max:              {{money .Drawdown.MaxDrawdown}} ({{f2 .Drawdown.MaxDrawdownPct}}%)
- Longest:          {{hours .Drawdown.LongestDrawdownDuration}}
- Avg Recovery:     {{hours .Drawdown.AverageRecoveryTime}}
{{if .TopDrawdowns}}
| Start            | Recovery         |     Peak |   Trough |    Depth | Depth % |
|------------------+------------------+----------+----------+----------+---------|
{{- range .TopDrawdowns}}
| {{.StartDate.Format "2006-01-02 15:04"}} | {{recovery .}} | {{money .PeakEquity}} | {{money .TroughEquity}} | {{money .MaxDepth}} | {{f2 .MaxDepthPct}} |
{{- end}}
{{end}}
** Sessions
| Session | Trades | Win % | Avg P/L | Total P/L |
|---------+--------+-------+---------+-----------|
{{- range $name, $s := .Time.BySession}}
| {{$name}} | {{$s.TotalTrades}} | {{rate $s.WinRate}} | {{money $s.AvgPnL}} | {{money $s.TotalPnL}} |
{{- end}}
{{if .Time.PeakHours}}
** Peak Hours
| Hour | Trades | Win % | Avg P/L |
|------+--------+-------+---------|
{{- range .Time.PeakHours}}
| {{printf "%02d:00" .Hour}} | {{.TotalTrades}} | {{rate .WinRate}} | {{money .AvgPnL}} |
{{- end}}
{{end}}
** Score: {{f2 .Score.OverallScore}}/100 ({{.Score.LetterGrade}})
- Win Rate:      {{f2 .Score.WinRateScore}}
- Risk:          {{f2 .Score.RiskScore}}
- Profit Factor: {{f2 .Score.ProfitFactorScore}}
{{with .Score.Strengths}}
*** Strengths
{{- range .}}
- {{.}}
{{- end}}
{{end}}{{with .Score.Weaknesses}}
*** Weaknesses
{{- range .}}
- {{.}}
{{- end}}
{{end}}{{with .Score.Recommendations}}
*** Recommendations
{{- range .}}
- [ ] {{.}}
{{- end}}
{{end}}
** Timing
{{- range .Time.Recommendations}}
- {{.}}
{{- end}}

** Grade Distribution
| Grade | Count |     % |
|-------+-------+-------|
{{- range $g, $c := .Distribution}}
| {{$g}} | {{$c.Count}} | {{f2 $c.Pct}} |
{{- end}}
`
