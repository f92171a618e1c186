package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rustyeddy/tradestats/journal"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	day0    = time.Date(2024, time.January, 10, 13, 0, 0, 0, time.UTC)
	created = time.Date(2024, time.February, 1, 9, 30, 0, 0, time.UTC)
)

func sample(t *testing.T) []journal.TradeRecord {
	t.Helper()

	var out []journal.TradeRecord
	for i, p := range []string{"120", "-40", "80", "-60", "50"} {
		closeAt := day0.Add(time.Duration(i) * time.Hour)
		out = append(out, journal.TradeRecord{
			TradeID:   string(rune('A' + i)),
			Symbol:    "EURUSD",
			Direction: journal.Long,
			Volume:    0.1,
			OpenTime:  closeAt.Add(-30 * time.Minute),
			OpenPrice: decimal.RequireFromString("1.0800"),
			CloseTime: closeAt,
			Profit:    decimal.RequireFromString(p),
		})
	}
	return out
}

func newRun(t *testing.T, trades []journal.TradeRecord) *AnalysisRun {
	t.Helper()
	return New(trades, Options{
		Source:         "journal.sqlite",
		InitialBalance: decimal.NewFromInt(1000),
		IncludeGrades:  true,
		Now:            func() time.Time { return created },
	})
}

func TestNewAnalysisRun(t *testing.T) {
	t.Parallel()

	r := newRun(t, sample(t))

	u, err := ulid.ParseStrict(r.RunID)
	require.NoError(t, err)
	assert.Equal(t, created, ulid.Time(u.Time()).UTC())
	assert.Equal(t, created, r.Created)

	assert.Equal(t, day0.Add(-30*time.Minute), r.Start)
	assert.Equal(t, day0.Add(4*time.Hour), r.End)

	assert.Equal(t, "1000", r.StartBalance.String())
	assert.Equal(t, "1150", r.EndBalance.String())
	assert.InDelta(t, 15.0, r.ReturnPct, 1e-9)

	assert.Equal(t, 5, r.Stats.TotalTrades)
	assert.Len(t, r.Drawdown.Periods, 2)
	assert.Len(t, r.TopDrawdowns, 2)
	assert.Len(t, r.Grades, 5)
	assert.Len(t, r.Distribution, 5)
	assert.NotEmpty(t, r.Time.BySession)
}

func TestNewDefaultsBalance(t *testing.T) {
	t.Parallel()

	r := New(nil, Options{})

	assert.Equal(t, "10000", r.StartBalance.String())
	assert.True(t, r.EndBalance.Equal(r.StartBalance))
	assert.Zero(t, r.ReturnPct)
	assert.Nil(t, r.Grades)
	assert.True(t, r.Start.IsZero())
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, newRun(t, sample(t)).Write(&buf, "json"))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Contains(t, doc, "run_id")
	assert.Equal(t, "journal.sqlite", doc["source"])

	stats := doc["stats"].(map[string]any)
	assert.Equal(t, float64(5), stats["total_trades"])
	assert.InDelta(t, 250.0/100.0, stats["profit_factor"], 1e-9)
}

func TestWriteJSONUndefinedProfitFactor(t *testing.T) {
	t.Parallel()

	trades := sample(t)[:1]
	var buf bytes.Buffer
	require.NoError(t, newRun(t, trades).WriteJSON(&buf))
	assert.Contains(t, buf.String(), `"profit_factor": "undefined"`)
}

func TestWriteOrg(t *testing.T) {
	t.Parallel()

	r := newRun(t, sample(t))

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf, "org"))
	out := buf.String()

	assert.Contains(t, out, "* ANALYSIS: journal.sqlite")
	assert.Contains(t, out, ":RUN_ID:      "+r.RunID)
	assert.Contains(t, out, ":CREATED:     [2024-02-01 Thu 09:30]")
	assert.Contains(t, out, ":NET_PL:      150.00")
	assert.Contains(t, out, ":PROFIT_FAC:  2.50")
	assert.Contains(t, out, "| New_York | 5 |")
	assert.Contains(t, out, "| London | 3 |")
	assert.Contains(t, out, "** Grade Distribution")
	assert.Contains(t, out, "| Recovery ")
}

func TestWriteText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, newRun(t, sample(t)).Write(&buf, "text"))
	out := buf.String()

	assert.Contains(t, out, "Trade Journal Analysis")
	assert.Contains(t, out, "Win Rate:      60.00%")
	assert.Contains(t, out, "End Balance:   1150.00")
	assert.Contains(t, out, "Profit Factor: 2.50")
}

func TestWriteUnknownFormat(t *testing.T) {
	t.Parallel()

	err := newRun(t, nil).Write(&bytes.Buffer{}, "pdf")
	assert.ErrorContains(t, err, "unknown report format")
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "analysis.org")
	require.NoError(t, newRun(t, sample(t)).WriteFile(path, "org"))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), ":PROPERTIES:")
}
