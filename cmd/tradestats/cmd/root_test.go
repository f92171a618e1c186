package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const historyCSV = `Ticket,Symbol,Type,Lots,Open Time,Open Price,Close Time,Close Price,Profit
1001,EURUSD,buy,0.10,2024-01-10 09:00:00,1.0800,2024-01-10 14:00:00,1.0850,50.00
1002,GBPUSD,sell,0.20,2024-01-10 13:30:00,1.2700,2024-01-10 15:00:00,1.2720,-40.00
1003,EURUSD,buy,0.10,2024-01-11 08:00:00,1.0820,2024-01-11 10:00:00,1.0880,60.00
`

// execute runs the root command with args. Commands share package state, so
// tests in this file do not run in parallel.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	err := rootCmd.Execute()
	return out.String(), err
}

func seedJournal(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "history.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(historyCSV), 0644))

	db := filepath.Join(dir, "journal.sqlite")
	out, err := execute(t, "import", "--db", db, csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Imported 3 trades")
	return db
}

func TestImportAndAnalyze(t *testing.T) {
	db := seedJournal(t)
	t.Cleanup(func() { analyzeFrom, analyzeTo = "", "" })

	out, err := execute(t, "analyze", "--db", db, "--format", "json")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	stats := doc["stats"].(map[string]any)
	assert.Equal(t, float64(3), stats["total_trades"])
	assert.Equal(t, float64(2), stats["win_trades"])

	out, err = execute(t, "analyze", "--db", db, "--format", "text", "--from", "2024-01-11", "--to", "2024-01-11")
	require.NoError(t, err)
	assert.Contains(t, out, "Trades:        1 (1 closed, 0 open)")

	_, err = execute(t, "analyze", "--db", db, "--from", "2024-01-12", "--to", "2024-01-11")
	assert.ErrorContains(t, err, "is before --from")
}

func TestAnalyzeCSVWritesFile(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "history.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(historyCSV), 0644))
	report := filepath.Join(dir, "report.org")
	t.Cleanup(func() { analyzeOutput = "" })

	out, err := execute(t, "analyze", csvPath, "--format", "org", "-o", report)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Report written")

	b, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(b), "* ANALYSIS: "+csvPath)
}

func TestTradesCommands(t *testing.T) {
	db := seedJournal(t)

	out, err := execute(t, "trades", "get", "--db", db, "1002")
	require.NoError(t, err)
	assert.Contains(t, out, ":SYMBOL: GBPUSD")
	assert.Contains(t, out, ":RESULT: LOSS")

	_, err = execute(t, "trades", "get", "--db", db, "9999")
	assert.Error(t, err)

	out, err = execute(t, "trades", "day", "--db", db, "2024-01-10")
	require.NoError(t, err)
	assert.Contains(t, out, ":TRADE_ID: 1001")
	assert.Contains(t, out, ":TRADE_ID: 1002")
	assert.NotContains(t, out, ":TRADE_ID: 1003")

	_, err = execute(t, "trades", "day", "--db", db, "10/01/2024")
	assert.ErrorContains(t, err, "date")

	export := filepath.Join(t.TempDir(), "out.csv")
	out, err = execute(t, "trades", "export", "--db", db, "-o", export)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Exported 3 trades")
	_, err = os.Stat(export)
	assert.NoError(t, err)
}

func TestGrade(t *testing.T) {
	db := seedJournal(t)

	out, err := execute(t, "grade", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Grade Distribution")
	assert.Contains(t, out, "EURUSD")

	out, err = execute(t, "grade", "--db", db, "1003")
	require.NoError(t, err)
	assert.Contains(t, out, "$60.00 gain")
	assert.NotContains(t, out, "Grade Distribution")
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tradestats.yaml")

	out, err := execute(t, "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Created default configuration")

	out, err = execute(t, "config", "validate", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Configuration valid")
	assert.Contains(t, out, "Sessions: 4, overlaps: 2")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "tradestats version "+version)
}
