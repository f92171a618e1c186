package journal

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportResolvesHeaderAliases(t *testing.T) {
	t.Parallel()

	in := `Position,Instrument,Side,Lots,Entry Time,Entry Price,Exit Time,Exit Price,S/L,T/P,Fees,Swap,PnL,Magic,Comment
1001,EURUSD,BUY,0.10,2024.01.10 10:00:00,1.0800,2024.01.10 15:00:00,1.0850,1.0780,1.0900,-0.70,0,50.00,42,breakout
`
	got, err := NewCSVImporter().Import(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 1)

	tr := got[0]
	assert.Equal(t, "1001", tr.TradeID)
	assert.Equal(t, "EURUSD", tr.Symbol)
	assert.Equal(t, Long, tr.Direction)
	assert.InDelta(t, 0.1, tr.Volume, 1e-12)
	assert.Equal(t, time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC), tr.OpenTime)
	assert.Equal(t, time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC), tr.CloseTime)
	assert.Equal(t, "1.08", tr.OpenPrice.String())
	assert.Equal(t, "1.078", tr.StopLoss.Decimal.String())
	assert.Equal(t, "1.09", tr.TakeProfit.Decimal.String())
	assert.Equal(t, "-0.7", tr.Commission.String())
	assert.Equal(t, "50", tr.Profit.String())
	require.NotNil(t, tr.BrokerTag)
	assert.Equal(t, int64(42), *tr.BrokerTag)
	assert.Equal(t, "breakout", tr.Note)
	assert.Equal(t, Win, tr.Result())
}

func TestImportSkipsRowsWithoutSymbolOrOpenTime(t *testing.T) {
	t.Parallel()

	in := `symbol,open_time,close_time,profit
EURUSD,2024-01-10 10:00:00,2024-01-10 11:00:00,10
,2024-01-10 10:00:00,2024-01-10 11:00:00,10
GBPUSD,,2024-01-10 11:00:00,10
USDJPY,2024-01-11T09:00:00Z,,0
`
	got, err := NewCSVImporter().Import(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "EURUSD", got[0].Symbol)
	assert.Equal(t, "1", got[0].TradeID, "missing ticket falls back to row number")
	assert.Equal(t, "USDJPY", got[1].Symbol)
	assert.Equal(t, "4", got[1].TradeID)
	assert.False(t, got[1].IsClosed())
}

func TestImportLogsAndSkipsMalformedRows(t *testing.T) {
	t.Parallel()

	in := `ticket,symbol,type,volume,open_time,profit
1,EURUSD,BUY,0.1,2024-01-10 10:00:00,12.5
2,EURUSD,BUY,lots,2024-01-10 10:00:00,12.5
3,EURUSD,HEDGE,0.1,2024-01-10 10:00:00,12.5
4,EURUSD,SELL,0.1,not-a-time,12.5
5,EURUSD,SELL,0.1,2024-01-10 10:00:00,abc
6,EURUSD,SELL,0.1,2024-01-10 10:00:00,-4
`
	var logs bytes.Buffer
	im := NewCSVImporter(WithLogger(zerolog.New(&logs)))

	got, err := im.Import(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].TradeID)
	assert.Equal(t, "6", got[1].TradeID)
	assert.Equal(t, Short, got[1].Direction)

	assert.Equal(t, 4, strings.Count(logs.String(), "skipping malformed row"))
	assert.Contains(t, logs.String(), `"row":2`)
}

func TestImportExplicitColumnMapping(t *testing.T) {
	t.Parallel()

	in := `Deal No,Asset,Opened,Result USD
77,BTCUSD,2024-02-01 08:00:00,-15.75
`
	im := NewCSVImporter(WithColumnMapping(map[string]string{
		"ticket":    "Deal No",
		"open_time": "Opened",
		"profit":    "Result USD",
	}))

	got, err := im.Import(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "77", got[0].TradeID)
	assert.Equal(t, "BTCUSD", got[0].Symbol)
	assert.Equal(t, "-15.75", got[0].Profit.String())
}

func TestImportWithLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("EET", 2*60*60)
	in := "symbol,open_time\nEURUSD,2024-01-10 10:00:00\n"

	got, err := NewCSVImporter(WithLocation(loc)).Import(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC), got[0].OpenTime)
}

func TestImportEmptyTable(t *testing.T) {
	t.Parallel()

	got, err := NewCSVImporter().Import(strings.NewReader("symbol,open_time\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestImportFileMissing(t *testing.T) {
	t.Parallel()

	_, err := NewCSVImporter().ImportFile("/nonexistent/trades.csv")
	assert.Error(t, err)
}

func TestImportNetPLHeader(t *testing.T) {
	t.Parallel()

	in := `Ticket,Symbol,Open Time,Close Time,Net P/L
7,EURUSD,2024-01-10 10:00:00,2024-01-10 11:00:00,-25.50
8,GBPUSD,2024-01-10 12:00:00,2024-01-10 13:00:00,40
`
	got, err := NewCSVImporter().Import(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "-25.5", got[0].Profit.String())
	assert.Equal(t, Loss, got[0].Result())
	assert.Equal(t, "40", got[1].Profit.String())

	for _, h := range []string{"Net P/L", "Net PnL", "net_pnl"} {
		f, ok := CanonicalField(h)
		assert.True(t, ok, h)
		assert.Equal(t, FieldProfit, f, h)
	}
}

func TestImportFilesWithoutTicketShareJournal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := map[string]string{
		"jan.csv": "symbol,open_time,close_time,profit\nEURUSD,2024-01-10 10:00:00,2024-01-10 11:00:00,10\n",
		"feb.csv": "symbol,open_time,close_time,profit\nGBPUSD,2024-02-10 10:00:00,2024-02-10 11:00:00,-5\n",
	}
	im := NewCSVImporter()
	var all []TradeRecord
	for _, name := range []string{"jan.csv", "feb.csv"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(files[name]), 0644))
		recs, err := im.ImportFile(path)
		require.NoError(t, err)
		all = append(all, recs...)
	}
	require.Len(t, all, 2)
	assert.Equal(t, "jan-1", all[0].TradeID)
	assert.Equal(t, "feb-1", all[1].TradeID)

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })
	ctx := context.Background()
	require.NoError(t, j.UpsertTrades(ctx, all))

	stored, err := j.ListTrades(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "EURUSD", stored[0].Symbol)
	assert.Equal(t, "GBPUSD", stored[1].Symbol)
}
