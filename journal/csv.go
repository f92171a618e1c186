package journal

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// csvRow is the export layout. Headers use canonical field names so the
// importer reads the file back without any column mapping.
type csvRow struct {
	Ticket     string `csv:"ticket"`
	Symbol     string `csv:"symbol"`
	Direction  string `csv:"direction"`
	Volume     string `csv:"volume"`
	OpenTime   string `csv:"open_time"`
	OpenPrice  string `csv:"open_price"`
	CloseTime  string `csv:"close_time"`
	ClosePrice string `csv:"close_price"`
	StopLoss   string `csv:"stop_loss"`
	TakeProfit string `csv:"take_profit"`
	Commission string `csv:"commission"`
	Swap       string `csv:"swap"`
	Profit     string `csv:"profit"`
	BrokerTag  string `csv:"broker_tag"`
	Note       string `csv:"note"`
}

// WriteCSV writes trades with a header row. Decimals are written in full.
func WriteCSV(w io.Writer, trades []TradeRecord) error {
	rows := make([]*csvRow, 0, len(trades))
	for _, t := range trades {
		row := &csvRow{
			Ticket:     t.TradeID,
			Symbol:     t.Symbol,
			Direction:  string(t.Direction),
			Volume:     strconv.FormatFloat(t.Volume, 'f', -1, 64),
			OpenTime:   t.OpenTime.UTC().Format(time.RFC3339),
			OpenPrice:  t.OpenPrice.String(),
			ClosePrice: nullString(t.ClosePrice),
			StopLoss:   nullString(t.StopLoss),
			TakeProfit: nullString(t.TakeProfit),
			Commission: t.Commission.String(),
			Swap:       t.Swap.String(),
			Profit:     t.Profit.String(),
			Note:       t.Note,
		}
		if t.IsClosed() {
			row.CloseTime = t.CloseTime.UTC().Format(time.RFC3339)
		}
		if t.BrokerTag != nil {
			row.BrokerTag = strconv.FormatInt(*t.BrokerTag, 10)
		}
		rows = append(rows, row)
	}

	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func WriteCSVFile(path string, trades []TradeRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, trades); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
