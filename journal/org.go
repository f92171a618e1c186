package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatTradeOrg renders a TradeRecord as an Org-mode block suitable for pasting into a journal.
// Structured facts go in a PROPERTIES drawer, followed by narrative placeholders.
func FormatTradeOrg(t TradeRecord) string {
	heading := fmt.Sprintf("** Trade: %s %s (%s)", t.Direction, t.Symbol, shortID(t.TradeID))
	open := t.OpenTime.UTC().Format(time.RFC3339)

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":TRADE_ID: %s\n", t.TradeID))
	b.WriteString(fmt.Sprintf(":SYMBOL: %s\n", t.Symbol))
	b.WriteString(fmt.Sprintf(":DIRECTION: %s\n", t.Direction))
	b.WriteString(fmt.Sprintf(":VOLUME: %g\n", t.Volume))
	b.WriteString(fmt.Sprintf(":OPEN_TIME: %s\n", open))
	b.WriteString(fmt.Sprintf(":OPEN_PRICE: %s\n", t.OpenPrice.String()))
	if t.IsClosed() {
		b.WriteString(fmt.Sprintf(":CLOSE_TIME: %s\n", t.CloseTime.UTC().Format(time.RFC3339)))
	}
	if t.ClosePrice.Valid {
		b.WriteString(fmt.Sprintf(":CLOSE_PRICE: %s\n", t.ClosePrice.Decimal.String()))
	}
	if t.StopLoss.Valid {
		b.WriteString(fmt.Sprintf(":STOP_LOSS: %s\n", t.StopLoss.Decimal.String()))
	}
	if t.TakeProfit.Valid {
		b.WriteString(fmt.Sprintf(":TAKE_PROFIT: %s\n", t.TakeProfit.Decimal.String()))
	}
	b.WriteString(fmt.Sprintf(":PROFIT: %s\n", t.Profit.StringFixed(2)))
	b.WriteString(fmt.Sprintf(":RESULT: %s\n", t.Result()))
	if t.Note != "" {
		b.WriteString(fmt.Sprintf(":NOTE: %s\n", t.Note))
	}
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Thesis\n- \n\n")
	b.WriteString("*** Execution\n- \n\n")
	b.WriteString("*** Review\n- \n")

	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []TradeRecord) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
