package journal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Canonical field names a column can resolve to.
const (
	FieldTicket     = "ticket"
	FieldSymbol     = "symbol"
	FieldDirection  = "direction"
	FieldVolume     = "volume"
	FieldOpenTime   = "open_time"
	FieldOpenPrice  = "open_price"
	FieldCloseTime  = "close_time"
	FieldClosePrice = "close_price"
	FieldStopLoss   = "stop_loss"
	FieldTakeProfit = "take_profit"
	FieldCommission = "commission"
	FieldSwap       = "swap"
	FieldProfit     = "profit"
	FieldBrokerTag  = "broker_tag"
	FieldNote       = "note"
)

// headerAliases maps a normalized header (lowercase, letters and digits only)
// to a canonical field.
var headerAliases = map[string]string{
	"ticket": FieldTicket, "id": FieldTicket, "tradeid": FieldTicket, "position": FieldTicket,
	"positionid": FieldTicket, "order": FieldTicket, "deal": FieldTicket,

	"symbol": FieldSymbol, "instrument": FieldSymbol, "pair": FieldSymbol,
	"ticker": FieldSymbol, "asset": FieldSymbol, "market": FieldSymbol,

	"direction": FieldDirection, "ordertype": FieldDirection, "type": FieldDirection,
	"side": FieldDirection, "action": FieldDirection,

	"volume": FieldVolume, "lots": FieldVolume, "lot": FieldVolume, "size": FieldVolume,
	"quantity": FieldVolume, "qty": FieldVolume, "units": FieldVolume,

	"opentime": FieldOpenTime, "entrytime": FieldOpenTime, "timeopen": FieldOpenTime,
	"openedat": FieldOpenTime, "opendate": FieldOpenTime, "entrydate": FieldOpenTime,

	"openprice": FieldOpenPrice, "entryprice": FieldOpenPrice, "priceopen": FieldOpenPrice,
	"entry": FieldOpenPrice,

	"closetime": FieldCloseTime, "exittime": FieldCloseTime, "timeclose": FieldCloseTime,
	"closedat": FieldCloseTime, "closedate": FieldCloseTime, "exitdate": FieldCloseTime,

	"closeprice": FieldClosePrice, "exitprice": FieldClosePrice, "priceclose": FieldClosePrice,
	"exit": FieldClosePrice,

	"sl": FieldStopLoss, "stoploss": FieldStopLoss, "stop": FieldStopLoss,
	"tp": FieldTakeProfit, "takeprofit": FieldTakeProfit, "target": FieldTakeProfit,

	"commission": FieldCommission, "commissions": FieldCommission, "fee": FieldCommission,
	"fees": FieldCommission,

	"swap": FieldSwap, "rollover": FieldSwap, "financing": FieldSwap,

	"profit": FieldProfit, "pnl": FieldProfit, "netprofit": FieldProfit, "pl": FieldProfit,
	"netpl": FieldProfit, "netpnl": FieldProfit, "realizedpl": FieldProfit, "realizedpnl": FieldProfit,

	"magic": FieldBrokerTag, "magicnumber": FieldBrokerTag, "brokertag": FieldBrokerTag,
	"tag": FieldBrokerTag, "expert": FieldBrokerTag,

	"comment": FieldNote, "note": FieldNote, "notes": FieldNote, "reason": FieldNote,
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006.01.02 15:04:05",
	"2006.01.02 15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"2006-01-02",
}

// CSVImporter builds TradeRecords from a CSV table whose headers are matched to
// record fields case and punctuation insensitively.
type CSVImporter struct {
	mapping map[string]string
	loc     *time.Location
	log     zerolog.Logger
}

type ImportOption func(*CSVImporter)

// WithColumnMapping sets explicit field -> header overrides. They win over
// alias inference.
func WithColumnMapping(m map[string]string) ImportOption {
	return func(im *CSVImporter) {
		for field, header := range m {
			im.mapping[field] = header
		}
	}
}

// WithLocation sets the zone used for timestamps without an offset.
func WithLocation(loc *time.Location) ImportOption {
	return func(im *CSVImporter) { im.loc = loc }
}

func WithLogger(l zerolog.Logger) ImportOption {
	return func(im *CSVImporter) { im.log = l }
}

func NewCSVImporter(opts ...ImportOption) *CSVImporter {
	im := &CSVImporter{
		mapping: map[string]string{},
		loc:     time.UTC,
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(im)
	}
	return im
}

// ImportFile reads path. Rows without a ticket get an id made of the file
// name and row number ("jan-3"), so several exports can share one journal.
func (im *CSVImporter) ImportFile(path string) ([]TradeRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	base := filepath.Base(path)
	return im.importRows(f, strings.TrimSuffix(base, filepath.Ext(base)))
}

// Import reads every row of r. Rows without a symbol or open time are skipped
// silently; rows that fail to parse are logged and skipped. Only a table that
// cannot be read at all returns an error. Rows without a ticket use their
// 1-based row number as id.
func (im *CSVImporter) Import(r io.Reader) ([]TradeRecord, error) {
	return im.importRows(r, "")
}

func (im *CSVImporter) importRows(r io.Reader, source string) ([]TradeRecord, error) {
	rows, err := gocsv.CSVToMaps(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	columns := im.resolveColumns(rows[0])
	im.log.Debug().Interface("columns", columns).Int("rows", len(rows)).Msg("resolved csv columns")

	var out []TradeRecord
	for i, raw := range rows {
		rowNum := i + 1
		vals := make(map[string]string, len(columns))
		for field, header := range columns {
			if v := strings.TrimSpace(raw[header]); v != "" {
				vals[field] = v
			}
		}

		if vals[FieldSymbol] == "" || vals[FieldOpenTime] == "" {
			im.log.Debug().Int("row", rowNum).Msg("skipping row without symbol or open time")
			continue
		}

		if vals[FieldTicket] == "" {
			vals[FieldTicket] = fallbackID(source, rowNum)
		}
		rec, err := im.parseRow(vals)
		if err != nil {
			im.log.Warn().Err(err).Int("row", rowNum).Msg("skipping malformed row")
			continue
		}
		out = append(out, rec)
	}

	im.log.Info().Int("imported", len(out)).Int("rows", len(rows)).Msg("csv import complete")
	return out, nil
}

// resolveColumns returns canonical field -> original header. Explicit mapping
// entries are honoured first, then aliases fill the remaining fields.
func (im *CSVImporter) resolveColumns(sample map[string]string) map[string]string {
	headers := make([]string, 0, len(sample))
	for h := range sample {
		headers = append(headers, h)
	}
	sort.Strings(headers)

	byNorm := make(map[string]string, len(headers))
	for _, h := range headers {
		byNorm[normalize(h)] = h
	}

	cols := map[string]string{}
	for field, header := range im.mapping {
		if h, ok := byNorm[normalize(header)]; ok {
			cols[normalizeField(field)] = h
		}
	}
	for _, h := range headers {
		field, ok := headerAliases[normalize(h)]
		if !ok {
			continue
		}
		if _, taken := cols[field]; !taken {
			cols[field] = h
		}
	}
	return cols
}

func fallbackID(source string, row int) string {
	if source == "" {
		return strconv.Itoa(row)
	}
	return fmt.Sprintf("%s-%d", source, row)
}

func (im *CSVImporter) parseRow(v map[string]string) (TradeRecord, error) {
	var (
		rec TradeRecord
		err error
	)

	rec.TradeID = v[FieldTicket]
	rec.Symbol = v[FieldSymbol]

	dir, ok := ParseDirection(v[FieldDirection])
	if !ok {
		return TradeRecord{}, fmt.Errorf("direction %q", v[FieldDirection])
	}
	rec.Direction = dir

	if s := v[FieldVolume]; s != "" {
		if rec.Volume, err = strconv.ParseFloat(s, 64); err != nil {
			return TradeRecord{}, fmt.Errorf("volume: %w", err)
		}
	}

	if rec.OpenTime, err = im.parseTime(v[FieldOpenTime]); err != nil {
		return TradeRecord{}, fmt.Errorf("open_time: %w", err)
	}
	if s := v[FieldCloseTime]; s != "" {
		if rec.CloseTime, err = im.parseTime(s); err != nil {
			return TradeRecord{}, fmt.Errorf("close_time: %w", err)
		}
	}

	if rec.OpenPrice, err = parseDecimal(v[FieldOpenPrice]); err != nil {
		return TradeRecord{}, fmt.Errorf("open_price: %w", err)
	}
	if rec.ClosePrice, err = parseNullDecimal(v[FieldClosePrice]); err != nil {
		return TradeRecord{}, fmt.Errorf("close_price: %w", err)
	}
	if rec.StopLoss, err = parseNullDecimal(v[FieldStopLoss]); err != nil {
		return TradeRecord{}, fmt.Errorf("stop_loss: %w", err)
	}
	if rec.TakeProfit, err = parseNullDecimal(v[FieldTakeProfit]); err != nil {
		return TradeRecord{}, fmt.Errorf("take_profit: %w", err)
	}
	if rec.Commission, err = parseDecimal(v[FieldCommission]); err != nil {
		return TradeRecord{}, fmt.Errorf("commission: %w", err)
	}
	if rec.Swap, err = parseDecimal(v[FieldSwap]); err != nil {
		return TradeRecord{}, fmt.Errorf("swap: %w", err)
	}
	if rec.Profit, err = parseDecimal(v[FieldProfit]); err != nil {
		return TradeRecord{}, fmt.Errorf("profit: %w", err)
	}

	if s := v[FieldBrokerTag]; s != "" {
		tag, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return TradeRecord{}, fmt.Errorf("broker_tag: %w", err)
		}
		rec.BrokerTag = &tag
	}
	rec.Note = v[FieldNote]

	return rec, nil
}

func (im *CSVImporter) parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, im.loc); err == nil {
			return t.UTC(), nil
		}
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
}

func parseNullDecimal(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := parseDecimal(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

// normalize lowercases s and drops everything that is not a letter or digit.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CanonicalField resolves a field name or alias ("Stop Loss", "lots") to the
// canonical field it names.
func CanonicalField(name string) (string, bool) {
	f, ok := headerAliases[normalize(name)]
	return f, ok
}

// normalizeField resolves a user supplied field name ("Stop Loss", "sl") to a
// canonical field, falling back to the name itself.
func normalizeField(name string) string {
	if f, ok := CanonicalField(name); ok {
		return f
	}
	return name
}
