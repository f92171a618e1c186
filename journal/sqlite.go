package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is a Store backed by a single sqlite database file.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

const upsertTrade = `
	INSERT INTO trades
	(trade_id, symbol, direction, volume, open_time, open_price, close_time, close_price,
	 stop_loss, take_profit, commission, swap, profit, broker_tag, note)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(trade_id) DO UPDATE SET
		symbol = excluded.symbol,
		direction = excluded.direction,
		volume = excluded.volume,
		open_time = excluded.open_time,
		open_price = excluded.open_price,
		close_time = excluded.close_time,
		close_price = excluded.close_price,
		stop_loss = excluded.stop_loss,
		take_profit = excluded.take_profit,
		commission = excluded.commission,
		swap = excluded.swap,
		profit = excluded.profit,
		broker_tag = excluded.broker_tag,
		note = excluded.note`

const selectTrades = `
	SELECT trade_id, symbol, direction, volume, open_time, open_price, close_time, close_price,
	       stop_loss, take_profit, commission, swap, profit, broker_tag, note
	FROM trades`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// UpsertTrade inserts t or replaces the row with the same TradeID.
func (j *SQLite) UpsertTrade(ctx context.Context, t TradeRecord) error {
	return upsert(ctx, j.db, t)
}

// UpsertTrades writes all records in a single transaction.
func (j *SQLite) UpsertTrades(ctx context.Context, trades []TradeRecord) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, t := range trades {
		if err := upsert(ctx, tx, t); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert %s: %w", t.TradeID, err)
		}
	}
	return tx.Commit()
}

func upsert(ctx context.Context, db execer, t TradeRecord) error {
	var closeTime sql.NullTime
	if t.IsClosed() {
		closeTime = sql.NullTime{Time: t.CloseTime.UTC(), Valid: true}
	}
	var tag sql.NullInt64
	if t.BrokerTag != nil {
		tag = sql.NullInt64{Int64: *t.BrokerTag, Valid: true}
	}

	_, err := db.ExecContext(ctx, upsertTrade,
		t.TradeID, t.Symbol, string(t.Direction), t.Volume,
		t.OpenTime.UTC(), t.OpenPrice, closeTime, t.ClosePrice,
		t.StopLoss, t.TakeProfit, t.Commission, t.Swap, t.Profit,
		tag, t.Note,
	)
	return err
}

// GetTrade returns a single trade record by ID.
func (j *SQLite) GetTrade(ctx context.Context, tradeID string) (TradeRecord, error) {
	row := j.db.QueryRowContext(ctx, selectTrades+` WHERE trade_id = ?`, tradeID)

	rec, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TradeRecord{}, fmt.Errorf("trade %q: %w", tradeID, ErrTradeNotFound)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

// ListTrades returns every stored trade ordered by open time.
func (j *SQLite) ListTrades(ctx context.Context) ([]TradeRecord, error) {
	return j.query(ctx, selectTrades+` ORDER BY open_time ASC, trade_id ASC`)
}

// ListTradesClosedBetween returns trades whose close_time is within [start, end).
func (j *SQLite) ListTradesClosedBetween(ctx context.Context, start, end time.Time) ([]TradeRecord, error) {
	return j.query(ctx, selectTrades+`
		WHERE close_time >= ? AND close_time < ?
		ORDER BY close_time ASC`, start.UTC(), end.UTC())
}

func (j *SQLite) query(ctx context.Context, q string, args ...any) ([]TradeRecord, error) {
	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(s scanner) (TradeRecord, error) {
	var (
		rec       TradeRecord
		direction string
		closeTime sql.NullTime
		tag       sql.NullInt64
	)

	err := s.Scan(
		&rec.TradeID,
		&rec.Symbol,
		&direction,
		&rec.Volume,
		&rec.OpenTime,
		&rec.OpenPrice,
		&closeTime,
		&rec.ClosePrice,
		&rec.StopLoss,
		&rec.TakeProfit,
		&rec.Commission,
		&rec.Swap,
		&rec.Profit,
		&tag,
		&rec.Note,
	)
	if err != nil {
		return TradeRecord{}, err
	}

	rec.Direction = Direction(direction)
	rec.OpenTime = rec.OpenTime.UTC()
	if closeTime.Valid {
		rec.CloseTime = closeTime.Time.UTC()
	}
	if tag.Valid {
		v := tag.Int64
		rec.BrokerTag = &v
	}
	return rec, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
