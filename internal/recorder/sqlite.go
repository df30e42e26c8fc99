package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"PaperTrader/internal/model"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder journals trades to a SQLite database.
// Money columns are TEXT so decimals round-trip exactly.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id           TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL,
			timestamp    INTEGER NOT NULL,
			symbol       TEXT NOT NULL,
			side         TEXT NOT NULL,
			quantity     INTEGER NOT NULL,
			price        TEXT NOT NULL,
			trade_value  TEXT NOT NULL,
			brokerage    TEXT NOT NULL,
			taxes        TEXT NOT NULL,
			total_cost   TEXT NOT NULL,
			realized_pnl TEXT NOT NULL,
			status       TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_user_ts ON trades(user_id, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_user_symbol ON trades(user_id, symbol)`,

		`CREATE TABLE IF NOT EXISTS balance_history (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id   TEXT NOT NULL,
			trade_id  TEXT NOT NULL,
			side      TEXT NOT NULL,
			balance   TEXT NOT NULL,
			timestamp INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_balance_user_ts ON balance_history(user_id, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordTrade(userID string, rec model.TradeRecord, balanceAfter decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	ts := rec.Timestamp.UnixMilli()
	if _, err := tx.Exec(`INSERT INTO trades
		(id, user_id, timestamp, symbol, side, quantity, price, trade_value,
		 brokerage, taxes, total_cost, realized_pnl, status)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.ID, userID, ts, rec.Symbol, string(rec.Side), rec.Quantity,
		rec.Price.String(), rec.TradeValue.String(), rec.Brokerage.String(),
		rec.Taxes.String(), rec.TotalCost.String(), rec.RealizedPnL.String(), rec.Status,
	); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(`INSERT INTO balance_history
		(user_id, trade_id, side, balance, timestamp) VALUES (?,?,?,?,?)`,
		userID, rec.ID, string(rec.Side), balanceAfter.String(), ts,
	); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) ListTrades(ctx context.Context, userID, symbol string, limit int) ([]model.TradeRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id, timestamp, symbol, side, quantity, price, trade_value,
		brokerage, taxes, total_cost, realized_pnl, status
		FROM trades
		WHERE user_id = ? AND (? = '' OR symbol = ?)
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, userID, symbol, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TradeRecord
	for rows.Next() {
		var (
			rec                                               model.TradeRecord
			ts                                                int64
			side                                              string
			price, value, brokerage, taxes, total, realizedPL string
		)
		if err := rows.Scan(&rec.ID, &ts, &rec.Symbol, &side, &rec.Quantity, &price, &value,
			&brokerage, &taxes, &total, &realizedPL, &rec.Status); err != nil {
			return nil, err
		}
		rec.Side = model.Side(side)
		rec.Timestamp = time.UnixMilli(ts)
		for _, f := range []struct {
			dst *decimal.Decimal
			src string
		}{
			{&rec.Price, price}, {&rec.TradeValue, value}, {&rec.Brokerage, brokerage},
			{&rec.Taxes, taxes}, {&rec.TotalCost, total}, {&rec.RealizedPnL, realizedPL},
		} {
			if *f.dst, err = decimal.NewFromString(f.src); err != nil {
				return nil, fmt.Errorf("trade %s: %w", rec.ID, err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) BalanceHistory(ctx context.Context, userID string, limit int) ([]BalancePoint, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `SELECT trade_id, side, balance, timestamp FROM (
		SELECT id, trade_id, side, balance, timestamp FROM balance_history
		WHERE user_id = ? ORDER BY id DESC LIMIT ?
	) ORDER BY id ASC`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BalancePoint
	for rows.Next() {
		var (
			p         BalancePoint
			side, bal string
		)
		if err := rows.Scan(&p.TradeID, &side, &bal, &p.Timestamp); err != nil {
			return nil, err
		}
		p.Side = model.Side(side)
		if p.Balance, err = decimal.NewFromString(bal); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
