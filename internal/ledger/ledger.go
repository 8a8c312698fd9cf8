// Package ledger is the shared trade and capital store. Overlapping cron
// runs (scanner, monitor, reports) open the same SQLite file; WAL mode
// plus a bounded busy timeout arbitrate the writes.
//
// Capital accounting is sign-uniform: opening a position debits
// entry_price*quantity from the strategy wallet and closing credits
// exit_price*quantity back, regardless of side or asset kind. Wallet
// balances are therefore always reconstructible by replaying the trades
// table from the base allocation.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"swing-trader/internal/logger"
	"swing-trader/internal/types"
)

// DefaultAllocation is the capital a strategy wallet is seeded with on
// first use.
const DefaultAllocation = 100000.0

var (
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrDuplicatePosition = errors.New("open position already exists for symbol and strategy")
	ErrPositionNotFound  = errors.New("position not found")
	ErrPositionClosed    = errors.New("position already closed")
	ErrPositionNotClosed = errors.New("position is not closed")
	ErrWalletNotFound    = errors.New("wallet not found")
)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    symbol TEXT NOT NULL,
    strategy TEXT,
    side TEXT,
    entry_price REAL,
    quantity INTEGER,
    entry_time TIMESTAMP,
    stop_loss REAL,
    target REAL,
    status TEXT,
    exit_price REAL,
    exit_time TIMESTAMP,
    realized_pnl REAL,
    exit_reason TEXT,
    asset_kind TEXT DEFAULT 'EQUITY',
    strike_price REAL,
    expiry_date TIMESTAMP
);

CREATE TABLE IF NOT EXISTS strategy_wallets (
    strategy TEXT PRIMARY KEY,
    allocation REAL,
    available_balance REAL,
    updated_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS position_state (
    trade_id INTEGER PRIMARY KEY,
    stage TEXT NOT NULL,
    trail_stop REAL,
    best_price REAL,
    updated_at TIMESTAMP
);
`

// Store wraps the SQLite connection pool.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the ledger database at path.
func Open(path string) (*Store, error) {
	// busy_timeout bounds the wait for a competing writer's lock.
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=10000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY
	// churn inside this process.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init ledger schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// EnsureWallet creates the strategy wallet with the default allocation if
// it does not exist yet, and returns its current state.
func (s *Store) EnsureWallet(ctx context.Context, strategy string) (types.StrategyWallet, error) {
	return s.ensureWalletWith(ctx, strategy, DefaultAllocation)
}

// EnsureWalletWith seeds a wallet with an explicit allocation.
func (s *Store) EnsureWalletWith(ctx context.Context, strategy string, allocation float64) (types.StrategyWallet, error) {
	return s.ensureWalletWith(ctx, strategy, allocation)
}

func (s *Store) ensureWalletWith(ctx context.Context, strategy string, allocation float64) (types.StrategyWallet, error) {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO strategy_wallets (strategy, allocation, available_balance, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(strategy) DO NOTHING`,
		strategy, allocation, allocation, time.Now())
	if err != nil {
		return types.StrategyWallet{}, fmt.Errorf("ensure wallet %s: %w", strategy, err)
	}
	return s.Wallet(ctx, strategy)
}

// Wallet returns the wallet row for a strategy.
func (s *Store) Wallet(ctx context.Context, strategy string) (types.StrategyWallet, error) {
	var w types.StrategyWallet
	err := s.db.QueryRowContext(ctx, `
        SELECT strategy, allocation, available_balance, updated_at
        FROM strategy_wallets WHERE strategy = ?`, strategy).
		Scan(&w.Strategy, &w.Allocation, &w.AvailableBalance, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return w, fmt.Errorf("wallet %s: %w", strategy, ErrWalletNotFound)
	}
	if err != nil {
		return w, fmt.Errorf("wallet %s: %w", strategy, err)
	}
	return w, nil
}

// Wallets lists every strategy wallet.
func (s *Store) Wallets(ctx context.Context) ([]types.StrategyWallet, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT strategy, allocation, available_balance, updated_at
        FROM strategy_wallets ORDER BY strategy`)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var out []types.StrategyWallet
	for rows.Next() {
		var w types.StrategyWallet
		if err := rows.Scan(&w.Strategy, &w.Allocation, &w.AvailableBalance, &w.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// OpenPosition atomically records a new position and debits its cost from
// the strategy wallet. It rejects a duplicate open position for the same
// symbol+strategy pair and an entry the wallet cannot fund.
func (s *Store) OpenPosition(ctx context.Context, p *types.Position) (int64, error) {
	if _, err := s.EnsureWallet(ctx, p.Strategy); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("open position: %w", err)
	}
	defer tx.Rollback()

	var dup int
	err = tx.QueryRowContext(ctx, `
        SELECT count(*) FROM trades
        WHERE symbol = ? AND strategy = ? AND status = ?`,
		p.Symbol, p.Strategy, types.StatusOpen).Scan(&dup)
	if err != nil {
		return 0, err
	}
	if dup > 0 {
		return 0, fmt.Errorf("%s/%s: %w", p.Symbol, p.Strategy, ErrDuplicatePosition)
	}

	cost := p.EntryPrice * float64(p.Quantity)
	var balance float64
	err = tx.QueryRowContext(ctx,
		`SELECT available_balance FROM strategy_wallets WHERE strategy = ?`,
		p.Strategy).Scan(&balance)
	if err != nil {
		return 0, err
	}
	if cost > balance {
		return 0, fmt.Errorf("%s needs %.2f, has %.2f: %w",
			p.Strategy, cost, balance, ErrInsufficientFunds)
	}

	res, err := tx.ExecContext(ctx, `
        INSERT INTO trades (symbol, strategy, side, entry_price, quantity, entry_time,
                            stop_loss, target, status, asset_kind, strike_price, expiry_date)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Symbol, p.Strategy, p.Side, p.EntryPrice, p.Quantity, p.EntryTime,
		p.StopLoss, p.Target, types.StatusOpen, p.AssetKind,
		nullFloat(p.StrikePrice), nullTime(p.ExpiryDate))
	if err != nil {
		return 0, fmt.Errorf("insert trade: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err := adjustBalance(ctx, tx, p.Strategy, -cost); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("open position: %w", err)
	}

	p.ID = id
	p.Status = types.StatusOpen
	logger.Info(ctx, "position opened",
		"trade_id", id, "symbol", p.Symbol, "strategy", p.Strategy,
		"side", p.Side, "qty", p.Quantity, "entry", p.EntryPrice, "invested", cost)
	return id, nil
}

// ClosePosition atomically marks the trade closed, records realized P&L
// and credits the exit value back to the strategy wallet. Closing an
// already-closed trade is an error so overlapping monitor runs cannot
// double-credit the wallet.
func (s *Store) ClosePosition(ctx context.Context, id int64, exitPrice float64, reason string) (float64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("close position: %w", err)
	}
	defer tx.Rollback()

	var (
		entry    float64
		qty      int
		side     types.Action
		symbol   string
		strategy string
		status   types.Status
		kind     types.AssetKind
	)
	err = tx.QueryRowContext(ctx, `
        SELECT entry_price, quantity, side, symbol, strategy, status, asset_kind
        FROM trades WHERE id = ?`, id).
		Scan(&entry, &qty, &side, &symbol, &strategy, &status, &kind)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("trade %d: %w", id, ErrPositionNotFound)
	}
	if err != nil {
		return 0, err
	}
	if status == types.StatusClosed {
		return 0, fmt.Errorf("trade %d: %w", id, ErrPositionClosed)
	}

	pnl := (exitPrice - entry) * float64(qty)
	if side == types.Sell {
		pnl = (entry - exitPrice) * float64(qty)
	}
	if kind == types.OptionBasket {
		// Basket prices are signed net premium to open the leg set;
		// closing below the entry flow is the profitable direction for
		// credit and debit templates alike.
		pnl = (entry - exitPrice) * float64(qty)
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx, `
        UPDATE trades
        SET status = ?, exit_price = ?, exit_time = ?, realized_pnl = ?, exit_reason = ?
        WHERE id = ?`,
		types.StatusClosed, exitPrice, now, pnl, reason, id)
	if err != nil {
		return 0, fmt.Errorf("close trade %d: %w", id, err)
	}

	exitValue := exitPrice * float64(qty)
	if err := adjustBalance(ctx, tx, strategy, exitValue); err != nil {
		return 0, err
	}

	// Trail state is keyed by trade id; drop it with the close.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM position_state WHERE trade_id = ?`, id); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("close position: %w", err)
	}

	logger.Info(ctx, "position closed",
		"trade_id", id, "symbol", symbol, "strategy", strategy,
		"exit", exitPrice, "pnl", pnl, "reason", reason)
	return pnl, nil
}

// Get returns one position by id.
func (s *Store) Get(ctx context.Context, id int64) (*types.Position, error) {
	row := s.db.QueryRowContext(ctx, selectPositions+` WHERE id = ?`, id)
	p, err := scanPosition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("trade %d: %w", id, ErrPositionNotFound)
	}
	return p, err
}

// ListOpen returns all open positions, oldest first.
func (s *Store) ListOpen(ctx context.Context) ([]*types.Position, error) {
	return s.listPositions(ctx, ` WHERE status = ? ORDER BY entry_time`, types.StatusOpen)
}

// CountOpenByStrategy returns how many positions a strategy holds open.
func (s *Store) CountOpenByStrategy(ctx context.Context, strategy string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
        SELECT count(*) FROM trades WHERE strategy = ? AND status = ?`,
		strategy, types.StatusOpen).Scan(&n)
	return n, err
}

// HasOpen reports whether an open position exists for symbol+strategy.
func (s *Store) HasOpen(ctx context.Context, symbol, strategy string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
        SELECT count(*) FROM trades WHERE symbol = ? AND strategy = ? AND status = ?`,
		symbol, strategy, types.StatusOpen).Scan(&n)
	return n > 0, err
}

// ClosedBetween returns positions closed in [from, to), oldest first.
func (s *Store) ClosedBetween(ctx context.Context, from, to time.Time) ([]*types.Position, error) {
	return s.listPositions(ctx,
		` WHERE status = ? AND exit_time >= ? AND exit_time < ? ORDER BY exit_time`,
		types.StatusClosed, from, to)
}

const selectPositions = `
    SELECT id, symbol, strategy, side, entry_price, quantity, entry_time,
           stop_loss, target, status,
           exit_price, exit_time, realized_pnl, exit_reason,
           asset_kind, strike_price, expiry_date
    FROM trades`

func (s *Store) listPositions(ctx context.Context, where string, args ...any) ([]*types.Position, error) {
	rows, err := s.db.QueryContext(ctx, selectPositions+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	defer rows.Close()

	var out []*types.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPosition(row rowScanner) (*types.Position, error) {
	var (
		p          types.Position
		exitPrice  sql.NullFloat64
		exitTime   sql.NullTime
		pnl        sql.NullFloat64
		exitReason sql.NullString
		strike     sql.NullFloat64
		expiry     sql.NullTime
	)
	err := row.Scan(&p.ID, &p.Symbol, &p.Strategy, &p.Side, &p.EntryPrice,
		&p.Quantity, &p.EntryTime, &p.StopLoss, &p.Target, &p.Status,
		&exitPrice, &exitTime, &pnl, &exitReason, &p.AssetKind, &strike, &expiry)
	if err != nil {
		return nil, err
	}
	p.ExitPrice = exitPrice.Float64
	if exitTime.Valid {
		p.ExitTime = exitTime.Time
	}
	p.RealizedPnL = pnl.Float64
	p.ExitReason = exitReason.String
	p.StrikePrice = strike.Float64
	if expiry.Valid {
		p.ExpiryDate = expiry.Time
	}
	return &p, nil
}

func adjustBalance(ctx context.Context, tx *sql.Tx, strategy string, delta float64) error {
	res, err := tx.ExecContext(ctx, `
        UPDATE strategy_wallets
        SET available_balance = available_balance + ?, updated_at = ?
        WHERE strategy = ?`, delta, time.Now(), strategy)
	if err != nil {
		return fmt.Errorf("adjust wallet %s: %w", strategy, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("adjust wallet %s: no such wallet", strategy)
	}
	return nil
}

func nullFloat(f float64) any {
	if f == 0 {
		return nil
	}
	return f
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
