package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresStore persists wallets and transactions in PostgreSQL. Units of
// work map onto database transactions and rely on SELECT ... FOR UPDATE row
// locks to serialize concurrent operations against the same wallet.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a Postgres-backed wallet store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Begin opens a database transaction wrapped as a unit of work.
func (s *PostgresStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin wallet tx: %w", err)
	}
	return &postgresTx{tx: tx}, nil
}

// CreateWallet inserts a wallet row.
func (s *PostgresStore) CreateWallet(ctx context.Context, w Wallet) error {
	walletID, err := uuid.Parse(w.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(w.UserID)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `INSERT INTO wallets (id, user_id, balance, currency, updated_at)
        VALUES ($1, $2, $3, $4, $5)`, walletID, userID, w.Balance, w.Currency, w.UpdatedAt.UTC())
	return err
}

// WalletByUser fetches the committed wallet state for a user without locking.
func (s *PostgresStore) WalletByUser(ctx context.Context, userID string) (Wallet, error) {
	row := s.db.QueryRow(ctx, `SELECT id, user_id, balance, currency, updated_at
        FROM wallets WHERE user_id = $1`, userID)
	return scanWallet(row)
}

// Transactions lists ledger entries matching the filter, newest first.
func (s *PostgresStore) Transactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT id, wallet_id, type, amount, category, created_at FROM transactions`)

	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.WalletID != "" {
		conds = append(conds, "wallet_id = "+arg(filter.WalletID))
	}
	if filter.Kind != "" {
		conds = append(conds, "type = "+arg(string(filter.Kind)))
	}
	if filter.Category != "" {
		conds = append(conds, "category = "+arg(filter.Category))
	}
	if !filter.From.IsZero() {
		conds = append(conds, "created_at >= "+arg(filter.From.UTC()))
	}
	if !filter.To.IsZero() {
		conds = append(conds, "created_at <= "+arg(filter.To.UTC()))
	}
	if len(conds) > 0 {
		query.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	query.WriteString(" ORDER BY created_at DESC")
	if filter.Limit > 0 {
		query.WriteString(" LIMIT " + arg(filter.Limit))
	}

	rows, err := s.db.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type postgresTx struct {
	tx pgx.Tx
}

const walletForUpdateQuery = `SELECT id, user_id, balance, currency, updated_at
    FROM wallets WHERE user_id = $1 FOR UPDATE`

func (t *postgresTx) WalletForUpdate(ctx context.Context, userID string) (Wallet, error) {
	return scanWallet(t.tx.QueryRow(ctx, walletForUpdateQuery, userID))
}

// WalletsForUpdate locks both wallets in ascending wallet-id order. A missing
// wallet for userA maps to ErrWalletNotFound, for userB to ErrRecipientNotFound.
// When both users are the same, the single row is returned on both sides.
func (t *postgresTx) WalletsForUpdate(ctx context.Context, userA, userB string) (Wallet, Wallet, error) {
	if userA == userB {
		w, err := t.WalletForUpdate(ctx, userA)
		return w, w, err
	}

	rows, err := t.tx.Query(ctx, `SELECT id, user_id, balance, currency, updated_at
        FROM wallets WHERE user_id = ANY($1) ORDER BY id FOR UPDATE`, []string{userA, userB})
	if err != nil {
		return Wallet{}, Wallet{}, err
	}
	defer rows.Close()

	byUser := make(map[string]Wallet, 2)
	for rows.Next() {
		w, err := scanWalletRow(rows)
		if err != nil {
			return Wallet{}, Wallet{}, err
		}
		byUser[w.UserID] = w
	}
	if err := rows.Err(); err != nil {
		return Wallet{}, Wallet{}, err
	}

	a, ok := byUser[userA]
	if !ok {
		return Wallet{}, Wallet{}, ErrWalletNotFound
	}
	b, ok := byUser[userB]
	if !ok {
		return Wallet{}, Wallet{}, ErrRecipientNotFound
	}
	return a, b, nil
}

func (t *postgresTx) UpdateBalance(ctx context.Context, walletID string, balance decimal.Decimal, at time.Time) error {
	cmd, err := t.tx.Exec(ctx, `UPDATE wallets SET balance = $1, updated_at = $2 WHERE id = $3`,
		balance, at.UTC(), walletID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrWalletNotFound
	}
	return nil
}

func (t *postgresTx) InsertTransaction(ctx context.Context, entry Transaction) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO transactions (id, wallet_id, type, amount, category, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.WalletID, string(entry.Kind), entry.Amount, entry.Category, entry.CreatedAt.UTC())
	return err
}

func (t *postgresTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *postgresTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWallet(row rowScanner) (Wallet, error) {
	w, err := scanWalletRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Wallet{}, ErrWalletNotFound
	}
	return w, err
}

func scanWalletRow(row rowScanner) (Wallet, error) {
	var (
		w         Wallet
		id        uuid.UUID
		userID    uuid.UUID
		updatedAt time.Time
	)
	if err := row.Scan(&id, &userID, &w.Balance, &w.Currency, &updatedAt); err != nil {
		return Wallet{}, err
	}
	w.ID = id.String()
	w.UserID = userID.String()
	w.UpdatedAt = updatedAt.UTC()
	return w, nil
}

func scanTransaction(row rowScanner) (Transaction, error) {
	var (
		entry     Transaction
		id        uuid.UUID
		walletID  uuid.UUID
		kind      string
		createdAt time.Time
	)
	if err := row.Scan(&id, &walletID, &kind, &entry.Amount, &entry.Category, &createdAt); err != nil {
		return Transaction{}, err
	}
	entry.ID = id.String()
	entry.WalletID = walletID.String()
	entry.Kind = Kind(kind)
	entry.CreatedAt = createdAt.UTC()
	return entry, nil
}
