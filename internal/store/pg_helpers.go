package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

const pgUniqueViolation = "23505"

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// lockBalance reads the wallet under a row lock held until the transaction
// ends.
func lockBalance(ctx context.Context, tx pgx.Tx, nick string) (int64, error) {
	var bal int64
	err := tx.QueryRow(ctx, `SELECT coins FROM accounts WHERE nick = $1 FOR UPDATE`, nick).Scan(&bal)
	return bal, mapNotFound(err)
}

func writeBalance(ctx context.Context, tx pgx.Tx, nick string, coins, profitDelta int64) error {
	_, err := tx.Exec(ctx,
		`UPDATE accounts SET coins = $1, poker_net_profit = poker_net_profit + $2, updated_at = now() WHERE nick = $3`,
		coins, profitDelta, nick)
	if err != nil {
		return fmt.Errorf("update %s: %w", nick, err)
	}
	return nil
}

func insertLedgerEntry(ctx context.Context, tx pgx.Tx, nick, entryType string, amount int64, refType, refID string) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO ledger_entries (id, nick, type, amount, ref_type, ref_id) VALUES ($1, $2, $3, $4, $5, $6)`,
		NewID(), nick, entryType, amount, nullText(refType), nullText(refID))
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

func nullText(v string) pgtype.Text {
	return pgtype.Text{String: v, Valid: v != ""}
}
