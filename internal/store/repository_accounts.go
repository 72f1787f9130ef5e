package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `nick, pin_hash, coins, poker_net_profit, created_at, updated_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	if err := row.Scan(&a.Nick, &a.PinHash, &a.Coins, &a.PokerNetProfit, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, mapNotFound(err)
	}
	return &a, nil
}

func (s *Store) CreateAccount(ctx context.Context, nick, pinHash string, coins int64) error {
	if coins < 0 {
		return ErrInvalidAmount
	}
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO accounts (nick, pin_hash, coins) VALUES ($1, $2, $3)`,
		nick, pinHash, coins)
	if isUniqueViolation(err) {
		return ErrAccountExists
	}
	return err
}

func (s *Store) GetAccount(ctx context.Context, nick string) (*Account, error) {
	return scanAccount(s.Pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE nick = $1`, nick))
}

func (s *Store) GetBalance(ctx context.Context, nick string) (int64, error) {
	var bal int64
	err := s.Pool.QueryRow(ctx, `SELECT coins FROM accounts WHERE nick = $1`, nick).Scan(&bal)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return bal, nil
}

// Debit removes amount from the wallet, failing with ErrInsufficientFunds
// when the balance read inside the transaction is too small.
func (s *Store) Debit(ctx context.Context, nick string, amount int64, entryType, refType, refID string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return s.adjust(ctx, nick, -amount, 0, entryType, refType, refID)
}

func (s *Store) Credit(ctx context.Context, nick string, amount int64, entryType, refType, refID string) (int64, error) {
	if amount < 0 {
		return 0, ErrInvalidAmount
	}
	return s.adjust(ctx, nick, amount, 0, entryType, refType, refID)
}

// CashOut returns table chips to the wallet and books profitDelta against
// the cumulative poker result in the same transaction.
func (s *Store) CashOut(ctx context.Context, nick string, chips, profitDelta int64, refType, refID string) (int64, error) {
	if chips < 0 {
		return 0, ErrInvalidAmount
	}
	return s.adjust(ctx, nick, chips, profitDelta, EntryCashOut, refType, refID)
}

func (s *Store) adjust(ctx context.Context, nick string, coinsDelta, profitDelta int64, entryType, refType, refID string) (int64, error) {
	var newBal int64
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		bal, err := lockBalance(ctx, tx, nick)
		if err != nil {
			return err
		}
		newBal = bal + coinsDelta
		if newBal < 0 {
			return ErrInsufficientFunds
		}
		if err := writeBalance(ctx, tx, nick, newBal, profitDelta); err != nil {
			return err
		}
		return insertLedgerEntry(ctx, tx, nick, entryType, coinsDelta, refType, refID)
	})
	if err != nil {
		return 0, err
	}
	return newBal, nil
}

// ListLeaderboard orders accounts by cumulative poker result.
func (s *Store) ListLeaderboard(ctx context.Context, limit, offset int) ([]LeaderboardEntry, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT nick, poker_net_profit, coins
		   FROM accounts
		  ORDER BY poker_net_profit DESC, nick ASC
		  LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []LeaderboardEntry{}
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Nick, &e.PokerNetProfit, &e.Coins); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
