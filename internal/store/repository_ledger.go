package store

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// PayOut settles a hand in one transaction. Every winner row is locked and
// read before any of them is written, so a concurrent rebuy or cash-out for
// one winner cannot interleave with the settlement of another. Each amount
// is added to both the wallet and the poker net result.
func (s *Store) PayOut(ctx context.Context, entryType, refType, refID string, payouts []Payout) (map[string]int64, error) {
	totals := map[string]int64{}
	for _, p := range payouts {
		if p.Amount < 0 {
			return nil, ErrInvalidAmount
		}
		if p.Amount == 0 {
			continue
		}
		totals[p.Nick] += p.Amount
	}
	if len(totals) == 0 {
		return map[string]int64{}, nil
	}
	nicks := make([]string, 0, len(totals))
	for n := range totals {
		nicks = append(nicks, n)
	}
	// fixed lock order
	sort.Strings(nicks)

	balances := make(map[string]int64, len(nicks))
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		for _, nick := range nicks {
			bal, err := lockBalance(ctx, tx, nick)
			if err != nil {
				return err
			}
			balances[nick] = bal
		}
		for _, nick := range nicks {
			amount := totals[nick]
			if err := writeBalance(ctx, tx, nick, balances[nick]+amount, amount); err != nil {
				return err
			}
			if err := insertLedgerEntry(ctx, tx, nick, entryType, amount, refType, refID); err != nil {
				return err
			}
			balances[nick] += amount
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return balances, nil
}

func (s *Store) ListLedgerEntries(ctx context.Context, nick string, limit int) ([]LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT id, nick, type, amount, ref_type, ref_id, created_at
		   FROM ledger_entries
		  WHERE nick = $1
		  ORDER BY created_at DESC, id DESC
		  LIMIT $2`, nick, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []LedgerEntry{}
	for rows.Next() {
		var (
			e       LedgerEntry
			refType pgtype.Text
			refID   pgtype.Text
		)
		if err := rows.Scan(&e.ID, &e.Nick, &e.Type, &e.Amount, &refType, &refID, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.RefType = refType.String
		e.RefID = refID.String
		out = append(out, e)
	}
	return out, rows.Err()
}
