package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"flappy-casino/internal/auth"
	"flappy-casino/internal/store"
)

var (
	ErrInsufficientFunds  = store.ErrInsufficientFunds
	ErrInvalidCredentials = errors.New("invalid_credentials")
)

type Payout = store.Payout

// Ledger is the money boundary of the table. Every method is one database
// transaction; a returned error means nothing was written.
type Ledger struct {
	Store *store.Store
}

func New(s *store.Store) *Ledger {
	return &Ledger{Store: s}
}

func NormalizeNick(nick string) string {
	return strings.TrimSpace(nick)
}

func (l *Ledger) Register(ctx context.Context, nick, pin string, coins int64) error {
	nick = NormalizeNick(nick)
	if nick == "" {
		return ErrInvalidCredentials
	}
	hash, err := auth.HashPIN(pin, auth.DefaultParams)
	if err != nil {
		return err
	}
	return l.Store.CreateAccount(ctx, nick, hash, coins)
}

// Authenticate checks the PIN and returns the current wallet balance.
func (l *Ledger) Authenticate(ctx context.Context, nick, pin string) (int64, error) {
	acct, err := l.Store.GetAccount(ctx, NormalizeNick(nick))
	if errors.Is(err, store.ErrNotFound) {
		return 0, ErrInvalidCredentials
	}
	if err != nil {
		return 0, err
	}
	ok, err := auth.VerifyPIN(pin, acct.PinHash)
	if err != nil {
		return 0, fmt.Errorf("verify pin for %s: %w", acct.Nick, err)
	}
	if !ok {
		return 0, ErrInvalidCredentials
	}
	return acct.Coins, nil
}

func (l *Ledger) Balance(ctx context.Context, nick string) (int64, error) {
	return l.Store.GetBalance(ctx, nick)
}

func (l *Ledger) BuyIn(ctx context.Context, nick string, amount int64, tableID string) (int64, error) {
	return l.Store.Debit(ctx, nick, amount, store.EntryBuyIn, "table", tableID)
}

func (l *Ledger) Rebuy(ctx context.Context, nick string, amount int64, tableID string) (int64, error) {
	return l.Store.Debit(ctx, nick, amount, store.EntryRebuy, "table", tableID)
}

// CashOut returns chips to the wallet; the poker result moves by
// chips minus everything bought in during the sitting.
func (l *Ledger) CashOut(ctx context.Context, nick string, chips, boughtIn int64, tableID string) (int64, error) {
	return l.Store.CashOut(ctx, nick, chips, chips-boughtIn, "table", tableID)
}

func (l *Ledger) PayOut(ctx context.Context, handID string, payouts []Payout) error {
	_, err := l.Store.PayOut(ctx, store.EntryPotPayout, "hand", handID, payouts)
	return err
}

// Refund gives back chips invested in an aborted hand by seats that already
// cashed out.
func (l *Ledger) Refund(ctx context.Context, handID string, refunds []Payout) error {
	_, err := l.Store.PayOut(ctx, store.EntryRefund, "hand", handID, refunds)
	return err
}

func (l *Ledger) Topup(ctx context.Context, nick string, amount int64) (int64, error) {
	return l.Store.Credit(ctx, nick, amount, store.EntryTopup, "admin", "")
}

func (l *Ledger) History(ctx context.Context, nick string, limit int) ([]store.LedgerEntry, error) {
	return l.Store.ListLedgerEntries(ctx, NormalizeNick(nick), limit)
}

func (l *Ledger) Leaderboard(ctx context.Context, limit, offset int) ([]store.LeaderboardEntry, error) {
	return l.Store.ListLeaderboard(ctx, limit, offset)
}
