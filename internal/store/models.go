package store

import "time"

type Account struct {
	Nick           string
	PinHash        string
	Coins          int64
	PokerNetProfit int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type LedgerEntry struct {
	ID        string
	Nick      string
	Type      string
	Amount    int64
	RefType   string
	RefID     string
	CreatedAt time.Time
}

type LeaderboardEntry struct {
	Nick           string `json:"nick"`
	PokerNetProfit int64  `json:"poker_net_profit"`
	Coins          int64  `json:"coins"`
}

// Payout is one credit inside a multi-account settlement.
type Payout struct {
	Nick   string
	Amount int64
}

// Ledger entry types.
const (
	EntryBuyIn     = "buy_in"
	EntryRebuy     = "rebuy"
	EntryCashOut   = "cash_out"
	EntryPotPayout = "pot_payout"
	EntryTopup     = "topup"
	EntryRefund    = "hand_refund"
)
