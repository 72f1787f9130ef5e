package game

import "errors"

// Rejections. The error text is the reason code sent to the client.
var (
	ErrWrongPhase        = errors.New("wrong_phase")
	ErrNotYourTurn       = errors.New("not_your_turn")
	ErrAlreadyFolded     = errors.New("already_folded")
	ErrRaiseTooSmall     = errors.New("raise_too_small")
	ErrRaiseExceedsStack = errors.New("insufficient_stack")
	ErrInvalidAction     = errors.New("invalid_action")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrTableFull         = errors.New("table_full")
	ErrNotJoined         = errors.New("not_joined")
	ErrNotSeated         = errors.New("not_seated")
	ErrNotObserver       = errors.New("not_observer")
	ErrAlreadyAtTable    = errors.New("already_at_table")
	ErrNoChips           = errors.New("no_chips")
)

// ValidateAction checks an action against the table without mutating it.
func ValidateAction(t *Table, seatIdx int, action ActionType, amount int64) error {
	if !t.Phase.Betting() {
		return ErrWrongPhase
	}
	if seatIdx != t.ActiveIndex {
		return ErrNotYourTurn
	}
	me := t.Seats[seatIdx]
	if me.Folded || !me.InHand {
		return ErrAlreadyFolded
	}
	switch action {
	case ActionFold, ActionCall:
		return nil
	case ActionCheck:
		if t.CurrentBet > me.BetInRound && me.Stack > 0 {
			return ErrInvalidAction
		}
		return nil
	case ActionRaise:
		if amount <= t.CurrentBet {
			return ErrRaiseTooSmall
		}
		if amount-me.BetInRound > me.Stack {
			return ErrRaiseExceedsStack
		}
		return nil
	default:
		return ErrInvalidAction
	}
}
