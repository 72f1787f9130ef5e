package game

type roundState int

const (
	roundOpen roundState = iota
	roundClosed
	roundWalkover
)

// applyAction mutates the table for an action that passed ValidateAction
// and returns the chips moved into the pot.
func applyAction(t *Table, idx int, action ActionType, amount int64) int64 {
	s := t.Seats[idx]
	s.HasActed = true
	switch action {
	case ActionFold:
		s.Folded = true
		s.LastAction = LabelFold
		return 0
	case ActionCall, ActionCheck:
		cost := s.pay(max(t.CurrentBet-s.BetInRound, 0))
		t.Pot += cost
		switch {
		case cost == 0:
			s.LastAction = LabelCheck
		case s.Stack == 0:
			s.LastAction = LabelAllIn
		default:
			s.LastAction = LabelCall
		}
		return cost
	case ActionRaise:
		cost := s.pay(amount - s.BetInRound)
		t.Pot += cost
		t.CurrentBet = s.BetInRound
		s.LastAction = LabelRaise
		if s.Stack == 0 {
			s.LastAction = LabelAllIn
		}
		for j, other := range t.Seats {
			if j != idx && other.actionable() {
				other.HasActed = false
			}
		}
		return cost
	}
	return 0
}

// evaluateRound reports whether betting on the current street is over.
// All-in seats count as settled; with a single seat left able to bet the
// round closes once that seat has matched the current bet.
func evaluateRound(t *Table) roundState {
	if t.count((*Seat).live) <= 1 {
		return roundWalkover
	}
	var actionable []*Seat
	for _, s := range t.Seats {
		if s.actionable() {
			actionable = append(actionable, s)
		}
	}
	switch len(actionable) {
	case 0:
		return roundClosed
	case 1:
		if actionable[0].BetInRound >= t.CurrentBet {
			return roundClosed
		}
		return roundOpen
	}
	for _, s := range actionable {
		if !s.HasActed || s.BetInRound != t.CurrentBet {
			return roundOpen
		}
	}
	return roundClosed
}

func nextActor(t *Table, from int) int {
	return t.nextSeat(from, (*Seat).actionable)
}

// startStreet clears per-round betting state for a new street.
func startStreet(t *Table) {
	t.CurrentBet = 0
	for _, s := range t.Seats {
		s.BetInRound = 0
		if s.live() {
			s.HasActed = false
			s.LastAction = ""
		}
	}
}
