package game

import "time"

const ProtocolVersion = "1.0"

type Phase string

const (
	PhaseIdle     Phase = "IDLE"
	PhasePreFlop  Phase = "PRE-FLOP"
	PhaseFlop     Phase = "FLOP"
	PhaseTurn     Phase = "TURN"
	PhaseRiver    Phase = "RIVER"
	PhaseShowdown Phase = "SHOWDOWN"
)

func (p Phase) Betting() bool {
	switch p {
	case PhasePreFlop, PhaseFlop, PhaseTurn, PhaseRiver:
		return true
	}
	return false
}

// next street and how many board cards it reveals
func (p Phase) next() (Phase, int) {
	switch p {
	case PhasePreFlop:
		return PhaseFlop, 3
	case PhaseFlop:
		return PhaseTurn, 1
	case PhaseTurn:
		return PhaseRiver, 1
	}
	return PhaseShowdown, 0
}

type ActionType string

const (
	ActionFold  ActionType = "fold"
	ActionCall  ActionType = "call"
	ActionCheck ActionType = "check"
	ActionRaise ActionType = "raise"
)

// Labels shown as a seat's last action.
const (
	LabelFold       = "FOLD"
	LabelCheck      = "CHECK"
	LabelCall       = "CALL"
	LabelRaise      = "RAISE"
	LabelAllIn      = "ALL-IN"
	LabelSmallBlind = "SB"
	LabelBigBlind   = "BB"
	LabelLeft       = "LEFT"
)

// Seat is a member holding chips. Fields below the blank line are hand
// scoped and reset by resetHand.
type Seat struct {
	Nick         string
	ConnID       string
	Stack        int64
	PendingChips int64
	BoughtIn     int64
	Ready        bool
	IdleSince    time.Time
	Ghost        bool
	Disconnected bool

	InHand         bool
	Hole           []Card
	BetInRound     int64
	InvestedInHand int64
	Folded         bool
	HasActed       bool
	LastAction     string
}

func (s *Seat) resetHand() {
	s.InHand = false
	s.Hole = nil
	s.BetInRound = 0
	s.InvestedInHand = 0
	s.Folded = false
	s.HasActed = false
	s.LastAction = ""
}

// actionable seats are still in the hand and can put chips in.
func (s *Seat) actionable() bool {
	return s.InHand && !s.Folded && s.Stack > 0
}

func (s *Seat) live() bool {
	return s.InHand && !s.Folded
}

// pay moves up to amount from the stack into the current round and
// returns what was actually paid.
func (s *Seat) pay(amount int64) int64 {
	cost := min(amount, s.Stack)
	if cost <= 0 {
		return 0
	}
	s.Stack -= cost
	s.BetInRound += cost
	s.InvestedInHand += cost
	return cost
}

// Observer watches the table without chips.
type Observer struct {
	Nick   string
	ConnID string
}

type Table struct {
	ID           string
	HandID       string
	Seats        []*Seat
	Observers    []*Observer
	Deck         *Deck
	Board        []Card
	Pot          int64
	CurrentBet   int64
	Phase        Phase
	DealerIndex  int
	ActiveIndex  int
	LastMoveTime time.Time
}

func newTable(id string) *Table {
	return &Table{ID: id, Phase: PhaseIdle, DealerIndex: -1, ActiveIndex: -1}
}

func (t *Table) seatByConn(connID string) (int, *Seat) {
	if connID == "" {
		return -1, nil
	}
	for i, s := range t.Seats {
		if s.ConnID == connID {
			return i, s
		}
	}
	return -1, nil
}

func (t *Table) observerByConn(connID string) (int, *Observer) {
	if connID == "" {
		return -1, nil
	}
	for i, o := range t.Observers {
		if o.ConnID == connID {
			return i, o
		}
	}
	return -1, nil
}

func (t *Table) hasNick(nick string) bool {
	for _, s := range t.Seats {
		if s.Nick == nick {
			return true
		}
	}
	for _, o := range t.Observers {
		if o.Nick == nick {
			return true
		}
	}
	return false
}

func (t *Table) removeSeat(idx int) {
	t.Seats = append(t.Seats[:idx], t.Seats[idx+1:]...)
	if idx <= t.DealerIndex {
		// keep the button on the same player
		t.DealerIndex--
	}
}

func (t *Table) removeObserver(idx int) {
	t.Observers = append(t.Observers[:idx], t.Observers[idx+1:]...)
}

// nextSeat scans forward from after `from`, wrapping, and returns the first
// index accepted by ok. The scan visits each seat at most once; -1 means no
// seat qualifies.
func (t *Table) nextSeat(from int, ok func(*Seat) bool) int {
	n := len(t.Seats)
	for step := 1; step <= n; step++ {
		i := ((from+step)%n + n) % n
		if ok(t.Seats[i]) {
			return i
		}
	}
	return -1
}

func (t *Table) count(ok func(*Seat) bool) int {
	n := 0
	for _, s := range t.Seats {
		if ok(s) {
			n++
		}
	}
	return n
}

func (t *Table) investedTotal() int64 {
	var total int64
	for _, s := range t.Seats {
		total += s.InvestedInHand
	}
	return total
}
