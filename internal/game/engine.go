package game

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"flappy-casino/internal/ledger"
	"flappy-casino/internal/store"

	"github.com/coder/quartz"
	"github.com/rs/zerolog/log"
)

// Ledger is the money collaborator. Every call is a committed transaction or
// an error with no effect.
type Ledger interface {
	Authenticate(ctx context.Context, nick, pin string) (int64, error)
	BuyIn(ctx context.Context, nick string, amount int64, tableID string) (int64, error)
	Rebuy(ctx context.Context, nick string, amount int64, tableID string) (int64, error)
	CashOut(ctx context.Context, nick string, chips, boughtIn int64, tableID string) (int64, error)
	PayOut(ctx context.Context, handID string, payouts []ledger.Payout) error
	Refund(ctx context.Context, handID string, refunds []ledger.Payout) error
}

// HandValue orders hands; a higher Score wins.
type HandValue struct {
	Score int
	Name  string
}

type HandRanker interface {
	Rank(hole, board []Card) (HandValue, error)
}

// Notifier delivers a message to one connection.
type Notifier interface {
	Send(connID string, msg any)
}

type Config struct {
	TableID     string
	MaxSeats    int
	BuyIn       int64
	SmallBlind  int64
	BigBlind    int64
	TurnTimeout time.Duration
	// ShowdownPause delays the IDLE broadcast after a showdown.
	ShowdownPause time.Duration
}

type Option func(*Engine)

func WithClock(c quartz.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithScheduler sets how deferred work is queued. fn must run on the same
// goroutine as every other engine call.
func WithScheduler(s func(d time.Duration, fn func())) Option {
	return func(e *Engine) { e.schedule = s }
}

// WithDeckSource replaces shuffled decks, for tests that need fixed boards.
func WithDeckSource(f func() *Deck) Option {
	return func(e *Engine) { e.newDeck = f }
}

// Engine runs one table. It is not safe for concurrent use: the host must
// call it from a single goroutine.
type Engine struct {
	cfg      Config
	ledger   Ledger
	ranker   HandRanker
	notify   Notifier
	clock    quartz.Clock
	rng      *rand.Rand
	schedule func(time.Duration, func())
	newDeck  func() *Deck

	table *Table
	// set when a command ended in showdown; the snapshot goes out later
	holdBroadcast bool
}

func NewEngine(cfg Config, l Ledger, r HandRanker, n Notifier, opts ...Option) *Engine {
	e := &Engine{
		cfg:    cfg,
		ledger: l,
		ranker: r,
		notify: n,
		table:  newTable(cfg.TableID),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.clock == nil {
		e.clock = quartz.NewReal()
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(e.clock.Now().UnixNano()))
	}
	if e.schedule == nil {
		e.schedule = func(_ time.Duration, fn func()) { fn() }
	}
	if e.newDeck == nil {
		e.newDeck = func() *Deck {
			d := NewDeck()
			d.Shuffle(e.rng)
			return d
		}
	}
	return e
}

// Table exposes state for inspection. Callers must not mutate it.
func (e *Engine) Table() *Table {
	return e.table
}

func (e *Engine) now() time.Time {
	return e.clock.Now()
}

// Join authenticates nick and seats it, debiting the buy-in, or makes it an
// observer when every seat is taken.
func (e *Engine) Join(ctx context.Context, connID, nick, pin string) error {
	t := e.table
	nick = ledger.NormalizeNick(nick)
	if idx, _ := t.seatByConn(connID); idx >= 0 {
		return ErrAlreadyAtTable
	}
	if idx, _ := t.observerByConn(connID); idx >= 0 {
		return ErrAlreadyAtTable
	}
	if t.hasNick(nick) {
		return ErrAlreadyAtTable
	}
	balance, err := e.ledger.Authenticate(ctx, nick, pin)
	if err != nil {
		return e.ledgerErr(err, "authenticate", nick)
	}
	if len(t.Seats) >= e.cfg.MaxSeats {
		t.Observers = append(t.Observers, &Observer{Nick: nick, ConnID: connID})
		e.notify.Send(connID, TableJoined{Type: MsgTableJoined, ProtocolVersion: ProtocolVersion, Role: RoleObserver, Balance: balance})
		log.Info().Str("table_id", t.ID).Str("nick", nick).Msg("observer_joined")
		e.publish()
		return nil
	}
	balance, err = e.ledger.BuyIn(ctx, nick, e.cfg.BuyIn, t.ID)
	if err != nil {
		return e.ledgerErr(err, "buy_in", nick)
	}
	e.addSeat(nick, connID)
	e.notify.Send(connID, TableJoined{Type: MsgTableJoined, ProtocolVersion: ProtocolVersion, Role: RoleSeat, Chips: e.cfg.BuyIn, Balance: balance})
	log.Info().Str("table_id", t.ID).Str("nick", nick).Int64("buy_in", e.cfg.BuyIn).Msg("seat_joined")
	e.publish()
	return nil
}

// TakeSeat promotes an observer. Allowed in any phase; the seat is dealt in
// from the next hand.
func (e *Engine) TakeSeat(ctx context.Context, connID string) error {
	t := e.table
	idx, obs := t.observerByConn(connID)
	if obs == nil {
		return ErrNotObserver
	}
	if len(t.Seats) >= e.cfg.MaxSeats {
		return ErrTableFull
	}
	balance, err := e.ledger.BuyIn(ctx, obs.Nick, e.cfg.BuyIn, t.ID)
	if err != nil {
		return e.ledgerErr(err, "buy_in", obs.Nick)
	}
	t.removeObserver(idx)
	e.addSeat(obs.Nick, connID)
	e.notify.Send(connID, SeatJoined{Type: MsgSeatJoined, ProtocolVersion: ProtocolVersion, Chips: e.cfg.BuyIn, Balance: balance})
	log.Info().Str("table_id", t.ID).Str("nick", obs.Nick).Msg("observer_seated")
	e.publish()
	return nil
}

func (e *Engine) addSeat(nick, connID string) {
	e.table.Seats = append(e.table.Seats, &Seat{
		Nick:      nick,
		ConnID:    connID,
		Stack:     e.cfg.BuyIn,
		BoughtIn:  e.cfg.BuyIn,
		IdleSince: e.now(),
	})
}

func (e *Engine) SetReady(ctx context.Context, connID string) error {
	t := e.table
	_, seat := t.seatByConn(connID)
	if seat == nil {
		return ErrNotSeated
	}
	if t.Phase != PhaseIdle {
		return ErrWrongPhase
	}
	if seat.Stack <= 0 {
		return ErrNoChips
	}
	seat.Ready = true
	e.maybeStartHand(ctx)
	e.publish()
	return nil
}

// AddChips buys more chips. During a hand the chips of a dealt-in seat are
// held back and land on the stack when the hand ends.
func (e *Engine) AddChips(ctx context.Context, connID string, amount int64) error {
	t := e.table
	_, seat := t.seatByConn(connID)
	if seat == nil {
		return ErrNotSeated
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	balance, err := e.ledger.Rebuy(ctx, seat.Nick, amount, t.ID)
	if err != nil {
		return e.ledgerErr(err, "rebuy", seat.Nick)
	}
	seat.BoughtIn += amount
	if t.Phase == PhaseIdle || !seat.InHand {
		seat.Stack += amount
	} else {
		seat.PendingChips += amount
	}
	e.notify.Send(connID, RebuySuccess{
		Type: MsgRebuySuccess, ProtocolVersion: ProtocolVersion,
		Amount: amount, Chips: seat.Stack, Pending: seat.PendingChips, Balance: balance,
	})
	log.Info().Str("table_id", t.ID).Str("nick", seat.Nick).Int64("amount", amount).Msg("rebuy")
	e.publish()
	return nil
}

// Act applies fold, call/check or raise for the seat holding the turn.
func (e *Engine) Act(ctx context.Context, connID string, action ActionType, amount int64) error {
	t := e.table
	idx, seat := t.seatByConn(connID)
	if seat == nil {
		return ErrNotSeated
	}
	if err := ValidateAction(t, idx, action, amount); err != nil {
		return err
	}
	paid := applyAction(t, idx, action, amount)
	t.LastMoveTime = e.now()
	log.Debug().
		Str("table_id", t.ID).
		Str("hand_id", t.HandID).
		Str("nick", seat.Nick).
		Str("action", string(action)).
		Int64("paid", paid).
		Int64("pot", t.Pot).
		Msg("action_applied")
	e.progress(ctx)
	e.publish()
	return nil
}

// Leave removes the caller. Seats are cashed out first; if the Ledger fails
// nothing changes and the caller may retry.
func (e *Engine) Leave(ctx context.Context, connID string) error {
	t := e.table
	if idx, obs := t.observerByConn(connID); obs != nil {
		t.removeObserver(idx)
		e.notify.Send(connID, LeftTable{Type: MsgLeft, ProtocolVersion: ProtocolVersion})
		e.publish()
		return nil
	}
	idx, seat := t.seatByConn(connID)
	if seat == nil {
		return ErrNotJoined
	}
	balance, err := e.exitSeat(ctx, idx)
	if err != nil {
		return err
	}
	e.notify.Send(connID, LeftTable{Type: MsgLeft, ProtocolVersion: ProtocolVersion, Balance: balance})
	e.afterExit(ctx)
	e.publish()
	return nil
}

// Disconnect is Leave for a dropped connection. A failed cash-out leaves
// the seat marked and the sweep retries it until the Ledger commits.
func (e *Engine) Disconnect(ctx context.Context, connID string) {
	t := e.table
	if idx, obs := t.observerByConn(connID); obs != nil {
		t.removeObserver(idx)
		e.publish()
		return
	}
	idx, seat := t.seatByConn(connID)
	if seat == nil {
		return
	}
	seat.ConnID = ""
	if _, err := e.exitSeat(ctx, idx); err != nil {
		seat.Disconnected = true
		seat.Ready = false
		if seat.live() && t.Phase.Betting() {
			e.forceFold(ctx, idx)
		}
		log.Warn().Err(err).Str("table_id", t.ID).Str("nick", seat.Nick).Msg("disconnect_exit_deferred")
	}
	e.afterExit(ctx)
	e.publish()
}

// exitSeat cashes a seat out. In IDLE the seat is removed; during a hand it
// becomes a ghost that stays in turn order until the showdown pays out.
func (e *Engine) exitSeat(ctx context.Context, idx int) (int64, error) {
	t := e.table
	seat := t.Seats[idx]
	chips := seat.Stack + seat.PendingChips
	balance, err := e.ledger.CashOut(ctx, seat.Nick, chips, seat.BoughtIn, t.ID)
	if err != nil {
		metricLedgerFailures.Add(1)
		log.Error().Err(err).Str("table_id", t.ID).Str("nick", seat.Nick).Int64("chips", chips).Msg("ledger_failed")
		return 0, ErrServer
	}
	log.Info().
		Str("table_id", t.ID).
		Str("nick", seat.Nick).
		Int64("chips", chips).
		Int64("net", chips-seat.BoughtIn).
		Str("phase", string(t.Phase)).
		Msg("seat_cashed_out")

	if t.Phase == PhaseIdle {
		t.removeSeat(idx)
		return balance, nil
	}
	wasActive := idx == t.ActiveIndex && t.Phase.Betting()
	seat.Stack = 0
	seat.PendingChips = 0
	seat.BoughtIn = 0
	seat.ConnID = ""
	seat.Ghost = true
	seat.Disconnected = false
	seat.Ready = false
	seat.Folded = true
	seat.HasActed = true
	seat.LastAction = LabelLeft
	if wasActive {
		t.LastMoveTime = e.now()
	}
	if seat.InHand && t.Phase.Betting() {
		e.progressFrom(ctx, idx, wasActive)
	}
	return balance, nil
}

// Shutdown settles the table before the process exits: a live hand is
// aborted so investments return to the stacks (ghosts are refunded), then
// every seat is cashed out. Seats whose cash-out fails are logged and left
// in place.
func (e *Engine) Shutdown(ctx context.Context) {
	t := e.table
	if t.Phase != PhaseIdle {
		e.abortHand(ctx, errShutdown)
	}
	for i := len(t.Seats) - 1; i >= 0; i-- {
		seat := t.Seats[i]
		connID := seat.ConnID
		balance, err := e.exitSeat(ctx, i)
		if err != nil {
			log.Error().Err(err).Str("table_id", t.ID).Str("nick", seat.Nick).Int64("chips", seat.Stack+seat.PendingChips).Msg("shutdown_cash_out_failed")
			continue
		}
		if connID != "" {
			e.notify.Send(connID, LeftTable{Type: MsgLeft, ProtocolVersion: ProtocolVersion, Balance: balance})
		}
	}
	log.Info().Str("table_id", t.ID).Int("unsettled_seats", len(t.Seats)).Msg("table_shutdown")
}

// afterExit lets a hand start once a blocking unready seat is gone.
func (e *Engine) afterExit(ctx context.Context) {
	if e.table.Phase == PhaseIdle {
		e.maybeStartHand(ctx)
	}
}

func (e *Engine) forceFold(ctx context.Context, idx int) {
	t := e.table
	seat := t.Seats[idx]
	wasActive := idx == t.ActiveIndex
	seat.Folded = true
	seat.HasActed = true
	seat.LastAction = LabelFold
	if wasActive {
		t.LastMoveTime = e.now()
	}
	e.progressFrom(ctx, idx, wasActive)
}

// progressFrom re-evaluates the hand after a seat dropped out of it.
func (e *Engine) progressFrom(ctx context.Context, idx int, wasActive bool) {
	t := e.table
	switch evaluateRound(t) {
	case roundWalkover:
		e.showdown(ctx, true)
	case roundClosed:
		e.advanceStreet(ctx)
	default:
		if wasActive {
			if next := nextActor(t, idx); next >= 0 {
				t.ActiveIndex = next
			} else {
				e.advanceStreet(ctx)
			}
		}
	}
}

// progress moves the hand on after an accepted action by the active seat.
func (e *Engine) progress(ctx context.Context) {
	t := e.table
	if !e.checkConservation(ctx) {
		return
	}
	e.progressFrom(ctx, t.ActiveIndex, true)
}

// Sweep is the periodic turn clock. It retries deferred exits, evicts
// unready seats idling in IDLE and ghosts a seat that sat on its turn.
func (e *Engine) Sweep(ctx context.Context) {
	t := e.table
	now := e.now()
	changed := false

	for i := 0; i < len(t.Seats); i++ {
		seat := t.Seats[i]
		if !seat.Disconnected {
			continue
		}
		before := len(t.Seats)
		if _, err := e.exitSeat(ctx, i); err == nil {
			changed = true
			if len(t.Seats) < before {
				i--
			}
		}
	}

	switch {
	case t.Phase == PhaseIdle:
		for i := 0; i < len(t.Seats); i++ {
			seat := t.Seats[i]
			if seat.Ready || now.Sub(seat.IdleSince) <= e.cfg.TurnTimeout {
				continue
			}
			connID := seat.ConnID
			nick := seat.Nick
			balance, err := e.exitSeat(ctx, i)
			if err != nil {
				continue
			}
			i--
			changed = true
			metricIdleEvictions.Add(1)
			log.Info().Str("table_id", t.ID).Str("nick", nick).Msg("afk_evicted")
			if connID != "" {
				e.notify.Send(connID, LeftTable{Type: MsgLeft, ProtocolVersion: ProtocolVersion, Reason: "idle_timeout", Balance: balance})
			}
		}
		if changed {
			e.maybeStartHand(ctx)
		}
	case t.Phase.Betting() && t.ActiveIndex >= 0:
		if now.Sub(t.LastMoveTime) <= e.cfg.TurnTimeout {
			break
		}
		idx := t.ActiveIndex
		seat := t.Seats[idx]
		connID := seat.ConnID
		metricTurnTimeouts.Add(1)
		log.Info().Str("table_id", t.ID).Str("hand_id", t.HandID).Str("nick", seat.Nick).Msg("turn_timeout")
		balance, err := e.exitSeat(ctx, idx)
		if err != nil {
			// keep the table moving; the cash-out happens on a later leave
			e.forceFold(ctx, idx)
		} else if connID != "" {
			e.notify.Send(connID, LeftTable{Type: MsgLeft, ProtocolVersion: ProtocolVersion, Reason: "turn_timeout", Balance: balance})
		}
		changed = true
	}

	if changed {
		e.publish()
	}
}

func (e *Engine) maybeStartHand(ctx context.Context) {
	t := e.table
	if t.Phase != PhaseIdle {
		return
	}
	funded := 0
	for _, s := range t.Seats {
		if s.Stack <= 0 || s.Disconnected {
			continue
		}
		if !s.Ready {
			return
		}
		funded++
	}
	if funded < 2 {
		return
	}
	e.startHand(ctx)
}

func (e *Engine) startHand(ctx context.Context) {
	t := e.table
	t.HandID = store.NewIDAt(e.now())
	t.Deck = e.newDeck()
	t.Board = nil
	t.Pot = 0
	t.CurrentBet = 0
	t.DealerIndex = (t.DealerIndex + 1) % len(t.Seats)
	for _, s := range t.Seats {
		s.resetHand()
		s.InHand = s.Stack > 0 && !s.Disconnected
		s.Folded = !s.InHand
	}

	inHand := func(s *Seat) bool { return s.InHand }
	if !t.Seats[t.DealerIndex].InHand {
		// a sat-out seat cannot hold the button
		t.DealerIndex = t.nextSeat(t.DealerIndex, inHand)
	}
	button := t.DealerIndex
	var sb, bb int
	if t.count(inHand) == 2 {
		sb = button
	} else {
		sb = t.nextSeat(button, inHand)
	}
	bb = t.nextSeat(sb, inHand)

	t.Pot += t.Seats[sb].pay(e.cfg.SmallBlind)
	t.Seats[sb].LastAction = LabelSmallBlind
	t.Pot += t.Seats[bb].pay(e.cfg.BigBlind)
	t.Seats[bb].LastAction = LabelBigBlind
	t.CurrentBet = e.cfg.BigBlind

	for round := 0; round < 2; round++ {
		for i := 0; i < len(t.Seats); i++ {
			s := t.Seats[(button+1+i)%len(t.Seats)]
			if !s.InHand {
				continue
			}
			c, err := t.Deck.Draw()
			if err != nil {
				e.abortHand(ctx, err)
				return
			}
			s.Hole = append(s.Hole, c)
		}
	}
	for _, s := range t.Seats {
		if s.InHand && s.ConnID != "" {
			e.notify.Send(s.ConnID, YourCards{Type: MsgYourCards, ProtocolVersion: ProtocolVersion, HandID: t.HandID, Cards: cardStrings(s.Hole)})
		}
	}

	t.Phase = PhasePreFlop
	t.LastMoveTime = e.now()
	metricHandsStarted.Add(1)
	log.Info().
		Str("table_id", t.ID).
		Str("hand_id", t.HandID).
		Str("dealer", t.Seats[t.DealerIndex].Nick).
		Str("small_blind", t.Seats[sb].Nick).
		Str("big_blind", t.Seats[bb].Nick).
		Int("players", t.count(inHand)).
		Msg("hand_start")

	switch evaluateRound(t) {
	case roundOpen:
		if next := nextActor(t, bb); next >= 0 {
			t.ActiveIndex = next
			return
		}
		e.advanceStreet(ctx)
	case roundWalkover:
		e.showdown(ctx, true)
	default:
		e.advanceStreet(ctx)
	}
}

// advanceStreet deals the next street. When fewer than two seats can still
// bet, the board runs out to showdown without further action.
func (e *Engine) advanceStreet(ctx context.Context) {
	t := e.table
	for {
		next, reveal := t.Phase.next()
		if next == PhaseShowdown {
			e.showdown(ctx, false)
			return
		}
		if _, err := t.Deck.Draw(); err != nil { // burn
			e.abortHand(ctx, err)
			return
		}
		for i := 0; i < reveal; i++ {
			c, err := t.Deck.Draw()
			if err != nil {
				e.abortHand(ctx, err)
				return
			}
			t.Board = append(t.Board, c)
		}
		t.Phase = next
		startStreet(t)
		t.LastMoveTime = e.now()
		t.ActiveIndex = -1
		log.Debug().Str("table_id", t.ID).Str("hand_id", t.HandID).Str("phase", string(next)).Msg("street_dealt")
		if t.count((*Seat).actionable) < 2 {
			continue
		}
		t.ActiveIndex = nextActor(t, t.DealerIndex)
		return
	}
}

// checkConservation aborts the hand when the pot and the per-seat
// investments disagree.
func (e *Engine) checkConservation(ctx context.Context) bool {
	t := e.table
	var violation error
	if t.Pot != t.investedTotal() {
		violation = errPotMismatch
	}
	for _, s := range t.Seats {
		if s.Stack < 0 || s.BetInRound > s.InvestedInHand {
			violation = errSeatAccounting
		}
	}
	if violation == nil {
		return true
	}
	e.abortHand(ctx, violation)
	return false
}

var (
	errPotMismatch    = errors.New("pot_mismatch")
	errSeatAccounting = errors.New("seat_accounting")
	errShutdown       = errors.New("shutdown")
	// ErrServer is reported when the Ledger fails for reasons other than
	// the caller's balance.
	ErrServer = errors.New("server_error")
)

// abortHand returns every seat's investment in this hand and goes back to
// IDLE. Ghosts already left, so their share is refunded through the Ledger.
func (e *Engine) abortHand(ctx context.Context, cause error) {
	t := e.table
	metricHandsAborted.Add(1)
	log.Error().Err(cause).Str("table_id", t.ID).Str("hand_id", t.HandID).Int64("pot", t.Pot).Msg("hand_aborted")
	var refunds []ledger.Payout
	for _, s := range t.Seats {
		if s.InvestedInHand == 0 {
			continue
		}
		if s.Ghost {
			refunds = append(refunds, ledger.Payout{Nick: s.Nick, Amount: s.InvestedInHand})
			continue
		}
		s.Stack += s.InvestedInHand
	}
	if len(refunds) > 0 {
		if err := e.ledger.Refund(ctx, t.HandID, refunds); err != nil {
			metricLedgerFailures.Add(1)
			log.Error().Err(err).Str("hand_id", t.HandID).Interface("refunds", refunds).Msg("ghost_refund_failed")
		}
	}
	e.endHand()
}

// endHand clears hand scoped state, drops ghosts and credits chips bought
// during the hand.
func (e *Engine) endHand() {
	t := e.table
	now := e.now()
	for i := 0; i < len(t.Seats); i++ {
		s := t.Seats[i]
		if s.Ghost {
			t.removeSeat(i)
			i--
			continue
		}
		s.resetHand()
		s.Stack += s.PendingChips
		s.PendingChips = 0
		s.Ready = false
		s.IdleSince = now
	}
	t.Deck = nil
	t.Board = nil
	t.Pot = 0
	t.CurrentBet = 0
	t.ActiveIndex = -1
	t.Phase = PhaseIdle
}

func (e *Engine) ledgerErr(err error, op, nick string) error {
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds), errors.Is(err, ledger.ErrInvalidCredentials):
		return err
	}
	metricLedgerFailures.Add(1)
	log.Error().Err(err).Str("table_id", e.table.ID).Str("nick", nick).Str("op", op).Msg("ledger_failed")
	return ErrServer
}
