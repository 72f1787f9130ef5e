package game

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"flappy-casino/internal/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadsUpBlinds(t *testing.T) {
	h := newHarness(t, testConfig())
	h.seat("alice")
	h.seat("bob")
	h.ready("alice", "bob")

	tb := h.engine.Table()
	require.Equal(t, PhasePreFlop, tb.Phase)
	assert.Equal(t, 0, tb.DealerIndex)
	assert.Equal(t, int64(30), tb.Pot)
	assert.Equal(t, int64(20), tb.CurrentBet)

	dealer := h.seatOf("alice")
	assert.Equal(t, int64(10), dealer.BetInRound)
	assert.Equal(t, int64(490), dealer.Stack)
	assert.Equal(t, int64(20), h.seatOf("bob").BetInRound)
	assert.Equal(t, "alice", h.active(), "dealer acts first heads-up")
	assert.Equal(t, int64(10), tb.CurrentBet-dealer.BetInRound)

	cards, ok := lastOf[YourCards](h.notes, conn("alice"))
	require.True(t, ok)
	assert.Len(t, cards.Cards, 2)
}

func TestRaiseCallFold(t *testing.T) {
	h := newHarness(t, testConfig())
	h.seat("a")
	h.seat("b")
	h.seat("c")
	h.ready("a", "b", "c")

	// a is on the button, b posts 10, c posts 20
	require.Equal(t, "a", h.active())
	h.act("a", ActionRaise, 60)
	h.act("b", ActionCall, 0)
	h.act("c", ActionFold, 0)

	tb := h.engine.Table()
	require.Equal(t, PhaseFlop, tb.Phase)
	assert.Equal(t, int64(140), tb.Pot, "120 from a and b plus c's dead big blind")
	assert.Equal(t, 2, tb.count((*Seat).live))
	assert.Len(t, tb.Board, 3)
	assert.Equal(t, "b", h.active(), "first live seat after the button opens the flop")
	assert.Equal(t, LabelFold, h.seatOf("c").LastAction)
}

func TestSidePotShowdown(t *testing.T) {
	deck := func() *Deck {
		// deal order b, c, a twice; then burn/flop/burn/turn/burn/river
		return NewStackedDeck(mustCards(t,
			"Kc", "Qc", "Ac", "Kd", "Qd", "Ad",
			"2c", "3c", "4d", "7h",
			"2d", "8s",
			"2h", "9s",
		)...)
	}
	h := newHarness(t, testConfig(), WithDeckSource(deck))
	h.seat("a")
	h.seat("b")
	h.seat("c")
	short := h.seatOf("a")
	short.Stack = 100
	short.BoughtIn = 100
	h.ready("a", "b", "c")

	h.act("a", ActionRaise, 100)
	assert.Equal(t, LabelAllIn, short.LastAction)
	h.act("b", ActionCall, 0)
	h.act("c", ActionCall, 0)
	require.Equal(t, PhaseFlop, h.engine.Table().Phase)

	h.act("b", ActionRaise, 100)
	h.act("c", ActionCall, 0)
	require.Equal(t, PhaseTurn, h.engine.Table().Phase)
	h.act("b", ActionRaise, 100)
	h.act("c", ActionCall, 0)
	require.Equal(t, PhaseRiver, h.engine.Table().Phase)
	assert.Equal(t, int64(700), h.engine.Table().Pot)

	h.act("b", ActionCheck, 0)
	h.act("c", ActionCheck, 0)

	assert.Equal(t, PhaseIdle, h.engine.Table().Phase)
	assert.Equal(t, map[string]int64{"a": 300, "b": 400}, h.ledger.lastPayout())

	res, ok := lastOf[ShowdownResult](h.notes, conn("c"))
	require.True(t, ok)
	assert.False(t, res.Walkover)
	assert.Equal(t, int64(700), res.Pot)
	assert.Len(t, res.Revealed, 3)
	assert.Equal(t, "Ac-Ad high", res.HandName)
}

func TestWalkoverSkipsEvaluation(t *testing.T) {
	h := newHarness(t, testConfig())
	h.seat("alice")
	h.seat("bob")
	h.ready("alice", "bob")

	h.act("alice", ActionFold, 0)

	assert.Equal(t, 0, h.ranker.calls)
	assert.Equal(t, map[string]int64{"bob": 30}, h.ledger.lastPayout())
	res, ok := lastOf[ShowdownResult](h.notes, conn("alice"))
	require.True(t, ok)
	assert.True(t, res.Walkover)
	assert.Empty(t, res.Revealed)

	tb := h.engine.Table()
	assert.Equal(t, PhaseIdle, tb.Phase)
	assert.Equal(t, int64(0), tb.Pot)
	for _, s := range tb.Seats {
		assert.False(t, s.Ready)
		assert.Nil(t, s.Hole)
		assert.Zero(t, s.InvestedInHand)
	}
}

func TestActionsOutOfTurnRejected(t *testing.T) {
	h := newHarness(t, testConfig())
	h.seat("alice")
	h.seat("bob")
	h.ready("alice", "bob")

	before := h.engine.Snapshot()
	err := h.engine.Act(h.ctx, conn("bob"), ActionCall, 0)
	require.ErrorIs(t, err, ErrNotYourTurn)
	assert.Equal(t, before, h.engine.Snapshot())

	require.ErrorIs(t, h.engine.Act(h.ctx, conn("alice"), ActionRaise, 20), ErrRaiseTooSmall)
	require.ErrorIs(t, h.engine.Act(h.ctx, conn("alice"), ActionRaise, 600), ErrRaiseExceedsStack)
	require.ErrorIs(t, h.engine.Act(h.ctx, conn("alice"), ActionCheck, 0), ErrInvalidAction)
	require.ErrorIs(t, h.engine.Act(h.ctx, conn("alice"), "bet", 40), ErrInvalidAction)
	require.ErrorIs(t, h.engine.Act(h.ctx, "conn-stranger", ActionFold, 0), ErrNotSeated)
	assert.Equal(t, before, h.engine.Snapshot())
}

func TestActOutsideHandRejected(t *testing.T) {
	h := newHarness(t, testConfig())
	h.seat("alice")
	require.ErrorIs(t, h.engine.Act(h.ctx, conn("alice"), ActionCall, 0), ErrWrongPhase)
}

func TestDealerRotatesByOne(t *testing.T) {
	h := newHarness(t, testConfig())
	h.seat("a")
	h.seat("b")
	h.seat("c")

	var dealers []int
	for hand := 0; hand < 4; hand++ {
		h.ready("a", "b", "c")
		tb := h.engine.Table()
		require.Equal(t, PhasePreFlop, tb.Phase)
		dealers = append(dealers, tb.DealerIndex)
		for tb.Phase != PhaseIdle {
			h.act(h.active(), ActionFold, 0)
		}
	}
	assert.Equal(t, []int{0, 1, 2, 0}, dealers)
}

func TestIdleAFKEvictionCreditsOnce(t *testing.T) {
	h := newHarness(t, testConfig())
	h.seat("alice")
	h.seat("bob")
	h.ready("alice")

	h.advance(29 * time.Second)
	h.engine.Sweep(h.ctx)
	require.Len(t, h.engine.Table().Seats, 2)

	h.advance(2 * time.Second)
	h.engine.Sweep(h.ctx)
	require.Len(t, h.engine.Table().Seats, 1)
	assert.Equal(t, "alice", h.engine.Table().Seats[0].Nick, "ready seats are not idle")
	require.Equal(t, []cashOut{{Nick: "bob", Chips: 500, BoughtIn: 500}}, h.ledger.cashOuts)

	left, ok := lastOf[LeftTable](h.notes, conn("bob"))
	require.True(t, ok)
	assert.Equal(t, "idle_timeout", left.Reason)

	h.advance(5 * time.Second)
	h.engine.Sweep(h.ctx)
	assert.Len(t, h.ledger.cashOuts, 1)
}

func TestTurnTimeoutGhostsActiveSeat(t *testing.T) {
	h := newHarness(t, testConfig())
	h.seat("alice")
	h.seat("bob")
	h.ready("alice", "bob")
	require.Equal(t, "alice", h.active())

	h.advance(30 * time.Second)
	h.engine.Sweep(h.ctx)
	require.Equal(t, PhasePreFlop, h.engine.Table().Phase, "exactly the timeout is not exceeded")

	h.advance(time.Second)
	h.engine.Sweep(h.ctx)

	require.Equal(t, []cashOut{{Nick: "alice", Chips: 490, BoughtIn: 500}}, h.ledger.cashOuts)
	assert.Equal(t, map[string]int64{"bob": 30}, h.ledger.lastPayout())
	tb := h.engine.Table()
	assert.Equal(t, PhaseIdle, tb.Phase)
	require.Len(t, tb.Seats, 1, "ghost removed after payout")
	left, ok := lastOf[LeftTable](h.notes, conn("alice"))
	require.True(t, ok)
	assert.Equal(t, "turn_timeout", left.Reason)
}

func TestActionResetsTurnClock(t *testing.T) {
	h := newHarness(t, testConfig())
	h.seat("alice")
	h.seat("bob")
	h.ready("alice", "bob")

	h.advance(20 * time.Second)
	h.act("alice", ActionCall, 0)
	h.advance(20 * time.Second)
	h.engine.Sweep(h.ctx)
	assert.Equal(t, "bob", h.active())
	assert.Empty(t, h.ledger.cashOuts)
}

func TestGhostProtocolKeepsPotIntact(t *testing.T) {
	h := newHarness(t, testConfig())
	h.seat("a")
	h.seat("b")
	h.seat("c")
	h.ready("a", "b", "c")

	// c is the big blind and leaves out of turn
	require.NoError(t, h.engine.Leave(h.ctx, conn("c")))
	ghost := h.seatOf("c")
	assert.True(t, ghost.Ghost)
	assert.True(t, ghost.Folded)
	assert.True(t, ghost.HasActed)
	assert.Zero(t, ghost.Stack)
	assert.Equal(t, int64(20), ghost.InvestedInHand)
	require.Equal(t, []cashOut{{Nick: "c", Chips: 480, BoughtIn: 500}}, h.ledger.cashOuts)
	assert.Equal(t, "a", h.active())

	h.act("a", ActionCall, 0)
	h.act("b", ActionCall, 0)
	tb := h.engine.Table()
	require.Equal(t, PhaseFlop, tb.Phase)
	assert.Equal(t, int64(60), tb.Pot)
	assert.Equal(t, tb.investedTotal(), tb.Pot)

	h.act("b", ActionFold, 0)
	assert.Equal(t, map[string]int64{"a": 60}, h.ledger.lastPayout())
	assert.Len(t, h.engine.Table().Seats, 2)
	assert.Len(t, h.ledger.cashOuts, 1, "ghost is not cashed out twice")
}

func TestLeaveInIdleRemovesAndCredits(t *testing.T) {
	h := newHarness(t, testConfig())
	h.seat("alice")
	require.NoError(t, h.engine.Leave(h.ctx, conn("alice")))
	assert.Empty(t, h.engine.Table().Seats)
	assert.Equal(t, int64(10_000), h.ledger.balances["alice"])
	require.ErrorIs(t, h.engine.Leave(h.ctx, conn("alice")), ErrNotJoined)
}

func TestLeaveLedgerFailureChangesNothing(t *testing.T) {
	h := newHarness(t, testConfig())
	h.seat("alice")
	h.ledger.failCashOut = true

	err := h.engine.Leave(h.ctx, conn("alice"))
	require.ErrorIs(t, err, ErrServer)
	require.Len(t, h.engine.Table().Seats, 1)
	assert.Equal(t, int64(500), h.seatOf("alice").Stack)
}

func TestDisconnectRetriedBySweep(t *testing.T) {
	h := newHarness(t, testConfig())
	h.seat("alice")
	h.seat("bob")
	h.ledger.failCashOut = true

	h.engine.Disconnect(h.ctx, conn("bob"))
	bob := h.seatOf("bob")
	assert.True(t, bob.Disconnected)
	assert.Empty(t, bob.ConnID)

	h.engine.Sweep(h.ctx)
	require.Len(t, h.engine.Table().Seats, 2)

	h.ledger.failCashOut = false
	h.engine.Sweep(h.ctx)
	require.Len(t, h.engine.Table().Seats, 1)
	h.engine.Sweep(h.ctx)
	assert.Equal(t, []cashOut{{Nick: "bob", Chips: 500, BoughtIn: 500}}, h.ledger.cashOuts)
}

func TestDisconnectMidHandFoldsWhenLedgerDown(t *testing.T) {
	h := newHarness(t, testConfig())
	h.seat("a")
	h.seat("b")
	h.seat("c")
	h.ready("a", "b", "c")
	h.ledger.failCashOut = true

	h.engine.Disconnect(h.ctx, conn("a"))
	a := h.seatOf("a")
	assert.True(t, a.Folded)
	assert.False(t, a.Ghost)
	assert.Equal(t, int64(500), a.Stack)
	assert.Equal(t, "b", h.active())

	h.ledger.failCashOut = false
	h.engine.Sweep(h.ctx)
	assert.True(t, a.Ghost)
	require.Equal(t, []cashOut{{Nick: "a", Chips: 500, BoughtIn: 500}}, h.ledger.cashOuts)
}

func TestJoinRejections(t *testing.T) {
	h := newHarness(t, testConfig())
	h.ledger.add("poor", "1111", 499)
	err := h.engine.Join(h.ctx, conn("poor"), "poor", "1111")
	require.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	assert.Empty(t, h.engine.Table().Seats)
	assert.Empty(t, h.engine.Table().Observers)

	h.ledger.add("alice", "1234", 1000)
	require.ErrorIs(t, h.engine.Join(h.ctx, conn("alice"), "alice", "9999"), ledger.ErrInvalidCredentials)

	require.NoError(t, h.engine.Join(h.ctx, conn("alice"), "alice", "1234"))
	require.ErrorIs(t, h.engine.Join(h.ctx, "conn-other", "alice", "1234"), ErrAlreadyAtTable)
	require.ErrorIs(t, h.engine.Join(h.ctx, conn("alice"), "alice", "1234"), ErrAlreadyAtTable)
}

func TestFullTableMakesObserver(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSeats = 2
	h := newHarness(t, cfg)
	h.seat("a")
	h.seat("b")
	h.seat("c")

	tb := h.engine.Table()
	require.Len(t, tb.Seats, 2)
	require.Len(t, tb.Observers, 1)
	assert.Equal(t, int64(10_000), h.ledger.balances["c"], "observers are not charged")
	joined, ok := lastOf[TableJoined](h.notes, conn("c"))
	require.True(t, ok)
	assert.Equal(t, RoleObserver, joined.Role)
	assert.Equal(t, 1, h.engine.Snapshot().NumObservers)

	require.ErrorIs(t, h.engine.TakeSeat(h.ctx, conn("c")), ErrTableFull)
	require.ErrorIs(t, h.engine.TakeSeat(h.ctx, conn("a")), ErrNotObserver)

	require.NoError(t, h.engine.Leave(h.ctx, conn("a")))
	require.NoError(t, h.engine.TakeSeat(h.ctx, conn("c")))
	assert.Empty(t, tb.Observers)
	assert.Equal(t, int64(9_500), h.ledger.balances["c"])
}

func TestObserverSeatedMidHandWaitsForDeal(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSeats = 3
	h := newHarness(t, cfg)
	h.seat("a")
	h.seat("b")
	h.seat("c")
	h.seat("d")
	require.NoError(t, h.engine.Leave(h.ctx, conn("c")))
	h.ready("a", "b")

	require.NoError(t, h.engine.TakeSeat(h.ctx, conn("d")))
	d := h.seatOf("d")
	assert.False(t, d.InHand)
	assert.Nil(t, d.Hole)
	assert.Equal(t, PhasePreFlop, h.engine.Table().Phase)
}

func TestRebuyMidHandIsDeferred(t *testing.T) {
	h := newHarness(t, testConfig())
	h.seat("alice")
	h.seat("bob")
	h.ready("alice", "bob")

	require.NoError(t, h.engine.AddChips(h.ctx, conn("alice"), 200))
	alice := h.seatOf("alice")
	assert.Equal(t, int64(490), alice.Stack)
	assert.Equal(t, int64(200), alice.PendingChips)
	assert.Equal(t, int64(700), alice.BoughtIn)

	h.act("alice", ActionFold, 0)
	assert.Equal(t, int64(690), alice.Stack)
	assert.Zero(t, alice.PendingChips)

	require.NoError(t, h.engine.AddChips(h.ctx, conn("alice"), 10))
	assert.Equal(t, int64(700), alice.Stack)
	require.ErrorIs(t, h.engine.AddChips(h.ctx, conn("alice"), 0), ErrInvalidAmount)
	require.ErrorIs(t, h.engine.AddChips(h.ctx, conn("alice"), 1_000_000), ledger.ErrInsufficientFunds)
}

func TestSetReadyRules(t *testing.T) {
	h := newHarness(t, testConfig())
	h.seat("alice")
	require.ErrorIs(t, h.engine.SetReady(h.ctx, "conn-nobody"), ErrNotSeated)

	h.seatOf("alice").Stack = 0
	require.ErrorIs(t, h.engine.SetReady(h.ctx, conn("alice")), ErrNoChips)
	h.seatOf("alice").Stack = 500

	h.seat("bob")
	h.ready("alice", "bob")
	require.ErrorIs(t, h.engine.SetReady(h.ctx, conn("alice")), ErrWrongPhase)
}

func TestBrokeSeatSitsOut(t *testing.T) {
	h := newHarness(t, testConfig())
	h.seat("a")
	h.seat("b")
	h.seat("c")
	h.seatOf("b").Stack = 0
	h.ready("a", "c")

	tb := h.engine.Table()
	require.Equal(t, PhasePreFlop, tb.Phase)
	b := h.seatOf("b")
	assert.False(t, b.InHand)
	assert.True(t, b.Folded)
	assert.Nil(t, b.Hole)
	// heads-up between a and c: a has the button and the small blind
	assert.Equal(t, int64(10), h.seatOf("a").BetInRound)
	assert.Equal(t, int64(20), h.seatOf("c").BetInRound)
}

func TestPayoutFailureAbortsAndRefunds(t *testing.T) {
	h := newHarness(t, testConfig())
	h.seat("alice")
	h.seat("bob")
	h.ready("alice", "bob")
	h.ledger.failPayOut = true

	h.act("alice", ActionFold, 0)

	tb := h.engine.Table()
	assert.Equal(t, PhaseIdle, tb.Phase)
	assert.Equal(t, int64(500), h.seatOf("alice").Stack)
	assert.Equal(t, int64(500), h.seatOf("bob").Stack)
	_, ok := lastOf[ShowdownResult](h.notes, conn("bob"))
	assert.False(t, ok)
}

func TestShowdownDefersIdleBroadcast(t *testing.T) {
	var (
		pending func()
		delay   time.Duration
	)
	h := newHarness(t, testConfig(), WithScheduler(func(d time.Duration, fn func()) {
		delay, pending = d, fn
	}))
	h.seat("alice")
	h.seat("bob")
	h.ready("alice", "bob")
	updates := countOf[TableUpdate](h.notes, conn("bob"))

	h.act("alice", ActionFold, 0)
	assert.Equal(t, updates, countOf[TableUpdate](h.notes, conn("bob")))
	require.NotNil(t, pending)
	assert.Equal(t, 1500*time.Millisecond, delay)

	pending()
	u, ok := lastOf[TableUpdate](h.notes, conn("bob"))
	require.True(t, ok)
	assert.Equal(t, string(PhaseIdle), u.Phase)
	assert.Empty(t, u.ActivePlayerNick)
}

func TestAllInPreflopRunsOutBoard(t *testing.T) {
	h := newHarness(t, testConfig())
	h.seat("alice")
	h.seat("bob")
	h.ready("alice", "bob")

	h.act("alice", ActionRaise, 500)
	h.act("bob", ActionCall, 0)

	assert.Equal(t, PhaseIdle, h.engine.Table().Phase)
	assert.Equal(t, 2, h.ranker.calls)
	res, ok := lastOf[ShowdownResult](h.notes, conn("alice"))
	require.True(t, ok)
	assert.Len(t, res.Board, 5)
	var paid int64
	for _, v := range res.Payouts {
		paid += v
	}
	assert.Equal(t, int64(1000), paid)
}

func TestPotConservationUnderRandomPlay(t *testing.T) {
	h := newHarness(t, testConfig())
	nicks := []string{"a", "b", "c", "d"}
	for _, n := range nicks {
		h.seat(n)
	}
	rnd := rand.New(rand.NewSource(99))
	tb := h.engine.Table()

	for hands := 0; hands < 25; hands++ {
		for _, n := range nicks {
			if s := h.seatOf(n); s.Stack < 20 {
				require.NoError(t, h.engine.AddChips(h.ctx, conn(n), 500))
			}
		}
		h.ready(nicks...)
		for steps := 0; tb.Phase != PhaseIdle; steps++ {
			require.Less(t, steps, 200, "hand did not terminate")
			require.Equal(t, tb.investedTotal(), tb.Pot)

			// someone other than the actor is always refused
			other := nicks[rnd.Intn(len(nicks))]
			if other != h.active() {
				before := h.engine.Snapshot()
				require.Error(t, h.engine.Act(h.ctx, conn(other), ActionCall, 0))
				require.Equal(t, before, h.engine.Snapshot())
			}

			actor := h.seatOf(h.active())
			switch r := rnd.Intn(10); {
			case r == 0:
				h.act(actor.Nick, ActionFold, 0)
			case r < 4 && actor.Stack > tb.CurrentBet-actor.BetInRound:
				target := tb.CurrentBet + int64(1+rnd.Intn(3))*20
				target = min(target, actor.BetInRound+actor.Stack)
				h.act(actor.Nick, ActionRaise, target)
			default:
				h.act(actor.Nick, ActionCall, 0)
			}
		}
	}
}

func TestAbortOnConservationBreach(t *testing.T) {
	h := newHarness(t, testConfig())
	h.seat("alice")
	h.seat("bob")
	h.seat("carol")
	h.ready("alice", "bob", "carol")
	require.NoError(t, h.engine.Leave(h.ctx, conn("carol")))

	h.engine.Table().Pot += 5
	h.act("alice", ActionCall, 0)

	tb := h.engine.Table()
	assert.Equal(t, PhaseIdle, tb.Phase)
	assert.Equal(t, int64(500), h.seatOf("alice").Stack)
	assert.Equal(t, int64(500), h.seatOf("bob").Stack)
	require.Len(t, h.ledger.refunds, 1)
	assert.Equal(t, []ledger.Payout{{Nick: "carol", Amount: 20}}, h.ledger.refunds[0])
	assert.True(t, errors.Is(h.engine.Act(h.ctx, conn("alice"), ActionCall, 0), ErrWrongPhase))
}

func TestButtonSkipsBrokeSeat(t *testing.T) {
	h := newHarness(t, testConfig())
	h.seat("a")
	h.seat("b")
	h.seat("c")
	h.ready("a", "b", "c")
	for h.engine.Table().Phase != PhaseIdle {
		h.act(h.active(), ActionFold, 0)
	}

	// the rotation lands on b, who has nothing to play with
	h.seatOf("b").Stack = 0
	h.ready("a", "c")

	tb := h.engine.Table()
	require.Equal(t, PhasePreFlop, tb.Phase)
	assert.Equal(t, "c", tb.Seats[tb.DealerIndex].Nick)
	assert.Equal(t, "c", h.engine.Snapshot().DealerNick)
	assert.Equal(t, int64(10), h.seatOf("c").BetInRound)
	assert.Equal(t, int64(20), h.seatOf("a").BetInRound)
	assert.Equal(t, "c", h.active())

	h.act("c", ActionCall, 0)
	h.act("a", ActionCheck, 0)
	require.Equal(t, PhaseFlop, tb.Phase)
	// heads-up the button acts last after the flop
	assert.Equal(t, "a", h.active())
}

func TestShutdownSettlesEverySeat(t *testing.T) {
	h := newHarness(t, testConfig())
	h.seat("a")
	h.seat("b")
	h.seat("c")
	h.ready("a", "b", "c")
	h.act("a", ActionCall, 0)
	require.NoError(t, h.engine.Leave(h.ctx, conn("a")))
	require.True(t, h.seatOf("a").Ghost)

	h.engine.Shutdown(h.ctx)

	tb := h.engine.Table()
	assert.Equal(t, PhaseIdle, tb.Phase)
	assert.Empty(t, tb.Seats)
	for _, nick := range []string{"a", "b", "c"} {
		assert.Equal(t, int64(10_000), h.ledger.balances[nick], nick)
	}
	require.Len(t, h.ledger.refunds, 1)
	assert.Equal(t, []ledger.Payout{{Nick: "a", Amount: 20}}, h.ledger.refunds[0])
	left, ok := lastOf[LeftTable](h.notes, conn("b"))
	require.True(t, ok)
	assert.Equal(t, int64(10_000), left.Balance)
}

func TestShutdownKeepsSeatWhenCashOutFails(t *testing.T) {
	h := newHarness(t, testConfig())
	h.seat("alice")
	h.seat("bob")
	h.ledger.failCashOut = true

	h.engine.Shutdown(h.ctx)

	assert.Len(t, h.engine.Table().Seats, 2)
	assert.Equal(t, int64(9_500), h.ledger.balances["alice"])
}
