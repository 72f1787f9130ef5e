package game

import (
	"context"
	"errors"
	"sort"

	"flappy-casino/internal/ledger"

	"github.com/rs/zerolog/log"
)

const walkoverName = "Walkover"

var errNoWinner = errors.New("no_live_seat")

// showdown pays the pot. A walkover awards everything to the last live seat
// without looking at cards; otherwise every side pot is contested by its
// eligible seats. Payouts go to the Ledger in one transaction before the
// table returns to IDLE.
func (e *Engine) showdown(ctx context.Context, walkover bool) {
	t := e.table
	t.Phase = PhaseShowdown
	t.ActiveIndex = -1
	pot := t.Pot

	payouts := map[string]int64{}
	handName := walkoverName
	var revealed []RevealedHand

	if walkover {
		w := t.nextSeat(-1, (*Seat).live)
		if w < 0 {
			e.abortHand(ctx, errNoWinner)
			return
		}
		payouts[t.Seats[w].Nick] = pot
	} else {
		name, err := e.contest(payouts)
		if err != nil {
			e.abortHand(ctx, err)
			return
		}
		handName = name
		for _, s := range t.Seats {
			if s.live() {
				revealed = append(revealed, RevealedHand{Nick: s.Nick, Cards: cardStrings(s.Hole)})
			}
		}
	}

	list := make([]ledger.Payout, 0, len(payouts))
	for nick, amount := range payouts {
		list = append(list, ledger.Payout{Nick: nick, Amount: amount})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Nick < list[j].Nick })
	if err := e.ledger.PayOut(ctx, t.HandID, list); err != nil {
		metricLedgerFailures.Add(1)
		e.abortHand(ctx, err)
		return
	}

	result := ShowdownResult{
		Type:            MsgShowdownResult,
		ProtocolVersion: ProtocolVersion,
		HandID:          t.HandID,
		HandName:        handName,
		Pot:             pot,
		Board:           cardStrings(t.Board),
		Payouts:         payouts,
		Revealed:        revealed,
		Walkover:        walkover,
	}
	if result.Revealed == nil {
		result.Revealed = []RevealedHand{}
	}
	for _, connID := range e.members() {
		e.notify.Send(connID, result)
	}
	metricHandsCompleted.Add(1)
	log.Info().
		Str("table_id", t.ID).
		Str("hand_id", t.HandID).
		Int64("pot", pot).
		Bool("walkover", walkover).
		Str("hand_name", handName).
		Interface("payouts", payouts).
		Msg("showdown")

	e.endHand()
	e.holdBroadcast = true
}

// contest awards each side pot to the best eligible hand(s) and returns the
// name of the hand that took the first tier.
func (e *Engine) contest(payouts map[string]int64) (string, error) {
	t := e.table
	contribs := make([]Contribution, 0, len(t.Seats))
	for i, s := range t.Seats {
		if s.InvestedInHand > 0 {
			contribs = append(contribs, Contribution{Seat: i, Invested: s.InvestedInHand, Folded: !s.live()})
		}
	}

	values := map[int]HandValue{}
	rank := func(i int) (HandValue, error) {
		if v, ok := values[i]; ok {
			return v, nil
		}
		v, err := e.ranker.Rank(t.Seats[i].Hole, t.Board)
		if err != nil {
			return HandValue{}, err
		}
		values[i] = v
		return v, nil
	}

	handName := ""
	for tier, p := range ComputeSidePots(contribs) {
		if len(p.Eligible) == 0 {
			return "", errNoWinner
		}
		winners := p.Eligible
		if len(p.Eligible) > 1 {
			winners = nil
			best := 0
			for _, i := range p.Eligible {
				v, err := rank(i)
				if err != nil {
					return "", err
				}
				switch {
				case len(winners) == 0 || v.Score > best:
					best = v.Score
					winners = []int{i}
				case v.Score == best:
					winners = append(winners, i)
				}
			}
		}
		share, rest := SplitPot(p.Amount, len(winners))
		if rest > 0 {
			metricRoundingLoss.Add(rest)
			log.Info().Str("hand_id", t.HandID).Int("tier", tier).Int64("chips", rest).Msg("split_remainder_dropped")
		}
		for _, w := range winners {
			payouts[t.Seats[w].Nick] += share
		}
		if tier == 0 {
			v, err := rank(winners[0])
			if err != nil {
				return "", err
			}
			handName = v.Name
		}
	}
	return handName, nil
}
