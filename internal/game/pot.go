package game

import "sort"

// Contribution is one seat's stake in the current hand.
type Contribution struct {
	Seat     int
	Invested int64
	Folded   bool
}

// SidePot is one tier of the pot and the seats that can win it.
type SidePot struct {
	Amount   int64
	Eligible []int
}

// ComputeSidePots splits the invested chips into tiers at every distinct
// investment level. A seat funds each tier up to its own investment; only
// non-folded seats that covered a tier's threshold may win it. Chips in a
// tier nobody can win (all of its funders folded) are folded into the
// nearest lower tier that has a live seat, so the sum of amounts always
// equals the sum of investments.
func ComputeSidePots(contribs []Contribution) []SidePot {
	levels := map[int64]bool{}
	for _, c := range contribs {
		if c.Invested > 0 {
			levels[c.Invested] = true
		}
	}
	thresholds := make([]int64, 0, len(levels))
	for l := range levels {
		thresholds = append(thresholds, l)
	}
	sort.Slice(thresholds, func(i, j int) bool { return thresholds[i] < thresholds[j] })

	pots := make([]SidePot, 0, len(thresholds))
	prev := int64(0)
	for _, tier := range thresholds {
		pot := SidePot{}
		for _, c := range contribs {
			if c.Invested <= prev {
				continue
			}
			pot.Amount += min(c.Invested-prev, tier-prev)
			if !c.Folded && c.Invested >= tier {
				pot.Eligible = append(pot.Eligible, c.Seat)
			}
		}
		pots = append(pots, pot)
		prev = tier
	}
	return mergeDeadTiers(pots)
}

func mergeDeadTiers(pots []SidePot) []SidePot {
	out := make([]SidePot, 0, len(pots))
	carry := int64(0)
	for _, p := range pots {
		if len(p.Eligible) == 0 {
			if len(out) > 0 {
				out[len(out)-1].Amount += p.Amount
			} else {
				carry += p.Amount
			}
			continue
		}
		p.Amount += carry
		carry = 0
		out = append(out, p)
	}
	if carry > 0 {
		// nobody live at any level; keep the money visible to the caller
		out = append(out, SidePot{Amount: carry})
	}
	return out
}

// SplitPot divides amount among n winners by floor division. The remainder
// is not paid to anyone.
func SplitPot(amount int64, n int) (share, remainder int64) {
	if n <= 0 {
		return 0, amount
	}
	share = amount / int64(n)
	return share, amount - share*int64(n)
}
