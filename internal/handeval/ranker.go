package handeval

import (
	"fmt"

	"flappy-casino/internal/game"

	"github.com/paulhankin/poker"
)

// Ranker evaluates the best five of two hole cards plus a full board.
type Ranker struct{}

func New() Ranker {
	return Ranker{}
}

func (Ranker) Rank(hole, board []game.Card) (game.HandValue, error) {
	if len(hole) != 2 || len(board) != 5 {
		return game.HandValue{}, fmt.Errorf("rank needs 2 hole and 5 board cards, got %d+%d", len(hole), len(board))
	}
	var seven [7]poker.Card
	for i, c := range append(append([]game.Card{}, hole...), board...) {
		pc, err := toPoker(c)
		if err != nil {
			return game.HandValue{}, err
		}
		seven[i] = pc
	}
	name, err := poker.Describe(seven[:])
	if err != nil {
		return game.HandValue{}, fmt.Errorf("describe hand: %w", err)
	}
	return game.HandValue{Score: int(poker.Eval7(&seven)), Name: name}, nil
}

func toPoker(c game.Card) (poker.Card, error) {
	var (
		zero poker.Card
		suit poker.Suit
	)
	switch c.Suit {
	case game.Clubs:
		suit = poker.Club
	case game.Diamonds:
		suit = poker.Diamond
	case game.Hearts:
		suit = poker.Heart
	case game.Spades:
		suit = poker.Spade
	default:
		return zero, fmt.Errorf("invalid suit %d", c.Suit)
	}
	rank := int(c.Rank)
	if c.Rank == game.Ace {
		rank = 1
	}
	pc, err := poker.MakeCard(suit, poker.Rank(rank))
	if err != nil {
		return zero, fmt.Errorf("card %s: %w", c, err)
	}
	return pc, nil
}
