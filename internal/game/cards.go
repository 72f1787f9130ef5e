package game

import (
	"errors"
	"math/rand"
)

var ErrDeckExhausted = errors.New("deck_exhausted")

type Suit int

type Rank int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

const (
	Two   Rank = 2
	Three Rank = 3
	Four  Rank = 4
	Five  Rank = 5
	Six   Rank = 6
	Seven Rank = 7
	Eight Rank = 8
	Nine  Rank = 9
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

var (
	rankNames = map[Rank]string{
		Two: "2", Three: "3", Four: "4", Five: "5", Six: "6", Seven: "7", Eight: "8", Nine: "9", Ten: "T", Jack: "J", Queen: "Q", King: "K", Ace: "A",
	}
	suitNames = map[Suit]string{Spades: "s", Hearts: "h", Diamonds: "d", Clubs: "c"}
)

type Card struct {
	Rank Rank
	Suit Suit
}

func (c Card) String() string {
	return rankNames[c.Rank] + suitNames[c.Suit]
}

// ParseCard reads the two character form produced by String, e.g. "Td".
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, errors.New("invalid_card")
	}
	var c Card
	found := false
	for r, name := range rankNames {
		if name == s[:1] {
			c.Rank, found = r, true
		}
	}
	if !found {
		return Card{}, errors.New("invalid_card")
	}
	found = false
	for su, name := range suitNames {
		if name == s[1:] {
			c.Suit, found = su, true
		}
	}
	if !found {
		return Card{}, errors.New("invalid_card")
	}
	return c, nil
}

func cardStrings(cards []Card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.String())
	}
	return out
}

// Deck is a hand scoped card stack. Draws pop from the end.
type Deck struct {
	cards []Card
}

func NewDeck() *Deck {
	cards := make([]Card, 0, 52)
	for s := Spades; s <= Clubs; s++ {
		for r := Two; r <= Ace; r++ {
			cards = append(cards, Card{Rank: r, Suit: s})
		}
	}
	return &Deck{cards: cards}
}

// NewStackedDeck returns a deck that draws cards in the given order.
func NewStackedDeck(draws ...Card) *Deck {
	cards := make([]Card, len(draws))
	for i, c := range draws {
		cards[len(draws)-1-i] = c
	}
	return &Deck{cards: cards}
}

func (d *Deck) Shuffle(rnd *rand.Rand) {
	rnd.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrDeckExhausted
	}
	c := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return c, nil
}

func (d *Deck) Len() int {
	return len(d.cards)
}
