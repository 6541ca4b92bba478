package game

import (
	"fmt"
	"math/rand"
)

// CardKind separates friend cards (minted from profiles) from the
// fixed symbol catalog. Values of the two kinds never collide.
type CardKind string

const (
	KindSymbol CardKind = "symbol"
	KindFriend CardKind = "friend"
)

// Card is one face in a deck. Two cards with equal Value form a pair.
// Cards are immutable once generated.
type Card struct {
	ID       string   `json:"id"`
	Kind     CardKind `json:"kind"`
	Value    string   `json:"value"`
	ImageURL string   `json:"image_url"`
}

// Friend is the minimal profile needed to mint a friend pair.
type Friend struct {
	FID         int64  `json:"fid"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	PfpURL      string `json:"pfp_url"`
}

const defaultAvatarURL = "https://cdn.stamp.fyi/avatar/eth:0x0000000000000000000000000000000000000000?s=300"

type symbol struct {
	value string
	emoji string
}

var symbolCatalog = []symbol{
	{"MONAD", "💎"},
	{"ETH", "🔷"},
	{"10x", "🚀"},
	{"HODL", "💪"},
	{"APE", "🦍"},
	{"MOON", "🌕"},
	{"GAS", "⛽"},
	{"DEGEN", "🎲"},
	{"WHALE", "🐋"},
	{"PUMP", "📈"},
	{"DUMP", "📉"},
	{"NGMI", "😭"},
	{"WAGMI", "👨‍👩‍👧‍👦"},
	{"FUD", "😱"},
	{"FOMO", "🏃"},
	{"SAFU", "🔒"},
	{"REKT", "💥"},
	{"ALPHA", "🔍"},
	{"BTFD", "👇"},
	{"MEWN", "🌑"},
	{"ANON", "🕵️"},
	{"POAP", "🏆"},
	{"BASED", "🔥"},
	{"CHAD", "💪"},
}

// NewDeck builds a shuffled deck of pairCount pairs. Up to
// ceil(pairCount/4) friends each contribute one pair keyed by their
// display name; the remainder is drawn cyclically from a shuffled copy
// of the symbol catalog. The result always holds exactly 2*pairCount
// cards with every value appearing twice.
func NewDeck(pairCount int, friends []Friend, rng *rand.Rand) []Card {
	if pairCount < 1 {
		pairCount = 1
	}

	symbols := make([]symbol, len(symbolCatalog))
	copy(symbols, symbolCatalog)
	rng.Shuffle(len(symbols), func(i, j int) {
		symbols[i], symbols[j] = symbols[j], symbols[i]
	})

	var friendCards []Card
	if len(friends) > 0 {
		numFriends := min(len(friends), (pairCount+3)/4)
		for i := 0; i < numFriends; i++ {
			friend := friends[i]
			value := friend.DisplayName
			if value == "" {
				value = friend.Username
			}
			imageURL := friend.PfpURL
			if imageURL == "" {
				imageURL = defaultAvatarURL
			}
			for copyNo := 1; copyNo <= 2; copyNo++ {
				friendCards = append(friendCards, Card{
					ID:       fmt.Sprintf("friend-%d-%d", i, copyNo),
					Kind:     KindFriend,
					Value:    value,
					ImageURL: imageURL,
				})
			}
		}
	}

	cards := make([]Card, 0, 2*pairCount)
	symbolPairs := pairCount - len(friendCards)/2
	for i := 0; i < symbolPairs; i++ {
		sym := symbols[i%len(symbols)]
		for copyNo := 1; copyNo <= 2; copyNo++ {
			cards = append(cards, Card{
				ID:       fmt.Sprintf("symbol-%d-%d", i, copyNo),
				Kind:     KindSymbol,
				Value:    sym.value,
				ImageURL: sym.emoji,
			})
		}
	}

	cards = append(cards, friendCards...)
	shuffleCards(cards, rng)
	return cards
}

// shuffleCards applies a uniform Fisher-Yates permutation in place.
func shuffleCards(cards []Card, rng *rand.Rand) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// Matches reports whether two cards form a pair.
func Matches(a, b Card) bool {
	return a.Value == b.Value
}
