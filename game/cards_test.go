package game

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFriends(n int) []Friend {
	friends := make([]Friend, n)
	for i := range friends {
		friends[i] = Friend{
			FID:         int64(1000 + i),
			Username:    fmt.Sprintf("friend%d", i),
			DisplayName: fmt.Sprintf("Friend %d", i),
			PfpURL:      fmt.Sprintf("https://example.com/pfp/%d.png", i),
		}
	}
	return friends
}

func valueCounts(deck []Card) map[string]int {
	counts := make(map[string]int)
	for _, c := range deck {
		counts[c.Value]++
	}
	return counts
}

func TestNewDeck_PairStructure(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	deck := NewDeck(8, nil, rng)

	require.Len(t, deck, 16)
	for value, count := range valueCounts(deck) {
		assert.Equal(t, 2, count, "value %q", value)
	}
}

func TestNewDeck_FriendCards(t *testing.T) {
	t.Run("friend count capped by pair count", func(t *testing.T) {
		rng := rand.New(rand.NewSource(2))
		deck := NewDeck(8, testFriends(5), rng)

		require.Len(t, deck, 16)
		friendCards := 0
		for _, c := range deck {
			if c.Kind == KindFriend {
				friendCards++
			}
		}
		// ceil(8/4) = 2 friends, one pair each.
		assert.Equal(t, 4, friendCards)
	})

	t.Run("fewer friends than the cap", func(t *testing.T) {
		rng := rand.New(rand.NewSource(3))
		deck := NewDeck(12, testFriends(1), rng)

		require.Len(t, deck, 24)
		friendCards := 0
		for _, c := range deck {
			if c.Kind == KindFriend {
				friendCards++
				assert.Equal(t, "Friend 0", c.Value)
			}
		}
		assert.Equal(t, 2, friendCards)
	})

	t.Run("username fallback when display name is empty", func(t *testing.T) {
		rng := rand.New(rand.NewSource(4))
		deck := NewDeck(4, []Friend{{FID: 7, Username: "anon7"}}, rng)

		found := false
		for _, c := range deck {
			if c.Kind == KindFriend {
				found = true
				assert.Equal(t, "anon7", c.Value)
				assert.Equal(t, defaultAvatarURL, c.ImageURL)
			}
		}
		assert.True(t, found)
	})
}

func TestNewDeck_Deterministic(t *testing.T) {
	a := NewDeck(10, testFriends(2), rand.New(rand.NewSource(5)))
	b := NewDeck(10, testFriends(2), rand.New(rand.NewSource(5)))

	// Same seed reproduces the same deck exactly.
	assert.Equal(t, a, b)

	c := NewDeck(10, testFriends(2), rand.New(rand.NewSource(6)))
	assert.NotEqual(t, a, c, "different seeds should produce different decks")
}

func TestMatches(t *testing.T) {
	a := Card{ID: "symbol-0-1", Kind: KindSymbol, Value: "MONAD"}
	b := Card{ID: "symbol-0-2", Kind: KindSymbol, Value: "MONAD"}
	c := Card{ID: "symbol-1-1", Kind: KindSymbol, Value: "ETH"}

	assert.True(t, Matches(a, b))
	assert.False(t, Matches(a, c))
}
