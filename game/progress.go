package game

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Store is the key/value backing for per-player progress and the local
// leaderboard. Progress logic is a pure function of (store contents,
// round result); no storage backend is assumed.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Fixed storage keys shared by every game instance.
const (
	KeyHighScore       = "krazyKards-highScore"
	KeyHighLevel       = "krazyKards-highLevel"
	KeyCompletedLevels = "krazyKards-completedLevels"
	KeyLeaderboard     = "krazyKards-leaderboard"
)

const leaderboardSize = 20

// LeaderboardEntry is one row of the local top-20 table.
type LeaderboardEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Level int    `json:"level"`
}

// Progress summarizes a player's stored bests.
type Progress struct {
	HighScore       int   `json:"high_score"`
	HighLevel       int   `json:"high_level"`
	CompletedLevels []int `json:"completed_levels"`
}

// RecordResult applies end-of-round bookkeeping: replace the stored
// high score and high level when beaten, add the level to the completed
// set on a win (idempotent), and append a leaderboard entry when the
// score is positive, keeping the table sorted descending and capped.
func RecordResult(store Store, name string, level, score int, won bool) error {
	highScore, err := getInt(store, KeyHighScore, 0)
	if err != nil {
		return err
	}
	if score > highScore {
		if err := store.Set(KeyHighScore, strconv.Itoa(score)); err != nil {
			return err
		}
	}

	if won {
		completed, err := completedLevels(store)
		if err != nil {
			return err
		}
		seen := false
		for _, l := range completed {
			if l == level {
				seen = true
				break
			}
		}
		if !seen {
			completed = append(completed, level)
			if err := store.Set(KeyCompletedLevels, joinInts(completed)); err != nil {
				return err
			}
		}
	}

	highLevel, err := getInt(store, KeyHighLevel, 1)
	if err != nil {
		return err
	}
	if level > highLevel {
		if err := store.Set(KeyHighLevel, strconv.Itoa(level)); err != nil {
			return err
		}
	}

	if score > 0 {
		return appendLeaderboardEntry(store, LeaderboardEntry{Name: name, Score: score, Level: level})
	}
	return nil
}

// LoadProgress reads the stored bests for a player.
func LoadProgress(store Store) (Progress, error) {
	highScore, err := getInt(store, KeyHighScore, 0)
	if err != nil {
		return Progress{}, err
	}
	highLevel, err := getInt(store, KeyHighLevel, 1)
	if err != nil {
		return Progress{}, err
	}
	completed, err := completedLevels(store)
	if err != nil {
		return Progress{}, err
	}
	return Progress{HighScore: highScore, HighLevel: highLevel, CompletedLevels: completed}, nil
}

// Leaderboard returns the stored table, empty when never written.
func Leaderboard(store Store) ([]LeaderboardEntry, error) {
	raw, ok, err := store.Get(KeyLeaderboard)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []LeaderboardEntry{}, nil
	}
	var entries []LeaderboardEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("corrupt leaderboard state: %w", err)
	}
	return entries, nil
}

func appendLeaderboardEntry(store Store, entry LeaderboardEntry) error {
	entries, err := Leaderboard(store)
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	// Stable sort so a newcomer tied with the table minimum stays last
	// and falls off a full table.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	if len(entries) > leaderboardSize {
		entries = entries[:leaderboardSize]
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return store.Set(KeyLeaderboard, string(raw))
}

var seedNames = []string{
	"HODL Hank", "Diamond Dani", "Monad Maxi", "Degen Dave",
	"Gas Fee Gabe", "Whale Wanda", "Rug Pull Randy", "FOMO Fred",
	"Moon Molly", "Lambo Larry", "NFT Nancy", "Pump Patty",
	"Dump Doug", "Crypto Chad", "Staking Sally", "Yield Yvonne",
	"Liquidity Lisa", "APE Andy", "Airdrop Alex", "Miner Mike",
}

// SeedLeaderboard writes an initial table of low scores when none
// exists yet, so the board is never empty on first load.
func SeedLeaderboard(store Store, rng *rand.Rand) error {
	if _, ok, err := store.Get(KeyLeaderboard); err != nil {
		return err
	} else if ok {
		return nil
	}
	names := make([]string, len(seedNames))
	copy(names, seedNames)
	rng.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })

	entries := make([]LeaderboardEntry, 0, leaderboardSize)
	for _, name := range names[:leaderboardSize] {
		entries = append(entries, LeaderboardEntry{
			Name:  name,
			Score: rng.Intn(40) + 10,
			Level: rng.Intn(2) + 1,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return store.Set(KeyLeaderboard, string(raw))
}

func getInt(store Store, key string, fallback int) (int, error) {
	raw, ok, err := store.Get(key)
	if err != nil {
		return 0, err
	}
	if !ok || raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, nil
	}
	return n, nil
}

func completedLevels(store Store) ([]int, error) {
	raw, ok, err := store.Get(KeyCompletedLevels)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var levels []int
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		levels = append(levels, n)
	}
	return levels, nil
}

func joinInts(levels []int) string {
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = strconv.Itoa(l)
	}
	return strings.Join(parts, ",")
}

// MemoryStore is an in-process Store, used for anonymous sessions and
// in tests.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
