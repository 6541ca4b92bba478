package services

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"monad-moments/game"
	"monad-moments/models"

	"github.com/google/uuid"
)

var (
	ErrRoundNotFound = errors.New("round not found")
	ErrNotRoundOwner = errors.New("round owned by another session")
)

// StateProvider hands out the progress store for a player.
type StateProvider interface {
	StoreFor(fid int64) game.Store
}

// ProfileLookup resolves the display name used on leaderboard entries.
type ProfileLookup interface {
	GetByFid(fid int64) (*models.User, error)
}

// RoundManager hosts the active match-game rounds, keyed by round id.
// Every round is owned by the session (fid) that created it; no two
// sessions share mutable round state.
type RoundManager struct {
	mu     sync.Mutex
	rounds map[string]*hostedRound
	states StateProvider
	users  ProfileLookup
}

type hostedRound struct {
	fid   int64
	round *game.Round
}

func NewRoundManager(states StateProvider, users ProfileLookup) *RoundManager {
	return &RoundManager{
		rounds: make(map[string]*hostedRound),
		states: states,
		users:  users,
	}
}

// StartRound creates and starts a round for the given level.
func (m *RoundManager) StartRound(fid int64, level int, friends []game.Friend) (string, game.Snapshot) {
	config := game.LevelFor(level)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	deck := game.NewDeck(config.Pairs, friends, rng)

	round := game.NewRound(config, deck)
	id := uuid.NewString()
	round.OnFinish(func(snap game.Snapshot) { m.finishRound(id, fid, snap) })

	m.mu.Lock()
	m.rounds[id] = &hostedRound{fid: fid, round: round}
	m.mu.Unlock()

	round.Start()
	return id, round.State()
}

// Flip applies a flip to an owned round. Invalid indices are no-ops per
// the engine's contract; only unknown or foreign rounds error.
func (m *RoundManager) Flip(fid int64, id string, index int) (game.Snapshot, error) {
	round, err := m.lookup(fid, id)
	if err != nil {
		return game.Snapshot{}, err
	}
	round.Flip(index)
	return round.State(), nil
}

// Get returns the current state of an owned round.
func (m *RoundManager) Get(fid int64, id string) (game.Snapshot, error) {
	round, err := m.lookup(fid, id)
	if err != nil {
		return game.Snapshot{}, err
	}
	return round.State(), nil
}

// Abandon discards an owned round, clearing its timers. No bookkeeping
// runs for abandoned rounds.
func (m *RoundManager) Abandon(fid int64, id string) error {
	round, err := m.lookup(fid, id)
	if err != nil {
		return err
	}
	round.Abandon()
	m.mu.Lock()
	delete(m.rounds, id)
	m.mu.Unlock()
	return nil
}

// Progress returns the player's stored bests.
func (m *RoundManager) Progress(fid int64) (game.Progress, error) {
	return game.LoadProgress(m.states.StoreFor(fid))
}

// Leaderboard returns the player's local top-20 table, seeding it on
// first read.
func (m *RoundManager) Leaderboard(fid int64) ([]game.LeaderboardEntry, error) {
	store := m.states.StoreFor(fid)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	if err := game.SeedLeaderboard(store, rng); err != nil {
		return nil, err
	}
	return game.Leaderboard(store)
}

func (m *RoundManager) lookup(fid int64, id string) (*game.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hosted, ok := m.rounds[id]
	if !ok {
		return nil, ErrRoundNotFound
	}
	if hosted.fid != fid {
		return nil, ErrNotRoundOwner
	}
	return hosted.round, nil
}

func (m *RoundManager) finishRound(id string, fid int64, snap game.Snapshot) {
	store := m.states.StoreFor(fid)
	if err := game.RecordResult(store, m.playerName(fid), snap.Config.Level, snap.Score, snap.Won); err != nil {
		log.Printf("❌ Error recording round result for fid=%d: %v", fid, err)
	}
	log.Printf("🎮 Round %s over: fid=%d level=%d score=%d won=%t", id, fid, snap.Config.Level, snap.Score, snap.Won)

	// Keep the finished round readable for a while, then drop it.
	time.AfterFunc(time.Minute, func() {
		m.mu.Lock()
		delete(m.rounds, id)
		m.mu.Unlock()
	})
}

func (m *RoundManager) playerName(fid int64) string {
	if m.users != nil {
		if user, err := m.users.GetByFid(fid); err == nil && user != nil {
			if user.DisplayName != "" {
				return user.DisplayName
			}
			if user.Username != "" {
				return user.Username
			}
		}
	}
	return fmt.Sprintf("Player %d", rand.Intn(1000))
}
