package game

import (
	"math"
	"sort"
	"sync"
	"time"
)

// Snapshot is a point-in-time copy of a round's visible state.
type Snapshot struct {
	Config   LevelConfig `json:"config"`
	Deck     []Card      `json:"deck"`
	Flipped  []int       `json:"flipped"`
	Matched  []int       `json:"matched"`
	Score    int         `json:"score"`
	Moves    int         `json:"moves"`
	TimeLeft int         `json:"time_left"`
	Over     bool        `json:"over"`
	Won      bool        `json:"won"`
}

// Round drives one level attempt: the shuffled deck, the 0-2 face-up
// indices, matched pairs, score and the countdown. The round raises no
// errors; invalid flips are silent no-ops. Timer callbacks mutate state
// under the same lock as the caller-facing methods.
type Round struct {
	// UnflipDelay and TickInterval may be tuned before Start.
	UnflipDelay  time.Duration
	TickInterval time.Duration

	mu          sync.Mutex
	config      LevelConfig
	deck        []Card
	flipped     []int
	matched     map[int]bool
	score       int
	moves       int
	timeLeft    int
	over        bool
	won         bool
	abandoned   bool
	started     bool
	clockStop   chan struct{}
	unflipTimer *time.Timer
	onFinish    func(Snapshot)
}

// NewRound builds an idle round over the given deck. Call Start to
// begin the countdown.
func NewRound(config LevelConfig, deck []Card) *Round {
	return &Round{
		UnflipDelay:  time.Second,
		TickInterval: time.Second,
		config:       config,
		deck:         deck,
		matched:      make(map[int]bool),
		timeLeft:     config.TimeLimit,
	}
}

// OnFinish registers the bookkeeping callback invoked once when the
// round ends naturally (win or timeout). Abandoned rounds skip it.
func (r *Round) OnFinish(fn func(Snapshot)) {
	r.mu.Lock()
	r.onFinish = fn
	r.mu.Unlock()
}

// Start begins the one-second countdown.
func (r *Round) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.over {
		return
	}
	r.started = true
	r.clockStop = make(chan struct{})
	go r.runClock(r.clockStop, r.TickInterval)
}

func (r *Round) runClock(stop chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if r.tick() {
				return
			}
		}
	}
}

// tick decrements the countdown; reaching zero forces round-over and
// freezes further flips. Returns true once the round has ended.
func (r *Round) tick() bool {
	r.mu.Lock()
	if r.over {
		r.mu.Unlock()
		return true
	}
	r.timeLeft--
	if r.timeLeft > 0 {
		r.mu.Unlock()
		return false
	}
	r.timeLeft = 0
	finish := r.finishLocked(len(r.matched) == len(r.deck))
	r.mu.Unlock()
	if finish != nil {
		finish()
	}
	return true
}

// Flip turns the card at index face-up. Requests against an over round,
// a matched or already-flipped index, or with two cards face-up are
// ignored. When the flip completes a pair the match is resolved
// immediately; the pair returns face-down after UnflipDelay either way.
func (r *Round) Flip(index int) {
	r.mu.Lock()
	if r.over || index < 0 || index >= len(r.deck) ||
		r.matched[index] || r.isFlipped(index) || len(r.flipped) >= 2 {
		r.mu.Unlock()
		return
	}
	r.flipped = append(r.flipped, index)
	if len(r.flipped) < 2 {
		r.mu.Unlock()
		return
	}

	first, second := r.flipped[0], r.flipped[1]
	if Matches(r.deck[first], r.deck[second]) {
		r.matched[first] = true
		r.matched[second] = true
		bonus := r.timeLeft / 3
		r.score += int(math.Round(float64(10+bonus) * r.config.ScoreMultiplier))
	}
	r.unflipTimer = time.AfterFunc(r.UnflipDelay, r.resolvePair)

	var finish func()
	if len(r.matched) == len(r.deck) {
		finish = r.finishLocked(true)
	}
	r.mu.Unlock()
	if finish != nil {
		finish()
	}
}

// resolvePair returns the current pair face-down and counts the move.
// Runs once per resolved pair, matched or not.
func (r *Round) resolvePair() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.abandoned || len(r.flipped) != 2 {
		return
	}
	r.flipped = r.flipped[:0]
	r.moves++
}

// Abandon discards the round. All pending timers are cleared so no
// stale tick can mutate superseded state; no bookkeeping runs.
func (r *Round) Abandon() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.abandoned = true
	r.over = true
	if r.clockStop != nil {
		close(r.clockStop)
		r.clockStop = nil
	}
	if r.unflipTimer != nil {
		r.unflipTimer.Stop()
		r.unflipTimer = nil
	}
}

// State returns a copy of the round's current state.
func (r *Round) State() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Round) isFlipped(index int) bool {
	for _, i := range r.flipped {
		if i == index {
			return true
		}
	}
	return false
}

// finishLocked marks the round over and hands back the finish callback
// to invoke outside the lock, or nil.
func (r *Round) finishLocked(won bool) func() {
	if r.over {
		return nil
	}
	r.over = true
	r.won = won
	if r.clockStop != nil {
		close(r.clockStop)
		r.clockStop = nil
	}
	if r.onFinish == nil {
		return nil
	}
	fn := r.onFinish
	snap := r.snapshotLocked()
	return func() { fn(snap) }
}

func (r *Round) snapshotLocked() Snapshot {
	deck := make([]Card, len(r.deck))
	copy(deck, r.deck)
	matched := make([]int, 0, len(r.matched))
	for i := range r.matched {
		matched = append(matched, i)
	}
	sort.Ints(matched)
	return Snapshot{
		Config:   r.config,
		Deck:     deck,
		Flipped:  append([]int(nil), r.flipped...),
		Matched:  matched,
		Score:    r.score,
		Moves:    r.moves,
		TimeLeft: r.timeLeft,
		Over:     r.over,
		Won:      r.won,
	}
}
