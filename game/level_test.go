package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFor_TimeLimit(t *testing.T) {
	// 25% decay rounded at every step.
	expected := map[int]int{1: 60, 2: 45, 3: 34, 4: 26}
	for level, want := range expected {
		assert.Equal(t, want, LevelFor(level).TimeLimit, "level %d", level)
	}

	t.Run("never drops below 15", func(t *testing.T) {
		for level := 1; level <= 30; level++ {
			assert.GreaterOrEqual(t, LevelFor(level).TimeLimit, 15)
		}
		assert.Equal(t, 15, LevelFor(30).TimeLimit)
	})
}

func TestLevelFor_Pairs(t *testing.T) {
	assert.Equal(t, 8, LevelFor(1).Pairs)
	assert.Equal(t, 10, LevelFor(2).Pairs)
	assert.Equal(t, 16, LevelFor(5).Pairs)
	assert.Equal(t, 18, LevelFor(6).Pairs)

	t.Run("capped at 18", func(t *testing.T) {
		assert.Equal(t, 18, LevelFor(7).Pairs)
		assert.Equal(t, 18, LevelFor(50).Pairs)
	})
}

func TestLevelFor_GridColumns(t *testing.T) {
	assert.Equal(t, 4, LevelFor(1).GridColumns)
	assert.Equal(t, 5, LevelFor(2).GridColumns)
	assert.Equal(t, 5, LevelFor(3).GridColumns)
	assert.Equal(t, 6, LevelFor(4).GridColumns)
	assert.Equal(t, 6, LevelFor(10).GridColumns)
}

func TestLevelFor_ScoreMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, LevelFor(1).ScoreMultiplier)
	assert.Equal(t, 1.5, LevelFor(2).ScoreMultiplier)
	assert.Equal(t, 3.0, LevelFor(5).ScoreMultiplier)
}

func TestLevelFor_ClampsBadInput(t *testing.T) {
	assert.Equal(t, LevelFor(1), LevelFor(0))
	assert.Equal(t, LevelFor(1), LevelFor(-3))
}
