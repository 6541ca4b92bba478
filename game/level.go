package game

import "math"

// LevelConfig holds the derived parameters for one level. It is a pure
// function of the level number and never persisted.
type LevelConfig struct {
	Level           int     `json:"level"`
	Pairs           int     `json:"pairs"`
	TimeLimit       int     `json:"time_limit"`
	GridColumns     int     `json:"grid_columns"`
	ScoreMultiplier float64 `json:"score_multiplier"`
}

// LevelFor derives the configuration for a level.
// Pairs grow by 2 per level from 8, capped at 18. The time limit starts
// at 60 and loses 25% per level, rounded each step (60, 45, 34, 26, ...),
// never below 15. The iterative rounding is load-bearing: a closed-form
// 0.75^n power gives different values from level 4 on.
func LevelFor(level int) LevelConfig {
	if level < 1 {
		level = 1
	}

	pairs := 8 + (level-1)*2
	if pairs > 18 {
		pairs = 18
	}

	timeLimit := 60.0
	for i := 1; i < level; i++ {
		timeLimit = math.Round(timeLimit - timeLimit*0.25)
	}
	seconds := int(timeLimit)
	if seconds < 15 {
		seconds = 15
	}

	columns := 4
	switch {
	case pairs > 12:
		columns = 6
	case pairs > 8:
		columns = 5
	}

	return LevelConfig{
		Level:           level,
		Pairs:           pairs,
		TimeLimit:       seconds,
		GridColumns:     columns,
		ScoreMultiplier: 1 + float64(level-1)*0.5,
	}
}
