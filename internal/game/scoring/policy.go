// Package scoring computes server-side points for answers.
package scoring

// Config holds the scoring constants. Speed bonuses are mutually
// exclusive: only the fastest applicable tier is awarded.
type Config struct {
	BasePoints   int     // awarded for any correct answer
	FastBonus    int     // answered within FastWindow seconds
	MediumBonus  int     // answered within MediumWindow seconds
	SlowBonus    int     // answered within SlowWindow seconds
	FastWindow   float64 // seconds
	MediumWindow float64
	SlowWindow   float64

	SoloBasePoints int // flat award in solo practice, no speed bonus
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		BasePoints:     100,
		FastBonus:      50,
		MediumBonus:    30,
		SlowBonus:      10,
		FastWindow:     5,
		MediumWindow:   10,
		SlowWindow:     15,
		SoloBasePoints: 100,
	}
}

// Engine is a pure scoring policy with configurable constants.
type Engine struct {
	config Config
}

// NewEngine creates a scoring engine with the provided config.
func NewEngine(config Config) *Engine {
	return &Engine{config: config}
}

// Score computes points for a single multiplayer answer: base points plus
// the highest speed tier the elapsed time qualifies for. Incorrect
// answers always score zero.
func (e *Engine) Score(isCorrect bool, elapsedSeconds float64) int {
	if !isCorrect {
		return 0
	}

	points := e.config.BasePoints
	switch {
	case elapsedSeconds < e.config.FastWindow:
		points += e.config.FastBonus
	case elapsedSeconds < e.config.MediumWindow:
		points += e.config.MediumBonus
	case elapsedSeconds < e.config.SlowWindow:
		points += e.config.SlowBonus
	}
	return points
}

// SoloScore computes points for a solo-practice answer. Practice rounds
// award a flat amount with no speed pressure.
func (e *Engine) SoloScore(isCorrect bool) int {
	if !isCorrect {
		return 0
	}
	return e.config.SoloBasePoints
}
