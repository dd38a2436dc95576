package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreTiers(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	cases := []struct {
		name    string
		elapsed float64
		want    int
	}{
		{"instant", 0, 150},
		{"just under fast window", 4.9, 150},
		{"fast window boundary", 5, 130},
		{"medium tier", 9.9, 130},
		{"medium boundary", 10, 110},
		{"slow tier", 14.9, 110},
		{"slow boundary", 15, 100},
		{"very slow", 120, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, engine.Score(true, tc.elapsed))
		})
	}
}

func TestScoreIncorrectAlwaysZero(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	for _, elapsed := range []float64{0, 3, 7, 12, 60} {
		assert.Zero(t, engine.Score(false, elapsed))
	}
}

func TestScoreMonotonicInElapsedTime(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	prev := engine.Score(true, 0)
	for elapsed := 0.5; elapsed <= 30; elapsed += 0.5 {
		current := engine.Score(true, elapsed)
		assert.LessOrEqual(t, current, prev, "score must not increase with elapsed time")
		assert.Greater(t, current, engine.Score(false, elapsed))
		prev = current
	}
}

func TestSoloScoreFlat(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	assert.Equal(t, 100, engine.SoloScore(true))
	assert.Zero(t, engine.SoloScore(false))
}
