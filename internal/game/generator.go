package game

import (
	"math/rand"
	"sync"
	"time"
)

// MinSubjectPool is the smallest pool that can build one question:
// one correct answer plus three distractors.
const MinSubjectPool = 4

const defaultPrompt = "What sign is this?"

// Generator produces shuffled multiple-choice question sets from a
// subject pool.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a generator. A nil rng falls back to a
// time-seeded source; tests inject a deterministic one.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng}
}

// Generate builds min(count, len(pool)) questions by sampling subjects
// without replacement. Each question's options are the subject plus
// three distractors drawn from the rest of the pool, shuffled
// independently so the correct option's position carries no signal.
// Pools smaller than MinSubjectPool cannot produce a question set.
func (g *Generator) Generate(pool []string, count int) ([]Question, error) {
	if len(pool) < MinSubjectPool {
		return nil, ErrInsufficientPool
	}
	if count > len(pool) {
		count = len(pool)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	subjects := g.sample(pool, count, "")
	questions := make([]Question, 0, count)
	for _, subject := range subjects {
		options := g.sample(pool, 3, subject)
		options = append(options, subject)
		g.rng.Shuffle(len(options), func(i, j int) {
			options[i], options[j] = options[j], options[i]
		})

		questions = append(questions, Question{
			Prompt:        defaultPrompt,
			CorrectAnswer: subject,
			Options:       options,
			SubjectRef:    subject,
		})
	}
	return questions, nil
}

// sample draws n elements without replacement, skipping exclude.
func (g *Generator) sample(pool []string, n int, exclude string) []string {
	candidates := make([]string, 0, len(pool))
	for _, w := range pool {
		if w != exclude {
			candidates = append(candidates, w)
		}
	}
	g.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if n > len(candidates) {
		n = len(candidates)
	}
	return candidates[:n]
}
