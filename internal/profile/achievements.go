package profile

// Achievement is one entry in the fixed achievement table. Every profile
// mutation evaluates all predicates; an id already held is never
// re-awarded.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	earned func(p *UserProfile) bool
}

// Achievements is the full table, in award-check order.
var Achievements = []Achievement{
	{
		ID:          "first_game",
		Name:        "🎮 First Steps",
		Description: "Played first game",
		earned:      func(p *UserProfile) bool { return p.TotalGames >= 1 },
	},
	{
		ID:          "ten_wins",
		Name:        "🏆 Winner",
		Description: "10 wins achieved",
		earned:      func(p *UserProfile) bool { return p.Wins >= 10 },
	},
	{
		ID:          "streak_5",
		Name:        "🔥 Hot Streak",
		Description: "5 game win streak",
		earned:      func(p *UserProfile) bool { return p.Streak >= 5 },
	},
	{
		ID:          "point_master",
		Name:        "⭐ Point Master",
		Description: "1000 points earned",
		earned:      func(p *UserProfile) bool { return p.TotalPoints >= 1000 },
	},
}

// evaluateAchievements appends any newly earned achievement ids to the
// profile and returns their definitions.
func evaluateAchievements(p *UserProfile) []Achievement {
	held := make(map[string]bool, len(p.Achievements))
	for _, id := range p.Achievements {
		held[id] = true
	}

	var awarded []Achievement
	for _, a := range Achievements {
		if held[a.ID] || !a.earned(p) {
			continue
		}
		p.Achievements = append(p.Achievements, a.ID)
		awarded = append(awarded, a)
	}
	return awarded
}
