// Package profile keeps durable per-user aggregate statistics, the
// derived leaderboard, and game history.
package profile

import "time"

// UserProfile is one player's durable aggregate stats. Profiles are
// created lazily on first reference and never deleted.
type UserProfile struct {
	UserID       int64      `json:"user_id"`
	Username     string     `json:"username,omitempty"`
	DisplayName  string     `json:"display_name,omitempty"`
	TotalGames   int        `json:"total_games"`
	Wins         int        `json:"wins"`
	TotalPoints  int        `json:"total_points"`
	Streak       int        `json:"streak"`
	Achievements []string   `json:"achievements"`
	CreatedAt    time.Time  `json:"created_at"`
	LastPlayedAt *time.Time `json:"last_played_at,omitempty"`
}

func (p *UserProfile) clone() *UserProfile {
	cp := *p
	cp.Achievements = append([]string(nil), p.Achievements...)
	if p.LastPlayedAt != nil {
		t := *p.LastPlayedAt
		cp.LastPlayedAt = &t
	}
	return &cp
}

// LeaderboardEntry is a read-only projection of a top profile.
type LeaderboardEntry struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	TotalPoints int    `json:"total_points"`
	Wins        int    `json:"wins"`
	TotalGames  int    `json:"total_games"`
}

// GameHistoryRecord is the durable record of one finalized game.
type GameHistoryRecord struct {
	RoomID      string        `json:"room_id"`
	Mode        string        `json:"mode"`
	Players     []int64       `json:"players"`
	FinalScores map[int64]int `json:"final_scores"`
	WinnerID    int64         `json:"winner_id"`
	WinnerScore int           `json:"winner_score"`
	PlayedAt    time.Time     `json:"played_at"`
}

// State is the persisted document: the profile table, the derived
// top-N leaderboard, and the game history.
type State struct {
	Users       map[int64]*UserProfile `json:"users"`
	Leaderboard []LeaderboardEntry     `json:"leaderboard"`
	History     []GameHistoryRecord    `json:"history"`
}

// NewState returns an empty state document.
func NewState() *State {
	return &State{Users: make(map[int64]*UserProfile)}
}

func (s *State) clone() *State {
	cp := &State{
		Users:       make(map[int64]*UserProfile, len(s.Users)),
		Leaderboard: append([]LeaderboardEntry(nil), s.Leaderboard...),
		History:     append([]GameHistoryRecord(nil), s.History...),
	}
	for id, p := range s.Users {
		cp.Users[id] = p.clone()
	}
	return cp
}

// normalize repairs a freshly loaded state: nil maps from older files
// and stale derived projections are rebuilt rather than trusted.
func (s *State) normalize(topN int) {
	if s.Users == nil {
		s.Users = make(map[int64]*UserProfile)
	}
	for id, p := range s.Users {
		if p == nil {
			delete(s.Users, id)
			continue
		}
		p.UserID = id
		if p.Achievements == nil {
			p.Achievements = []string{}
		}
		if p.TotalPoints < 0 {
			p.TotalPoints = 0
		}
		if p.Wins > p.TotalGames {
			p.Wins = p.TotalGames
		}
	}
	s.Leaderboard = computeLeaderboard(s.Users, topN)
}
