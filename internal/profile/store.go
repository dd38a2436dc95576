package profile

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Persister stores and loads the whole state document.
type Persister interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, state *State) error
}

// GameResult is one player's outcome from a finalized game.
type GameResult struct {
	UserID      int64
	Username    string
	DisplayName string
	Points      int
	Won         bool
}

// StoreOptions configures the profile store.
type StoreOptions struct {
	TopN int // leaderboard size, default 50
}

// Store owns the profile table. Every mutation runs under one mutex:
// clone the state, mutate the clone, persist it, then commit it to
// memory. A failed persist therefore leaves the in-memory table exactly
// as it was and the caller is told the update did not take effect.
type Store struct {
	mu        sync.Mutex
	persister Persister
	cache     *LeaderboardCache // optional mirror, nil-safe
	topN      int
	logger    zerolog.Logger
	state     *State
}

// NewStore loads the persisted state (an empty table if none exists)
// and wires the optional leaderboard cache.
func NewStore(ctx context.Context, persister Persister, cache *LeaderboardCache, opts StoreOptions, logger zerolog.Logger) (*Store, error) {
	topN := opts.TopN
	if topN <= 0 {
		topN = 50
	}

	state, err := persister.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profile state: %w", err)
	}
	if state == nil {
		state = NewState()
	}
	state.normalize(topN)

	s := &Store{
		persister: persister,
		cache:     cache,
		topN:      topN,
		logger:    logger.With().Str("component", "profiles").Logger(),
		state:     state,
	}
	s.logger.Info().Int("users", len(state.Users)).Int("history", len(state.History)).Msg("profile store loaded")
	return s, nil
}

// GetOrCreate returns the profile for userID, creating and persisting a
// zeroed one on first reference.
func (s *Store) GetOrCreate(ctx context.Context, userID int64, username, displayName string) (UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.state.Users[userID]; ok {
		return *p.clone(), nil
	}

	next := s.state.clone()
	next.Users[userID] = &UserProfile{
		UserID:       userID,
		Username:     username,
		DisplayName:  displayName,
		Achievements: []string{},
		CreatedAt:    time.Now(),
	}
	if err := s.commitLocked(ctx, next); err != nil {
		return UserProfile{}, err
	}
	return *s.state.Users[userID].clone(), nil
}

// RecordGameResult folds one game outcome into the player's aggregates,
// evaluates achievements, persists the table, and recomputes the
// leaderboard. It returns the updated profile and any newly earned
// achievements.
func (s *Store) RecordGameResult(ctx context.Context, res GameResult) (UserProfile, []Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	p, ok := next.Users[res.UserID]
	if !ok {
		p = &UserProfile{
			UserID:       res.UserID,
			Username:     res.Username,
			DisplayName:  res.DisplayName,
			Achievements: []string{},
			CreatedAt:    time.Now(),
		}
		next.Users[res.UserID] = p
	}
	if res.Username != "" {
		p.Username = res.Username
	}
	if res.DisplayName != "" {
		p.DisplayName = res.DisplayName
	}

	p.TotalGames++
	p.TotalPoints += res.Points
	now := time.Now()
	p.LastPlayedAt = &now
	if res.Won {
		p.Wins++
		p.Streak++
	} else {
		p.Streak = 0
	}

	awarded := evaluateAchievements(p)
	next.Leaderboard = computeLeaderboard(next.Users, s.topN)

	if err := s.commitLocked(ctx, next); err != nil {
		return UserProfile{}, nil, err
	}

	if len(awarded) > 0 {
		s.logger.Info().
			Int64("user_id", res.UserID).
			Int("count", len(awarded)).
			Msg("achievements awarded")
	}
	return *p.clone(), awarded, nil
}

// AppendHistory records one finalized game in the durable history.
func (s *Store) AppendHistory(ctx context.Context, rec GameHistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	next.History = append(next.History, rec)
	return s.commitLocked(ctx, next)
}

// commitLocked persists the candidate state and, on success, makes it
// the live one. Callers hold s.mu.
func (s *Store) commitLocked(ctx context.Context, next *State) error {
	if err := s.persister.Save(ctx, next); err != nil {
		return fmt.Errorf("persist profile state: %w", err)
	}
	s.state = next

	if s.cache != nil {
		if err := s.cache.Refresh(ctx, next.Leaderboard); err != nil {
			// The cache is a mirror of persisted state, not the source
			// of truth; a refresh failure is not a store failure.
			s.logger.Warn().Err(err).Msg("leaderboard cache refresh failed")
		}
	}
	return nil
}

// Leaderboard returns the top entries, at most limit (or the full
// top-N when limit is zero or too large).
func (s *Store) Leaderboard(limit int) []LeaderboardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.state.Leaderboard
	if limit <= 0 || limit > len(entries) {
		limit = len(entries)
	}
	return append([]LeaderboardEntry(nil), entries[:limit]...)
}

// UserRank reports the player's 1-based leaderboard position alongside
// their profile. Rank 0 means the player has not reached the board.
func (s *Store) UserRank(ctx context.Context, userID int64) (int, UserProfile, error) {
	s.mu.Lock()
	for i, e := range s.state.Leaderboard {
		if e.UserID == userID {
			p := s.state.Users[userID].clone()
			s.mu.Unlock()
			return i + 1, *p, nil
		}
	}
	s.mu.Unlock()

	p, err := s.GetOrCreate(ctx, userID, "", "")
	if err != nil {
		return 0, UserProfile{}, err
	}
	return 0, p, nil
}

// History returns the most recent limit records, newest last.
func (s *Store) History(limit int) []GameHistoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := s.state.History
	if limit > 0 && len(recs) > limit {
		recs = recs[len(recs)-limit:]
	}
	return append([]GameHistoryRecord(nil), recs...)
}

// computeLeaderboard projects the top-N profiles by total points
// descending; equal totals rank by user id for a stable order.
func computeLeaderboard(users map[int64]*UserProfile, topN int) []LeaderboardEntry {
	all := make([]*UserProfile, 0, len(users))
	for _, p := range users {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].TotalPoints != all[j].TotalPoints {
			return all[i].TotalPoints > all[j].TotalPoints
		}
		return all[i].UserID < all[j].UserID
	})
	if len(all) > topN {
		all = all[:topN]
	}

	entries := make([]LeaderboardEntry, 0, len(all))
	for _, p := range all {
		entries = append(entries, LeaderboardEntry{
			UserID:      p.UserID,
			Username:    p.Username,
			DisplayName: p.DisplayName,
			TotalPoints: p.TotalPoints,
			Wins:        p.Wins,
			TotalGames:  p.TotalGames,
		})
	}
	return entries
}
