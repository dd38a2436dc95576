package game

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/saintdannyyy/unicef-gsl-hackathon-codeworks/internal/dictionary"
	"github.com/saintdannyyy/unicef-gsl-hackathon-codeworks/internal/game/scoring"
	"github.com/saintdannyyy/unicef-gsl-hackathon-codeworks/internal/profile"
)

// soloWinThreshold is the practice score that counts as a win for the
// player's aggregate stats.
const soloWinThreshold = 200

// Dictionary is the sign-dictionary capability the engine consumes.
type Dictionary interface {
	Search(word string) (dictionary.Entry, bool)
	WordsInCategory(category string) []string
}

// ProfileStore receives game outcomes at finalization.
type ProfileStore interface {
	RecordGameResult(ctx context.Context, res profile.GameResult) (profile.UserProfile, []profile.Achievement, error)
	AppendHistory(ctx context.Context, rec profile.GameHistoryRecord) error
}

// ServiceOptions configures gameplay defaults.
type ServiceOptions struct {
	MultiplayerQuestions int    // default 5
	SoloQuestions        int    // default 3
	RoomCapacity         int    // default 2
	DefaultCategory      string // default "words"
}

// Service is the game session engine. It is driven entirely by its
// caller: it never initiates outbound calls of its own.
type Service struct {
	rooms    *RoomStore
	gen      *Generator
	scorer   *scoring.Engine
	dict     Dictionary
	profiles ProfileStore
	opts     ServiceOptions
	logger   zerolog.Logger
}

// NewService wires the engine.
func NewService(rooms *RoomStore, gen *Generator, scorer *scoring.Engine, dict Dictionary, profiles ProfileStore, opts ServiceOptions, logger zerolog.Logger) *Service {
	if opts.MultiplayerQuestions <= 0 {
		opts.MultiplayerQuestions = 5
	}
	if opts.SoloQuestions <= 0 {
		opts.SoloQuestions = 3
	}
	if opts.RoomCapacity <= 0 {
		opts.RoomCapacity = 2
	}
	if opts.DefaultCategory == "" {
		opts.DefaultCategory = dictionary.CategoryWords
	}
	return &Service{
		rooms:    rooms,
		gen:      gen,
		scorer:   scorer,
		dict:     dict,
		profiles: profiles,
		opts:     opts,
		logger:   logger.With().Str("component", "game_engine").Logger(),
	}
}

// CreateRoom opens a new multiplayer room in waiting state with the
// host as its first player and a fresh 4-digit room code.
func (s *Service) CreateRoom(ctx context.Context, hostID int64, hostName, category string) (Room, error) {
	if hostName == "" {
		hostName = "Player 1"
	}
	if category == "" {
		category = s.opts.DefaultCategory
	}

	room := &Room{
		HostID:      hostID,
		Players:     []int64{hostID},
		PlayerNames: map[int64]string{hostID: hostName},
		Mode:        ModeActivities,
		Category:    category,
		Status:      StatusWaiting,
		Scores:      map[int64]int{hostID: 0},
		Answers:     make(map[int64][]AnswerRecord),
	}
	s.rooms.Create(room, true)
	metricActiveRooms.Set(float64(s.rooms.Len()))

	s.logger.Info().
		Str("room_id", room.RoomID).
		Str("room_code", room.RoomCode).
		Int64("host_id", hostID).
		Msg("room created")

	snap, _ := s.rooms.Snapshot(room.RoomID)
	return snap, nil
}

// JoinRoom adds a player to a waiting room. Joining a room the player
// is already in is a no-op success.
func (s *Service) JoinRoom(ctx context.Context, roomID string, userID int64, username string) error {
	err := s.rooms.Update(roomID, func(room *Room) (bool, error) {
		if room.Status != StatusWaiting {
			return false, ErrInvalidRoomState
		}
		for _, p := range room.Players {
			if p == userID {
				return false, nil
			}
		}
		if len(room.Players) >= s.opts.RoomCapacity {
			return false, ErrRoomFull
		}

		room.Players = append(room.Players, userID)
		room.Scores[userID] = 0
		if username == "" {
			username = fmt.Sprintf("Player %d", len(room.Players))
		}
		room.PlayerNames[userID] = username
		return false, nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("room_id", roomID).Int64("user_id", userID).Msg("player joined room")
	return nil
}

// FindRoomByCode resolves a room code to an internal room id.
func (s *Service) FindRoomByCode(code string) (string, bool) {
	return s.rooms.FindByCode(code)
}

// StartGame moves a waiting room into playing: generates the question
// set from the room's category pool and resets all scores. When the
// pool cannot build a single question the room stays in waiting and
// ErrInsufficientPool is returned.
func (s *Service) StartGame(ctx context.Context, roomID string) (Room, error) {
	err := s.rooms.Update(roomID, func(room *Room) (bool, error) {
		if room.Status != StatusWaiting {
			return false, ErrInvalidRoomState
		}

		pool := s.dict.WordsInCategory(room.Category)
		questions, err := s.gen.Generate(pool, s.opts.MultiplayerQuestions)
		if err != nil {
			return false, err
		}
		s.attachMedia(questions)

		room.Questions = questions
		room.CurrentQuestion = 0
		room.Status = StatusPlaying
		room.Answers = make(map[int64][]AnswerRecord)
		for _, p := range room.Players {
			room.Scores[p] = 0
		}
		return false, nil
	})
	if err != nil {
		return Room{}, err
	}

	snap, _ := s.rooms.Snapshot(roomID)
	metricGamesStarted.WithLabelValues(ModeActivities).Inc()
	s.logger.Info().
		Str("room_id", roomID).
		Int("questions", len(snap.Questions)).
		Msg("game started")
	return snap, nil
}

// SubmitAnswer scores one player's answer to the current question. The
// question index does not move: both players answer the same question
// independently before an explicit advance.
func (s *Service) SubmitAnswer(ctx context.Context, roomID string, userID int64, answer string, elapsedSeconds float64) (SubmitResult, error) {
	var result SubmitResult
	err := s.rooms.Update(roomID, func(room *Room) (bool, error) {
		if room.Status != StatusPlaying || room.CurrentQuestion >= len(room.Questions) {
			return false, ErrInvalidRoomState
		}
		if _, ok := room.Scores[userID]; !ok {
			return false, ErrPlayerNotInRoom
		}

		q := room.Questions[room.CurrentQuestion]
		isCorrect := answersEqual(answer, q.CorrectAnswer)
		points := s.scorer.Score(isCorrect, elapsedSeconds)

		room.Scores[userID] += points
		room.Answers[userID] = append(room.Answers[userID], AnswerRecord{
			QuestionIndex:  room.CurrentQuestion,
			Answer:         answer,
			IsCorrect:      isCorrect,
			Points:         points,
			ElapsedSeconds: elapsedSeconds,
		})

		result = SubmitResult{
			IsCorrect:     isCorrect,
			Points:        points,
			TotalScore:    room.Scores[userID],
			CorrectAnswer: q.CorrectAnswer,
		}
		return false, nil
	})
	if err != nil {
		return SubmitResult{}, err
	}

	metricAnswers.WithLabelValues(ModeActivities, boolLabel(result.IsCorrect)).Inc()
	return result, nil
}

// AdvanceQuestion moves the room to the next question, or finalizes the
// game when the set is exhausted. Exactly one of the returns is non-nil
// on success.
func (s *Service) AdvanceQuestion(ctx context.Context, roomID string) (*Question, *FinalResult, error) {
	var (
		next  *Question
		final *FinalResult
		snap  Room
	)
	err := s.rooms.Update(roomID, func(room *Room) (bool, error) {
		if room.Status != StatusPlaying {
			return false, ErrInvalidRoomState
		}

		room.CurrentQuestion++
		if room.CurrentQuestion < len(room.Questions) {
			q := room.Questions[room.CurrentQuestion]
			next = &q
			return false, nil
		}

		room.Status = StatusFinished
		snap = room.snapshot()
		final = buildFinalResult(&snap)
		return true, nil
	})
	if err != nil {
		return nil, nil, err
	}
	if final == nil {
		return next, nil, nil
	}

	metricActiveRooms.Set(float64(s.rooms.Len()))
	metricGamesFinished.WithLabelValues(snap.Mode).Inc()
	s.logger.Info().
		Str("room_id", roomID).
		Int64("winner_id", final.WinnerID).
		Int("winner_score", final.WinnerScore).
		Msg("game finalized")

	if err := s.recordOutcome(ctx, &snap, final); err != nil {
		// The game itself is over and the room is gone; the caller is
		// told the stats update did not take effect.
		return nil, final, err
	}
	return nil, final, nil
}

// GetGameState returns a copy of the room, or ErrRoomNotFound once the
// room has been finalized and removed.
func (s *Service) GetGameState(roomID string) (Room, error) {
	snap, ok := s.rooms.Snapshot(roomID)
	if !ok {
		return Room{}, ErrRoomNotFound
	}
	return snap, nil
}

// GetCurrentQuestion returns the question the room is currently on.
func (s *Service) GetCurrentQuestion(roomID string) (Question, error) {
	snap, ok := s.rooms.Snapshot(roomID)
	if !ok {
		return Question{}, ErrRoomNotFound
	}
	if snap.CurrentQuestion >= len(snap.Questions) {
		return Question{}, ErrInvalidRoomState
	}
	return snap.Questions[snap.CurrentQuestion], nil
}

// CreateSoloPractice opens a single-player practice session that starts
// playing immediately. No room is created when the pool is too small.
func (s *Service) CreateSoloPractice(ctx context.Context, userID int64, username string) (Room, error) {
	pool := s.dict.WordsInCategory(s.opts.DefaultCategory)
	questions, err := s.gen.Generate(pool, s.opts.SoloQuestions)
	if err != nil {
		return Room{}, err
	}
	s.attachMedia(questions)

	if username == "" {
		username = "Player 1"
	}
	room := &Room{
		HostID:      userID,
		Players:     []int64{userID},
		PlayerNames: map[int64]string{userID: username},
		Mode:        ModeSoloPractice,
		Category:    s.opts.DefaultCategory,
		Status:      StatusPlaying,
		Questions:   questions,
		Scores:      map[int64]int{userID: 0},
		Answers:     make(map[int64][]AnswerRecord),
	}
	s.rooms.Create(room, false)
	metricActiveRooms.Set(float64(s.rooms.Len()))
	metricGamesStarted.WithLabelValues(ModeSoloPractice).Inc()

	s.logger.Info().Str("room_id", room.RoomID).Int64("user_id", userID).Msg("solo practice created")

	snap, _ := s.rooms.Snapshot(room.RoomID)
	return snap, nil
}

// SubmitSoloAnswer scores a practice answer and advances to the next
// question. The final submission finalizes the session and records the
// player's stats (a practice run of soloWinThreshold points or more
// counts as a win).
func (s *Service) SubmitSoloAnswer(ctx context.Context, roomID string, userID int64, answer string) (SoloSubmitResult, error) {
	var (
		result SoloSubmitResult
		final  *FinalResult
		snap   Room
	)
	err := s.rooms.Update(roomID, func(room *Room) (bool, error) {
		if room.Mode != ModeSoloPractice || room.Status != StatusPlaying || room.CurrentQuestion >= len(room.Questions) {
			return false, ErrInvalidRoomState
		}
		if _, ok := room.Scores[userID]; !ok {
			return false, ErrPlayerNotInRoom
		}

		q := room.Questions[room.CurrentQuestion]
		isCorrect := answersEqual(answer, q.CorrectAnswer)
		points := s.scorer.SoloScore(isCorrect)

		room.Scores[userID] += points
		room.Answers[userID] = append(room.Answers[userID], AnswerRecord{
			QuestionIndex: room.CurrentQuestion,
			Answer:        answer,
			IsCorrect:     isCorrect,
			Points:        points,
		})
		room.CurrentQuestion++

		finished := room.CurrentQuestion >= len(room.Questions)
		result = SoloSubmitResult{
			IsCorrect:      isCorrect,
			CorrectAnswer:  q.CorrectAnswer,
			Points:         points,
			TotalScore:     room.Scores[userID],
			QuestionNumber: room.CurrentQuestion,
			TotalQuestions: len(room.Questions),
			Finished:       finished,
		}
		if !finished {
			return false, nil
		}

		room.Status = StatusFinished
		snap = room.snapshot()
		final = buildFinalResult(&snap)
		return true, nil
	})
	if err != nil {
		return SoloSubmitResult{}, err
	}

	metricAnswers.WithLabelValues(ModeSoloPractice, boolLabel(result.IsCorrect)).Inc()
	if final == nil {
		return result, nil
	}

	metricActiveRooms.Set(float64(s.rooms.Len()))
	metricGamesFinished.WithLabelValues(ModeSoloPractice).Inc()

	// Solo wins are judged against the practice threshold, not against
	// other players.
	final.WinnerID = 0
	if result.TotalScore >= soloWinThreshold {
		final.WinnerID = userID
	}
	result.Final = final

	if err := s.recordOutcome(ctx, &snap, final); err != nil {
		return result, err
	}
	return result, nil
}

// recordOutcome updates every player's profile and appends the history
// record. Concurrent finalizations serialize inside the profile store.
func (s *Service) recordOutcome(ctx context.Context, snap *Room, final *FinalResult) error {
	final.Achievements = make(map[int64][]profile.Achievement)
	for _, playerID := range snap.Players {
		_, awarded, err := s.profiles.RecordGameResult(ctx, profile.GameResult{
			UserID:      playerID,
			DisplayName: snap.PlayerNames[playerID],
			Points:      snap.Scores[playerID],
			Won:         playerID == final.WinnerID,
		})
		if err != nil {
			return fmt.Errorf("record game result for player %d: %w", playerID, err)
		}
		if len(awarded) > 0 {
			final.Achievements[playerID] = awarded
		}
	}

	rec := profile.GameHistoryRecord{
		RoomID:      snap.RoomID,
		Mode:        snap.Mode,
		Players:     append([]int64(nil), snap.Players...),
		FinalScores: snap.Scores,
		WinnerID:    final.WinnerID,
		WinnerScore: final.WinnerScore,
		PlayedAt:    time.Now(),
	}
	if err := s.profiles.AppendHistory(ctx, rec); err != nil {
		return fmt.Errorf("append game history: %w", err)
	}
	return nil
}

// attachMedia resolves each question's subject to its dictionary entry
// so callers can show the sign clip being asked about.
func (s *Service) attachMedia(questions []Question) {
	for i := range questions {
		if entry, ok := s.dict.Search(questions[i].SubjectRef); ok {
			questions[i].MediaPath = entry.Path
		}
	}
}

// buildFinalResult computes standings sorted by score descending; ties
// keep player join order, so the first player to reach the top score
// wins.
func buildFinalResult(snap *Room) *FinalResult {
	standings := make([]Standing, 0, len(snap.Players))
	for _, p := range snap.Players {
		standings = append(standings, Standing{
			UserID:      p,
			DisplayName: snap.PlayerNames[p],
			Score:       snap.Scores[p],
		})
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Score > standings[j].Score
	})

	final := &FinalResult{
		RoomID:         snap.RoomID,
		Mode:           snap.Mode,
		Standings:      standings,
		TotalQuestions: len(snap.Questions),
	}
	if len(standings) > 0 {
		final.WinnerID = standings[0].UserID
		final.WinnerScore = standings[0].Score
	}
	return final
}

// answersEqual compares answers case-insensitively after trimming
// whitespace.
func answersEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
