package game

import (
	"context"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saintdannyyy/unicef-gsl-hackathon-codeworks/internal/dictionary"
	"github.com/saintdannyyy/unicef-gsl-hackathon-codeworks/internal/game/scoring"
	"github.com/saintdannyyy/unicef-gsl-hackathon-codeworks/internal/profile"
)

type stubDictionary struct {
	words []string
}

func (d *stubDictionary) Search(word string) (dictionary.Entry, bool) {
	for _, w := range d.words {
		if w == word {
			return dictionary.Entry{Word: w, Path: "data/media/words/" + w + ".mp4", Type: "video"}, true
		}
	}
	return dictionary.Entry{}, false
}

func (d *stubDictionary) WordsInCategory(string) []string {
	return append([]string(nil), d.words...)
}

func newTestService(t *testing.T, words []string) (*Service, *profile.Store) {
	t.Helper()

	profiles, err := profile.NewStore(
		context.Background(),
		profile.NewFileStore(filepath.Join(t.TempDir(), "game_data.json")),
		nil,
		profile.StoreOptions{},
		zerolog.Nop(),
	)
	require.NoError(t, err)

	svc := NewService(
		NewRoomStore(rand.New(rand.NewSource(1))),
		NewGenerator(rand.New(rand.NewSource(1))),
		scoring.NewEngine(scoring.DefaultConfig()),
		&stubDictionary{words: words},
		profiles,
		ServiceOptions{},
		zerolog.Nop(),
	)
	return svc, profiles
}

func TestCreateRoomStartsWaiting(t *testing.T) {
	svc, _ := newTestService(t, testPool)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, 100, "Ama", "")
	require.NoError(t, err)

	assert.Equal(t, StatusWaiting, room.Status)
	assert.Equal(t, ModeActivities, room.Mode)
	assert.Len(t, room.RoomCode, 4)
	assert.Equal(t, []int64{100}, room.Players)
	assert.Equal(t, "Ama", room.PlayerNames[100])
	assert.Empty(t, room.Questions, "questions are generated at start, not creation")

	id, ok := svc.FindRoomByCode(room.RoomCode)
	require.True(t, ok)
	assert.Equal(t, room.RoomID, id)
}

func TestJoinRoomLifecycle(t *testing.T) {
	svc, _ := newTestService(t, testPool)
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, 100, "Ama", "")
	require.NoError(t, err)

	require.NoError(t, svc.JoinRoom(ctx, room.RoomID, 200, "Kofi"))

	// Re-joining is a no-op success, not an error and not a duplicate.
	require.NoError(t, svc.JoinRoom(ctx, room.RoomID, 200, "Kofi"))

	state, err := svc.GetGameState(room.RoomID)
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 200}, state.Players)

	// The room holds two players; a third is turned away.
	err = svc.JoinRoom(ctx, room.RoomID, 300, "Yaw")
	assert.ErrorIs(t, err, ErrRoomFull)

	err = svc.JoinRoom(ctx, "missing", 300, "Yaw")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestJoinRoomAfterStartRejected(t *testing.T) {
	svc, _ := newTestService(t, testPool)
	ctx := context.Background()

	room, _ := svc.CreateRoom(ctx, 100, "Ama", "")
	require.NoError(t, svc.JoinRoom(ctx, room.RoomID, 200, "Kofi"))
	_, err := svc.StartGame(ctx, room.RoomID)
	require.NoError(t, err)

	err = svc.JoinRoom(ctx, room.RoomID, 300, "Yaw")
	assert.ErrorIs(t, err, ErrInvalidRoomState)
}

func TestStartGameGeneratesQuestions(t *testing.T) {
	svc, _ := newTestService(t, testPool)
	ctx := context.Background()

	room, _ := svc.CreateRoom(ctx, 100, "Ama", "")
	require.NoError(t, svc.JoinRoom(ctx, room.RoomID, 200, "Kofi"))

	started, err := svc.StartGame(ctx, room.RoomID)
	require.NoError(t, err)

	assert.Equal(t, StatusPlaying, started.Status)
	require.Len(t, started.Questions, 5)
	assert.Equal(t, 0, started.CurrentQuestion)
	for _, q := range started.Questions {
		assert.NotEmpty(t, q.MediaPath, "questions carry the sign clip path")
	}

	// Starting twice is invalid.
	_, err = svc.StartGame(ctx, room.RoomID)
	assert.ErrorIs(t, err, ErrInvalidRoomState)
}

func TestStartGameInsufficientPoolLeavesRoomWaiting(t *testing.T) {
	svc, _ := newTestService(t, []string{"CAT", "DOG", "FISH"})
	ctx := context.Background()

	room, _ := svc.CreateRoom(ctx, 100, "Ama", "")
	_, err := svc.StartGame(ctx, room.RoomID)
	assert.ErrorIs(t, err, ErrInsufficientPool)

	state, err := svc.GetGameState(room.RoomID)
	require.NoError(t, err)
	assert.Equal(t, StatusWaiting, state.Status)
}

func TestSubmitAnswerScoring(t *testing.T) {
	svc, _ := newTestService(t, testPool)
	ctx := context.Background()

	room, _ := svc.CreateRoom(ctx, 100, "Ama", "")
	require.NoError(t, svc.JoinRoom(ctx, room.RoomID, 200, "Kofi"))
	_, err := svc.StartGame(ctx, room.RoomID)
	require.NoError(t, err)

	q, err := svc.GetCurrentQuestion(room.RoomID)
	require.NoError(t, err)

	// Fast correct answer earns the base plus the fast bonus.
	res, err := svc.SubmitAnswer(ctx, room.RoomID, 100, q.CorrectAnswer, 3)
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, 150, res.Points)
	assert.Equal(t, 150, res.TotalScore)

	// Case and whitespace do not matter.
	res, err = svc.SubmitAnswer(ctx, room.RoomID, 200, "  "+strings.ToLower(q.CorrectAnswer)+" ", 12)
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, 110, res.Points)

	// Submitting does not advance the question.
	state, _ := svc.GetGameState(room.RoomID)
	assert.Equal(t, 0, state.CurrentQuestion)

	_, err = svc.SubmitAnswer(ctx, room.RoomID, 999, q.CorrectAnswer, 3)
	assert.ErrorIs(t, err, ErrPlayerNotInRoom)
}

func TestSubmitIncorrectAnswerScoresZero(t *testing.T) {
	svc, _ := newTestService(t, testPool)
	ctx := context.Background()

	room, _ := svc.CreateRoom(ctx, 100, "Ama", "")
	_, err := svc.StartGame(ctx, room.RoomID)
	require.NoError(t, err)

	q, _ := svc.GetCurrentQuestion(room.RoomID)
	wrong := "ZEBRA"
	require.NotEqual(t, q.CorrectAnswer, wrong)

	res, err := svc.SubmitAnswer(ctx, room.RoomID, 100, wrong, 1)
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
	assert.Zero(t, res.Points)
	assert.Equal(t, q.CorrectAnswer, res.CorrectAnswer)
}

func TestFullGameFinalization(t *testing.T) {
	svc, profiles := newTestService(t, testPool)
	ctx := context.Background()

	room, _ := svc.CreateRoom(ctx, 100, "Ama", "")
	require.NoError(t, svc.JoinRoom(ctx, room.RoomID, 200, "Kofi"))
	_, err := svc.StartGame(ctx, room.RoomID)
	require.NoError(t, err)

	// Ama answers everything correctly and fast; Kofi misses everything.
	for i := 0; i < 5; i++ {
		q, err := svc.GetCurrentQuestion(room.RoomID)
		require.NoError(t, err)

		_, err = svc.SubmitAnswer(ctx, room.RoomID, 100, q.CorrectAnswer, 2)
		require.NoError(t, err)
		_, err = svc.SubmitAnswer(ctx, room.RoomID, 200, "WRONG", 2)
		require.NoError(t, err)

		next, final, err := svc.AdvanceQuestion(ctx, room.RoomID)
		require.NoError(t, err)

		if i < 4 {
			require.NotNil(t, next)
			assert.Nil(t, final)
			continue
		}

		require.Nil(t, next)
		require.NotNil(t, final)
		assert.Equal(t, int64(100), final.WinnerID)
		assert.Equal(t, 750, final.WinnerScore)
		require.Len(t, final.Standings, 2)
		assert.Equal(t, int64(100), final.Standings[0].UserID)
		assert.Equal(t, 0, final.Standings[1].Score)

		// Both players earn their first-game achievement.
		assert.NotEmpty(t, final.Achievements[100])
		assert.NotEmpty(t, final.Achievements[200])
	}

	// The finished room is gone.
	_, err = svc.GetGameState(room.RoomID)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	// Stats and history landed in the profile store.
	winner, err := profiles.GetOrCreate(ctx, 100, "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, winner.TotalGames)
	assert.Equal(t, 1, winner.Wins)
	assert.Equal(t, 750, winner.TotalPoints)
	assert.Equal(t, 1, winner.Streak)

	loser, err := profiles.GetOrCreate(ctx, 200, "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, loser.TotalGames)
	assert.Zero(t, loser.Wins)
	assert.Zero(t, loser.Streak)

	history := profiles.History(0)
	require.Len(t, history, 1)
	assert.Equal(t, room.RoomID, history[0].RoomID)
	assert.Equal(t, ModeActivities, history[0].Mode)
	assert.Equal(t, int64(100), history[0].WinnerID)
}

func TestTieGoesToEarlierPlayer(t *testing.T) {
	svc, _ := newTestService(t, testPool)
	ctx := context.Background()

	room, _ := svc.CreateRoom(ctx, 100, "Ama", "")
	require.NoError(t, svc.JoinRoom(ctx, room.RoomID, 200, "Kofi"))
	_, err := svc.StartGame(ctx, room.RoomID)
	require.NoError(t, err)

	var final *FinalResult
	for final == nil {
		q, err := svc.GetCurrentQuestion(room.RoomID)
		require.NoError(t, err)

		_, err = svc.SubmitAnswer(ctx, room.RoomID, 100, q.CorrectAnswer, 20)
		require.NoError(t, err)
		_, err = svc.SubmitAnswer(ctx, room.RoomID, 200, q.CorrectAnswer, 20)
		require.NoError(t, err)

		_, final, err = svc.AdvanceQuestion(ctx, room.RoomID)
		require.NoError(t, err)
	}

	assert.Equal(t, int64(100), final.WinnerID, "equal scores resolve to the first player")
	assert.Equal(t, final.Standings[0].Score, final.Standings[1].Score)
}

func TestSoloPracticeFlow(t *testing.T) {
	svc, profiles := newTestService(t, testPool)
	ctx := context.Background()

	room, err := svc.CreateSoloPractice(ctx, 500, "Esi")
	require.NoError(t, err)
	assert.Equal(t, ModeSoloPractice, room.Mode)
	assert.Equal(t, StatusPlaying, room.Status)
	assert.Empty(t, room.RoomCode, "solo rooms are not joinable")
	require.Len(t, room.Questions, 3)

	// First two correct, last one wrong: 200 points, which still counts
	// as a winning practice run.
	for i := 0; i < 3; i++ {
		q, err := svc.GetCurrentQuestion(room.RoomID)
		require.NoError(t, err)

		answer := q.CorrectAnswer
		if i == 2 {
			answer = "WRONG"
		}
		res, err := svc.SubmitSoloAnswer(ctx, room.RoomID, 500, answer)
		require.NoError(t, err)
		assert.Equal(t, i+1, res.QuestionNumber)
		assert.Equal(t, 3, res.TotalQuestions)

		if i < 2 {
			assert.Equal(t, 100, res.Points)
			assert.False(t, res.Finished)
			continue
		}

		assert.Zero(t, res.Points)
		assert.True(t, res.Finished)
		require.NotNil(t, res.Final)
		assert.Equal(t, int64(500), res.Final.WinnerID)
		assert.Equal(t, 200, res.TotalScore)
	}

	_, err = svc.GetGameState(room.RoomID)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	p, err := profiles.GetOrCreate(ctx, 500, "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Wins)
	assert.Equal(t, 200, p.TotalPoints)

	require.Len(t, profiles.History(0), 1)
}

func TestSoloPracticeBelowThresholdIsNotAWin(t *testing.T) {
	svc, profiles := newTestService(t, testPool)
	ctx := context.Background()

	room, err := svc.CreateSoloPractice(ctx, 500, "Esi")
	require.NoError(t, err)

	var last SoloSubmitResult
	for i := 0; i < 3; i++ {
		q, err := svc.GetCurrentQuestion(room.RoomID)
		require.NoError(t, err)

		answer := "WRONG"
		if i == 0 {
			answer = q.CorrectAnswer
		}
		last, err = svc.SubmitSoloAnswer(ctx, room.RoomID, 500, answer)
		require.NoError(t, err)
	}

	require.NotNil(t, last.Final)
	assert.Zero(t, last.Final.WinnerID, "100 points is below the practice win threshold")

	p, err := profiles.GetOrCreate(ctx, 500, "", "")
	require.NoError(t, err)
	assert.Zero(t, p.Wins)
	assert.Equal(t, 1, p.TotalGames)
}

func TestSoloPracticeInsufficientPool(t *testing.T) {
	svc, _ := newTestService(t, []string{"CAT", "DOG", "FISH"})

	_, err := svc.CreateSoloPractice(context.Background(), 500, "Esi")
	assert.ErrorIs(t, err, ErrInsufficientPool)
}

func TestMultiplayerAnswersRejectedInSolo(t *testing.T) {
	svc, _ := newTestService(t, testPool)
	ctx := context.Background()

	room, err := svc.CreateSoloPractice(ctx, 500, "Esi")
	require.NoError(t, err)

	// Solo submissions from a stranger are rejected.
	_, err = svc.SubmitSoloAnswer(ctx, room.RoomID, 999, "CAT")
	assert.ErrorIs(t, err, ErrPlayerNotInRoom)
}
