// Package game implements the multiplayer quiz-game session engine:
// room lifecycle, question delivery, answer scoring and finalization.
package game

import (
	"time"

	"github.com/saintdannyyy/unicef-gsl-hackathon-codeworks/internal/profile"
)

// Game modes.
const (
	ModeActivities   = "activities"
	ModeSoloPractice = "solo_practice"
)

// Room statuses.
const (
	StatusWaiting  = "waiting"
	StatusPlaying  = "playing"
	StatusFinished = "finished"
)

// Question is a single multiple-choice question. Immutable once generated.
type Question struct {
	Prompt        string   `json:"prompt"`
	CorrectAnswer string   `json:"correct_answer"`
	Options       []string `json:"options"`
	SubjectRef    string   `json:"subject_ref"`
	MediaPath     string   `json:"media_path,omitempty"`
}

// AnswerRecord captures one submitted answer.
type AnswerRecord struct {
	QuestionIndex  int     `json:"question_index"`
	Answer         string  `json:"answer"`
	IsCorrect      bool    `json:"is_correct"`
	Points         int     `json:"points"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// Room is one quiz game instance. Rooms live in the RoomStore for the
// duration of a game and are removed at finalization.
type Room struct {
	RoomID          string                   `json:"room_id"`
	RoomCode        string                   `json:"room_code,omitempty"`
	HostID          int64                    `json:"host_id"`
	Players         []int64                  `json:"players"`
	PlayerNames     map[int64]string         `json:"player_names"`
	Mode            string                   `json:"mode"`
	Category        string                   `json:"category,omitempty"`
	Status          string                   `json:"status"`
	Questions       []Question               `json:"questions"`
	CurrentQuestion int                      `json:"current_question"`
	Scores          map[int64]int            `json:"scores"`
	Answers         map[int64][]AnswerRecord `json:"answers"`
	CreatedAt       time.Time                `json:"created_at"`
}

// snapshot returns a deep copy safe to hand to callers.
func (r *Room) snapshot() Room {
	cp := *r
	cp.Players = append([]int64(nil), r.Players...)
	cp.Questions = append([]Question(nil), r.Questions...)
	cp.PlayerNames = make(map[int64]string, len(r.PlayerNames))
	for k, v := range r.PlayerNames {
		cp.PlayerNames[k] = v
	}
	cp.Scores = make(map[int64]int, len(r.Scores))
	for k, v := range r.Scores {
		cp.Scores[k] = v
	}
	cp.Answers = make(map[int64][]AnswerRecord, len(r.Answers))
	for k, v := range r.Answers {
		cp.Answers[k] = append([]AnswerRecord(nil), v...)
	}
	return cp
}

// SubmitResult reports the outcome of one answer submission.
type SubmitResult struct {
	IsCorrect     bool   `json:"is_correct"`
	Points        int    `json:"points"`
	TotalScore    int    `json:"total_score"`
	CorrectAnswer string `json:"correct_answer"`
}

// Standing is one player's final placement.
type Standing struct {
	UserID      int64  `json:"user_id"`
	DisplayName string `json:"display_name"`
	Score       int    `json:"score"`
}

// FinalResult summarizes a finalized game.
type FinalResult struct {
	RoomID         string                           `json:"room_id"`
	Mode           string                           `json:"mode"`
	WinnerID       int64                            `json:"winner_id"`
	WinnerScore    int                              `json:"winner_score"`
	Standings      []Standing                       `json:"standings"`
	TotalQuestions int                              `json:"total_questions"`
	Achievements   map[int64][]profile.Achievement `json:"achievements,omitempty"`
}

// SoloSubmitResult reports a solo-practice answer: practice advances to
// the next question on every submission.
type SoloSubmitResult struct {
	IsCorrect      bool         `json:"is_correct"`
	CorrectAnswer  string       `json:"correct_answer"`
	Points         int          `json:"points"`
	TotalScore     int          `json:"total_score"`
	QuestionNumber int          `json:"question_number"`
	TotalQuestions int          `json:"total_questions"`
	Finished       bool         `json:"finished"`
	Final          *FinalResult `json:"final,omitempty"`
}
