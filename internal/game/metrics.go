package game

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricGamesStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gslgames_games_started_total",
		Help: "Games started, by mode.",
	}, []string{"mode"})

	metricGamesFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gslgames_games_finished_total",
		Help: "Games finalized, by mode.",
	}, []string{"mode"})

	metricAnswers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gslgames_answers_submitted_total",
		Help: "Answers submitted, by mode and correctness.",
	}, []string{"mode", "correct"})

	metricActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gslgames_active_rooms",
		Help: "Rooms currently held in the in-memory store.",
	})
)

func boolLabel(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
