package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	gamesStarted   *prometheus.CounterVec
	gamesCompleted *prometheus.CounterVec
	rounds         *prometheus.CounterVec
	dollarsAwarded prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		gamesStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lilbot_games_started_total",
			Help: "Games started, by mode.",
		}, []string{"mode"}),

		gamesCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lilbot_games_completed_total",
			Help: "Games completed, by mode.",
		}, []string{"mode"}),

		rounds: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lilbot_rounds_total",
			Help: "Resolved rounds, by outcome.",
		}, []string{"outcome"}),

		dollarsAwarded: factory.NewCounter(prometheus.CounterOpts{
			Name: "lilbot_dollars_awarded_total",
			Help: "Total dollars walked away with across ladder games.",
		}),
	}
}
