// Package metrics defines the engine's Prometheus collectors. They are
// registered by the metrics server and incremented from the deck machine.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// DecksBuiltTotal counts daily deck builds.
	DecksBuiltTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ideas_decks_built_total",
		Help: "Total number of daily decks built",
	})

	// DeckCardsDealt tracks how many cards each built deck contained.
	DeckCardsDealt = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ideas_deck_cards",
		Help:    "Cards per built deck",
		Buckets: []float64{0, 1, 2, 4, 6, 8, 12, 16},
	})

	// SwipesTotal counts swipe transitions by action and category.
	SwipesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ideas_swipes_total",
		Help: "Total number of swipe transitions",
	}, []string{"action", "category"})

	// DecksCompletedTotal counts first-time deck completions.
	DecksCompletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ideas_decks_completed_total",
		Help: "Total number of decks swiped through to completion",
	})

	// BuildDuration observes the wall time of a full generation pass
	// (candidates, scoring, sequencing, persistence).
	BuildDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ideas_deck_build_seconds",
		Help:    "Duration of deck generation",
		Buckets: prometheus.DefBuckets,
	})
)

// Collectors returns every collector this package defines, for
// registration with the metrics server's registry.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		DecksBuiltTotal,
		DeckCardsDealt,
		SwipesTotal,
		DecksCompletedTotal,
		BuildDuration,
	}
}
