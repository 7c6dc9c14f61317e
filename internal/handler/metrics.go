package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storiesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "highlights_stories_created_total",
		Help: "Total number of successfully created stories.",
	})

	storiesUpdatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "highlights_stories_updated_total",
		Help: "Total number of successful story edits.",
	})

	storiesReadTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "highlights_stories_read_total",
		Help: "Total number of successful story reads.",
	})

	identitiesMintedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "highlights_identities_minted_total",
		Help: "Total number of identities minted for anonymous submissions.",
	})

	requestFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "highlights_request_failures_total",
			Help: "Total number of failed requests by outcome.",
		},
		[]string{"outcome"},
	)
)
