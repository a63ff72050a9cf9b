package streamsvc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters are registered on the default registry and exported by the HTTP
// server's /metrics endpoint.
var (
	metricStreamsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vesta_streams_created_total",
		Help: "Number of vesting streams created.",
	})
	metricClaims = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vesta_claims_total",
		Help: "Number of successful claims.",
	})
	metricClaimedAmount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vesta_claimed_amount_total",
		Help: "Total amount paid out by claims, in base units.",
	})
	metricFeesCollected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vesta_fees_collected_total",
		Help: "Total claim fees routed to the treasury, in fee base units.",
	})
	metricStreamsDestroyed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vesta_streams_destroyed_total",
		Help: "Number of drained streams destroyed.",
	})
)
