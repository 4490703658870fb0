package metrics

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const (
	Namespace          = "gatekeeper"
	VotingSubsystem    = "voting"
	AdmissionSubsystem = "admission"
)

type VotingMetrics struct {
	Members    metrics.Gauge
	VotesCast  metrics.Counter
	Promotions metrics.Counter
	Rejected   metrics.Counter
}

func (m *VotingMetrics) SetMembers(num int) {
	m.Members.Set(float64(num))
}

func PromVotingMetrics() *VotingMetrics {
	return &VotingMetrics{
		Members: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: VotingSubsystem,
			Name:      "members",
			Help:      "Size of the allow-list.",
		}, []string{}),
		VotesCast: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: VotingSubsystem,
			Name:      "votes_cast",
			Help:      "Number of votes recorded or converted into promotions.",
		}, []string{}),
		Promotions: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: VotingSubsystem,
			Name:      "promotions",
			Help:      "Number of candidates promoted into the allow-list.",
		}, []string{}),
		Rejected: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: VotingSubsystem,
			Name:      "rejected",
			Help:      "Number of vote calls rejected at validation.",
		}, []string{}),
	}
}

func NopVotingMetrics() *VotingMetrics {
	return &VotingMetrics{
		Members:    discard.NewGauge(),
		VotesCast:  discard.NewCounter(),
		Promotions: discard.NewCounter(),
		Rejected:   discard.NewCounter(),
	}
}

type AdmissionMetrics struct {
	Accepted  metrics.Counter
	Rejected  metrics.Counter
	CacheHits metrics.Counter
}

func PromAdmissionMetrics() *AdmissionMetrics {
	return &AdmissionMetrics{
		Accepted: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: AdmissionSubsystem,
			Name:      "accepted",
			Help:      "Number of transactions accepted by the admission gate.",
		}, []string{}),
		Rejected: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: AdmissionSubsystem,
			Name:      "rejected",
			Help:      "Number of transactions rejected by the admission gate.",
		}, []string{}),
		CacheHits: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: AdmissionSubsystem,
			Name:      "cache_hits",
			Help:      "Number of membership lookups answered by the member cache.",
		}, []string{}),
	}
}

func NopAdmissionMetrics() *AdmissionMetrics {
	return &AdmissionMetrics{
		Accepted:  discard.NewCounter(),
		Rejected:  discard.NewCounter(),
		CacheHits: discard.NewCounter(),
	}
}
