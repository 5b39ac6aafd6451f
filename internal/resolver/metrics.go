package resolver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Tiers of the resolution cascade, used as the "tier" metric label.
const (
	TierRemote  = "remote"
	TierCache   = "cache"
	TierDefault = "default"
)

var (
	lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sitekeep_resolver_lookups_total",
		Help: "Resolver lookups by value kind and the tier that answered",
	}, []string{"kind", "tier"})

	remoteErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sitekeep_resolver_remote_errors_total",
		Help: "Remote store errors the resolver treated as absent",
	}, []string{"kind"})
)
