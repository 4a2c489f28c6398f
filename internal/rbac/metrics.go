package rbac

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "rbac_decisions_total",
		Help: "Authorization decisions by result.",
	}, []string{"result"})

	cacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "rbac_cache_lookups_total",
		Help: "Subject cache lookups by result.",
	}, []string{"result"})

	invalidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "rbac_invalidations_total",
		Help: "Subject cache invalidations by scope.",
	}, []string{"scope"})
)
