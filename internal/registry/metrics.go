package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fraud_registry_lookups_total",
		Help: "Number lookups by classification",
	}, []string{"result"})

	lookupsCoalesced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fraud_registry_lookups_coalesced_total",
		Help: "Lookups answered by an in-flight read of the same number",
	})
)

func lookupResult(isFraud bool) string {
	if isFraud {
		return "fraud"
	}
	return "clean"
}
