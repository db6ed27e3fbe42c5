package comments

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var commentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "fraud_comments_total",
	Help: "Comment submissions by outcome",
}, []string{"outcome"})

const (
	outcomeAdded   = "added"
	outcomeInvalid = "invalid"
	outcomeFailed  = "failed"
)
