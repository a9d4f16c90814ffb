// pkg/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LifecycleOps counts organization lifecycle operations by outcome.
var LifecycleOps = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "orgsvc",
	Name:      "lifecycle_operations_total",
	Help:      "Organization lifecycle operations by operation and outcome.",
}, []string{"op", "outcome"})

// AuthAttempts counts admin login attempts. Outcome is only ok/denied so the
// metric cannot be used to distinguish unknown emails from bad passwords.
var AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "orgsvc",
	Name:      "auth_attempts_total",
	Help:      "Admin authentication attempts by outcome.",
}, []string{"outcome"})
