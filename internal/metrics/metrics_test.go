package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.IncrementPresentationsInitiated("direct_post.jwt", "by_reference")
	m.IncrementPresentationsInitiated("direct_post.jwt", "by_reference")
	m.IncrementWalletResponsesRejected("protocol_mismatch")
	m.AddPresentationsTimedOut(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PresentationsInitiated.WithLabelValues("direct_post.jwt", "by_reference")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WalletResponsesRejected.WithLabelValues("protocol_mismatch")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.PresentationsTimedOut))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementPresentationsInitiated("direct_post", "by_value")
		m.IncrementRequestObjectsRetrieved()
		m.IncrementWalletResponsesSubmitted("direct_post")
		m.IncrementWalletResponsesRejected("validation")
		m.AddPresentationsTimedOut(1)
		m.ObserveTimeoutSweepDuration(0.1)
		m.ObserveStoreOperationLatency("store", 0.001)
	})
}
