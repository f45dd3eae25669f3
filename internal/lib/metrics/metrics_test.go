package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegistrationsCounter(t *testing.T) {
	c := Registrations.WithLabelValues("form", OutcomeSuccess)
	before := testutil.ToFloat64(c)

	c.Inc()

	assert.InDelta(t, before+1, testutil.ToFloat64(c), 0.0001)
}

func TestCountersAreRegistered(t *testing.T) {
	Updates.WithLabelValues(OutcomeInvalid).Inc()
	Logins.WithLabelValues(OutcomeError).Inc()

	assert.Positive(t, testutil.CollectAndCount(Updates))
	assert.Positive(t, testutil.CollectAndCount(Logins))
}
