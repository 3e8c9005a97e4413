package resilience_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-storefront/internal/resilience"
)

func TestBreakerMetricsFollowTransitions(t *testing.T) {
	resilience.BreakerState.Reset()
	resilience.BreakerTransitions.Reset()
	resilience.BreakerOpenedTotal.Reset()

	breaker := resilience.NewBreaker(1, 0.5, 20*time.Millisecond).WithTarget("catalog")
	ctx := context.Background()

	require.True(t, breaker.Allow(ctx))
	breaker.Report(ctx, false)

	require.Equal(t, 1.0, testutil.ToFloat64(resilience.BreakerState.WithLabelValues("catalog")))

	require.Eventually(t, func() bool {
		return breaker.Allow(ctx)
	}, 100*time.Millisecond, 5*time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(resilience.BreakerState.WithLabelValues("catalog")))

	breaker.Report(ctx, true)

	require.Equal(t, 0.0, testutil.ToFloat64(resilience.BreakerState.WithLabelValues("catalog")))
	require.Equal(t, 1.0, testutil.ToFloat64(resilience.BreakerOpenedTotal.WithLabelValues("catalog")))
	require.Equal(t, 1.0, testutil.ToFloat64(resilience.BreakerTransitions.WithLabelValues("catalog", "closed", "open")))
	require.Equal(t, 1.0, testutil.ToFloat64(resilience.BreakerTransitions.WithLabelValues("catalog", "open", "half_open")))
	require.Equal(t, 1.0, testutil.ToFloat64(resilience.BreakerTransitions.WithLabelValues("catalog", "half_open", "closed")))
}
