package utils

import "time"

const (
	// DefaultRequestTimeout bounds a single API request that makes no upstream calls.
	DefaultRequestTimeout = 10 * time.Second
	// RefreshRequestTimeout bounds a request that may run a full price refresh.
	RefreshRequestTimeout = 2 * time.Minute
)

// QuoteRequestTimeout bounds a request that may backfill a price: the chart
// and quote calls, each limited to upstreamTimeout, plus the request's own work.
func QuoteRequestTimeout(upstreamTimeout time.Duration) time.Duration {
	return 2*upstreamTimeout + DefaultRequestTimeout
}

// QuoteSourceYahoo is the default source label of price snapshots.
const QuoteSourceYahoo = "yahoo"
