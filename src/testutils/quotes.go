package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// FakeQuoteFetcher serves fixed prices; tickers without a price are unavailable.
type FakeQuoteFetcher struct {
	mu     sync.Mutex
	prices map[string]decimal.Decimal
	calls  map[string]int

	// OnFetch, when set, runs before every lookup.
	OnFetch func(ticker string)
}

func NewFakeQuoteFetcher() *FakeQuoteFetcher {
	return &FakeQuoteFetcher{
		prices: map[string]decimal.Decimal{},
		calls:  map[string]int{},
	}
}

func (f *FakeQuoteFetcher) SetPrice(ticker, price string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[ticker] = decimal.RequireFromString(price)
}

func (f *FakeQuoteFetcher) Remove(ticker string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.prices, ticker)
}

func (f *FakeQuoteFetcher) Fetch(_ context.Context, ticker string) (decimal.Decimal, bool) {
	if f.OnFetch != nil {
		f.OnFetch(ticker)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[ticker]++
	p, ok := f.prices[ticker]
	return p, ok
}

func (f *FakeQuoteFetcher) Calls(ticker string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[ticker]
}

func (f *FakeQuoteFetcher) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// FakeClock is a manually advanced time source.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
