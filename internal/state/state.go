package state

import (
	"sync"

	"github.com/nodlAndHodl/btc-tray/internal/domain"
)

// Snapshot holds the latest known value of every displayed metric plus the
// bookkeeping flags the render loop consumes. The flags are advisory and
// display-only: they signal work to the render loop, they never gate a
// refresh.
type Snapshot struct {
	Price           float64
	LastUpdated     string
	Updating        bool
	NewPriceFetched bool

	History          []domain.PricePoint
	Timeframe        domain.Timeframe
	TimeframeChanged bool

	BlockHeight        int64
	BlockTime          string
	Fees               domain.FeeEstimate
	MempoolUpdating    bool
	MempoolLastUpdated string
}

// Store guards one Snapshot behind a single coarse lock. Every accessor is a
// short critical section; callers must never hold network or disk I/O open
// between calls that they expect to be atomic together.
type Store struct {
	mu   sync.Mutex
	snap Snapshot
}

// New creates a Store with placeholder values.
func New() *Store {
	return &Store{
		snap: Snapshot{
			LastUpdated:        "Never",
			BlockTime:          "Unknown",
			MempoolLastUpdated: "Never",
			Timeframe:          domain.TimeframeHours24,
		},
	}
}

// Snapshot returns a copy of the current state. The history slice is copied
// so the caller can keep it across later writes.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snap
	snap.History = append([]domain.PricePoint(nil), s.snap.History...)
	return snap
}

// SetUpdating marks whether a price fetch is in flight.
func (s *Store) SetUpdating(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Updating = v
}

// SetMempoolUpdating marks whether a block/fee fetch is in flight.
func (s *Store) SetMempoolUpdating(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.MempoolUpdating = v
}

// ApplyPrice stores a freshly fetched price. NewPriceFetched is raised only
// when the value actually changed.
func (s *Store) ApplyPrice(price float64, updatedAt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Price != price {
		s.snap.NewPriceFetched = true
	}
	s.snap.Price = price
	s.snap.LastUpdated = updatedAt
}

// ApplyPriceFallback substitutes the close of the most recent candle for a
// price that could not be fetched and marks the display string as stale.
// It reports the substituted value and false when no history exists.
func (s *Store) ApplyPriceFallback(updatedAt string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.snap.History) == 0 {
		return 0, false
	}
	last := s.snap.History[len(s.snap.History)-1]
	s.snap.Price = last.Candle.Close
	s.snap.LastUpdated = updatedAt + "* (fallback)"
	return last.Candle.Close, true
}

// ReplaceHistory swaps in a whole new candle sequence. History is never
// merged incrementally. NewPriceFetched is raised to force a chart redraw.
func (s *Store) ReplaceHistory(points []domain.PricePoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.History = points
	s.snap.NewPriceFetched = true
}

// Timeframe returns the active chart timeframe.
func (s *Store) Timeframe() domain.Timeframe {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Timeframe
}

// SetTimeframe stores tf if it differs from the active timeframe and raises
// TimeframeChanged. It reports whether a change happened.
func (s *Store) SetTimeframe(tf domain.Timeframe) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Timeframe == tf {
		return false
	}
	s.snap.Timeframe = tf
	s.snap.TimeframeChanged = true
	return true
}

// ApplyBlock stores the latest resolved block details.
func (s *Store) ApplyBlock(b *domain.BlockInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.BlockHeight = b.Height
	s.snap.BlockTime = domain.NewTimeInfo(b.Timestamp).Formatted
}

// ApplyFees stores fresh fee tiers and bumps the mempool last-updated line.
func (s *Store) ApplyFees(fees domain.FeeEstimate, updatedAt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Fees = fees
	s.snap.MempoolLastUpdated = updatedAt
}

// ClearNewPriceFetched is called by the render loop after it consumed the
// one-shot flag.
func (s *Store) ClearNewPriceFetched() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.NewPriceFetched = false
}

// ClearTimeframeChanged is called by the render loop after it reset the
// chart view bounds.
func (s *Store) ClearTimeframeChanged() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.TimeframeChanged = false
}
