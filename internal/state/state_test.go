package state

import (
	"strings"
	"sync"
	"testing"

	"github.com/nodlAndHodl/btc-tray/internal/domain"
)

func TestNewPlaceholders(t *testing.T) {
	snap := New().Snapshot()
	if snap.Price != 0 || snap.LastUpdated != "Never" {
		t.Fatalf("unexpected initial price state: %+v", snap)
	}
	if snap.BlockTime != "Unknown" || snap.MempoolLastUpdated != "Never" {
		t.Fatalf("unexpected initial network state: %+v", snap)
	}
	if snap.Timeframe != domain.TimeframeHours24 {
		t.Fatalf("expected 24h default timeframe, got %v", snap.Timeframe)
	}
}

func TestApplyPriceRaisesFlagOnlyOnChange(t *testing.T) {
	s := New()
	s.ApplyPrice(100, "t1")
	if !s.Snapshot().NewPriceFetched {
		t.Fatal("expected NewPriceFetched after first price")
	}
	s.ClearNewPriceFetched()

	s.ApplyPrice(100, "t2")
	snap := s.Snapshot()
	if snap.NewPriceFetched {
		t.Fatal("unchanged price should not raise NewPriceFetched")
	}
	if snap.LastUpdated != "t2" {
		t.Fatalf("timestamp should still update, got %s", snap.LastUpdated)
	}

	s.ApplyPrice(101, "t3")
	if !s.Snapshot().NewPriceFetched {
		t.Fatal("expected NewPriceFetched after change")
	}
}

func TestApplyPriceFallback(t *testing.T) {
	s := New()
	if _, ok := s.ApplyPriceFallback("t1"); ok {
		t.Fatal("fallback with empty history should report false")
	}

	s.ReplaceHistory([]domain.PricePoint{
		{Candle: domain.Candle{Close: 90}},
		{Candle: domain.Candle{Close: 95}},
	})
	price, ok := s.ApplyPriceFallback("t2")
	if !ok || price != 95 {
		t.Fatalf("expected fallback to last close 95, got %f (%v)", price, ok)
	}
	snap := s.Snapshot()
	if snap.Price != 95 {
		t.Fatalf("expected price 95, got %f", snap.Price)
	}
	if !strings.HasSuffix(snap.LastUpdated, "* (fallback)") {
		t.Fatalf("expected fallback marker, got %q", snap.LastUpdated)
	}
}

func TestReplaceHistoryIsFullReplacement(t *testing.T) {
	s := New()
	first := []domain.PricePoint{{Candle: domain.Candle{Close: 1}}, {Candle: domain.Candle{Close: 2}}}
	second := []domain.PricePoint{{Candle: domain.Candle{Close: 3}}}

	s.ReplaceHistory(first)
	s.ReplaceHistory(second)

	snap := s.Snapshot()
	if len(snap.History) != 1 || snap.History[0].Candle.Close != 3 {
		t.Fatalf("history must equal the last fetch exactly, got %+v", snap.History)
	}
	if !snap.NewPriceFetched {
		t.Fatal("history replacement must force a redraw")
	}
}

func TestSnapshotCopiesHistory(t *testing.T) {
	s := New()
	s.ReplaceHistory([]domain.PricePoint{{Candle: domain.Candle{Close: 1}}})
	snap := s.Snapshot()
	snap.History[0].Candle.Close = 42
	if s.Snapshot().History[0].Candle.Close != 1 {
		t.Fatal("snapshot history must be a copy")
	}
}

func TestSetTimeframe(t *testing.T) {
	s := New()
	if s.SetTimeframe(domain.TimeframeHours24) {
		t.Fatal("setting the active timeframe should be a no-op")
	}
	if !s.SetTimeframe(domain.TimeframeWeek) {
		t.Fatal("expected timeframe change")
	}
	snap := s.Snapshot()
	if snap.Timeframe != domain.TimeframeWeek || !snap.TimeframeChanged {
		t.Fatalf("unexpected timeframe state: %+v", snap)
	}
	s.ClearTimeframeChanged()
	if s.Snapshot().TimeframeChanged {
		t.Fatal("flag should be cleared")
	}
}

func TestApplyBlockAndFees(t *testing.T) {
	s := New()
	s.ApplyBlock(&domain.BlockInfo{Height: 900000, Timestamp: 1735689600})
	s.ApplyFees(domain.FeeEstimate{Fastest: 20, HalfHour: 15, Hour: 10, Economy: 5, Minimum: 1}, "t1")

	snap := s.Snapshot()
	if snap.BlockHeight != 900000 || snap.BlockTime == "Unknown" {
		t.Fatalf("unexpected block state: %+v", snap)
	}
	if snap.Fees.Fastest != 20 || snap.Fees.Minimum != 1 {
		t.Fatalf("unexpected fees: %+v", snap.Fees)
	}
	if snap.MempoolLastUpdated != "t1" {
		t.Fatalf("unexpected mempool timestamp: %s", snap.MempoolLastUpdated)
	}
}

func TestConcurrentWritersLeaveFlagsConsistent(t *testing.T) {
	t.Parallel()

	s := New()
	s.ReplaceHistory([]domain.PricePoint{{Candle: domain.Candle{Close: 50}}})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.SetUpdating(true)
			if n%2 == 0 {
				s.ApplyPrice(float64(100+n), "t")
			} else {
				s.ApplyPriceFallback("t")
			}
			s.SetUpdating(false)
		}(i)
	}
	wg.Wait()

	snap := s.Snapshot()
	if snap.Updating {
		t.Fatal("Updating must never stay true after all refreshes complete")
	}
	if snap.Price == 0 {
		t.Fatal("expected a price from the last writer")
	}
}
