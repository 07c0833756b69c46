package service

import (
	"context"
	"log"
	"time"

	"github.com/nodlAndHodl/btc-tray/internal/domain"
	"github.com/nodlAndHodl/btc-tray/internal/state"

	"go.opentelemetry.io/otel/trace"
)

// PriceGateway is the read-only exchange API surface the coordinator needs.
type PriceGateway interface {
	FetchCurrentPrice(ctx context.Context) (float64, error)
	FetchOHLC(ctx context.Context, tf domain.Timeframe) ([]domain.PricePoint, error)
}

// NetworkGateway is the read-only blockchain-explorer surface.
type NetworkGateway interface {
	FetchLatestBlock(ctx context.Context) (*domain.BlockInfo, error)
	FetchFeeEstimate(ctx context.Context) (*domain.FeeEstimate, error)
}

// RefreshService coordinates gateway fetches with the shared state store.
// It holds no lock across network calls; concurrent invocations of any
// routine are safe and resolve last-writer-wins. There is no in-flight
// suppression: a manual refresh racing a timer refresh both run to
// completion.
type RefreshService struct {
	tracer  trace.Tracer
	store   *state.Store
	price   PriceGateway
	network NetworkGateway
	nowFunc func() time.Time
}

func NewRefreshService(tracer trace.Tracer, store *state.Store, price PriceGateway, network NetworkGateway) *RefreshService {
	return &RefreshService{
		tracer:  tracer,
		store:   store,
		price:   price,
		network: network,
		nowFunc: time.Now,
	}
}

// Bootstrap performs the initial full-history load, seeds the price from the
// latest candle, then runs both refresh routines once.
func (s *RefreshService) Bootstrap(ctx context.Context) {
	ctx, span := s.tracer.Start(ctx, "refresh.bootstrap")
	defer span.End()

	tf := s.store.Timeframe()
	points, err := s.price.FetchOHLC(ctx, tf)
	switch {
	case err != nil:
		log.Printf("bootstrap history fetch failed: %v", err)
	case len(points) > 0:
		s.store.ReplaceHistory(points)
		s.store.ApplyPrice(points[len(points)-1].Candle.Close, s.timestamp())
		log.Printf("bootstrapped %d candles (%s)", len(points), tf)
	}

	s.RefreshPriceAndHistory(ctx, tf)
	s.RefreshNetworkMetrics(ctx)
}

// RefreshPriceAndHistory fetches the current price, then the OHLC sequence
// for the given timeframe. The two fetches are independent: a failed price
// fetch falls back to the last candle close (marked stale) and the chart
// fetch still runs; a failed chart fetch leaves the stored history untouched.
func (s *RefreshService) RefreshPriceAndHistory(ctx context.Context, tf domain.Timeframe) {
	ctx, span := s.tracer.Start(ctx, "refresh.price-and-history")
	defer span.End()

	s.store.SetUpdating(true)
	price, err := s.price.FetchCurrentPrice(ctx)
	if err != nil {
		log.Printf("price fetch failed: %v", err)
		s.store.SetUpdating(false)
		if fallback, ok := s.store.ApplyPriceFallback(s.timestamp()); ok {
			log.Printf("using last candle close as fallback: $%.2f", fallback)
		}
	} else {
		s.store.ApplyPrice(price, s.timestamp())
		s.store.SetUpdating(false)
		log.Printf("updated price: $%.2f", price)
	}

	points, err := s.price.FetchOHLC(ctx, tf)
	if err != nil {
		log.Printf("history fetch failed (%s): %v", tf, err)
		return
	}
	if len(points) > 0 {
		s.store.ReplaceHistory(points)
		log.Printf("replaced history with %d candles (%s)", len(points), tf)
	}
}

// RefreshNetworkMetrics fetches block info and fee estimates independently;
// one failing never blocks the other. The mempool flag is always cleared and
// the mempool timestamp only advances on fee-estimate success.
func (s *RefreshService) RefreshNetworkMetrics(ctx context.Context) {
	ctx, span := s.tracer.Start(ctx, "refresh.network-metrics")
	defer span.End()

	s.store.SetMempoolUpdating(true)
	defer s.store.SetMempoolUpdating(false)

	block, err := s.network.FetchLatestBlock(ctx)
	if err != nil {
		log.Printf("block fetch failed: %v", err)
	} else {
		s.store.ApplyBlock(block)
		log.Printf("updated block height: %d", block.Height)
	}

	fees, err := s.network.FetchFeeEstimate(ctx)
	if err != nil {
		log.Printf("fee estimate fetch failed: %v", err)
		return
	}
	s.store.ApplyFees(*fees, s.timestamp())
	log.Printf("updated fee estimates: fastest=%d sat/vB", fees.Fastest)
}

// ChangeTimeframe stores tf if it differs from the active timeframe and
// triggers one immediate refresh so the chart reflects the change without
// waiting for the next timer tick. Reports whether anything changed.
func (s *RefreshService) ChangeTimeframe(ctx context.Context, tf domain.Timeframe) bool {
	if !s.store.SetTimeframe(tf) {
		return false
	}
	s.RefreshPriceAndHistory(ctx, tf)
	return true
}

func (s *RefreshService) timestamp() string {
	return domain.FormatTimestamp(s.nowFunc())
}
