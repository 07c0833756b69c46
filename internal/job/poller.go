package job

import (
	"context"
	"log"
	"time"

	"github.com/nodlAndHodl/btc-tray/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// Refresher is the coordinator surface the timers drive.
type Refresher interface {
	Bootstrap(ctx context.Context)
	RefreshPriceAndHistory(ctx context.Context, tf domain.Timeframe)
	RefreshNetworkMetrics(ctx context.Context)
}

// TimeframeSource yields the active chart timeframe at tick time.
type TimeframeSource interface {
	Timeframe() domain.Timeframe
}

// Poller runs the two background refresh timers: price/history and
// block/fee data, each on its own independent interval.
type Poller struct {
	tracer          trace.Tracer
	refresher       Refresher
	frames          TimeframeSource
	priceInterval   time.Duration
	networkInterval time.Duration
}

func NewPoller(tracer trace.Tracer, refresher Refresher, frames TimeframeSource, pricePollSecs, networkPollSecs int) *Poller {
	return &Poller{
		tracer:          tracer,
		refresher:       refresher,
		frames:          frames,
		priceInterval:   time.Duration(pricePollSecs) * time.Second,
		networkInterval: time.Duration(networkPollSecs) * time.Second,
	}
}

// Start bootstraps once, then launches the timer goroutines. Blocks until
// ctx is cancelled. Bootstrap covers the immediate first run of both
// routines, so the loops only fire on ticks.
func (p *Poller) Start(ctx context.Context) {
	log.Println("Metrics poller starting...")

	p.refresher.Bootstrap(ctx)

	go p.pollLoop(ctx, p.priceInterval, func(ctx context.Context) {
		p.refresher.RefreshPriceAndHistory(ctx, p.frames.Timeframe())
	})
	go p.pollLoop(ctx, p.networkInterval, func(ctx context.Context) {
		p.refresher.RefreshNetworkMetrics(ctx)
	})

	<-ctx.Done()
	log.Println("Metrics poller stopped")
}

func (p *Poller) pollLoop(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}
