package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/nodlAndHodl/btc-tray/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const (
	bitstampBaseURL = "https://www.bitstamp.net/api/v2"
	bitstampPair    = "btcusd"

	// Every gateway call is synchronous-blocking; the timeout is the only
	// bound on how long a stuck request can hold a worker goroutine.
	gatewayTimeout = 10 * time.Second
)

// BitstampProvider fetches the current BTC price and OHLC history from the
// public Bitstamp REST API.
type BitstampProvider struct {
	client  *http.Client
	baseURL string
	pair    string
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewBitstampProvider creates a provider with built-in rate limiting
// (8 requests per 8 seconds, one token per second).
func NewBitstampProvider(tracer trace.Tracer) *BitstampProvider {
	return &BitstampProvider{
		client:  &http.Client{Timeout: gatewayTimeout},
		baseURL: bitstampBaseURL,
		pair:    bitstampPair,
		tracer:  tracer,
		limiter: NewRateLimiter(8, time.Second),
	}
}

// FetchCurrentPrice returns the latest traded price in the quote currency.
// Bitstamp delivers the price as a JSON string, so it must parse.
func (p *BitstampProvider) FetchCurrentPrice(ctx context.Context) (float64, error) {
	_, span := p.tracer.Start(ctx, "bitstamp.fetch-current-price")
	defer span.End()

	url := fmt.Sprintf("%s/ticker/%s/", p.baseURL, p.pair)
	body, err := p.doRequest(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("fetch price: %w", err)
	}

	var ticker struct {
		Last string `json:"last"`
	}
	if err := json.Unmarshal(body, &ticker); err != nil {
		return 0, fmt.Errorf("parse ticker response: %w", err)
	}

	price, err := strconv.ParseFloat(ticker.Last, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price value %q: %w", ticker.Last, err)
	}
	return price, nil
}

// FetchOHLC returns the candle sequence for the given timeframe, preserving
// upstream order. A record with any unparseable field is dropped rather than
// partially populated; the fetch itself still succeeds.
func (p *BitstampProvider) FetchOHLC(ctx context.Context, tf domain.Timeframe) ([]domain.PricePoint, error) {
	_, span := p.tracer.Start(ctx, "bitstamp.fetch-ohlc")
	defer span.End()

	step, limit := tf.APIParams()
	url := fmt.Sprintf("%s/ohlc/%s/?step=%d&limit=%d", p.baseURL, p.pair, step, limit)

	body, err := p.doRequest(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch ohlc (%s): %w", tf, err)
	}

	var raw struct {
		Data struct {
			OHLC []ohlcRecord `json:"ohlc"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse ohlc response (%s): %w", tf, err)
	}

	points := make([]domain.PricePoint, 0, len(raw.Data.OHLC))
	for _, rec := range raw.Data.OHLC {
		pt, err := rec.toPricePoint()
		if err != nil {
			log.Printf("dropping malformed OHLC record: %v", err)
			continue
		}
		points = append(points, pt)
	}
	return points, nil
}

// ohlcRecord mirrors Bitstamp's wire shape: every field is a string.
type ohlcRecord struct {
	Timestamp string `json:"timestamp"`
	Open      string `json:"open"`
	High      string `json:"high"`
	Low       string `json:"low"`
	Close     string `json:"close"`
}

// toPricePoint parses all fields or none.
func (r ohlcRecord) toPricePoint() (domain.PricePoint, error) {
	ts, err := strconv.ParseInt(r.Timestamp, 10, 64)
	if err != nil {
		return domain.PricePoint{}, fmt.Errorf("timestamp %q: %w", r.Timestamp, err)
	}
	fields := [4]struct {
		name  string
		value string
	}{
		{"open", r.Open}, {"high", r.High}, {"low", r.Low}, {"close", r.Close},
	}
	var parsed [4]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f.value, 64)
		if err != nil {
			return domain.PricePoint{}, fmt.Errorf("%s %q: %w", f.name, f.value, err)
		}
		parsed[i] = v
	}
	return domain.PricePoint{
		Time:   domain.NewTimeInfo(ts),
		Candle: domain.Candle{Open: parsed[0], High: parsed[1], Low: parsed[2], Close: parsed[3]},
	}, nil
}

func (p *BitstampProvider) doRequest(ctx context.Context, url string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bitstamp API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
