package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nodlAndHodl/btc-tray/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// DefaultMempoolBaseURL is the public mempool.space API root.
const DefaultMempoolBaseURL = "https://mempool.space/api"

// MempoolProvider fetches block and fee data from a mempool.space compatible
// explorer. The base URL is swappable at runtime so the settings surface can
// point it at a custom instance without rebuilding the provider.
type MempoolProvider struct {
	client  *http.Client
	tracer  trace.Tracer
	limiter *RateLimiter

	mu      sync.RWMutex
	baseURL string
}

// NewMempoolProvider creates a provider with built-in rate limiting
// (8 requests per 8 seconds, one token per second).
func NewMempoolProvider(tracer trace.Tracer, baseURL string) *MempoolProvider {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultMempoolBaseURL
	}
	return &MempoolProvider{
		client:  &http.Client{Timeout: gatewayTimeout},
		tracer:  tracer,
		limiter: NewRateLimiter(8, time.Second),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the active explorer root. Thread-safe.
func (p *MempoolProvider) BaseURL() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.baseURL
}

// SetBaseURL swaps the explorer root. Thread-safe; in-flight requests keep
// the URL they started with.
func (p *MempoolProvider) SetBaseURL(baseURL string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
}

// FetchLatestBlock resolves the chain tip in three steps: height, then the
// block hash at that height, then the structured block details.
func (p *MempoolProvider) FetchLatestBlock(ctx context.Context) (*domain.BlockInfo, error) {
	_, span := p.tracer.Start(ctx, "mempool.fetch-latest-block")
	defer span.End()

	base := p.BaseURL()

	heightText, err := p.getText(ctx, base+"/blocks/tip/height")
	if err != nil {
		return nil, fmt.Errorf("fetch tip height: %w", err)
	}
	height, err := strconv.ParseInt(heightText, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse tip height %q: %w", heightText, err)
	}

	hash, err := p.getText(ctx, fmt.Sprintf("%s/block-height/%d", base, height))
	if err != nil {
		return nil, fmt.Errorf("resolve block hash for height %d: %w", height, err)
	}

	body, err := p.get(ctx, base+"/block/"+hash)
	if err != nil {
		return nil, fmt.Errorf("fetch block %s: %w", hash, err)
	}

	var block domain.BlockInfo
	if err := json.Unmarshal(body, &block); err != nil {
		return nil, fmt.Errorf("parse block details: %w", err)
	}
	return &block, nil
}

// FetchFeeEstimate returns the five recommended fee tiers in sat/vB.
func (p *MempoolProvider) FetchFeeEstimate(ctx context.Context) (*domain.FeeEstimate, error) {
	_, span := p.tracer.Start(ctx, "mempool.fetch-fee-estimate")
	defer span.End()

	body, err := p.get(ctx, p.BaseURL()+"/v1/fees/recommended")
	if err != nil {
		return nil, fmt.Errorf("fetch fee estimates: %w", err)
	}

	var raw struct {
		FastestFee  int `json:"fastestFee"`
		HalfHourFee int `json:"halfHourFee"`
		HourFee     int `json:"hourFee"`
		EconomyFee  int `json:"economyFee"`
		MinimumFee  int `json:"minimumFee"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse fee estimates: %w", err)
	}

	return &domain.FeeEstimate{
		Fastest:  raw.FastestFee,
		HalfHour: raw.HalfHourFee,
		Hour:     raw.HourFee,
		Economy:  raw.EconomyFee,
		Minimum:  raw.MinimumFee,
	}, nil
}

func (p *MempoolProvider) get(ctx context.Context, url string) ([]byte, error) {
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
		return nil, fmt.Errorf("explorer API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}

// getText is for the explorer endpoints that answer with a bare value.
func (p *MempoolProvider) getText(ctx context.Context, url string) (string, error) {
	body, err := p.get(ctx, url)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}
