package provider

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func newTestMempool(rt roundTripFunc) *MempoolProvider {
	p := NewMempoolProvider(trace.NewNoopTracerProvider().Tracer("test"), "http://example/api")
	p.client = &http.Client{Transport: rt}
	return p
}

func TestMempoolBaseURLDefaults(t *testing.T) {
	p := NewMempoolProvider(trace.NewNoopTracerProvider().Tracer("test"), "")
	if p.BaseURL() != DefaultMempoolBaseURL {
		t.Fatalf("expected default base URL, got %s", p.BaseURL())
	}

	p = NewMempoolProvider(trace.NewNoopTracerProvider().Tracer("test"), "http://node.local/api/")
	if p.BaseURL() != "http://node.local/api" {
		t.Fatalf("expected trailing slash trimmed, got %s", p.BaseURL())
	}
}

func TestMempoolSetBaseURL(t *testing.T) {
	p := NewMempoolProvider(trace.NewNoopTracerProvider().Tracer("test"), "")
	p.SetBaseURL(" http://umbrel.local/api/ ")
	if p.BaseURL() != "http://umbrel.local/api" {
		t.Fatalf("unexpected base URL: %s", p.BaseURL())
	}
}

func TestFetchLatestBlock(t *testing.T) {
	t.Parallel()

	p := newTestMempool(func(req *http.Request) (*http.Response, error) {
		switch {
		case strings.HasSuffix(req.URL.Path, "/blocks/tip/height"):
			return jsonResponse("899999\n"), nil
		case strings.HasSuffix(req.URL.Path, "/block-height/899999"):
			return jsonResponse("00000000abc"), nil
		case strings.HasSuffix(req.URL.Path, "/block/00000000abc"):
			return jsonResponse(`{
				"id": "00000000abc",
				"height": 899999,
				"version": 536870912,
				"timestamp": 1735689600,
				"difficulty": 109780000000000.0,
				"merkle_root": "deadbeef",
				"tx_count": 3421,
				"size": 1500000,
				"weight": 3990000,
				"previousblockhash": "00000000def"
			}`), nil
		default:
			t.Fatalf("unexpected path: %s", req.URL.Path)
			return nil, nil
		}
	})

	block, err := p.FetchLatestBlock(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if block.Height != 899999 || block.ID != "00000000abc" {
		t.Fatalf("unexpected block: %+v", block)
	}
	if block.TxCount != 3421 || block.PreviousBlockHash != "00000000def" {
		t.Fatalf("unexpected block details: %+v", block)
	}
}

func TestFetchLatestBlockBadHeight(t *testing.T) {
	t.Parallel()

	p := newTestMempool(func(req *http.Request) (*http.Response, error) {
		return jsonResponse("not-a-height"), nil
	})

	if _, err := p.FetchLatestBlock(context.Background()); err == nil {
		t.Fatal("expected parse error for non-numeric height")
	}
}

func TestFetchLatestBlockHashStepFails(t *testing.T) {
	t.Parallel()

	p := newTestMempool(func(req *http.Request) (*http.Response, error) {
		if strings.HasSuffix(req.URL.Path, "/blocks/tip/height") {
			return jsonResponse("899999"), nil
		}
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader("not found")),
			Header:     make(http.Header),
		}, nil
	})

	if _, err := p.FetchLatestBlock(context.Background()); err == nil {
		t.Fatal("expected error when hash resolution fails")
	}
}

func TestFetchFeeEstimate(t *testing.T) {
	t.Parallel()

	p := newTestMempool(func(req *http.Request) (*http.Response, error) {
		if !strings.HasSuffix(req.URL.Path, "/v1/fees/recommended") {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		return jsonResponse(`{"fastestFee": 25, "halfHourFee": 18, "hourFee": 12, "economyFee": 6, "minimumFee": 2}`), nil
	})

	fees, err := p.FetchFeeEstimate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fees.Fastest != 25 || fees.HalfHour != 18 || fees.Hour != 12 || fees.Economy != 6 || fees.Minimum != 2 {
		t.Fatalf("unexpected fees: %+v", fees)
	}
}
