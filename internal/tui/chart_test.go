package tui

import (
	"strings"
	"testing"

	"github.com/nodlAndHodl/btc-tray/internal/domain"
)

func TestObserveWidensBoundsOnly(t *testing.T) {
	var b chartBounds
	b.observe([]domain.PricePoint{
		{Candle: domain.Candle{Open: 100, High: 110, Low: 90, Close: 105}},
	})
	if !b.set {
		t.Fatal("expected bounds set")
	}
	if b.min >= 90 || b.max <= 110 {
		t.Fatalf("expected padded bounds around [90,110], got [%v,%v]", b.min, b.max)
	}

	min, max := b.min, b.max
	b.observe([]domain.PricePoint{
		{Candle: domain.Candle{Open: 100, High: 105, Low: 95, Close: 100}},
	})
	if b.min != min || b.max != max {
		t.Fatalf("expected bounds sticky for a narrower candle, got [%v,%v]", b.min, b.max)
	}

	b.observe([]domain.PricePoint{
		{Candle: domain.Candle{Open: 100, High: 200, Low: 50, Close: 100}},
	})
	if b.min >= min || b.max <= max {
		t.Fatalf("expected bounds widened, got [%v,%v]", b.min, b.max)
	}
}

func TestObserveSkipsEmptyCandles(t *testing.T) {
	var b chartBounds
	b.observe([]domain.PricePoint{{Candle: domain.Candle{}}})
	if b.set {
		t.Fatal("expected zero candles ignored")
	}
}

func TestResetClearsBounds(t *testing.T) {
	var b chartBounds
	b.observe([]domain.PricePoint{
		{Candle: domain.Candle{Open: 1, High: 2, Low: 0.5, Close: 1.5}},
	})
	b.reset()
	if b.set {
		t.Fatal("expected bounds cleared")
	}
}

func TestRenderChartDrawsCandles(t *testing.T) {
	points := []domain.PricePoint{
		{Candle: domain.Candle{Open: 100, High: 120, Low: 95, Close: 115}},
		{Candle: domain.Candle{Open: 115, High: 118, Low: 100, Close: 102}},
	}
	var b chartBounds
	b.observe(points)

	out := renderChart(points, b, 80, 10)
	if !strings.Contains(out, "█") {
		t.Fatal("expected candle bodies in output")
	}
	if got := len(strings.Split(out, "\n")); got != 10 {
		t.Fatalf("expected 10 rows, got %d", got)
	}
}

func TestRenderChartHandlesNoData(t *testing.T) {
	out := renderChart(nil, chartBounds{}, 80, 10)
	if !strings.Contains(out, "no chart data") {
		t.Fatalf("expected placeholder, got %q", out)
	}
}

func TestRenderChartWindowsToWidth(t *testing.T) {
	points := make([]domain.PricePoint, 200)
	for i := range points {
		v := 100 + float64(i)
		points[i] = domain.PricePoint{Candle: domain.Candle{Open: v, High: v + 1, Low: v - 1, Close: v}}
	}
	var b chartBounds
	b.observe(points)

	out := renderChart(points, b, 40, 8)
	rows := strings.Split(out, "\n")
	if len(rows) != 8 {
		t.Fatalf("expected 8 rows, got %d", len(rows))
	}
}
