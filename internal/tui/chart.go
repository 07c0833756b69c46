package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/nodlAndHodl/btc-tray/internal/domain"

	"github.com/charmbracelet/lipgloss"
)

var (
	bullStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	bearStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	axisStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// chartBounds holds the sticky y-axis range of the candlestick chart. The
// range only ever widens while a timeframe is active; switching timeframes
// resets it so the new series is not squeezed into stale bounds.
type chartBounds struct {
	min, max float64
	set      bool
}

func (b *chartBounds) reset() {
	*b = chartBounds{}
}

// observe widens the bounds to cover every candle in points, with 5%
// headroom so candles never touch the chart edges.
func (b *chartBounds) observe(points []domain.PricePoint) {
	for _, p := range points {
		lo, hi := p.Candle.Low, p.Candle.High
		if hi <= 0 {
			continue
		}
		pad := (hi - lo) * 0.05
		if pad == 0 {
			pad = hi * 0.001
		}
		lo -= pad
		hi += pad
		if !b.set {
			b.min, b.max, b.set = lo, hi, true
			continue
		}
		b.min = math.Min(b.min, lo)
		b.max = math.Max(b.max, hi)
	}
}

// renderChart draws points as unicode candlesticks within width x height
// cells. Bullish candles are green, bearish red; wicks use a thin bar.
func renderChart(points []domain.PricePoint, bounds chartBounds, width, height int) string {
	if len(points) == 0 || !bounds.set || bounds.max <= bounds.min {
		return axisStyle.Render("(no chart data)")
	}
	if height < 4 {
		height = 4
	}
	labelWidth := 12
	cols := width - labelWidth
	if cols < 10 {
		cols = 10
	}

	visible := points
	if len(visible) > cols {
		visible = visible[len(visible)-cols:]
	}

	// row returns the grid row for a price, row 0 at the top.
	row := func(price float64) int {
		frac := (price - bounds.min) / (bounds.max - bounds.min)
		r := height - 1 - int(math.Round(frac*float64(height-1)))
		if r < 0 {
			r = 0
		}
		if r > height-1 {
			r = height - 1
		}
		return r
	}

	grid := make([][]string, height)
	for i := range grid {
		grid[i] = make([]string, len(visible))
		for j := range grid[i] {
			grid[i][j] = " "
		}
	}

	for col, p := range visible {
		c := p.Candle
		style := bearStyle
		if c.Bullish() {
			style = bullStyle
		}
		bodyTop := row(math.Max(c.Open, c.Close))
		bodyBot := row(math.Min(c.Open, c.Close))
		wickTop := row(c.High)
		wickBot := row(c.Low)
		for r := wickTop; r <= wickBot; r++ {
			grid[r][col] = style.Render("│")
		}
		for r := bodyTop; r <= bodyBot; r++ {
			grid[r][col] = style.Render("█")
		}
	}

	var sb strings.Builder
	for r := 0; r < height; r++ {
		price := bounds.max - (bounds.max-bounds.min)*float64(r)/float64(height-1)
		sb.WriteString(axisStyle.Render(fmt.Sprintf("%10.0f ┤", price)))
		sb.WriteString(strings.Join(grid[r], ""))
		if r < height-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
