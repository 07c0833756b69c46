package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const satsPerBTC = 100_000_000

// GetTicker returns the latest price state.
func (h *Handler) GetTicker(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-ticker")
	defer span.End()

	snap := h.store.Snapshot()

	var satsPerDollar float64
	if snap.Price > 0 {
		satsPerDollar = satsPerBTC / snap.Price
	}

	c.JSON(http.StatusOK, gin.H{
		"price_usd":       snap.Price,
		"sats_per_dollar": satsPerDollar,
		"last_updated":    snap.LastUpdated,
		"updating":        snap.Updating,
		"timeframe":       snap.Timeframe.Description(),
	})
}

// GetNetwork returns the latest block and fee state.
func (h *Handler) GetNetwork(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-network")
	defer span.End()

	snap := h.store.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"block_height": snap.BlockHeight,
		"block_time":   snap.BlockTime,
		"fees": gin.H{
			"fastest":   snap.Fees.Fastest,
			"half_hour": snap.Fees.HalfHour,
			"hour":      snap.Fees.Hour,
			"economy":   snap.Fees.Economy,
			"minimum":   snap.Fees.Minimum,
		},
		"mempool_updating":     snap.MempoolUpdating,
		"mempool_last_updated": snap.MempoolLastUpdated,
	})
}

// GetHistory returns the stored candle sequence for the active timeframe.
func (h *Handler) GetHistory(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-history")
	defer span.End()

	snap := h.store.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"timeframe": snap.Timeframe.Description(),
		"count":     len(snap.History),
		"candles":   snap.History,
	})
}
