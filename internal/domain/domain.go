package domain

import "time"

// MaxHistoryPoints caps the render loop's rolling display buffer.
// Oldest entries are evicted first once the cap is reached.
const MaxHistoryPoints = 100

// Candle is a single OHLC record for one chart time bucket.
type Candle struct {
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// Bullish reports whether the candle closed at or above its open.
func (c Candle) Bullish() bool {
	return c.Close >= c.Open
}

// TimeInfo carries a raw epoch timestamp together with its two display
// forms. Both strings are derived once at ingestion and never recomputed.
type TimeInfo struct {
	Raw       int64  `json:"raw"`
	Formatted string `json:"formatted"`
	RFC3339   string `json:"rfc3339"`
}

// NewTimeInfo derives the display forms from epoch seconds.
func NewTimeInfo(epoch int64) TimeInfo {
	t := time.Unix(epoch, 0)
	return TimeInfo{
		Raw:       epoch,
		Formatted: t.Local().Format("2006-01-02 15:04"),
		RFC3339:   t.UTC().Format(time.RFC3339),
	}
}

func (ti TimeInfo) String() string {
	return ti.Formatted
}

// PricePoint is one chart entry: a candle plus its bucket timestamp.
type PricePoint struct {
	Time   TimeInfo `json:"time"`
	Candle Candle   `json:"candle"`
}

// Timeframe selects the (interval, count) pair for the price history chart.
type Timeframe int

const (
	TimeframeHours24 Timeframe = iota
	TimeframeWeek
	TimeframeMonth
	TimeframeYear
)

// Timeframes lists all selectable chart timeframes in menu order.
var Timeframes = []Timeframe{TimeframeHours24, TimeframeWeek, TimeframeMonth, TimeframeYear}

// APIParams returns the candle interval in seconds and the candle count
// the OHLC gateway is queried with.
func (tf Timeframe) APIParams() (step, limit int) {
	switch tf {
	case TimeframeWeek:
		return 14400, 42
	case TimeframeMonth:
		return 86400, 30
	case TimeframeYear:
		return 86400, 365
	default:
		return 3600, 24
	}
}

func (tf Timeframe) Description() string {
	switch tf {
	case TimeframeWeek:
		return "1 Week (4-hour)"
	case TimeframeMonth:
		return "1 Month (daily)"
	case TimeframeYear:
		return "1 Year (daily)"
	default:
		return "24 Hours (hourly)"
	}
}

func (tf Timeframe) String() string {
	return tf.Description()
}

// BlockInfo holds the structured details of one resolved block.
type BlockInfo struct {
	ID                string  `json:"id"`
	Height            int64   `json:"height"`
	Version           int64   `json:"version"`
	Timestamp         int64   `json:"timestamp"`
	Difficulty        float64 `json:"difficulty"`
	MerkleRoot        string  `json:"merkle_root"`
	TxCount           int64   `json:"tx_count"`
	Size              int64   `json:"size"`
	Weight            int64   `json:"weight"`
	PreviousBlockHash string  `json:"previousblockhash"`
}

// FeeEstimate holds the recommended fee tiers in sat/vB.
type FeeEstimate struct {
	Fastest  int `json:"fastest"`
	HalfHour int `json:"half_hour"`
	Hour     int `json:"hour"`
	Economy  int `json:"economy"`
	Minimum  int `json:"minimum"`
}

// FormatTimestamp is the display form used for "last updated" lines.
func FormatTimestamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}
