package core

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/stat"

	m "stockfeed/models"
)

// PriceSummary are descriptive statistics over a symbol's stored closing
// prices. Zero-valued closes (null provider bars) are excluded.
type PriceSummary struct {
	Symbol string  `json:"symbol"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P25    float64 `json:"p25"`
	P50    float64 `json:"p50"`
	P75    float64 `json:"p75"`
}

// ComputePriceSummary builds the summary from a record's history.
func ComputePriceSummary(rec *m.StockRecord) (*PriceSummary, error) {
	closes := make([]float64, 0, len(rec.Historical.Close))
	for _, c := range rec.Historical.Close {
		if c > 0 {
			closes = append(closes, c)
		}
	}

	if len(closes) == 0 {
		return nil, fmt.Errorf("no closing prices stored for %s", rec.Symbol)
	}

	// stat.Quantile requires the slice to be sorted in increasing order
	slices.Sort(closes)

	// StdDev of a single sample is NaN, which JSON cannot carry
	stdDev := 0.0
	if len(closes) > 1 {
		stdDev = stat.StdDev(closes, nil)
	}

	return &PriceSummary{
		Symbol: rec.Symbol,
		Count:  len(closes),
		Mean:   stat.Mean(closes, nil),
		StdDev: stdDev,
		Min:    closes[0],
		Max:    closes[len(closes)-1],
		P25:    stat.Quantile(0.25, stat.Empirical, closes, nil),
		P50:    stat.Quantile(0.50, stat.Empirical, closes, nil),
		P75:    stat.Quantile(0.75, stat.Empirical, closes, nil),
	}, nil
}
