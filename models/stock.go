package models

import (
	"time"

	"github.com/guregu/null/v6"
)

// HistoricalData carries the daily OHLCV history as parallel arrays, the
// shape the chart provider returns and the frontend consumes. All slices
// have the same length; missing values are 0, never null.
type HistoricalData struct {
	Timestamps []int64   `json:"timestamps"`
	Open       []float64 `json:"open"`
	High       []float64 `json:"high"`
	Low        []float64 `json:"low"`
	Close      []float64 `json:"close"`
	Volume     []float64 `json:"volume"`
}

// Empty returns a HistoricalData with non-nil zero-length slices, so JSON
// consumers always see arrays.
func EmptyHistoricalData() HistoricalData {
	return HistoricalData{
		Timestamps: []int64{},
		Open:       []float64{},
		High:       []float64{},
		Low:        []float64{},
		Close:      []float64{},
		Volume:     []float64{},
	}
}

// StockRecord is the canonical per-symbol quote record. Symbol is unique;
// an update replaces every mutable field and refreshes UpdatedAt.
type StockRecord struct {
	Id           int32          `db:"id" json:"id"`
	Symbol       string         `db:"symbol" json:"symbol"`
	CompanyName  string         `db:"company_name" json:"company_name"`
	CurrentPrice float64        `db:"current_price" json:"current_price"`
	Currency     string         `db:"currency" json:"currency"`
	MarketState  null.String    `db:"market_state" json:"market_state"`
	Timezone     null.String    `db:"timezone" json:"timezone"`
	Exchange     null.String    `db:"exchange" json:"exchange"`
	Historical   HistoricalData `db:"historical_data" json:"historical_data"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// StockListItem is the trimmed projection returned by the paginated list,
// history omitted to keep list pages small.
type StockListItem struct {
	Id           int32       `db:"id" json:"id"`
	Symbol       string      `db:"symbol" json:"symbol"`
	CompanyName  string      `db:"company_name" json:"company_name"`
	CurrentPrice float64     `db:"current_price" json:"current_price"`
	Currency     string      `db:"currency" json:"currency"`
	MarketState  null.String `db:"market_state" json:"market_state"`
	Exchange     null.String `db:"exchange" json:"exchange"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// Pagination describes one page of a paginated listing.
type Pagination struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
}

// StockPage is one page of stock records plus its pagination envelope.
type StockPage struct {
	Items []*StockListItem `json:"items"`
	Pagination
}

// Fetch log statuses.
const (
	FetchStatusPending = "pending"
	FetchStatusSuccess = "success"
	FetchStatusError   = "error"
)

// FetchLogEntry is the audit record for one fetch attempt within a batch.
// Created when the attempt starts, completed or errored when it finishes,
// never mutated afterward.
type FetchLogEntry struct {
	Id          int32       `db:"id" json:"id"`
	TaskId      string      `db:"task_id" json:"task_id"`
	Symbol      string      `db:"symbol" json:"symbol"`
	Status      string      `db:"status" json:"status"`
	Message     null.String `db:"message" json:"message"`
	ErrorDetail null.String `db:"error_detail" json:"error_detail"`
	StartedAt   time.Time   `db:"started_at" json:"started_at"`
	CompletedAt null.Time   `db:"completed_at" json:"completed_at"`
	StockDataId null.Int    `db:"stock_data_id" json:"stock_data_id"`
}
