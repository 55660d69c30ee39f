package yahoo

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/guregu/null/v6"

	c "stockfeed/api"
	m "stockfeed/models"
)

// public
const (
	HostDefault = "query1.finance.yahoo.com"
)

// private
const (
	defaultTimeout   = time.Second * 30
	defaultUserAgent = "Mozilla/5.0"

	defaultInterval = "1d"
	defaultRange    = "1y"

	defaultCurrency    = "JPY"
	defaultMarketState = "UNKNOWN"
	defaultTimezone    = "JST"
	defaultExchange    = "Unknown"
)

type YahooClient struct {
	*c.Client
}

func GetClient(host string, timeout time.Duration) YahooClient {
	if host == "" {
		host = HostDefault
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return YahooClient{
		c.ClientFactory(host, defaultUserAgent, timeout),
	}
}

// chartResponse mirrors the fields of the chart API payload this service
// consumes. Price arrays use pointers because Yahoo emits null for
// holidays and halted bars.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				LongName           string  `json:"longName"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				Currency           string  `json:"currency"`
				MarketState        string  `json:"marketState"`
				Timezone           string  `json:"timezone"`
				ExchangeName       string  `json:"exchangeName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type searchResponse struct {
	Quotes []struct {
		Symbol string `json:"symbol"`
	} `json:"quotes"`
}

// FetchStock retrieves one symbol's chart and normalizes it into a
// StockRecord. Network failures, non-200 statuses, chart-level errors and
// malformed payloads all come back as an error; nothing panics past this
// boundary.
func (yc YahooClient) FetchStock(symbol string) (*m.StockRecord, error) {
	endpoint := &url.URL{
		Path: fmt.Sprintf("/v8/finance/chart/%s", url.PathEscape(symbol)),
	}
	query := endpoint.Query()
	query.Set("interval", defaultInterval)
	query.Set("range", defaultRange)
	endpoint.RawQuery = query.Encode()

	response, err := yc.Client.Connection.Request(endpoint)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch %s: %w", symbol, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body for %s: %w", symbol, err)
	}
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d for %s", response.StatusCode, symbol)
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode for %s: %w", symbol, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error for %s: %s", symbol, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo: no result for %s", symbol)
	}

	return normalize(symbol, &chart), nil
}

// ValidateSymbol checks a symbol against the search endpoint, true only on
// an exact match.
func (yc YahooClient) ValidateSymbol(symbol string) bool {
	endpoint := &url.URL{
		Path: "/v1/finance/search",
	}
	query := endpoint.Query()
	query.Set("q", symbol)
	endpoint.RawQuery = query.Encode()

	response, err := yc.Client.Connection.Request(endpoint)
	if err != nil {
		return false
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return false
	}

	var search searchResponse
	if err := json.NewDecoder(response.Body).Decode(&search); err != nil {
		return false
	}

	for _, quote := range search.Quotes {
		if quote.Symbol == symbol {
			return true
		}
	}

	return false
}

// normalize maps a chart payload onto the canonical record, applying the
// documented fallbacks for missing provider fields. Historical arrays stay
// parallel and non-nil; null bars become zeros.
func normalize(symbol string, chart *chartResponse) *m.StockRecord {
	result := chart.Chart.Result[0]
	meta := result.Meta

	rec := &m.StockRecord{
		Symbol:       symbol,
		CompanyName:  meta.LongName,
		CurrentPrice: meta.RegularMarketPrice,
		Currency:     meta.Currency,
		Historical:   m.EmptyHistoricalData(),
	}

	if rec.CompanyName == "" {
		rec.CompanyName = symbol
	}
	if rec.Currency == "" {
		rec.Currency = defaultCurrency
	}

	rec.MarketState = null.StringFrom(orDefault(meta.MarketState, defaultMarketState))
	rec.Timezone = null.StringFrom(orDefault(meta.Timezone, defaultTimezone))
	rec.Exchange = null.StringFrom(orDefault(meta.ExchangeName, defaultExchange))

	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return rec
	}

	quote := result.Indicators.Quote[0]
	n := len(result.Timestamp)

	h := m.HistoricalData{
		Timestamps: result.Timestamp,
		Open:       make([]float64, n),
		High:       make([]float64, n),
		Low:        make([]float64, n),
		Close:      make([]float64, n),
		Volume:     make([]float64, n),
	}

	for i := 0; i < n; i++ {
		h.Open[i] = deref(quote.Open, i)
		h.High[i] = deref(quote.High, i)
		h.Low[i] = deref(quote.Low, i)
		h.Close[i] = deref(quote.Close, i)
		h.Volume[i] = deref(quote.Volume, i)
	}

	rec.Historical = h
	return rec
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func deref(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return 0
	}
	return *values[i]
}
