package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/selivandex/ticker-sentiment/pkg/logger"
	"github.com/selivandex/ticker-sentiment/pkg/models"
)

const finnhubAPIURL = "https://finnhub.io/api/v1"

// FinnhubProvider implements QuoteProvider using the Finnhub quote API
type FinnhubProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewFinnhubProvider creates new Finnhub quote provider
func NewFinnhubProvider(baseURL, apiKey string, timeout time.Duration) *FinnhubProvider {
	if baseURL == "" {
		baseURL = finnhubAPIURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &FinnhubProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (f *FinnhubProvider) GetName() string {
	return "Finnhub"
}

// finnhubQuote is the raw /quote payload; unknown symbols come back as zeros or nulls
type finnhubQuote struct {
	Current       decimal.NullDecimal `json:"c"`
	Change        decimal.NullDecimal `json:"d"`
	ChangePercent decimal.NullDecimal `json:"dp"`
	High          decimal.NullDecimal `json:"h"`
	Low           decimal.NullDecimal `json:"l"`
	Open          decimal.NullDecimal `json:"o"`
	PreviousClose decimal.NullDecimal `json:"pc"`
}

// GetQuote returns the current quote or an *models.UpstreamDataError when
// the source has nothing usable for ticker
func (f *FinnhubProvider) GetQuote(ctx context.Context, ticker string) (*models.Quote, error) {
	params := url.Values{}
	params.Set("symbol", ticker)
	params.Set("token", f.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/quote?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	var raw finnhubQuote
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &models.UpstreamDataError{Ticker: ticker, Reason: fmt.Sprintf("malformed quote: %v", err)}
	}

	if !raw.Current.Valid {
		return nil, &models.UpstreamDataError{Ticker: ticker, Reason: "quote has no current price"}
	}

	quote := &models.Quote{
		Ticker:        ticker,
		Price:         raw.Current.Decimal,
		Open:          raw.Open.Decimal,
		High:          raw.High.Decimal,
		Low:           raw.Low.Decimal,
		PreviousClose: raw.PreviousClose.Decimal,
		Change:        raw.Change.Decimal,
		ChangePercent: raw.ChangePercent.Decimal,
	}

	if quote.IsEmpty() {
		return nil, &models.UpstreamDataError{Ticker: ticker, Reason: "unknown symbol"}
	}

	logger.Debug("fetched quote",
		zap.String("ticker", ticker),
		zap.String("price", quote.Price.String()),
	)

	return quote, nil
}
