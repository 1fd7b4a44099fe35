package price

import (
	"context"

	"github.com/selivandex/ticker-sentiment/pkg/models"
)

// QuoteProvider provides current stock quotes
type QuoteProvider interface {
	// GetQuote returns a price/change snapshot for ticker
	GetQuote(ctx context.Context, ticker string) (*models.Quote, error)

	// GetName returns provider name
	GetName() string
}
