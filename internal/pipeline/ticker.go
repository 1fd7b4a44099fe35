package pipeline

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/selivandex/ticker-sentiment/pkg/models"
)

var validate = validator.New()

// NormalizeTicker trims the symbol, drops one leading '$' and upper-cases it.
// Anything but 1-10 ASCII letters and digits is rejected.
func NormalizeTicker(raw string) (string, error) {
	ticker := strings.TrimSpace(raw)
	ticker = strings.TrimPrefix(ticker, "$")
	ticker = strings.ToUpper(ticker)

	if err := validate.Var(ticker, "required,alphanum,max=10"); err != nil {
		return "", models.ErrInvalidTicker
	}
	return ticker, nil
}
