package models

import (
	"errors"
	"fmt"
)

// ErrInvalidTicker is returned for symbols that cannot be a ticker
var ErrInvalidTicker = errors.New("invalid ticker symbol")

// AuthError means the forum credential exchange failed. Nothing else can be
// fetched from the forum without a credential, so it is never absorbed.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return "reddit auth failed"
	}
	return fmt.Sprintf("reddit auth failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// UpstreamDataError means the quote source returned no usable quote
type UpstreamDataError struct {
	Ticker string
	Reason string
}

func (e *UpstreamDataError) Error() string {
	return fmt.Sprintf("no stock data for %s: %s", e.Ticker, e.Reason)
}
