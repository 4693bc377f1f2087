package quote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	ErrSymbolUnresolved    = errors.New("symbol unresolved")
	ErrRateLimited         = errors.New("rate limited")
	ErrProviderTimeout     = errors.New("provider timeout")
	ErrMalformedResponse   = errors.New("malformed response")
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// Classify maps any fetch error onto an Outcome.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeOK
	}
	var netErr net.Error
	switch {
	case errors.Is(err, ErrSymbolUnresolved):
		return OutcomeSymbolUnresolved
	case errors.Is(err, ErrRateLimited):
		return OutcomeRateLimited
	case errors.Is(err, ErrProviderTimeout), errors.Is(err, context.DeadlineExceeded):
		return OutcomeProviderTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return OutcomeProviderTimeout
	case errors.Is(err, ErrMalformedResponse):
		return OutcomeMalformedResponse
	default:
		return OutcomeProviderUnavailable
	}
}

// Err returns the sentinel behind a failed outcome, nil for OutcomeOK.
func (o Outcome) Err() error {
	switch o {
	case OutcomeOK:
		return nil
	case OutcomeSymbolUnresolved:
		return ErrSymbolUnresolved
	case OutcomeRateLimited:
		return ErrRateLimited
	case OutcomeProviderTimeout:
		return ErrProviderTimeout
	case OutcomeMalformedResponse:
		return ErrMalformedResponse
	default:
		return ErrProviderUnavailable
	}
}

// StatusError classifies a non-2xx HTTP status from a provider.
func StatusError(provider string, code int) error {
	var kind error
	switch {
	case code == http.StatusTooManyRequests:
		kind = ErrRateLimited
	case code == http.StatusNotFound:
		kind = ErrSymbolUnresolved
	case code == http.StatusRequestTimeout, code == http.StatusGatewayTimeout:
		kind = ErrProviderTimeout
	default:
		kind = ErrProviderUnavailable
	}
	return fmt.Errorf("%s: http %d: %w", provider, code, kind)
}
