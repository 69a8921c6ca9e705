package binance

import (
	"errors"
	"fmt"
)

var (
	ErrExchangeUnavailable = errors.New("binance exchange unavailable")
	ErrMetadataMalformed   = errors.New("binance exchange metadata malformed")
	ErrFilterNotFound      = errors.New("binance symbol filter not found")
	ErrMissingCredentials  = errors.New("binance api key and secret are required")
)

// UnavailableError reports a transport failure or a non-200 response from an
// unsigned metadata call. StatusCode is 0 for transport failures.
//
// Submitted is set when a signed request failed in transport after it was
// sent. The exchange may have acted on it, so it must not be resent.
type UnavailableError struct {
	StatusCode int
	Cause      error
	Submitted  bool
}

// MaybeSubmitted reports whether err is a signed request whose outcome on the
// exchange is unknown.
func MaybeSubmitted(err error) bool {
	var unavailable *UnavailableError
	return errors.As(err, &unavailable) && unavailable.Submitted
}

func (e *UnavailableError) Error() string {
	if e.Cause != nil {
		if e.Submitted {
			return fmt.Sprintf("%s: signed request outcome unknown: %v", ErrExchangeUnavailable, e.Cause)
		}
		return fmt.Sprintf("%s: status=%d: %v", ErrExchangeUnavailable, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("%s: status=%d", ErrExchangeUnavailable, e.StatusCode)
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrExchangeUnavailable
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}
