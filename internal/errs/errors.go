// Package errs defines the error taxonomy of the provider layer. Services
// wrap these sentinels with operation context via pkg/errors so callers can
// branch on kind with errors.Is while the full cause chain stays readable.
package errs

import (
	"context"
	"net/url"

	"github.com/pkg/errors"
)

var (
	Authentication = errors.New("authentication failed")
	Network        = errors.New("network error")
	Timeout        = errors.New("request timed out")
	ResponseFormat = errors.New("unexpected response format")
	Mapping        = errors.New("cannot map backend entry")
	Validation     = errors.New("invalid configuration")
	NotFound       = errors.New("object not found")
	NotSupported   = errors.New("operation not supported by this backend")
)

// IsAuthentication reports whether err is credential/token related.
func IsAuthentication(err error) bool { return errors.Is(err, Authentication) }

// IsTimeout reports whether err comes from an elapsed request deadline.
func IsTimeout(err error) bool { return errors.Is(err, Timeout) }

// IsValidation reports whether err is a configuration/input problem.
func IsValidation(err error) bool { return errors.Is(err, Validation) }

// FromTransport translates a raw client-side transport failure into the
// taxonomy: deadline expiry becomes Timeout, everything else Network.
func FromTransport(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(Timeout, err.Error())
	}
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return errors.Wrap(Timeout, err.Error())
	}
	return errors.Wrap(Network, err.Error())
}
