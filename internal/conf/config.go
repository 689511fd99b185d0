// Package conf holds the connection configuration a caller supplies when
// constructing a provider. Validation happens at construction time, not on
// the first network call.
package conf

import (
	"net/url"
	"time"

	"github.com/EisenVault/evdms/internal/errs"
	"github.com/caarlos0/env/v9"
	"github.com/pkg/errors"
)

// DefaultTimeout applies when the caller leaves Timeout unset.
const DefaultTimeout = 30 * time.Second

// Api is the connection configuration for one backend.
type Api struct {
	BaseURL string `env:"EVDMS_BASE_URL"`
	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration     `env:"EVDMS_TIMEOUT" envDefault:"30s"`
	Headers map[string]string `env:"EVDMS_HEADERS"`
}

// Validate fails fast on configuration that could never reach a backend.
func (a Api) Validate() error {
	if a.BaseURL == "" {
		return errors.Wrap(errs.Validation, "base URL is required")
	}
	u, err := url.Parse(a.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.Wrapf(errs.Validation, "base URL %q is not a valid absolute URL", a.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Wrapf(errs.Validation, "base URL %q must use http or https", a.BaseURL)
	}
	if a.Timeout < 0 {
		return errors.Wrapf(errs.Validation, "timeout %s must not be negative", a.Timeout)
	}
	return nil
}

// EffectiveTimeout resolves the zero value to DefaultTimeout.
func (a Api) EffectiveTimeout() time.Duration {
	if a.Timeout <= 0 {
		return DefaultTimeout
	}
	return a.Timeout
}

// FromEnv loads configuration from EVDMS_* environment variables.
func FromEnv() (Api, error) {
	var a Api
	if err := env.Parse(&a); err != nil {
		return Api{}, errors.Wrap(errs.Validation, err.Error())
	}
	return a, nil
}
