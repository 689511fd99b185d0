package driver

import (
	"sort"
	"sync"

	"github.com/EisenVault/evdms/internal/conf"
	"github.com/EisenVault/evdms/internal/errs"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// New constructs a provider from validated configuration. The logger may be
// nil; drivers fall back to the standard logger.
type New func(cfg conf.Api, log logrus.FieldLogger) (DMSProvider, error)

type registration struct {
	config  Config
	factory New
}

var (
	regMu    sync.RWMutex
	registry = map[string]registration{}
)

// RegisterDriver makes a backend constructible through NewProvider. Drivers
// call this from init.
func RegisterDriver(config Config, factory New) {
	regMu.Lock()
	defer regMu.Unlock()
	registry[config.Name] = registration{config: config, factory: factory}
}

// DriverNames lists the registered backend identifiers, sorted.
func DriverNames() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetConfig returns the registered metadata for a backend id.
func GetConfig(name string) (Config, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	reg, ok := registry[name]
	return reg.config, ok
}

// NewProvider validates cfg and constructs the named backend. Unknown names
// and bad configuration fail here, before any network call.
func NewProvider(name string, cfg conf.Api, log logrus.FieldLogger) (DMSProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	regMu.RLock()
	reg, ok := registry[name]
	regMu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(errs.Validation, "unsupported provider type %q", name)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return reg.factory(cfg, log.WithField("provider", name))
}
