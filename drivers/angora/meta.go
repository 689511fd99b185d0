package angora

import (
	"github.com/EisenVault/evdms/internal/conf"
	"github.com/EisenVault/evdms/internal/driver"
	"github.com/sirupsen/logrus"
)

var config = driver.Config{
	Name:        "angora",
	DisplayName: "Angora Document Store",
	DefaultRoot: "",
}

func init() {
	driver.RegisterDriver(config, New)
}

// New constructs the Angora provider. Configuration is validated by the
// factory before this runs.
func New(cfg conf.Api, log logrus.FieldLogger) (driver.DMSProvider, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Angora{t: newTransport(cfg, log), log: log}, nil
}
