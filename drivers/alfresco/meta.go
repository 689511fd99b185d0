package alfresco

import (
	"github.com/EisenVault/evdms/internal/conf"
	"github.com/EisenVault/evdms/internal/driver"
	"github.com/sirupsen/logrus"
)

var config = driver.Config{
	Name:        "alfresco",
	DisplayName: "Alfresco Content Repository",
	DefaultRoot: "-root-",
}

func init() {
	driver.RegisterDriver(config, New)
}

// New constructs the classic-repository provider. Configuration is validated
// by the factory before this runs.
func New(cfg conf.Api, log logrus.FieldLogger) (driver.DMSProvider, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Alfresco{
		t:       newTransport(cfg, log),
		log:     log,
		docLibs: map[string]string{},
	}, nil
}
