// Package drivers registers every backend with the driver registry. Import
// it for side effects to make all backends constructible by name.
package drivers

import (
	_ "github.com/EisenVault/evdms/drivers/alfresco"
	_ "github.com/EisenVault/evdms/drivers/angora"
)
