// Package modkit provides module wiring and core deps
package modkit

import (
	"ghstats/internal/platform/config"
	"ghstats/internal/platform/logger"
	"ghstats/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf

	// Blobs is the object storage seam, nil when staging is disabled
	Blobs store.Blobs

	// Warehouse is the analytical warehouse seam, nil when publishing is disabled
	Warehouse store.Warehouse
}
