// Package module provides the stash module implementation
package module

import (
	"ghstats/internal/modkit"
	phttp "ghstats/internal/platform/net/http"
	"ghstats/internal/services/stash/domain"
	"ghstats/internal/services/stash/service"
)

// Ports defines the stash module ports
type Ports struct {
	Stasher domain.StasherPort
}

// Module implements the stash module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

var _ modkit.Module = (*Module)(nil)

// New constructs the stash module over the blob store from deps.
// It does not mount any routes
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	svc := service.New(deps.Blobs, service.Config{
		Organization: opts.Organization,
		ChunkSize:    opts.ChunkSize,
	})

	m := &Module{deps: deps}
	m.ports = Ports{Stasher: svc}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "stash" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Prefix returns the module prefix (none)
func (m *Module) Prefix() string { return "" }

// MountRoutes is a no-op as stash has no routes
func (m *Module) MountRoutes(_ phttp.Router) {}
