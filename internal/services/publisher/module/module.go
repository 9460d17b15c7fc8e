// Package module provides the publisher module implementation
package module

import (
	"ghstats/internal/modkit"
	phttp "ghstats/internal/platform/net/http"
	"ghstats/internal/services/publisher/domain"
	"ghstats/internal/services/publisher/service"
)

// Ports defines the publisher module ports
type Ports struct {
	Publisher domain.PublisherPort
}

// Module implements the publisher module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

var _ modkit.Module = (*Module)(nil)

// New constructs the publisher module over the warehouse from deps.
// It does not mount any routes
func New(deps modkit.Deps) *Module {
	svc := service.New(deps.Warehouse)

	m := &Module{deps: deps}
	m.ports = Ports{Publisher: svc}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "publisher" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Prefix returns the module prefix (none)
func (m *Module) Prefix() string { return "" }

// MountRoutes is a no-op as publisher has no routes
func (m *Module) MountRoutes(_ phttp.Router) {}
