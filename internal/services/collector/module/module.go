// Package module implements the collector module
package module

import (
	"ghstats/internal/adapters/github"
	"ghstats/internal/modkit"
	phttp "ghstats/internal/platform/net/http"
	"ghstats/internal/services/collector/domain"
	"ghstats/internal/services/collector/service"
)

// Ports exposed by the collector module
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

var _ modkit.Module = (*Module)(nil)

// New constructs the collector module. Stash and publisher ports come in
// through WithPorts since the collector builds on both
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("collector"),
	}, opts...)...)

	ports, ok := b.Ports.(domain.Ports)
	if !ok {
		panic("collector module: expected WithPorts(collector/domain.Ports)")
	}
	if ports.Publisher == nil {
		panic("collector module: Ports missing Publisher")
	}

	cfg := FromConfig(deps.Cfg)

	gh := github.NewClient(github.Options{
		TokensCSV:       cfg.Tokens,
		RequestsPerHour: cfg.RequestsPerHour,
	})
	fetcher := service.NewFetcher(gh, cfg.Organization, cfg.Workers)

	var backend domain.StagingBackend
	if cfg.Persist {
		if ports.Stasher == nil {
			panic("collector module: staged persistence enabled but Ports missing Stasher")
		}
		backend = service.NewObjectStoreBackedPublish(ports.Stasher, ports.Publisher, cfg.Organization)
	} else {
		backend = service.NewDirectPublish(ports.Publisher, cfg.Organization)
	}

	svc := service.New(fetcher, backend, ports.Stasher, ports.Publisher)

	m := &Module{deps: deps}
	m.ports = Ports{Runner: svc}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "collector" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Prefix returns the module prefix (none)
func (m *Module) Prefix() string { return "" }

// MountRoutes is a no-op, collection runs through the CLI and trigger
// service
func (m *Module) MountRoutes(_ phttp.Router) {}
