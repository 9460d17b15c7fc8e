// Package module wires the trigger endpoints over the collector and stash ports
package module

import (
	"net/http"
	"time"

	"ghstats/internal/modkit"
	"ghstats/internal/modkit/httpkit"
	str "ghstats/internal/platform/strings"

	"ghstats/internal/services/trigger/domain"
	triggerhttp "ghstats/internal/services/trigger/http"
	"ghstats/internal/services/trigger/service"
)

// Ports defines the trigger module ports
type Ports struct {
	Trigger domain.TriggerPort
}

// Module implements the trigger module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	ports  Ports

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	startedAt time.Time
}

var _ modkit.Module = (*Module)(nil)

// New constructs the trigger module. The collector runner and the stasher
// arrive through WithPorts
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("trigger"),
		modkit.WithPrefix("/collect"),
	}, opts...)...)

	in, ok := b.Ports.(domain.Ports)
	if !ok {
		panic("trigger module: expected WithPorts(trigger/domain.Ports)")
	}
	if in.Runner == nil {
		panic("trigger module: Ports missing Runner")
	}
	if in.Stasher == nil {
		panic("trigger module: Ports missing Stasher")
	}

	cfg := FromConfig(deps.Cfg)
	svc := service.New(in.Runner, service.Config{
		Organization: cfg.Organization,
		CadenceHours: cfg.CadenceHours,
		OverlapHours: cfg.OverlapHours,
		LookbackDays: cfg.LookbackDays,
	})

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		ports:     Ports{Trigger: svc},
		subrouter: b.Subrouter,
		startedAt: time.Now(),
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		triggerhttp.Register(r, triggerhttp.Deps{
			ServiceName: "ghstats-trigger",
			StartedAt:   m.startedAt,
			Trigger:     svc,
			Stasher:     in.Stasher,
		})
		if external != nil {
			external(r)
		}
	}

	return m
}

// MountRoutes mounts the trigger routes under the module prefix
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "trigger") }

// Prefix returns the module mount prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
