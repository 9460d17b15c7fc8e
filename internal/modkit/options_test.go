package modkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	phttp "ghstats/internal/platform/net/http"
)

// the full option set a service module passes through New
func TestOptionsComposeIntoBuildCfg(t *testing.T) {
	t.Parallel()

	type triggerPorts struct {
		Runner string
	}

	subCalled := false
	regCalled := false

	var c buildCfg
	for _, opt := range []Option{
		WithName("trigger"),
		WithPrefix("/api/v1"),
		WithMiddlewares(func(next http.Handler) http.Handler { return next }),
		WithPorts(triggerPorts{Runner: "collector"}),
		WithSubrouter(func(r phttp.Router) phttp.Router { subCalled = true; return r }),
		WithRegister(func(phttp.Router) { regCalled = true }),
	} {
		opt(&c)
	}

	if c.name != "trigger" || c.prefix != "/api/v1" {
		t.Fatalf("cfg name/prefix = %q/%q", c.name, c.prefix)
	}
	if len(c.mw) != 1 {
		t.Fatalf("expected one middleware, got %d", len(c.mw))
	}
	p, ok := c.ports.(triggerPorts)
	if !ok || p.Runner != "collector" {
		t.Fatalf("ports did not keep the concrete type: %#v", c.ports)
	}
	if c.subrouter == nil || c.register == nil {
		t.Fatalf("subrouter/register not set")
	}
	if got := c.subrouter(nil); got != nil || !subCalled {
		t.Fatalf("subrouter factory should run and return its input")
	}
	c.register(nil)
	if !regCalled {
		t.Fatalf("register hook should run")
	}
}

func TestWithMiddlewares_AppendsInMountOrder(t *testing.T) {
	t.Parallel()

	var order []string
	tag := func(s string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, s)
				next.ServeHTTP(w, r)
			})
		}
	}

	var c buildCfg
	WithMiddlewares(tag("request-id"), tag("access-log"))(&c)
	WithMiddlewares(tag("timeout"))(&c)

	if len(c.mw) != 3 {
		t.Fatalf("expected 3 middlewares, got %d", len(c.mw))
	}

	// wrap innermost-last so the first option runs first, the way Build mounts them
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	for i := len(c.mw) - 1; i >= 0; i-- {
		h = c.mw[i](h)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/runs", nil))

	if rr.Code != http.StatusNoContent {
		t.Fatalf("inner handler not reached, code=%d", rr.Code)
	}
	want := []string{"request-id", "access-log", "timeout"}
	if len(order) != len(want) {
		t.Fatalf("middleware call count = %d, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("middleware order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestWithPorts_ReplacesOnSecondApply(t *testing.T) {
	t.Parallel()

	var c buildCfg
	WithPorts(map[string]int{"chunks": 3})(&c)
	WithPorts("final")(&c)

	s, ok := c.ports.(string)
	if !ok || s != "final" {
		t.Fatalf("last WithPorts should win, got %#v", c.ports)
	}
}
