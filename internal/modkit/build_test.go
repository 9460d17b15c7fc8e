package modkit

import (
	"net/http"
	"reflect"
	"testing"

	"ghstats/internal/modkit/httpkit"
	kit "ghstats/internal/platform/testkit"
)

func TestBuildDefaults(t *testing.T) {
	t.Parallel()

	b := Build()
	if b.Name != "" || b.Prefix != "" || b.Ports != nil || len(b.Mw) != 0 {
		t.Fatalf("zero-option Build not empty: %+v", b)
	}

	// identity subrouter and no-op register stand in when a module sets none
	var r httpkit.Router
	if out := b.Subrouter(r); out != r {
		t.Fatalf("default Subrouter should hand back its input")
	}
	kit.MustNotPanic(t, func() { b.Register(r) })
}

func TestBuildCopiesAndPlumbs(t *testing.T) {
	t.Parallel()

	fnPtr := func(f func(http.Handler) http.Handler) uintptr {
		return reflect.ValueOf(f).Pointer()
	}

	mwReqID := func(next http.Handler) http.Handler { return next }
	mwLog := func(next http.Handler) http.Handler { return next }
	stack := []func(http.Handler) http.Handler{mwReqID, mwLog}

	type triggerPorts struct {
		Runner string
	}

	subCalled := 0
	regCalled := 0

	b := Build(
		WithName("trigger"),
		WithPrefix("/api/v1"),
		WithMiddlewares(stack...),
		WithPorts(triggerPorts{Runner: "collector"}),
		WithSubrouter(func(in httpkit.Router) httpkit.Router { subCalled++; return in }),
		WithRegister(func(httpkit.Router) { regCalled++ }),
	)

	if b.Name != "trigger" || b.Prefix != "/api/v1" {
		t.Fatalf("Built name/prefix = %q/%q", b.Name, b.Prefix)
	}
	if got, ok := b.Ports.(triggerPorts); !ok || got.Runner != "collector" {
		t.Fatalf("Ports mismatch: %#v", b.Ports)
	}

	// the middleware stack is copied in order; later mutation of the
	// caller's slice must not reach Built
	if len(b.Mw) != 2 || fnPtr(b.Mw[0]) != fnPtr(mwReqID) || fnPtr(b.Mw[1]) != fnPtr(mwLog) {
		t.Fatalf("middleware stack not preserved")
	}
	stack[0] = func(next http.Handler) http.Handler { return next }
	if fnPtr(b.Mw[0]) != fnPtr(mwReqID) {
		t.Fatalf("Built.Mw aliased the caller's slice")
	}

	var r httpkit.Router
	if out := b.Subrouter(r); out != r || subCalled != 1 {
		t.Fatalf("Subrouter hook not plumbed (called=%d)", subCalled)
	}
	b.Register(r)
	if regCalled != 1 {
		t.Fatalf("Register hook not plumbed (called=%d)", regCalled)
	}
}
