package module

import (
	"testing"

	kit "ghstats/internal/platform/testkit"
)

// StashPort mimics the interface shape service modules advertise in bundles
type StashPort interface {
	ChunkSize() int
}

type stashPortImpl struct{ n int }

func (s stashPortImpl) ChunkSize() int { return s.n }

func TestPortsOf(t *testing.T) {
	t.Parallel()

	// nil bundle resolves nothing
	if _, ok := PortsOf[StashPort](&stubModule{name: "empty"}); ok {
		t.Fatalf("nil Ports() should not resolve")
	}

	// the bundle value itself implements the port
	got, ok := PortsOf[StashPort](&stubModule{name: "direct", ports: stashPortImpl{n: 500}})
	if !ok || got.ChunkSize() != 500 {
		t.Fatalf("direct match failed: ok=%v", ok)
	}

	// exported struct fields are searched in order
	type bundle struct {
		Stasher StashPort
		Extra   int
	}
	got, ok = PortsOf[StashPort](&stubModule{name: "bundle", ports: bundle{Stasher: stashPortImpl{n: 250}, Extra: 1}})
	if !ok || got.ChunkSize() != 250 {
		t.Fatalf("bundle field match failed: ok=%v", ok)
	}

	// unexported fields stay invisible
	type hidden struct {
		stasher StashPort
		pad     int
	}
	if _, ok := PortsOf[StashPort](&stubModule{name: "hidden", ports: hidden{stasher: stashPortImpl{n: 1}, pad: 2}}); ok {
		t.Fatalf("unexported field should not resolve")
	}
}

func TestMustPortsOf(t *testing.T) {
	t.Parallel()

	// missing port panics with the module name in the message
	var msg string
	func() {
		defer func() {
			if r := recover(); r != nil {
				msg, _ = r.(string)
			}
		}()
		_ = MustPortsOf[StashPort](&stubModule{name: "collector"})
	}()
	if msg == "" {
		t.Fatalf("expected MustPortsOf to panic")
	}
	kit.MustContain(t, msg, "collector")
	kit.MustContain(t, msg, "requested port not found")

	// present port comes back without drama
	var got StashPort
	kit.MustNotPanic(t, func() {
		got = MustPortsOf[StashPort](&stubModule{name: "stash", ports: stashPortImpl{n: 99}})
	})
	if got.ChunkSize() != 99 {
		t.Fatalf("MustPortsOf value = %d, want 99", got.ChunkSize())
	}
}
