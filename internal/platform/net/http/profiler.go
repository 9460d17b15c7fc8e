package http

import (
	stdhttp "net/http"

	mw "github.com/go-chi/chi/v5/middleware"
)

// MountProfiler exposes chi's pprof mux under prefix when the PROFILER flag
// is on. A disabled mount registers nothing at all
func MountProfiler(r Router, prefix string, enabled bool) {
	if !enabled {
		return
	}
	profiler := stdhttp.StripPrefix(prefix, mw.Profiler())
	serve := func(w stdhttp.ResponseWriter, req *stdhttp.Request) { profiler.ServeHTTP(w, req) }

	// the prefix itself plus everything under it
	r.Get(prefix, serve)
	r.Get(prefix+"/*", serve)
}
