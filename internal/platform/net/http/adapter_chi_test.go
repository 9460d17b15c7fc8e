package http

import (
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func serveChi(r Router, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	r.Mux().ServeHTTP(rr, req)
	return rr
}

// Mirrors the shape cmd/ghstats-trigger mounts: root middleware ahead of
// every route, a bare health endpoint, the versioned API subtree, and a
// debug group whose middleware must not leak outward.
func TestAdaptChi_TriggerSurfaceShape(t *testing.T) {
	t.Parallel()

	r := AdaptChi(chi.NewRouter())

	r.Use(func(next stdhttp.Handler) stdhttp.Handler {
		return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
			w.Header().Set("X-Stamp", "root")
			next.ServeHTTP(w, req)
		})
	})

	r.Get("/health", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte("."))
	})

	r.Route("/api", func(api Router) {
		if api.Mux() == nil {
			t.Fatalf("route Mux() returned nil")
		}
		api.Route("/v1", func(v1 Router) {
			v1.Use(func(next stdhttp.Handler) stdhttp.Handler {
				return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
					w.Header().Set("X-API", "v1")
					next.ServeHTTP(w, req)
				})
			})
			v1.Post("/trigger", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
				w.WriteHeader(201)
			})
			v1.Get("/runs", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
				w.WriteHeader(200)
				_, _ = w.Write([]byte("runs"))
			})
		})
	})

	r.Group(func(dbg Router) {
		if dbg.Mux() == nil {
			t.Fatalf("group Mux() returned nil")
		}
		dbg.Use(func(next stdhttp.Handler) stdhttp.Handler {
			return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
				w.Header().Set("X-Debug", "1")
				next.ServeHTTP(w, req)
			})
		})
		dbg.Get("/debug/vars", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
			w.WriteHeader(200)
		})
	})

	// health: root middleware applies, scoped middleware does not
	rr := serveChi(r, stdhttp.MethodGet, "/health")
	if rr.Code != 200 || rr.Body.String() != "." {
		t.Fatalf("GET /health => code=%d body=%q", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Stamp") != "root" {
		t.Fatalf("root middleware missing on /health")
	}
	if rr.Header().Get("X-API") != "" || rr.Header().Get("X-Debug") != "" {
		t.Fatalf("scoped middleware leaked to /health")
	}

	// versioned route: both root and version middleware apply
	rr = serveChi(r, stdhttp.MethodPost, "/api/v1/trigger")
	if rr.Code != 201 {
		t.Fatalf("POST /api/v1/trigger => %d", rr.Code)
	}
	if rr.Header().Get("X-Stamp") != "root" || rr.Header().Get("X-API") != "v1" {
		t.Fatalf("middleware layering wrong on /api/v1/trigger: stamp=%q api=%q",
			rr.Header().Get("X-Stamp"), rr.Header().Get("X-API"))
	}
	rr = serveChi(r, stdhttp.MethodGet, "/api/v1/runs")
	if rr.Code != 200 || rr.Body.String() != "runs" {
		t.Fatalf("GET /api/v1/runs => code=%d body=%q", rr.Code, rr.Body.String())
	}

	// debug group: its middleware applies alongside the root's
	rr = serveChi(r, stdhttp.MethodGet, "/debug/vars")
	if rr.Code != 200 || rr.Header().Get("X-Debug") != "1" || rr.Header().Get("X-Stamp") != "root" {
		t.Fatalf("GET /debug/vars => code=%d debug=%q stamp=%q",
			rr.Code, rr.Header().Get("X-Debug"), rr.Header().Get("X-Stamp"))
	}
}

func TestAdaptChi_VerbCoverageAndNesting(t *testing.T) {
	t.Parallel()

	r := AdaptChi(chi.NewRouter())

	// root-level verbs
	r.Post("/trigger", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) { w.WriteHeader(202) })
	r.Put("/window", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) { w.WriteHeader(200) })
	r.Patch("/cadence", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) { w.WriteHeader(200) })
	r.Delete("/checkpoint", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) { w.WriteHeader(204) })
	r.Head("/health", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
		w.Header().Set("X-Alive", "1")
	})
	r.Options("/trigger", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) { w.WriteHeader(204) })
	r.Handle("/metrics", stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte("metrics"))
	}))

	// subrouter verbs plus nested Group and Route
	r.Route("/runs", func(runs Router) {
		runs.Post("/start", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) { w.WriteHeader(201) })
		runs.Put("/{id}/window", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) { w.WriteHeader(200) })
		runs.Patch("/{id}/note", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) { w.WriteHeader(200) })
		runs.Delete("/{id}", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) { w.WriteHeader(204) })
		runs.Head("/{id}/status", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
			w.Header().Set("X-Run-Status", "complete")
		})
		runs.Options("/start", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) { w.WriteHeader(204) })
		runs.Handle("/export", stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
			w.WriteHeader(200)
			_, _ = w.Write([]byte("export"))
		}))

		runs.Group(func(g Router) {
			g.Get("/{id}/chunks", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
				w.WriteHeader(200)
				_, _ = w.Write([]byte("chunks"))
			})
		})
		runs.Route("/archive", func(ar Router) {
			ar.Get("/latest", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
				w.WriteHeader(200)
				_, _ = w.Write([]byte("latest"))
			})
		})
	})

	checks := []struct {
		method string
		path   string
		code   int
		body   string
	}{
		{stdhttp.MethodPost, "/trigger", 202, ""},
		{stdhttp.MethodPut, "/window", 200, ""},
		{stdhttp.MethodPatch, "/cadence", 200, ""},
		{stdhttp.MethodDelete, "/checkpoint", 204, ""},
		{stdhttp.MethodOptions, "/trigger", 204, ""},
		{stdhttp.MethodGet, "/metrics", 200, "metrics"},
		{stdhttp.MethodPost, "/runs/start", 201, ""},
		{stdhttp.MethodPut, "/runs/r1/window", 200, ""},
		{stdhttp.MethodPatch, "/runs/r1/note", 200, ""},
		{stdhttp.MethodDelete, "/runs/r1", 204, ""},
		{stdhttp.MethodOptions, "/runs/start", 204, ""},
		{stdhttp.MethodGet, "/runs/export", 200, "export"},
		{stdhttp.MethodGet, "/runs/r1/chunks", 200, "chunks"},
		{stdhttp.MethodGet, "/runs/archive/latest", 200, "latest"},
	}
	for _, c := range checks {
		rr := serveChi(r, c.method, c.path)
		if rr.Code != c.code {
			t.Fatalf("%s %s => code=%d, want %d", c.method, c.path, rr.Code, c.code)
		}
		if c.body != "" && rr.Body.String() != c.body {
			t.Fatalf("%s %s => body=%q, want %q", c.method, c.path, rr.Body.String(), c.body)
		}
	}

	// HEAD handlers set headers and write no body
	rr := serveChi(r, stdhttp.MethodHead, "/health")
	if rr.Code != 200 || rr.Body.Len() != 0 || rr.Header().Get("X-Alive") != "1" {
		t.Fatalf("HEAD /health => code=%d len=%d X-Alive=%q", rr.Code, rr.Body.Len(), rr.Header().Get("X-Alive"))
	}
	rr = serveChi(r, stdhttp.MethodHead, "/runs/r1/status")
	if rr.Code != 200 || rr.Body.Len() != 0 || rr.Header().Get("X-Run-Status") != "complete" {
		t.Fatalf("HEAD /runs/r1/status => code=%d len=%d status=%q",
			rr.Code, rr.Body.Len(), rr.Header().Get("X-Run-Status"))
	}
}
