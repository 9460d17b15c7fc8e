package http_test

import (
	"context"
	"testing"
	"time"

	"ghstats/internal/platform/config"
	phttp "ghstats/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

func TestNewServerAppliesMuxOptions(t *testing.T) {
	var hooked *chi.Mux
	srv := phttp.NewServer(config.New(), func(m *chi.Mux) { hooked = m })

	if hooked == nil {
		t.Fatal("expected the option to receive the mux")
	}
	if srv.Router().Mux() != hooked {
		t.Fatal("option saw a different mux than the server routes on")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	t.Setenv("API_PORT", "127.0.0.1:0")
	srv := phttp.NewServer(config.New())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	// let the listener come up before canceling
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run after cancel: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after context cancel")
	}
}

func TestRunReturnsNilAfterShutdown(t *testing.T) {
	t.Setenv("API_PORT", "127.0.0.1:0")
	srv := phttp.NewServer(config.New())

	done := make(chan error, 1)
	go func() { done <- srv.Run(context.Background()) }()

	time.Sleep(50 * time.Millisecond)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run after shutdown: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Shutdown")
	}
}

func TestRunSurfacesListenError(t *testing.T) {
	t.Setenv("API_PORT", "127.0.0.1:notaport")
	srv := phttp.NewServer(config.New())

	if err := srv.Run(context.Background()); err == nil {
		t.Fatal("expected a listen error for a malformed port")
	}
}
