package modkit

import (
	"testing"

	"ghstats/internal/platform/config"
	"ghstats/internal/platform/logger"
)

// mains hand every module one Deps value; stores stay nil when a binary
// runs without staging or publishing, and modules nil-check them
func TestDepsCarriesSharedWiring(t *testing.T) {
	t.Parallel()

	var zero Deps
	if zero.Blobs != nil || zero.Warehouse != nil {
		t.Fatalf("zero Deps should have nil stores")
	}

	d := Deps{
		Log: *logger.Get(),
		Cfg: config.New().Prefix("GHSTATS_"),
	}
	if d.Blobs != nil || d.Warehouse != nil {
		t.Fatalf("stores should stay nil until a binary opens them")
	}
}
