package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"ghstats/internal/modkit"
	"ghstats/internal/modkit/module"
	"ghstats/internal/platform/config"
	"ghstats/internal/platform/logger"
	"ghstats/internal/platform/store"

	collectordom "ghstats/internal/services/collector/domain"
	collectormod "ghstats/internal/services/collector/module"
	pubmod "ghstats/internal/services/publisher/module"
	stashmod "ghstats/internal/services/stash/module"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	root := config.New()
	gh := root.Prefix("GHSTATS_")

	l := logger.Get()

	// Flags
	var (
		fMode    = flag.String("mode", "summary", "stash mode: summary | load | wipe | runs")
		fOrg     = flag.String("org", "", "GitHub organization (or GHSTATS_ORG)")
		fRepo    = flag.String("repo", "", "repository to target (load: optional, wipe: required)")
		fDate    = flag.String("date", "", "restrict load to one calendar date YYYY-MM-DD")
		fConfirm = flag.Bool("confirm", false, "confirm the wipe; without it nothing is deleted")
	)
	flag.Parse()

	mustSetEnv("GHSTATS_ORG", *fOrg)

	if gh.MayString("ORG", "") == "" {
		l.Panic().Msg("ghstats-stash: must provide -org or GHSTATS_ORG")
	}

	// every mode reads the blobs; only load touches the warehouse
	st, err := store.Open(context.Background(), store.Config{
		AppName: "ghstats-stash",
		Blobs: store.BlobsConfig{
			Enabled:         true,
			Bucket:          gh.MayString("GCS_BUCKET", "github-stats-data"),
			CredentialsFile: gh.MayString("GCS_CREDENTIALS_FILE", ""),
			Endpoint:        gh.MayString("GCS_ENDPOINT", ""),
		},
		Warehouse: store.WarehouseConfig{
			Enabled:   *fMode == "load",
			Driver:    gh.MayEnum("WAREHOUSE_DRIVER", store.WarehouseBigQuery, store.WarehouseBigQuery, store.WarehousePostgres),
			ProjectID: gh.MayString("BQ_PROJECT", ""),
			Dataset:   gh.MayString("BQ_DATASET", "github_stats"),
			URL:       gh.MayString("WAREHOUSE_DBURL", ""),
			MaxConns:  int32(gh.MayInt("WAREHOUSE_MAX_CONNS", 4)),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	if err := st.Guard(context.Background()); err != nil {
		l.Panic().Err(err).Msg("storage backends not ready")
	}

	deps := modkit.Deps{
		Log:       *l,
		Cfg:       root,
		Blobs:     st.Blobs,
		Warehouse: st.Warehouse,
	}

	sm := stashmod.New(deps)
	module.Register(sm.Name(), sm.Ports())
	stasher := module.MustPortsOf[stashmod.Ports](sm).Stasher

	ctx := context.Background()

	switch *fMode {
	case "summary":
		sum, err := stasher.Summary(ctx)
		if err != nil {
			l.Fatal().Err(err).Msg("stash summary failed")
		}
		printJSON(l, sum)

	case "runs":
		cps, err := stasher.ListCheckpoints(ctx)
		if err != nil {
			l.Fatal().Err(err).Msg("stash checkpoint listing failed")
		}
		printJSON(l, cps)

	case "load":
		// republishing goes through the collector runner so load shares its
		// per kind publish behavior with live collection
		pm := pubmod.New(deps)
		module.Register(pm.Name(), pm.Ports())

		cm := collectormod.New(deps, modkit.WithPorts(collectordom.Ports{
			Stasher:   stasher,
			Publisher: module.MustPortsOf[pubmod.Ports](pm).Publisher,
		}))
		module.Register(cm.Name(), cm.Ports())

		counts, err := module.MustPortsOf[collectormod.Ports](cm).Runner.LoadFromStorage(ctx, *fRepo, *fDate)
		if err != nil {
			l.Fatal().Err(err).Msg("load from storage failed")
		}
		printJSON(l, counts)

	case "wipe":
		if *fRepo == "" {
			l.Panic().Msg("ghstats-stash wipe mode: -repo is required")
		}
		if !*fConfirm {
			l.Panic().Str("repo", *fRepo).Msg("ghstats-stash wipe mode: re-run with -confirm to delete staged objects")
		}
		n, err := stasher.Wipe(ctx, *fRepo)
		if err != nil {
			l.Fatal().Err(err).Msg("stash wipe failed")
		}
		l.Info().Str("repo", *fRepo).Int("deleted", n).Msg("stash wipe complete")

	default:
		l.Panic().Str("mode", *fMode).Msg("ghstats-stash unknown -mode (expected: summary | load | wipe | runs)")
	}
}

func printJSON(l *logger.Logger, v any) {
	enc, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		l.Fatal().Err(err).Msg("failed to encode report")
	}
	if _, err := os.Stdout.Write(enc); err != nil {
		l.Fatal().Err(err).Msg("failed to write report")
	}
	if _, err := os.Stdout.WriteString("\n"); err != nil {
		l.Fatal().Err(err).Msg("failed to write report")
	}
}
