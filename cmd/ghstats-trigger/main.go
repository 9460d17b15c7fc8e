package main

import (
	"compress/flate"
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ghstats/internal/modkit"
	"ghstats/internal/modkit/httpkit"
	"ghstats/internal/modkit/module"
	"ghstats/internal/platform/config"
	"ghstats/internal/platform/logger"
	phttp "ghstats/internal/platform/net/http"
	"ghstats/internal/platform/net/middleware"
	"ghstats/internal/platform/store"

	collectordom "ghstats/internal/services/collector/domain"
	collectormod "ghstats/internal/services/collector/module"
	pubmod "ghstats/internal/services/publisher/module"
	stashmod "ghstats/internal/services/stash/module"
	triggerdom "ghstats/internal/services/trigger/domain"
	triggermod "ghstats/internal/services/trigger/module"
)

func main() {
	root := config.New()
	gh := root.Prefix("GHSTATS_")
	trCfg := root.Prefix("TRIGGER_")

	l := logger.Get()

	if gh.MayString("ORG", "") == "" {
		l.Panic().Msg("ghstats-trigger: GHSTATS_ORG is required")
	}

	st, err := store.Open(context.Background(), store.Config{
		AppName: "ghstats-trigger",
		Blobs: store.BlobsConfig{
			Enabled:         true,
			Bucket:          gh.MayString("GCS_BUCKET", "github-stats-data"),
			CredentialsFile: gh.MayString("GCS_CREDENTIALS_FILE", ""),
			Endpoint:        gh.MayString("GCS_ENDPOINT", ""),
		},
		Warehouse: store.WarehouseConfig{
			Enabled:   true,
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

	// surface bad credentials or unreachable backends before serving
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
	pm := pubmod.New(deps)

	cm := collectormod.New(deps, modkit.WithPorts(collectordom.Ports{
		Stasher:   module.MustPortsOf[stashmod.Ports](sm).Stasher,
		Publisher: module.MustPortsOf[pubmod.Ports](pm).Publisher,
	}))

	tm := triggermod.New(deps, modkit.WithPorts(triggerdom.Ports{
		Runner:  module.MustPortsOf[collectormod.Ports](cm).Runner,
		Stasher: module.MustPortsOf[stashmod.Ports](sm).Stasher,
	}))

	for _, m := range []module.Module{sm, pm, cm, tm} {
		module.Register(m.Name(), m.Ports())
	}

	// http server (reads TRIGGER_API_PORT)
	srv := phttp.NewServer(trCfg)

	// collection runs synchronously inside the request, so the scope timeout
	// must outlive a full run
	stack := []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.RequestScope,
		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: 30 * time.Second}),
		middleware.CORS(middleware.CORSOptions{}),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/health"),
		middleware.Timeout(trCfg.MayDuration("RUN_TIMEOUT", 15*time.Minute)),
	}

	phttp.MountProfiler(srv.Router(), "/debug", trCfg.MayBool("PROFILER", false))

	httpkit.MountAPIV1(srv.Router(), stack, func(api httpkit.Router) {
		tm.MountRoutes(api)
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
