// @title         Toolgate API
// @version       1.0
// @description   Anonymous visitor limits, conversion attribution, and tool analytics

package main

import (
	"context"

	"toolgate/internal/modkit/module"
	"toolgate/internal/platform/config"
	"toolgate/internal/platform/logger"
	phttp "toolgate/internal/platform/net/http"
	"toolgate/internal/platform/store"

	"toolgate/internal/services/api"
	statsqmod "toolgate/internal/services/statsq/module"
)

func main() {
	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	pgCfg := root.Prefix("SERVICE_PGSQL_")      // pgCfg lives under SERVICE_PGSQL_*
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_") // chCfg lives under SERVICE_CLICKHOUSE_*
	// bring up logging early
	l := logger.Get()

	// open the platform store (postgres + CH adapter)
	st, err := store.Open(
		context.Background(),
		store.Config{
			PG: store.PGConfig{
				Enabled:     true,
				URL:         pgCfg.MustString("DBURL"),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", true),
			},
			CH: store.CHConfig{
				Enabled:    chCfg.MayBool("ENABLED", true),
				URL:        chCfg.MayString("DBURL", ""),
				ClientName: "toolgate",
				ClientTag:  "api",
			},
		},
		store.WithLogger(*logger.Get()),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// http server (reads CORE_API_PORT / CORE_API_ADDR)
	srv := phttp.NewServer(apiCfg)

	// mount our API
	api.Mount(
		srv.Router(),
		api.Options{
			Config:         apiCfg,
			Store:          st,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", true),
		},
	)

	// the stats queue drains in-process; retention runs in toolgate-janitor
	if ports, ok := module.PortsAs[statsqmod.Ports]("statsq"); ok {
		go func() {
			if err := ports.Worker.Run(context.Background()); err != nil && err != context.Canceled {
				l.Error().Err(err).Msg("statsq worker stopped")
			}
		}()
	}

	// run
	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
