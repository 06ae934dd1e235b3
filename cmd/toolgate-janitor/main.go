package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"toolgate/internal/modkit"
	"toolgate/internal/modkit/module"
	"toolgate/internal/platform/config"
	"toolgate/internal/platform/logger"
	"toolgate/internal/platform/store"

	janitormod "toolgate/internal/services/janitor/module"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")

	l := logger.Get()

	st, err := store.Open(context.Background(), store.Config{
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 2)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
		CH: store.CHConfig{
			Enabled:    chCfg.MayBool("ENABLED", true),
			URL:        chCfg.MayString("DBURL", ""),
			ClientName: "toolgate",
			ClientTag:  "janitor",
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

	var (
		fRetention = flag.Int("retention_days", 7, "unconverted ledger retention window in days")
		fInterval  = flag.Duration("interval", 0, "pause between idle sweeps (0 = env/default)")
		fOnce      = flag.Bool("once", false, "process the backlog once and exit")
	)
	flag.Parse()

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		CH:  st.CH,
		Log: *l,
	}

	// Export as env so the module can also read via FromConfig.
	mustSetEnv("CORE_JANITOR_RETENTION_DAYS", fmt.Sprintf("%d", *fRetention))
	if *fInterval > 0 {
		mustSetEnv("CORE_JANITOR_INTERVAL", fInterval.String())
	}

	mod := janitormod.New(deps)
	module.Register(mod.Name(), mod.Ports())

	ports := module.MustPortsOf[janitormod.Ports](mod)

	if *fOnce {
		for {
			res, ok, err := ports.Runner.RunOnce(context.Background())
			if err != nil {
				l.Fatal().Err(err).Msg("janitor run failed")
			}
			if !ok {
				return
			}
			l.Info().Str("day", res.Day).Int64("deleted", res.Deleted).Msg("janitor day processed")
		}
	}

	if err := ports.Runner.Run(context.Background()); err != nil {
		l.Fatal().Err(err).Msg("janitor stopped")
	}
}
