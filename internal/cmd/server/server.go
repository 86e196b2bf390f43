// Package server parses HTTP server flags and launches the service.
package server

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/louisbranch/defilade/internal/cover"
	entrypoint "github.com/louisbranch/defilade/internal/platform/cmd"
	platformgrpc "github.com/louisbranch/defilade/internal/platform/grpc"
	"github.com/louisbranch/defilade/internal/platform/timeouts"
	"github.com/louisbranch/defilade/internal/scene/grant"
	httpserver "github.com/louisbranch/defilade/internal/server"
	"github.com/louisbranch/defilade/internal/storage/sqlite"
)

// Config holds server command configuration.
type Config struct {
	Addr         string `env:"DEFILADE_HTTP_ADDR"     envDefault:":8080"`
	HealthAddr   string `env:"DEFILADE_HEALTH_ADDR"`
	DBPath       string `env:"DEFILADE_DB_PATH"       envDefault:"defilade.db"`
	Mode         string `env:"DEFILADE_MODE"          envDefault:"size_differential"`
	AllowGreater bool   `env:"DEFILADE_ALLOW_GREATER"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.HealthAddr, "health-addr", cfg.HealthAddr, "gRPC health listen address (empty to disable)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the SQLite database")
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "default evaluation mode")
	fs.BoolVar(&cfg.AllowGreater, "allow-greater", cfg.AllowGreater, "allow greater cover from full wall occlusion")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the cover evaluation HTTP service and blocks until the context
// ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceServer, func(ctx context.Context) error {
		engine, err := engineConfig(cfg)
		if err != nil {
			return err
		}
		grants, err := grant.LoadConfigFromEnv(nil)
		if err != nil {
			return fmt.Errorf("load grant config: %w", err)
		}

		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open scene store: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("server: close store: %v", err)
			}
		}()

		srv := httpserver.New(httpserver.Config{
			Scenes:      store,
			Evaluations: store,
			Grants:      grants,
			Engine:      engine,
		})
		httpServer := &http.Server{
			Addr:              cfg.Addr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: timeouts.ReadHeader,
		}

		if cfg.HealthAddr != "" {
			healthSrv, err := platformgrpc.NewServer(cfg.HealthAddr)
			if err != nil {
				return fmt.Errorf("start health listener: %w", err)
			}
			log.Printf("health listening on %s", healthSrv.Addr())
			go func() {
				if err := healthSrv.Serve(ctx); err != nil {
					log.Printf("server: health listener: %v", err)
				}
			}()
		}

		serveErr := make(chan error, 1)
		log.Printf("server listening on %s (db %s, grants %v)", cfg.Addr, cfg.DBPath, grants.Enabled())
		go func() {
			serveErr <- httpServer.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
			err := httpServer.Shutdown(shutdownCtx)
			cancel()
			if err != nil {
				return fmt.Errorf("shutdown http server: %w", err)
			}
			return nil
		case err := <-serveErr:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("serve http: %w", err)
		}
	})
}

// engineConfig resolves the engine defaults from command configuration.
func engineConfig(cfg Config) (cover.Config, error) {
	engine := cover.DefaultConfig()
	if cfg.Mode != "" {
		mode, ok := cover.ParseMode(cfg.Mode)
		if !ok {
			return cover.Config{}, fmt.Errorf("unknown evaluation mode %q", cfg.Mode)
		}
		engine.Mode = mode
	}
	engine.Walls.AllowGreater = cfg.AllowGreater
	return engine, nil
}
