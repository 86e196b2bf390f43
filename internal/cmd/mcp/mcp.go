// Package mcp parses MCP command flags and launches the stdio server.
package mcp

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/louisbranch/defilade/internal/cover"
	mcpserver "github.com/louisbranch/defilade/internal/mcp"
	entrypoint "github.com/louisbranch/defilade/internal/platform/cmd"
	"github.com/louisbranch/defilade/internal/storage/sqlite"
)

// Config holds MCP command configuration.
type Config struct {
	DBPath       string `env:"DEFILADE_DB_PATH"       envDefault:"defilade.db"`
	Mode         string `env:"DEFILADE_MODE"          envDefault:"size_differential"`
	AllowGreater bool   `env:"DEFILADE_ALLOW_GREATER"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the SQLite database")
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "default evaluation mode")
	fs.BoolVar(&cfg.AllowGreater, "allow-greater", cfg.AllowGreater, "allow greater cover from full wall occlusion")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP stdio server and blocks until the context ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		engine := cover.DefaultConfig()
		if cfg.Mode != "" {
			mode, ok := cover.ParseMode(cfg.Mode)
			if !ok {
				return fmt.Errorf("unknown evaluation mode %q", cfg.Mode)
			}
			engine.Mode = mode
		}
		engine.Walls.AllowGreater = cfg.AllowGreater

		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open scene store: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("mcp: close store: %v", err)
			}
		}()

		srv := mcpserver.New(mcpserver.Deps{
			Scenes:      store,
			Evaluations: store,
			Engine:      engine,
		})
		return srv.Serve(ctx)
	})
}
