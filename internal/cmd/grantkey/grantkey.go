// Package grantkey parses grant-key command flags and runs key generation or
// token minting.
package grantkey

import (
	"context"
	"flag"
	"io"
	"time"

	entrypoint "github.com/louisbranch/defilade/internal/platform/cmd"
	"github.com/louisbranch/defilade/internal/tools/grantkey"
)

// Config holds grant-key command configuration.
type Config struct {
	PrivateKey string `env:"DEFILADE_GRANT_PRIVATE_KEY"`
	Issuer     string `env:"DEFILADE_GRANT_ISSUER"   envDefault:"defilade"`
	Audience   string `env:"DEFILADE_GRANT_AUDIENCE" envDefault:"defilade-server"`
	SceneID    string
	TTL        time.Duration
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	cfg.TTL = time.Hour
	fs.StringVar(&cfg.SceneID, "sign", cfg.SceneID, "mint a grant token for this scene instead of generating a keypair")
	fs.StringVar(&cfg.Issuer, "issuer", cfg.Issuer, "grant issuer")
	fs.StringVar(&cfg.Audience, "audience", cfg.Audience, "grant audience")
	fs.DurationVar(&cfg.TTL, "ttl", cfg.TTL, "token lifetime")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the grant-key command. Without -sign it emits a fresh keypair;
// with -sign it mints a token for one scene.
func Run(_ context.Context, cfg Config, out io.Writer) error {
	if cfg.SceneID != "" {
		return grantkey.Sign(out, cfg.PrivateKey, cfg.Issuer, cfg.Audience, cfg.SceneID, cfg.TTL)
	}
	return grantkey.Run(out, nil)
}
