// Package main provides a one-shot utility for scene grant key handling.
//
// Without arguments it emits a fresh Ed25519 keypair; with -sign it mints a
// grant token for one scene.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/louisbranch/defilade/internal/platform/config"

	grantkeycmd "github.com/louisbranch/defilade/internal/cmd/grantkey"
)

func main() {
	cfg, err := grantkeycmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	if err := grantkeycmd.Run(context.Background(), cfg, os.Stdout); err != nil {
		config.Exitf("Error: %v", err)
	}
}
