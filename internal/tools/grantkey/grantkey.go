// Package grantkey generates scene grant keypairs and mints grant tokens.
package grantkey

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/louisbranch/defilade/internal/scene/grant"
)

// Run generates a scene grant key pair and writes exports.
func Run(out io.Writer, reader io.Reader) error {
	if out == nil {
		return errors.New("output is required")
	}
	if reader == nil {
		reader = rand.Reader
	}
	publicKey, privateKey, err := ed25519.GenerateKey(reader)
	if err != nil {
		return fmt.Errorf("generate scene grant key: %w", err)
	}
	if _, err := fmt.Fprintf(out, "export DEFILADE_GRANT_PRIVATE_KEY=%s\n", base64.RawStdEncoding.EncodeToString(privateKey)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "export DEFILADE_GRANT_PUBLIC_KEY=%s\n", base64.RawStdEncoding.EncodeToString(publicKey)); err != nil {
		return err
	}
	return nil
}

// Sign mints a grant token for one scene using a base64-encoded private key.
func Sign(out io.Writer, privateKeyB64, issuer, audience, sceneID string, ttl time.Duration) error {
	if out == nil {
		return errors.New("output is required")
	}
	if privateKeyB64 == "" {
		return errors.New("private key is required")
	}
	raw, err := decodeBase64(privateKeyB64)
	if err != nil {
		return fmt.Errorf("decode private key: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return fmt.Errorf("private key must be %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}

	token, err := grant.Sign(ed25519.PrivateKey(raw), issuer, audience, sceneID, ttl, nil)
	if err != nil {
		return fmt.Errorf("sign scene grant: %w", err)
	}
	_, err = fmt.Fprintln(out, token)
	return err
}

func decodeBase64(value string) ([]byte, error) {
	if raw, err := base64.RawStdEncoding.DecodeString(value); err == nil {
		return raw, nil
	}
	return base64.StdEncoding.DecodeString(value)
}
