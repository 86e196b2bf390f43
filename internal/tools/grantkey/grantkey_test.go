package grantkey

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"strings"
	"testing"
	"time"
)

func TestRunEmitsDecodableKeypair(t *testing.T) {
	var out bytes.Buffer
	if err := Run(&out, nil); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("output has %d lines, want 2", len(lines))
	}
	private := strings.TrimPrefix(lines[0], "export DEFILADE_GRANT_PRIVATE_KEY=")
	raw, err := base64.RawStdEncoding.DecodeString(private)
	if err != nil {
		t.Fatalf("decode private key: %v", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		t.Fatalf("private key is %d bytes, want %d", len(raw), ed25519.PrivateKeySize)
	}
}

func TestRunRequiresOutput(t *testing.T) {
	if err := Run(nil, nil); err == nil {
		t.Fatal("expected error without output")
	}
}

func TestSignRejectsBadKey(t *testing.T) {
	var out bytes.Buffer
	if err := Sign(&out, "not base64!!", "iss", "aud", "demo", time.Hour); err == nil {
		t.Fatal("expected error for undecodable key")
	}
	short := base64.RawStdEncoding.EncodeToString([]byte("short"))
	if err := Sign(&out, short, "iss", "aud", "demo", time.Hour); err == nil {
		t.Fatal("expected error for wrong key size")
	}
}

func TestSignEmitsToken(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	var out bytes.Buffer
	if err := Sign(&out, base64.RawStdEncoding.EncodeToString(priv), "iss", "aud", "demo", time.Hour); err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	if parts := strings.Split(strings.TrimSpace(out.String()), "."); len(parts) != 3 {
		t.Fatalf("token has %d segments, want 3", len(parts))
	}
}
