// Package grant issues and verifies scene grants: short-lived Ed25519 JWTs
// authorizing mutations of a specific scene. Verification is optional; a
// server without a configured verifier accepts all mutations.
package grant

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/defilade/internal/platform/errors"
	"github.com/louisbranch/defilade/internal/platform/id"
)

// verifierEnv holds raw env values before post-parse validation.
type verifierEnv struct {
	Issuer    string `env:"DEFILADE_GRANT_ISSUER"`
	Audience  string `env:"DEFILADE_GRANT_AUDIENCE"`
	PublicKey string `env:"DEFILADE_GRANT_PUBLIC_KEY"`
}

// Config defines how scene grants are verified.
type Config struct {
	Issuer   string
	Audience string
	Key      ed25519.PublicKey
	Now      func() time.Time
}

// Enabled reports whether grant verification is configured at all.
func (c Config) Enabled() bool {
	return c.Issuer != "" && c.Audience != "" && len(c.Key) == ed25519.PublicKeySize
}

// Claims captures validated scene grant claims.
type Claims struct {
	Issuer    string
	Audience  []string
	ExpiresAt time.Time
	NotBefore time.Time
	IssuedAt  time.Time
	JWTID     string
	SceneID   string
}

// sceneClaims is the internal claims type used for JWT parsing and signing.
type sceneClaims struct {
	jwt.RegisteredClaims
	SceneID string `json:"scene_id"`
}

// LoadConfigFromEnv reads grant verification configuration. All three values
// must be set together; an entirely empty set disables verification.
func LoadConfigFromEnv(now func() time.Time) (Config, error) {
	var raw verifierEnv
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("parse grant env: %w", err)
	}
	issuer := strings.TrimSpace(raw.Issuer)
	audience := strings.TrimSpace(raw.Audience)
	publicKey := strings.TrimSpace(raw.PublicKey)
	if issuer == "" && audience == "" && publicKey == "" {
		return Config{Now: now}, nil
	}
	if issuer == "" || audience == "" || publicKey == "" {
		return Config{}, fmt.Errorf("DEFILADE_GRANT_ISSUER, DEFILADE_GRANT_AUDIENCE, and DEFILADE_GRANT_PUBLIC_KEY must be set together")
	}
	keyBytes, err := decodeBase64(publicKey)
	if err != nil {
		return Config{}, fmt.Errorf("decode grant public key: %w", err)
	}
	if len(keyBytes) != ed25519.PublicKeySize {
		return Config{}, fmt.Errorf("grant public key must be %d bytes", ed25519.PublicKeySize)
	}
	if now == nil {
		now = time.Now
	}
	return Config{
		Issuer:   issuer,
		Audience: audience,
		Key:      ed25519.PublicKey(keyBytes),
		Now:      now,
	}, nil
}

// Sign issues a scene grant for the given scene, valid for ttl.
func Sign(key ed25519.PrivateKey, issuer, audience, sceneID string, ttl time.Duration, now func() time.Time) (string, error) {
	if len(key) != ed25519.PrivateKeySize {
		return "", errors.New("grant signing key is invalid")
	}
	if sceneID = strings.TrimSpace(sceneID); sceneID == "" {
		return "", errors.New("scene id is required")
	}
	if now == nil {
		now = time.Now
	}
	jti, err := id.New()
	if err != nil {
		return "", fmt.Errorf("generate grant id: %w", err)
	}
	issuedAt := now().UTC()
	claims := sceneClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
			ID:        jti,
		},
		SceneID: sceneID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(key)
}

// Verify checks a scene grant token against the configured verifier and the
// scene being mutated.
func Verify(token, sceneID string, cfg Config) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, apperrors.New(apperrors.CodeGrantRequired, "scene grant is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if !cfg.Enabled() {
		return Claims{}, errors.New("grant verifier is not configured")
	}

	var parsed sceneClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(token *jwt.Token) (any, error) {
		return cfg.Key, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Claims{}, mapJWTError(err)
	}

	if parsed.Issuer == "" || parsed.Issuer != cfg.Issuer {
		return Claims{}, apperrors.WithMetadata(
			apperrors.CodeGrantMismatch,
			"scene grant issuer mismatch",
			map[string]string{"Field": "issuer"},
		)
	}
	if !audienceContains(parsed.Audience, cfg.Audience) {
		return Claims{}, apperrors.WithMetadata(
			apperrors.CodeGrantMismatch,
			"scene grant audience mismatch",
			map[string]string{"Field": "audience"},
		)
	}
	if parsed.ID == "" {
		return Claims{}, apperrors.New(apperrors.CodeGrantInvalid, "scene grant jti is required")
	}
	if parsed.ExpiresAt == nil {
		return Claims{}, apperrors.New(apperrors.CodeGrantInvalid, "scene grant exp is required")
	}

	now := cfg.Now().UTC()
	exp := parsed.ExpiresAt.Time.UTC()
	if !exp.After(now) {
		return Claims{}, apperrors.New(apperrors.CodeGrantExpired, "scene grant is expired")
	}
	if parsed.NotBefore != nil && now.Before(parsed.NotBefore.Time.UTC()) {
		return Claims{}, apperrors.New(apperrors.CodeGrantInvalid, "scene grant not active yet")
	}

	if strings.TrimSpace(parsed.SceneID) == "" || parsed.SceneID != sceneID {
		return Claims{}, apperrors.WithMetadata(
			apperrors.CodeGrantMismatch,
			"scene grant scene mismatch",
			map[string]string{"Field": "scene_id"},
		)
	}

	claims := Claims{
		Issuer:    parsed.Issuer,
		Audience:  []string(parsed.Audience),
		ExpiresAt: exp,
		JWTID:     parsed.ID,
		SceneID:   parsed.SceneID,
	}
	if parsed.NotBefore != nil {
		claims.NotBefore = parsed.NotBefore.Time.UTC()
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	return claims, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrEd25519Verification) {
		return apperrors.New(apperrors.CodeGrantInvalid, "scene grant signature is invalid")
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.New(apperrors.CodeGrantInvalid, "scene grant alg is invalid")
	}
	return apperrors.New(apperrors.CodeGrantInvalid, "scene grant is invalid")
}

// audienceContains reports whether the audience list contains the given value.
func audienceContains(aud jwt.ClaimStrings, value string) bool {
	for _, item := range aud {
		if item == value {
			return true
		}
	}
	return false
}

func decodeBase64(value string) ([]byte, error) {
	if value == "" {
		return nil, errors.New("empty base64 value")
	}
	decoded, err := base64.RawStdEncoding.DecodeString(value)
	if err == nil {
		return decoded, nil
	}
	return base64.StdEncoding.DecodeString(value)
}
