// Package token signs and verifies the JWTs minted by the authorization
// server and publishes the verification keys as a JWK Set.
package token

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"os"
	"strings"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpired          = errors.New("token has expired")
)

// Config selects the signing algorithm and key material. RSA key fields take
// either a path to a PEM file or the PEM text itself.
type Config struct {
	Algorithm     string
	SecretKey     string
	RSAPrivateKey string
	RSAPublicKey  string
}

// Hasher signs and verifies JWTs with one fixed algorithm. Keys are loaded
// once at construction and are safe for concurrent use.
type Hasher struct {
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
	keyID     string
	jwks      jose.JSONWebKeySet
}

func NewHasher(cfg Config) (*Hasher, error) {
	method := jwt.GetSigningMethod(cfg.Algorithm)
	switch method.(type) {
	case *jwt.SigningMethodHMAC:
		if cfg.SecretKey == "" {
			return nil, errors.New("JWT_SECRET_KEY is required for " + cfg.Algorithm)
		}
		key := []byte(cfg.SecretKey)
		return &Hasher{method: method, signKey: key, verifyKey: key, jwks: jose.JSONWebKeySet{Keys: []jose.JSONWebKey{}}}, nil
	case *jwt.SigningMethodRSA:
		return newRSAHasher(method, cfg)
	default:
		return nil, fmt.Errorf("unsupported algorithm: %q", cfg.Algorithm)
	}
}

func newRSAHasher(method jwt.SigningMethod, cfg Config) (*Hasher, error) {
	if cfg.RSAPrivateKey == "" || cfg.RSAPublicKey == "" {
		return nil, errors.New("RSA_PRIVATE_KEY_PATH and RSA_PUBLIC_KEY_PATH are required for " + method.Alg())
	}
	privPEM, err := readPEM(cfg.RSAPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("read rsa private key: %w", err)
	}
	pubPEM, err := readPEM(cfg.RSAPublicKey)
	if err != nil {
		return nil, fmt.Errorf("read rsa public key: %w", err)
	}
	priv, err := jwt.ParseRSAPrivateKeyFromPEM(privPEM)
	if err != nil {
		return nil, fmt.Errorf("parse rsa private key: %w", err)
	}
	pub, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		return nil, fmt.Errorf("parse rsa public key: %w", err)
	}
	if !priv.PublicKey.Equal(pub) {
		return nil, errors.New("rsa public key does not match private key")
	}

	kid, err := thumbprint(pub)
	if err != nil {
		return nil, err
	}
	return &Hasher{
		method:    method,
		signKey:   priv,
		verifyKey: pub,
		keyID:     kid,
		jwks: jose.JSONWebKeySet{Keys: []jose.JSONWebKey{{
			Key:       pub,
			KeyID:     kid,
			Algorithm: method.Alg(),
			Use:       "sig",
		}}},
	}, nil
}

// readPEM loads value as a file when one exists at that path, otherwise
// treats it as inline PEM. Escaped newlines from env files are expanded.
func readPEM(value string) ([]byte, error) {
	if info, err := os.Stat(value); err == nil && info.Mode().IsRegular() {
		return os.ReadFile(value)
	}
	return []byte(strings.ReplaceAll(value, `\n`, "\n")), nil
}

// thumbprint is the RFC 7638 SHA-256 JWK thumbprint, base64url without padding.
func thumbprint(pub *rsa.PublicKey) (string, error) {
	jwk := jose.JSONWebKey{Key: pub}
	tp, err := jwk.Thumbprint(crypto.SHA256)
	if err != nil {
		return "", fmt.Errorf("compute key thumbprint: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(tp), nil
}

// Sign serializes claims as a JWS compact token. Extra header fields are
// merged in; alg and kid are always set by the hasher.
func (h *Hasher) Sign(claims map[string]any, header map[string]any) (string, error) {
	t := jwt.NewWithClaims(h.method, jwt.MapClaims(claims))
	for k, v := range header {
		if k == "alg" {
			continue
		}
		t.Header[k] = v
	}
	t.Header["typ"] = "JWT"
	if h.keyID != "" {
		t.Header["kid"] = h.keyID
	}
	signed, err := t.SignedString(h.signKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, expiry and (when audience is non-empty)
// the aud claim. Errors never echo the token.
func (h *Hasher) Verify(tokenString string, audience string) (map[string]any, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{h.method.Alg()})}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return h.verifyKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalidSignature
	}
	if !parsed.Valid {
		return nil, ErrInvalidSignature
	}
	return claims, nil
}

func (h *Hasher) Algorithm() string { return h.method.Alg() }

// KeyID is the kid header value, empty for HMAC.
func (h *Hasher) KeyID() string { return h.keyID }

// PublicJWKS returns the verification keys. HMAC hashers publish none.
func (h *Hasher) PublicJWKS() jose.JSONWebKeySet {
	return jose.JSONWebKeySet{Keys: append([]jose.JSONWebKey(nil), h.jwks.Keys...)}
}

// AtHash computes the OIDC at_hash claim for accessToken: the left half of
// the digest selected by alg, base64url without padding.
func AtHash(accessToken, alg string) string {
	var hf hash.Hash
	switch {
	case strings.HasSuffix(alg, "384"):
		hf = sha512.New384()
	case strings.HasSuffix(alg, "512"):
		hf = sha512.New()
	default:
		hf = sha256.New()
	}
	hf.Write([]byte(accessToken))
	sum := hf.Sum(nil)
	return base64.RawURLEncoding.EncodeToString(sum[:len(sum)/2])
}

// HashToken is the hex SHA-256 stored in place of a raw token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
