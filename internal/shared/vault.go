package shared

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
)

// TokenSessionKey is the session key of the sealed API token.
const TokenSessionKey = "api_token"

// TokenVault seals API tokens before they are written to the session store.
type TokenVault struct {
	key [32]byte
}

// NewTokenVault derives the sealing key from secret.
func NewTokenVault(secret string) *TokenVault {
	return &TokenVault{key: sha256.Sum256([]byte("cadastro/api-token|" + secret))}
}

// Seal encrypts token.
func (v *TokenVault) Seal(token string) (string, error) {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("seal token: %w", err)
	}
	out := secretbox.Seal(nonce[:], []byte(token), &nonce, &v.key)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Open decrypts a value produced by Seal.
func (v *TokenVault) Open(sealed string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(raw) < 24 {
		return "", ErrTokenUnreadable
	}
	var nonce [24]byte
	copy(nonce[:], raw[:24])
	plain, ok := secretbox.Open(nil, raw[24:], &nonce, &v.key)
	if !ok {
		return "", ErrTokenUnreadable
	}
	return string(plain), nil
}

// StoreToken seals token into the session. An empty token clears it.
func (v *TokenVault) StoreToken(sess *Session, token string) error {
	if token == "" {
		sess.Delete(TokenSessionKey)
		return nil
	}
	sealed, err := v.Seal(token)
	if err != nil {
		return err
	}
	sess.Set(TokenSessionKey, sealed)
	return nil
}

// HasToken reports whether the session holds a token.
func (v *TokenVault) HasToken(sess *Session) bool {
	return sess != nil && sess.Get(TokenSessionKey) != ""
}

// SessionCredentials hands the API client the token the operator stored in
// their session.
type SessionCredentials struct {
	Vault *TokenVault
}

// Token implements apiclient.CredentialProvider.
func (c SessionCredentials) Token(ctx context.Context) (string, error) {
	sess := SessionFromContext(ctx)
	if sess == nil || c.Vault == nil {
		return "", nil
	}
	sealed := sess.Get(TokenSessionKey)
	if sealed == "" {
		return "", nil
	}
	return c.Vault.Open(sealed)
}
