// Package jwtkeys resolves HMAC keys used to sign and verify session tokens.
package jwtkeys

import (
	"errors"
	"fmt"
)

// ErrUnknownKey is returned when a token references a key the provider does not hold
var ErrUnknownKey = errors.New("unknown signing key")

// KeyProvider supplies the active signing key and resolves verification keys by id
type KeyProvider interface {
	// SigningKey returns the key id and secret used for new tokens
	SigningKey() (string, []byte, error)
	// ResolveKey returns the secret for kid; an empty kid means the legacy key
	ResolveKey(kid string) ([]byte, error)
}

// StaticProvider serves a fixed set of secrets, the first being the active one
type StaticProvider struct {
	activeID string
	keys     map[string][]byte
}

// NewStaticProvider creates a provider with a single secret and no key id
func NewStaticProvider(secret string) *StaticProvider {
	return &StaticProvider{
		activeID: "",
		keys:     map[string][]byte{"": []byte(secret)},
	}
}

// WithKey registers an additional verification key and optionally makes it active
func (p *StaticProvider) WithKey(kid, secret string, active bool) *StaticProvider {
	p.keys[kid] = []byte(secret)
	if active {
		p.activeID = kid
	}
	return p
}

// SigningKey implements KeyProvider
func (p *StaticProvider) SigningKey() (string, []byte, error) {
	secret, ok := p.keys[p.activeID]
	if !ok || len(secret) == 0 {
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownKey, p.activeID)
	}
	return p.activeID, secret, nil
}

// ResolveKey implements KeyProvider
func (p *StaticProvider) ResolveKey(kid string) ([]byte, error) {
	secret, ok := p.keys[kid]
	if !ok || len(secret) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, kid)
	}
	return secret, nil
}
