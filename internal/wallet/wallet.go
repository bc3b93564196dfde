// Package wallet abstracts transaction signing authority.
package wallet

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/haus-live/haus-mint/internal/domain"
)

// Signer is an authority that can countersign assembled transactions.
type Signer interface {
	// PublicKey returns the signer's address.
	PublicKey() solana.PublicKey

	// SignTransaction adds the signer's signature to the transaction.
	SignTransaction(ctx context.Context, tx *solana.Transaction) error
}

// CheckCapabilities verifies the signer is usable before any chain work
// starts. A nil signer or one without an address fails with
// domain.ErrWalletNotReady.
func CheckCapabilities(s Signer) error {
	if s == nil {
		return domain.ErrWalletNotReady
	}
	if s.PublicKey().IsZero() {
		return fmt.Errorf("%w: signer has no address", domain.ErrWalletNotReady)
	}
	return nil
}

// KeypairSigner signs with a locally held private key.
type KeypairSigner struct {
	key solana.PrivateKey
}

// NewKeypairSigner wraps a private key as a Signer.
func NewKeypairSigner(key solana.PrivateKey) *KeypairSigner {
	return &KeypairSigner{key: key}
}

// KeypairSignerFromBase58 parses a base58-encoded private key.
func KeypairSignerFromBase58(encoded string) (*KeypairSigner, error) {
	key, err := solana.PrivateKeyFromBase58(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: parse private key: %v", domain.ErrWalletNotReady, err)
	}
	return &KeypairSigner{key: key}, nil
}

func (s *KeypairSigner) PublicKey() solana.PublicKey {
	return s.key.PublicKey()
}

func (s *KeypairSigner) SignTransaction(_ context.Context, tx *solana.Transaction) error {
	_, err := tx.PartialSign(func(pk solana.PublicKey) *solana.PrivateKey {
		if pk.Equals(s.key.PublicKey()) {
			return &s.key
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sign transaction: %w", err)
	}
	return nil
}

// KeypairGenerator produces fresh keypairs for asset accounts. Tests inject
// deterministic generators.
type KeypairGenerator func() (solana.PrivateKey, error)

// NewRandomKeypair is the production generator.
func NewRandomKeypair() (solana.PrivateKey, error) {
	return solana.NewRandomPrivateKey()
}
