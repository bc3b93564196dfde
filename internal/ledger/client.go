// Package ledger wraps the chain RPC surface the mint pipeline depends on.
package ledger

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// ConfirmationStatus is the cluster's view of how settled a transaction is.
type ConfirmationStatus string

const (
	StatusUnknown   ConfirmationStatus = ""
	StatusProcessed ConfirmationStatus = "processed"
	StatusConfirmed ConfirmationStatus = "confirmed"
	StatusFinalized ConfirmationStatus = "finalized"
)

// Settled reports whether the status is at least confirmed.
func (s ConfirmationStatus) Settled() bool {
	return s == StatusConfirmed || s == StatusFinalized
}

// SignatureState is the result of a signature status probe.
type SignatureState struct {
	Status ConfirmationStatus
	// Err is non-nil when the transaction landed but the program rejected it.
	Err error
}

// Client is the chain access surface used by the pipeline. Implementations
// must be safe for concurrent use.
type Client interface {
	// Version probes node reachability and returns the node software version.
	Version(ctx context.Context) (string, error)

	// AccountExists reports whether an account is present at the address.
	AccountExists(ctx context.Context, address solana.PublicKey) (bool, error)

	// LatestBlockhash returns a recent blockhash for transaction assembly.
	LatestBlockhash(ctx context.Context) (solana.Hash, error)

	// MinimumBalanceForRentExemption returns the lamports needed to make an
	// account of the given size rent exempt.
	MinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (uint64, error)

	// SendTransaction submits a fully signed serialized transaction.
	SendTransaction(ctx context.Context, raw []byte, skipPreflight bool) (solana.Signature, error)

	// SignatureStatus returns the current settlement state of a signature.
	SignatureStatus(ctx context.Context, sig solana.Signature) (SignatureState, error)
}
