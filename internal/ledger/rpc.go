package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// RPCClient adapts a JSON-RPC node connection to the Client interface.
type RPCClient struct {
	rpc        *rpc.Client
	commitment rpc.CommitmentType
}

// NewRPCClient connects to the node at url. Commitment defaults to confirmed.
func NewRPCClient(url string, commitment string) *RPCClient {
	c := rpc.CommitmentConfirmed
	if commitment == "finalized" {
		c = rpc.CommitmentFinalized
	}
	return &RPCClient{
		rpc:        rpc.New(url),
		commitment: c,
	}
}

func (c *RPCClient) Version(ctx context.Context) (string, error) {
	out, err := c.rpc.GetVersion(ctx)
	if err != nil {
		return "", fmt.Errorf("get version: %w", err)
	}
	return out.SolanaCore, nil
}

func (c *RPCClient) AccountExists(ctx context.Context, address solana.PublicKey) (bool, error) {
	_, err := c.rpc.GetAccountInfo(ctx, address)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get account info: %w", err)
	}
	return true, nil
}

func (c *RPCClient) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	out, err := c.rpc.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("get latest blockhash: %w", err)
	}
	return out.Value.Blockhash, nil
}

func (c *RPCClient) MinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (uint64, error) {
	lamports, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, dataSize, c.commitment)
	if err != nil {
		return 0, fmt.Errorf("get rent exemption: %w", err)
	}
	return lamports, nil
}

func (c *RPCClient) SendTransaction(ctx context.Context, raw []byte, skipPreflight bool) (solana.Signature, error) {
	sig, err := c.rpc.SendRawTransactionWithOpts(ctx, raw, rpc.TransactionOpts{
		SkipPreflight:       skipPreflight,
		PreflightCommitment: c.commitment,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction: %w", err)
	}
	return sig, nil
}

func (c *RPCClient) SignatureStatus(ctx context.Context, sig solana.Signature) (SignatureState, error) {
	out, err := c.rpc.GetSignatureStatuses(ctx, false, sig)
	if err != nil {
		return SignatureState{}, fmt.Errorf("get signature status: %w", err)
	}
	if len(out.Value) == 0 || out.Value[0] == nil {
		return SignatureState{Status: StatusUnknown}, nil
	}

	st := out.Value[0]
	state := SignatureState{Status: mapConfirmation(st.ConfirmationStatus)}
	if st.Err != nil {
		state.Err = fmt.Errorf("transaction failed on chain: %v", st.Err)
	}
	return state, nil
}

func mapConfirmation(s rpc.ConfirmationStatusType) ConfirmationStatus {
	switch s {
	case rpc.ConfirmationStatusProcessed:
		return StatusProcessed
	case rpc.ConfirmationStatusConfirmed:
		return StatusConfirmed
	case rpc.ConfirmationStatusFinalized:
		return StatusFinalized
	default:
		return StatusUnknown
	}
}
