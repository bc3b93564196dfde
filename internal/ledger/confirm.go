package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/haus-live/haus-mint/internal/domain"
	"github.com/haus-live/haus-mint/pkg/retry"
)

const (
	// DefaultConfirmAttempts bounds the confirmation poll loop.
	DefaultConfirmAttempts = 20
	// DefaultConfirmInterval is the delay between status probes.
	DefaultConfirmInterval = time.Second
)

// WaitForConfirmation polls the signature status until the transaction
// reaches at least confirmed commitment. It returns
// domain.ErrConfirmationTimeout when the attempt budget runs out without
// settlement, and the on-chain failure when the cluster reports one.
func WaitForConfirmation(ctx context.Context, client Client, sig solana.Signature, attempts int, interval time.Duration) error {
	if attempts <= 0 {
		attempts = DefaultConfirmAttempts
	}
	if interval <= 0 {
		interval = DefaultConfirmInterval
	}

	err := retry.Poll(ctx, retry.FixedConfig(attempts, interval), func(ctx context.Context) (bool, error) {
		state, err := client.SignatureStatus(ctx, sig)
		if err != nil {
			// Transient probe failures burn an attempt instead of
			// aborting the wait.
			return false, nil
		}
		if state.Err != nil {
			return false, state.Err
		}
		return state.Status.Settled(), nil
	})
	if err != nil {
		if errors.Is(err, retry.ErrAttemptsExhausted) {
			return domain.ErrConfirmationTimeout
		}
		return err
	}
	return nil
}
