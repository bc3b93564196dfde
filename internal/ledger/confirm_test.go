package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/haus-live/haus-mint/internal/domain"
)

func TestWaitForConfirmation_ConfirmedOnFirstProbe(t *testing.T) {
	client := new(MockClient)
	sig := solana.Signature{1}
	client.On("SignatureStatus", mock.Anything, sig).
		Return(SignatureState{Status: StatusConfirmed}, nil).Once()

	err := WaitForConfirmation(context.Background(), client, sig, 20, time.Millisecond)

	assert.NoError(t, err)
	client.AssertExpectations(t)
}

func TestWaitForConfirmation_SettlesAfterPending(t *testing.T) {
	client := new(MockClient)
	sig := solana.Signature{2}
	client.On("SignatureStatus", mock.Anything, sig).
		Return(SignatureState{Status: StatusProcessed}, nil).Twice()
	client.On("SignatureStatus", mock.Anything, sig).
		Return(SignatureState{Status: StatusFinalized}, nil).Once()

	err := WaitForConfirmation(context.Background(), client, sig, 20, time.Millisecond)

	assert.NoError(t, err)
	client.AssertNumberOfCalls(t, "SignatureStatus", 3)
}

func TestWaitForConfirmation_Timeout(t *testing.T) {
	client := new(MockClient)
	sig := solana.Signature{3}
	client.On("SignatureStatus", mock.Anything, sig).
		Return(SignatureState{Status: StatusUnknown}, nil)

	err := WaitForConfirmation(context.Background(), client, sig, 5, time.Millisecond)

	assert.ErrorIs(t, err, domain.ErrConfirmationTimeout)
	client.AssertNumberOfCalls(t, "SignatureStatus", 5)
}

func TestWaitForConfirmation_OnChainFailure(t *testing.T) {
	client := new(MockClient)
	sig := solana.Signature{4}
	chainErr := errors.New("transaction failed on chain: InstructionError")
	client.On("SignatureStatus", mock.Anything, sig).
		Return(SignatureState{Status: StatusConfirmed, Err: chainErr}, nil).Once()

	err := WaitForConfirmation(context.Background(), client, sig, 20, time.Millisecond)

	assert.ErrorIs(t, err, chainErr)
}

func TestWaitForConfirmation_ProbeErrorsBurnAttempts(t *testing.T) {
	client := new(MockClient)
	sig := solana.Signature{5}
	client.On("SignatureStatus", mock.Anything, sig).
		Return(SignatureState{}, errors.New("rpc hiccup")).Twice()
	client.On("SignatureStatus", mock.Anything, sig).
		Return(SignatureState{Status: StatusConfirmed}, nil).Once()

	err := WaitForConfirmation(context.Background(), client, sig, 20, time.Millisecond)

	assert.NoError(t, err)
}

func TestConfirmationStatus_Settled(t *testing.T) {
	assert.False(t, StatusUnknown.Settled())
	assert.False(t, StatusProcessed.Settled())
	assert.True(t, StatusConfirmed.Settled())
	assert.True(t, StatusFinalized.Settled())
}
