package ledger

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/mock"
)

// MockClient is a testify mock of Client, shared by pipeline tests.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Version(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockClient) AccountExists(ctx context.Context, address solana.PublicKey) (bool, error) {
	args := m.Called(ctx, address)
	return args.Bool(0), args.Error(1)
}

func (m *MockClient) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	args := m.Called(ctx)
	return args.Get(0).(solana.Hash), args.Error(1)
}

func (m *MockClient) MinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (uint64, error) {
	args := m.Called(ctx, dataSize)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockClient) SendTransaction(ctx context.Context, raw []byte, skipPreflight bool) (solana.Signature, error) {
	args := m.Called(ctx, raw, skipPreflight)
	return args.Get(0).(solana.Signature), args.Error(1)
}

func (m *MockClient) SignatureStatus(ctx context.Context, sig solana.Signature) (SignatureState, error) {
	args := m.Called(ctx, sig)
	return args.Get(0).(SignatureState), args.Error(1)
}
