package minter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/haus-live/haus-mint/internal/domain"
	"github.com/haus-live/haus-mint/internal/ledger"
	"github.com/haus-live/haus-mint/internal/wallet"
)

var testProgramID = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

type mockMetadata struct {
	mock.Mock
}

func (m *mockMetadata) Prepare(ctx context.Context, req *domain.MintRequest, creatorAddress string) (string, *domain.EventMetadata, error) {
	args := m.Called(ctx, req, creatorAddress)
	var meta *domain.EventMetadata
	if v := args.Get(1); v != nil {
		meta = v.(*domain.EventMetadata)
	}
	return args.String(0), meta, args.Error(2)
}

type mockCollections struct {
	mock.Mock
}

func (m *mockCollections) CreateCollection(ctx context.Context, signer wallet.Signer, cfg domain.TicketCollectionConfig) (solana.PublicKey, error) {
	args := m.Called(ctx, signer, cfg)
	return args.Get(0).(solana.PublicKey), args.Error(1)
}

// slowSigner never completes a signature request.
type slowSigner struct {
	key solana.PrivateKey
}

func (s *slowSigner) PublicKey() solana.PublicKey { return s.key.PublicKey() }

func (s *slowSigner) SignTransaction(ctx context.Context, _ *solana.Transaction) error {
	<-ctx.Done()
	return ctx.Err()
}

type fixture struct {
	client      *ledger.MockClient
	metadata    *mockMetadata
	collections *mockCollections
	signer      wallet.Signer
	minter      *Minter
	assetKey    solana.PrivateKey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	payer, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	assetKey, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	client := new(ledger.MockClient)
	meta := new(mockMetadata)
	colls := new(mockCollections)

	m := NewMinter(
		testProgramID,
		client,
		meta,
		colls,
		func() (solana.PrivateKey, error) { return assetKey, nil },
		Options{ConfirmAttempts: 5, ConfirmInterval: time.Millisecond, SignTimeout: time.Second},
		nil,
		nil,
	).WithSuffix(func() string { return "fixed" })

	return &fixture{
		client:      client,
		metadata:    meta,
		collections: colls,
		signer:      wallet.NewKeypairSigner(payer),
		minter:      m,
		assetKey:    assetKey,
	}
}

func validRequest() *domain.MintRequest {
	return &domain.MintRequest{
		Title:       "Live Painting Session",
		Description: "watch it happen",
		Category:    "live-painting",
		Banner:      []byte("png-bytes"),
		BannerName:  "banner.png",
	}
}

func validMetadata() *domain.EventMetadata {
	return &domain.EventMetadata{
		Title:         "Live Painting Session",
		Description:   "watch it happen",
		BannerURL:     "https://gw.test/ipfs/QmBanner",
		Category:      "live-painting",
		Date:          "2026-04-01T19:30:00Z",
		Duration:      45,
		TicketPrice:   0.5,
		TicketsAmount: 99,
		ReservePrice:  1.5,
	}
}

func TestMintEvent_HappyPath(t *testing.T) {
	f := newFixture(t)
	collectionKey := solana.MustPublicKeyFromBase58("SysvarC1ock11111111111111111111111111111111")

	f.client.On("Version", mock.Anything).Return("2.1.0", nil).Once()
	f.client.On("AccountExists", mock.Anything, f.assetKey.PublicKey()).Return(false, nil).Once()
	f.metadata.On("Prepare", mock.Anything, mock.Anything, f.signer.PublicKey().String()).
		Return("https://gw.test/ipfs/QmMeta", validMetadata(), nil).Once()
	f.collections.On("CreateCollection", mock.Anything, f.signer, mock.MatchedBy(func(cfg domain.TicketCollectionConfig) bool {
		return cfg.Name == "Tickets: Live Painting Session #fixed" && cfg.MaxSupply == 99
	})).Return(collectionKey, nil).Once()
	f.client.On("MinimumBalanceForRentExemption", mock.Anything, uint64(0)).Return(uint64(890_880), nil).Once()
	f.client.On("LatestBlockhash", mock.Anything).Return(solana.Hash{3}, nil).Once()
	f.client.On("SendTransaction", mock.Anything, mock.Anything, false).Return(solana.Signature{5}, nil).Once()
	f.client.On("SignatureStatus", mock.Anything, solana.Signature{5}).
		Return(ledger.SignatureState{Status: ledger.StatusConfirmed}, nil).Once()

	result, err := f.minter.MintEvent(context.Background(), f.signer, validRequest())

	require.NoError(t, err)
	assert.Equal(t, solana.Signature{5}.String(), result.TransactionSignature)
	assert.Equal(t, f.assetKey.PublicKey().String(), result.AssetAddress)
	f.client.AssertExpectations(t)
	f.metadata.AssertExpectations(t)
	f.collections.AssertExpectations(t)
}

func TestMintEvent_MissingBannerMakesNoNetworkCalls(t *testing.T) {
	f := newFixture(t)

	req := validRequest()
	req.Banner = nil

	_, err := f.minter.MintEvent(context.Background(), f.signer, req)

	assert.ErrorIs(t, err, domain.ErrMissingBanner)
	f.client.AssertNotCalled(t, "Version", mock.Anything)
	f.metadata.AssertNotCalled(t, "Prepare", mock.Anything, mock.Anything, mock.Anything)
}

func TestMintEvent_WalletNotReady(t *testing.T) {
	f := newFixture(t)

	_, err := f.minter.MintEvent(context.Background(), nil, validRequest())

	assert.ErrorIs(t, err, domain.ErrWalletNotReady)
	f.client.AssertNotCalled(t, "Version", mock.Anything)
}

func TestMintEvent_NetworkProbeFailure(t *testing.T) {
	f := newFixture(t)
	f.client.On("Version", mock.Anything).Return("", errors.New("connection refused")).Once()

	_, err := f.minter.MintEvent(context.Background(), f.signer, validRequest())

	assert.ErrorIs(t, err, domain.ErrNetworkUnavailable)
	f.client.AssertNotCalled(t, "AccountExists", mock.Anything, mock.Anything)
}

func TestMintEvent_KeypairCollisionExhaustion(t *testing.T) {
	f := newFixture(t)
	f.client.On("Version", mock.Anything).Return("2.1.0", nil).Once()
	f.client.On("AccountExists", mock.Anything, f.assetKey.PublicKey()).Return(true, nil).Times(3)

	_, err := f.minter.MintEvent(context.Background(), f.signer, validRequest())

	assert.ErrorIs(t, err, domain.ErrKeypairExhausted)
	f.client.AssertNumberOfCalls(t, "AccountExists", 3)
	f.metadata.AssertNotCalled(t, "Prepare", mock.Anything, mock.Anything, mock.Anything)
}

func TestMintEvent_KeypairCollisionThenFreeAddress(t *testing.T) {
	f := newFixture(t)
	collectionKey := solana.MustPublicKeyFromBase58("SysvarC1ock11111111111111111111111111111111")

	f.client.On("Version", mock.Anything).Return("2.1.0", nil).Once()
	f.client.On("AccountExists", mock.Anything, f.assetKey.PublicKey()).Return(true, nil).Twice()
	f.client.On("AccountExists", mock.Anything, f.assetKey.PublicKey()).Return(false, nil).Once()
	f.metadata.On("Prepare", mock.Anything, mock.Anything, mock.Anything).
		Return("uri", validMetadata(), nil).Once()
	f.collections.On("CreateCollection", mock.Anything, mock.Anything, mock.Anything).
		Return(collectionKey, nil).Once()
	f.client.On("MinimumBalanceForRentExemption", mock.Anything, uint64(0)).Return(uint64(1), nil).Once()
	f.client.On("LatestBlockhash", mock.Anything).Return(solana.Hash{3}, nil).Once()
	f.client.On("SendTransaction", mock.Anything, mock.Anything, false).Return(solana.Signature{5}, nil).Once()
	f.client.On("SignatureStatus", mock.Anything, solana.Signature{5}).
		Return(ledger.SignatureState{Status: ledger.StatusFinalized}, nil).Once()

	_, err := f.minter.MintEvent(context.Background(), f.signer, validRequest())

	require.NoError(t, err)
	f.client.AssertNumberOfCalls(t, "AccountExists", 3)
}

func TestMintEvent_MetadataFailurePropagates(t *testing.T) {
	f := newFixture(t)
	f.client.On("Version", mock.Anything).Return("2.1.0", nil).Once()
	f.client.On("AccountExists", mock.Anything, mock.Anything).Return(false, nil).Once()
	f.metadata.On("Prepare", mock.Anything, mock.Anything, mock.Anything).
		Return("", nil, domain.ErrMetadataUpload).Once()

	_, err := f.minter.MintEvent(context.Background(), f.signer, validRequest())

	assert.ErrorIs(t, err, domain.ErrMetadataUpload)
	f.collections.AssertNotCalled(t, "CreateCollection", mock.Anything, mock.Anything, mock.Anything)
}

func TestMintEvent_CollectionFailurePropagates(t *testing.T) {
	f := newFixture(t)
	f.client.On("Version", mock.Anything).Return("2.1.0", nil).Once()
	f.client.On("AccountExists", mock.Anything, mock.Anything).Return(false, nil).Once()
	f.metadata.On("Prepare", mock.Anything, mock.Anything, mock.Anything).
		Return("uri", validMetadata(), nil).Once()
	f.collections.On("CreateCollection", mock.Anything, mock.Anything, mock.Anything).
		Return(solana.PublicKey{}, domain.ErrInvalidTicketConfig).Once()

	_, err := f.minter.MintEvent(context.Background(), f.signer, validRequest())

	assert.ErrorIs(t, err, domain.ErrInvalidTicketConfig)
	f.client.AssertNotCalled(t, "SendTransaction", mock.Anything, mock.Anything, mock.Anything)
}

func TestMintEvent_ConfirmationTimeout(t *testing.T) {
	f := newFixture(t)
	collectionKey := solana.MustPublicKeyFromBase58("SysvarC1ock11111111111111111111111111111111")

	f.client.On("Version", mock.Anything).Return("2.1.0", nil).Once()
	f.client.On("AccountExists", mock.Anything, mock.Anything).Return(false, nil).Once()
	f.metadata.On("Prepare", mock.Anything, mock.Anything, mock.Anything).
		Return("uri", validMetadata(), nil).Once()
	f.collections.On("CreateCollection", mock.Anything, mock.Anything, mock.Anything).
		Return(collectionKey, nil).Once()
	f.client.On("MinimumBalanceForRentExemption", mock.Anything, uint64(0)).Return(uint64(1), nil).Once()
	f.client.On("LatestBlockhash", mock.Anything).Return(solana.Hash{3}, nil).Once()
	f.client.On("SendTransaction", mock.Anything, mock.Anything, false).Return(solana.Signature{5}, nil).Once()
	f.client.On("SignatureStatus", mock.Anything, solana.Signature{5}).
		Return(ledger.SignatureState{Status: ledger.StatusProcessed}, nil)

	_, err := f.minter.MintEvent(context.Background(), f.signer, validRequest())

	assert.ErrorIs(t, err, domain.ErrConfirmationTimeout)
	f.client.AssertNumberOfCalls(t, "SignatureStatus", 5)
}

func TestMintEvent_SignTimeout(t *testing.T) {
	f := newFixture(t)
	collectionKey := solana.MustPublicKeyFromBase58("SysvarC1ock11111111111111111111111111111111")

	payer, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	signer := &slowSigner{key: payer}

	f.minter.opts.SignTimeout = 20 * time.Millisecond

	f.client.On("Version", mock.Anything).Return("2.1.0", nil).Once()
	f.client.On("AccountExists", mock.Anything, mock.Anything).Return(false, nil).Once()
	f.metadata.On("Prepare", mock.Anything, mock.Anything, mock.Anything).
		Return("uri", validMetadata(), nil).Once()
	f.collections.On("CreateCollection", mock.Anything, mock.Anything, mock.Anything).
		Return(collectionKey, nil).Once()
	f.client.On("MinimumBalanceForRentExemption", mock.Anything, uint64(0)).Return(uint64(1), nil).Once()
	f.client.On("LatestBlockhash", mock.Anything).Return(solana.Hash{3}, nil).Once()

	_, err = f.minter.MintEvent(context.Background(), signer, validRequest())

	assert.ErrorIs(t, err, domain.ErrWalletSignTimeout)
	f.client.AssertNotCalled(t, "SendTransaction", mock.Anything, mock.Anything, mock.Anything)
}
