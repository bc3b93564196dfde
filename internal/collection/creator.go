// Package collection mints the supporting ticket-collection account for an
// event.
package collection

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"go.uber.org/zap"

	"github.com/haus-live/haus-mint/internal/domain"
	"github.com/haus-live/haus-mint/internal/ledger"
	"github.com/haus-live/haus-mint/internal/wallet"
)

// collectionAccountSpace is the allocation for the collection account.
const collectionAccountSpace = 300

// ContentStore is the subset of the pinning client the creator needs.
type ContentStore interface {
	UploadJSON(ctx context.Context, name string, doc any) (string, error)
	Resolve(cid string) string
}

// Options tunes transaction submission and confirmation.
type Options struct {
	SkipPreflight   bool
	ConfirmAttempts int
	ConfirmInterval time.Duration
}

// Creator builds, signs, and lands the collection account transaction.
type Creator struct {
	store    ContentStore
	client   ledger.Client
	generate wallet.KeypairGenerator
	opts     Options
	log      *zap.Logger
}

// NewCreator wires a collection creator. A nil generator falls back to
// random keypairs.
func NewCreator(store ContentStore, client ledger.Client, generate wallet.KeypairGenerator, opts Options, log *zap.Logger) *Creator {
	if generate == nil {
		generate = wallet.NewRandomKeypair
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Creator{
		store:    store,
		client:   client,
		generate: generate,
		opts:     opts,
		log:      log,
	}
}

// collectionMetadata is the pinned JSON document describing the collection.
type collectionMetadata struct {
	Name                 string               `json:"name"`
	Symbol               string               `json:"symbol"`
	Description          string               `json:"description"`
	Image                string               `json:"image"`
	SellerFeeBasisPoints int                  `json:"seller_fee_basis_points"`
	Attributes           []metadataAttribute  `json:"attributes"`
	Properties           collectionProperties `json:"properties"`
}

type metadataAttribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

type collectionProperties struct {
	Creators []domain.CreatorShare `json:"creators"`
}

// CreateCollection validates the config, pins its metadata, and creates the
// on-chain collection account funded by the signer. It returns the new
// collection address once the transaction confirms.
func (c *Creator) CreateCollection(ctx context.Context, signer wallet.Signer, cfg domain.TicketCollectionConfig) (solana.PublicKey, error) {
	if err := cfg.Validate(); err != nil {
		return solana.PublicKey{}, err
	}

	meta := collectionMetadata{
		Name:                 cfg.Name,
		Symbol:               cfg.Symbol,
		Description:          cfg.Description,
		Image:                cfg.BannerURL,
		SellerFeeBasisPoints: cfg.SellerFeeBasisPoints,
		Attributes: []metadataAttribute{
			{TraitType: "max_supply", Value: cfg.MaxSupply},
			{TraitType: "unit_price_sol", Value: cfg.UnitPriceSOL},
			{TraitType: "mutable", Value: cfg.IsMutable},
		},
		Properties: collectionProperties{Creators: cfg.Creators},
	}
	cid, err := c.store.UploadJSON(ctx, fmt.Sprintf("collection-%s", cfg.Name), meta)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: collection document: %v", domain.ErrMetadataUpload, err)
	}
	c.log.Debug("collection metadata pinned",
		zap.String("name", cfg.Name),
		zap.String("uri", c.store.Resolve(cid)),
	)

	key, err := c.generate()
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("generate collection keypair: %w", err)
	}
	address := key.PublicKey()

	rent, err := c.client.MinimumBalanceForRentExemption(ctx, collectionAccountSpace)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %v", domain.ErrNetworkUnavailable, err)
	}

	ix := system.NewCreateAccountInstruction(
		rent,
		collectionAccountSpace,
		solana.SystemProgramID,
		signer.PublicKey(),
		address,
	).Build()

	blockhash, err := c.client.LatestBlockhash(ctx)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %v", domain.ErrNetworkUnavailable, err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		blockhash,
		solana.TransactionPayer(signer.PublicKey()),
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("assemble collection transaction: %w", err)
	}

	if _, err := tx.PartialSign(func(pk solana.PublicKey) *solana.PrivateKey {
		if pk.Equals(address) {
			return &key
		}
		return nil
	}); err != nil {
		return solana.PublicKey{}, fmt.Errorf("sign with collection key: %w", err)
	}
	if err := signer.SignTransaction(ctx, tx); err != nil {
		return solana.PublicKey{}, err
	}

	raw, err := tx.MarshalBinary()
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("serialize collection transaction: %w", err)
	}

	sig, err := c.client.SendTransaction(ctx, raw, c.opts.SkipPreflight)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("submit collection transaction: %w", err)
	}
	c.log.Info("collection transaction submitted",
		zap.String("collection", address.String()),
		zap.String("signature", sig.String()),
	)

	if err := ledger.WaitForConfirmation(ctx, c.client, sig, c.opts.ConfirmAttempts, c.opts.ConfirmInterval); err != nil {
		return solana.PublicKey{}, err
	}
	return address, nil
}
