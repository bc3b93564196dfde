// Package minter orchestrates the end-to-end event mint: form validation,
// metadata pinning, collection creation, transaction assembly, signing,
// submission, and confirmation.
package minter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/haus-live/haus-mint/internal/domain"
	"github.com/haus-live/haus-mint/internal/ledger"
	"github.com/haus-live/haus-mint/internal/program"
	"github.com/haus-live/haus-mint/internal/wallet"
)

const (
	// DefaultKeypairRetryLimit bounds the asset address collision loop.
	DefaultKeypairRetryLimit = 3
	// DefaultSignTimeout bounds how long the wallet may take to countersign.
	DefaultSignTimeout = 90 * time.Second

	// assetAccountSpace is zero: the mint program initializes the asset
	// account itself after taking ownership.
	assetAccountSpace = 0
)

// MetadataPreparer pins the event metadata document.
type MetadataPreparer interface {
	Prepare(ctx context.Context, req *domain.MintRequest, creatorAddress string) (string, *domain.EventMetadata, error)
}

// CollectionCreator mints the supporting ticket collection.
type CollectionCreator interface {
	CreateCollection(ctx context.Context, signer wallet.Signer, cfg domain.TicketCollectionConfig) (solana.PublicKey, error)
}

// Announcer is notified after a mint lands. It must not fail the mint.
type Announcer interface {
	EventMinted(ctx context.Context, meta *domain.EventMetadata, uri string, result *domain.MintResult)
}

// Options tunes the pipeline.
type Options struct {
	KeypairRetryLimit int
	SignTimeout       time.Duration
	SkipPreflight     bool
	ConfirmAttempts   int
	ConfirmInterval   time.Duration
}

func (o Options) normalized() Options {
	if o.KeypairRetryLimit <= 0 {
		o.KeypairRetryLimit = DefaultKeypairRetryLimit
	}
	if o.SignTimeout <= 0 {
		o.SignTimeout = DefaultSignTimeout
	}
	return o
}

// Minter runs the mint pipeline against a single on-chain program.
type Minter struct {
	programID   solana.PublicKey
	client      ledger.Client
	metadata    MetadataPreparer
	collections CollectionCreator
	generate    wallet.KeypairGenerator
	opts        Options
	observer    Observer
	announcer   Announcer
	log         *zap.Logger
	now         func() time.Time
	suffix      func() string
}

// NewMinter wires the pipeline. Generator, observer, and logger have working
// defaults when nil.
func NewMinter(
	programID solana.PublicKey,
	client ledger.Client,
	metadata MetadataPreparer,
	collections CollectionCreator,
	generate wallet.KeypairGenerator,
	opts Options,
	observer Observer,
	log *zap.Logger,
) *Minter {
	if generate == nil {
		generate = wallet.NewRandomKeypair
	}
	if log == nil {
		log = zap.NewNop()
	}
	if observer == nil {
		observer = NewLogObserver(log)
	}
	return &Minter{
		programID:   programID,
		client:      client,
		metadata:    metadata,
		collections: collections,
		generate:    generate,
		opts:        opts.normalized(),
		observer:    observer,
		log:         log,
		now:         time.Now,
		suffix:      func() string { return uuid.NewString()[:8] },
	}
}

// WithClock overrides the pipeline clock.
func (m *Minter) WithClock(now func() time.Time) *Minter {
	m.now = now
	return m
}

// WithSuffix overrides the collection name suffix source.
func (m *Minter) WithSuffix(suffix func() string) *Minter {
	m.suffix = suffix
	return m
}

// WithAnnouncer registers a post-mint notification sink.
func (m *Minter) WithAnnouncer(a Announcer) *Minter {
	m.announcer = a
	return m
}

// MintEvent runs the full pipeline and returns the landed transaction
// signature together with the new asset address.
func (m *Minter) MintEvent(ctx context.Context, signer wallet.Signer, req *domain.MintRequest) (*domain.MintResult, error) {
	result, stage, err := m.mint(ctx, signer, req)
	if err != nil {
		m.observer.Failed(stage, err)
		return nil, err
	}
	return result, nil
}

func (m *Minter) mint(ctx context.Context, signer wallet.Signer, req *domain.MintRequest) (*domain.MintResult, string, error) {
	// Input checks run before any network traffic.
	m.observer.Stage(StageValidate, zap.String("title", req.Title))
	if len(req.Banner) == 0 {
		return nil, StageValidate, domain.ErrMissingBanner
	}

	m.observer.Stage(StageWalletCheck)
	if err := wallet.CheckCapabilities(signer); err != nil {
		return nil, StageWalletCheck, err
	}

	m.observer.Stage(StageNetworkProbe)
	version, err := m.client.Version(ctx)
	if err != nil {
		return nil, StageNetworkProbe, fmt.Errorf("%w: %v", domain.ErrNetworkUnavailable, err)
	}
	m.log.Debug("node reachable", zap.String("version", version))

	assetKey, err := m.freshAssetKeypair(ctx)
	if err != nil {
		return nil, StageKeypair, err
	}
	m.observer.Stage(StageKeypair, zap.Stringer("asset", assetKey.PublicKey()))

	creatorAddress := signer.PublicKey().String()
	uri, meta, err := m.metadata.Prepare(ctx, req, creatorAddress)
	if err != nil {
		return nil, StageMetadata, err
	}
	m.observer.Stage(StageMetadata, zap.String("uri", uri))

	collectionCfg := domain.NewTicketCollectionConfig(
		meta.Title,
		meta.Description,
		creatorAddress,
		meta.BannerURL,
		m.suffix(),
		meta.TicketsAmount,
		meta.TicketPrice,
	)
	collectionKey, err := m.collections.CreateCollection(ctx, signer, collectionCfg)
	if err != nil {
		return nil, StageCollection, err
	}
	m.observer.Stage(StageCollection, zap.Stringer("collection", collectionKey))

	args, err := m.buildArgs(meta, uri, collectionKey)
	if err != nil {
		return nil, StageEncode, err
	}

	eventPDA, err := program.DeriveEventAddress(m.programID, assetKey.PublicKey())
	if err != nil {
		return nil, StageEncode, fmt.Errorf("derive event address: %w", err)
	}
	m.observer.Stage(StageEncode, zap.Stringer("event_pda", eventPDA))

	tx, err := m.assembleTransaction(ctx, signer, assetKey, eventPDA, args)
	if err != nil {
		return nil, StageEncode, err
	}

	m.observer.Stage(StageSign)
	if err := m.signWithTimeout(ctx, signer, tx); err != nil {
		return nil, StageSign, err
	}

	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, StageSubmit, fmt.Errorf("serialize transaction: %w", err)
	}
	sig, err := m.client.SendTransaction(ctx, raw, m.opts.SkipPreflight)
	if err != nil {
		return nil, StageSubmit, err
	}
	m.observer.Stage(StageSubmit, zap.Stringer("signature", sig))

	if err := ledger.WaitForConfirmation(ctx, m.client, sig, m.opts.ConfirmAttempts, m.opts.ConfirmInterval); err != nil {
		return nil, StageConfirm, err
	}
	m.observer.Stage(StageDone, zap.Stringer("signature", sig), zap.Stringer("asset", assetKey.PublicKey()))

	result := &domain.MintResult{
		TransactionSignature: sig.String(),
		AssetAddress:         assetKey.PublicKey().String(),
	}
	if m.announcer != nil {
		m.announcer.EventMinted(ctx, meta, uri, result)
	}
	return result, StageDone, nil
}

// freshAssetKeypair generates keypairs until one maps to an unused address,
// up to the retry limit.
func (m *Minter) freshAssetKeypair(ctx context.Context) (solana.PrivateKey, error) {
	for attempt := 1; attempt <= m.opts.KeypairRetryLimit; attempt++ {
		key, err := m.generate()
		if err != nil {
			return nil, fmt.Errorf("generate asset keypair: %w", err)
		}
		exists, err := m.client.AccountExists(ctx, key.PublicKey())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrNetworkUnavailable, err)
		}
		if !exists {
			return key, nil
		}
		m.log.Warn("asset address collision",
			zap.Stringer("address", key.PublicKey()),
			zap.Int("attempt", attempt),
		)
	}
	return nil, domain.ErrKeypairExhausted
}

func (m *Minter) buildArgs(meta *domain.EventMetadata, uri string, collectionKey solana.PublicKey) (domain.CreateEventArgs, error) {
	start, err := meta.StartTime()
	if err != nil {
		return domain.CreateEventArgs{}, fmt.Errorf("parse metadata date: %w", err)
	}
	begin := start.Unix()
	end := begin + int64(meta.Duration)*60

	category, _ := domain.ParseArtCategory(meta.Category)

	return domain.CreateEventArgs{
		Name:             meta.Title,
		URI:              uri,
		BeginTimestamp:   begin,
		EndTimestamp:     end,
		ReserveLamports:  domain.SOLToLamports(meta.ReservePrice),
		TicketCollection: collectionKey,
		Category:         category,
	}, nil
}

// assembleTransaction builds the two-instruction transaction: create the
// asset account owned by the mint program, then create the event, and signs
// with the asset key.
func (m *Minter) assembleTransaction(
	ctx context.Context,
	signer wallet.Signer,
	assetKey solana.PrivateKey,
	eventPDA solana.PublicKey,
	args domain.CreateEventArgs,
) (*solana.Transaction, error) {
	rent, err := m.client.MinimumBalanceForRentExemption(ctx, assetAccountSpace)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetworkUnavailable, err)
	}
	blockhash, err := m.client.LatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetworkUnavailable, err)
	}

	createAccount := system.NewCreateAccountInstruction(
		rent,
		assetAccountSpace,
		m.programID,
		signer.PublicKey(),
		assetKey.PublicKey(),
	).Build()
	createEvent := program.BuildCreateEventInstruction(
		m.programID,
		assetKey.PublicKey(),
		signer.PublicKey(),
		eventPDA,
		args,
	)

	tx, err := solana.NewTransaction(
		[]solana.Instruction{createAccount, createEvent},
		blockhash,
		solana.TransactionPayer(signer.PublicKey()),
	)
	if err != nil {
		return nil, fmt.Errorf("assemble transaction: %w", err)
	}

	if _, err := tx.PartialSign(func(pk solana.PublicKey) *solana.PrivateKey {
		if pk.Equals(assetKey.PublicKey()) {
			return &assetKey
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("sign with asset key: %w", err)
	}
	return tx, nil
}

// signWithTimeout asks the wallet to countersign, bounded by the sign
// timeout so an unresponsive wallet cannot hang the pipeline.
func (m *Minter) signWithTimeout(ctx context.Context, signer wallet.Signer, tx *solana.Transaction) error {
	signCtx, cancel := context.WithTimeout(ctx, m.opts.SignTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- signer.SignTransaction(signCtx, tx)
	}()

	select {
	case err := <-done:
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				return domain.ErrWalletSignTimeout
			}
			return err
		}
		return nil
	case <-signCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return domain.ErrWalletSignTimeout
	}
}
