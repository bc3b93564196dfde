// Package di builds the service dependency graph.
package di

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/haus-live/haus-mint/internal/collection"
	"github.com/haus-live/haus-mint/internal/config"
	"github.com/haus-live/haus-mint/internal/domain"
	"github.com/haus-live/haus-mint/internal/handler"
	"github.com/haus-live/haus-mint/internal/ipfs"
	"github.com/haus-live/haus-mint/internal/ledger"
	"github.com/haus-live/haus-mint/internal/metadata"
	"github.com/haus-live/haus-mint/internal/minter"
	"github.com/haus-live/haus-mint/internal/publisher"
	"github.com/haus-live/haus-mint/internal/wallet"
	"github.com/haus-live/haus-mint/pkg/kafka"
)

// Container holds all dependencies for the mint service.
type Container struct {
	// Infrastructure
	Ledger   ledger.Client
	Store    *ipfs.Client
	Signer   wallet.Signer
	Producer *kafka.Producer

	// Pipeline
	Minter     *minter.Minter
	Classifier *minter.Classifier

	// Handlers
	MintHandler   *handler.MintHandler
	HealthHandler *handler.HealthHandler
}

// ContainerConfig carries the pieces main has already connected.
type ContainerConfig struct {
	Config   *config.Config
	Logger   *zap.Logger
	Producer *kafka.Producer
}

// NewContainer wires the mint pipeline from configuration.
func NewContainer(cfg *ContainerConfig) (*Container, error) {
	conf := cfg.Config
	log := cfg.Logger

	programID, err := resolveProgramID(conf)
	if err != nil {
		return nil, err
	}

	signer, err := resolveSigner(conf, log)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Ledger: ledger.NewRPCClient(conf.Solana.RPCURL, conf.Solana.Commitment),
		Store: ipfs.NewClient(ipfs.Config{
			BaseURL:    conf.Pinata.BaseURL,
			GatewayURL: conf.Pinata.GatewayURL,
			JWT:        conf.Pinata.JWT,
			APIKey:     conf.Pinata.APIKey,
			APISecret:  conf.Pinata.APISecret,
			Timeout:    conf.Pinata.Timeout,
		}, log),
		Signer:     signer,
		Producer:   cfg.Producer,
		Classifier: minter.NewClassifier(conf.Mint.ProgramErrorTable()),
	}

	assembler := metadata.NewAssembler(c.Store, log)
	collections := collection.NewCreator(c.Store, c.Ledger, nil, collection.Options{
		SkipPreflight:   conf.Mint.SkipPreflight,
		ConfirmAttempts: conf.Mint.ConfirmAttempts,
		ConfirmInterval: conf.Mint.ConfirmInterval,
	}, log)

	c.Minter = minter.NewMinter(
		programID,
		c.Ledger,
		assembler,
		collections,
		nil,
		minter.Options{
			KeypairRetryLimit: conf.Mint.KeypairRetryLimit,
			SignTimeout:       conf.Mint.SignTimeout,
			SkipPreflight:     conf.Mint.SkipPreflight,
			ConfirmAttempts:   conf.Mint.ConfirmAttempts,
			ConfirmInterval:   conf.Mint.ConfirmInterval,
		},
		nil,
		log,
	)
	if cfg.Producer != nil {
		c.Minter.WithAnnouncer(publisher.New(cfg.Producer, log))
	}

	c.MintHandler = handler.NewMintHandler(&boundMinter{minter: c.Minter, signer: signer}, c.Classifier, log)
	c.HealthHandler = handler.NewHealthHandler(c.Ledger, conf.App.Version)

	return c, nil
}

// boundMinter pins the service signer onto the pipeline.
type boundMinter struct {
	minter *minter.Minter
	signer wallet.Signer
}

func (b *boundMinter) MintEvent(ctx context.Context, req *domain.MintRequest) (*domain.MintResult, error) {
	return b.minter.MintEvent(ctx, b.signer, req)
}

func resolveProgramID(conf *config.Config) (solana.PublicKey, error) {
	if conf.Solana.ProgramID == "" {
		if conf.IsProduction() {
			return solana.PublicKey{}, fmt.Errorf("program id is required in production")
		}
		// Development default: the devnet event factory deployment.
		return solana.MustPublicKeyFromBase58("Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS"), nil
	}
	pk, err := solana.PublicKeyFromBase58(conf.Solana.ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("parse program id: %w", err)
	}
	return pk, nil
}

func resolveSigner(conf *config.Config, log *zap.Logger) (wallet.Signer, error) {
	if conf.Wallet.PrivateKey != "" {
		return wallet.KeypairSignerFromBase58(conf.Wallet.PrivateKey)
	}
	if conf.IsProduction() {
		return nil, fmt.Errorf("wallet private key is required in production")
	}
	key, err := wallet.NewRandomKeypair()
	if err != nil {
		return nil, fmt.Errorf("generate development wallet: %w", err)
	}
	log.Warn("no wallet configured, using a throwaway development key",
		zap.Stringer("address", key.PublicKey()),
	)
	return wallet.NewKeypairSigner(key), nil
}
