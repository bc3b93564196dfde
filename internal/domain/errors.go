package domain

import "errors"

// Pipeline errors. Lower layers return these named conditions; the minter is
// the single place that translates them into user-facing categories.
var (
	ErrWalletNotReady     = errors.New("wallet is not connected or cannot sign")
	ErrNetworkUnavailable = errors.New("ledger rpc is unreachable")
	ErrKeypairExhausted   = errors.New("could not generate an unused asset keypair")
	ErrMissingBanner      = errors.New("banner image is required")
	ErrMetadataUpload     = errors.New("failed to store event metadata")
	ErrConfirmationTimeout = errors.New("transaction confirmation timeout")
	ErrUnknownCategory    = errors.New("unknown art category")
	ErrInvalidTicketConfig = errors.New("invalid ticket collection configuration")
	ErrWalletSignTimeout  = errors.New("wallet did not respond to the signature request")
)
