package minter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/haus-live/haus-mint/internal/domain"
)

// ErrorCategory buckets pipeline failures for presentation and retry policy.
type ErrorCategory string

const (
	CategoryWalletRejected      ErrorCategory = "wallet_rejected"
	CategoryNetwork             ErrorCategory = "network"
	CategoryInvalidParams       ErrorCategory = "invalid_params"
	CategoryProgramRejected     ErrorCategory = "program_rejected"
	CategoryConfirmationTimeout ErrorCategory = "confirmation_timeout"
	CategoryInternal            ErrorCategory = "internal"
)

// MintError is a classified pipeline failure with an operator-facing message.
type MintError struct {
	Category ErrorCategory
	Message  string
	Err      error
}

func (e *MintError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *MintError) Unwrap() error {
	return e.Err
}

// Classifier maps raw pipeline errors onto categories. The program error
// code table is configuration: hex custom-error codes to friendly messages.
type Classifier struct {
	codeMessages map[string]string
}

// NewClassifier builds a classifier. Keys of codeMessages are hex custom
// program error codes like "0x1780".
func NewClassifier(codeMessages map[string]string) *Classifier {
	if codeMessages == nil {
		codeMessages = map[string]string{}
	}
	return &Classifier{codeMessages: codeMessages}
}

// Classify inspects an error purely by its text and sentinel chain; it never
// re-queries the chain.
func (c *Classifier) Classify(err error) *MintError {
	if err == nil {
		return nil
	}
	var already *MintError
	if errors.As(err, &already) {
		return already
	}

	switch {
	case errors.Is(err, domain.ErrConfirmationTimeout):
		return &MintError{
			Category: CategoryConfirmationTimeout,
			Message:  "transaction was submitted but did not confirm in time",
			Err:      err,
		}
	case errors.Is(err, domain.ErrWalletNotReady), errors.Is(err, domain.ErrWalletSignTimeout):
		return &MintError{
			Category: CategoryWalletRejected,
			Message:  "wallet is not ready to sign",
			Err:      err,
		}
	case errors.Is(err, domain.ErrNetworkUnavailable):
		return &MintError{
			Category: CategoryNetwork,
			Message:  "chain RPC endpoint is unreachable",
			Err:      err,
		}
	case errors.Is(err, domain.ErrMissingBanner),
		errors.Is(err, domain.ErrInvalidTicketConfig),
		errors.Is(err, domain.ErrUnknownCategory):
		return &MintError{
			Category: CategoryInvalidParams,
			Message:  "event request is invalid",
			Err:      err,
		}
	case errors.Is(err, domain.ErrKeypairExhausted):
		return &MintError{
			Category: CategoryInternal,
			Message:  "could not find a free asset address",
			Err:      err,
		}
	case errors.Is(err, domain.ErrMetadataUpload):
		return &MintError{
			Category: CategoryInternal,
			Message:  "metadata storage is unavailable",
			Err:      err,
		}
	}

	text := err.Error()
	for code, message := range c.codeMessages {
		if strings.Contains(text, code) {
			return &MintError{Category: CategoryInvalidParams, Message: message, Err: err}
		}
	}

	switch {
	case strings.Contains(text, "User rejected"):
		return &MintError{
			Category: CategoryWalletRejected,
			Message:  "signature request was declined",
			Err:      err,
		}
	case strings.Contains(text, "Blockhash not found"),
		strings.Contains(text, "already been processed"):
		return &MintError{
			Category: CategoryNetwork,
			Message:  "cluster is congested or the transaction expired, retry",
			Err:      err,
		}
	case strings.Contains(text, "InstructionDidNotDeserialize"):
		return &MintError{
			Category: CategoryProgramRejected,
			Message:  "program rejected the instruction payload",
			Err:      err,
		}
	case strings.Contains(text, "custom program error"):
		return &MintError{
			Category: CategoryProgramRejected,
			Message:  "program rejected the transaction",
			Err:      err,
		}
	}

	return &MintError{
		Category: CategoryInternal,
		Message:  "event mint failed",
		Err:      err,
	}
}
