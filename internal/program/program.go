// Package program holds the binary contract with the on-chain event program:
// instruction discriminators, payload encoding, account ordering, and
// program-derived address computation.
package program

import (
	"github.com/gagliardetto/solana-go"
)

// CreateEventDiscriminator is the 8-byte prefix identifying the create_event
// instruction to the program's dispatcher.
var CreateEventDiscriminator = [8]byte{49, 219, 29, 203, 22, 98, 100, 87}

// MPLCoreProgramID is the Metaplex Core program referenced by create_event.
var MPLCoreProgramID = solana.MustPublicKeyFromBase58("CoREENxT6tW1HoK8ypY1SxRMZTcVPm7R94rH4PZNhX7d")

// PDA seed prefixes. These byte strings are part of the program contract.
var (
	eventSeed   = []byte("event")
	tippingSeed = []byte("tipping_calculator")
)

// DeriveEventAddress computes the program-derived address of the event
// account owned by the program for a given realtime asset. Pure and
// deterministic.
func DeriveEventAddress(programID, assetKey solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{eventSeed, assetKey.Bytes()},
		programID,
	)
	return addr, err
}

// DeriveTippingAddress computes the tipping-calculator account address for a
// user and realtime asset pair.
func DeriveTippingAddress(programID, assetKey, userKey solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{tippingSeed, assetKey.Bytes(), userKey.Bytes()},
		programID,
	)
	return addr, err
}
