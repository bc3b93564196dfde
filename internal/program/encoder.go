package program

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/haus-live/haus-mint/internal/domain"
)

// EncodeCreateEvent serializes CreateEventArgs into the exact byte layout the
// program's deserializer expects:
//
//	discriminator  8 bytes
//	name           u32 LE length + UTF-8 bytes
//	uri            u32 LE length + UTF-8 bytes
//	begin          i64 LE
//	end            i64 LE
//	reserve price  u128 LE (low u64 half first)
//	collection     32-byte public key
//	category       u8 tag
//
// Any reordering, width change, or endianness change here is a
// compatibility-breaking change to the on-chain contract, not a local detail.
func EncodeCreateEvent(args domain.CreateEventArgs) []byte {
	name := []byte(args.Name)
	uri := []byte(args.URI)

	size := 8 + // discriminator
		4 + len(name) +
		4 + len(uri) +
		8 + // begin timestamp
		8 + // end timestamp
		16 + // reserve price
		32 + // ticket collection
		1 // category tag

	data := make([]byte, size)
	var offset int

	putBytes(data, CreateEventDiscriminator[:], &offset)
	putString(data, name, &offset)
	putString(data, uri, &offset)
	putInt64(data, args.BeginTimestamp, &offset)
	putInt64(data, args.EndTimestamp, &offset)
	putUint128(data, args.ReserveLamports, &offset)
	putBytes(data, args.TicketCollection.Bytes(), &offset)
	putUint8(data, args.Category.Index(), &offset)

	return data
}

// BuildCreateEventInstruction assembles the create_event instruction: the
// encoded payload plus the account list in the order the program declares it.
// The realtime asset account must already be created earlier in the same
// transaction.
func BuildCreateEventInstruction(
	programID solana.PublicKey,
	assetKey solana.PublicKey,
	authority solana.PublicKey,
	eventPDA solana.PublicKey,
	args domain.CreateEventArgs,
) solana.Instruction {
	accounts := solana.AccountMetaSlice{
		{PublicKey: assetKey, IsSigner: true, IsWritable: true},
		{PublicKey: authority, IsSigner: true, IsWritable: true},
		{PublicKey: eventPDA, IsSigner: false, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: MPLCoreProgramID, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(programID, accounts, EncodeCreateEvent(args))
}

func putBytes(data, b []byte, offset *int) {
	copy(data[*offset:], b)
	*offset += len(b)
}

func putString(data, s []byte, offset *int) {
	binary.LittleEndian.PutUint32(data[*offset:], uint32(len(s)))
	*offset += 4
	copy(data[*offset:], s)
	*offset += len(s)
}

func putInt64(data []byte, v int64, offset *int) {
	binary.LittleEndian.PutUint64(data[*offset:], uint64(v))
	*offset += 8
}

// putUint128 writes v as a little-endian u128: low half then high half. The
// reserve price fits in 64 bits, so the high half is always zero.
func putUint128(data []byte, v uint64, offset *int) {
	binary.LittleEndian.PutUint64(data[*offset:], v)
	*offset += 8
	binary.LittleEndian.PutUint64(data[*offset:], 0)
	*offset += 8
}

func putUint8(data []byte, v uint8, offset *int) {
	data[*offset] = v
	*offset++
}
