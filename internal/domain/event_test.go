package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketDurationSeconds(t *testing.T) {
	tests := []struct {
		minutes int64
		want    int64
	}{
		{5, 15 * 60},  // shorter than every bucket: smallest
		{15, 15 * 60}, // exact bucket
		{20, 15 * 60}, // round down
		{30, 30 * 60},
		{40, 30 * 60},
		{45, 45 * 60},
		{50, 45 * 60},
		{60, 45 * 60}, // default form duration lands in the largest bucket
		{240, 45 * 60},
	}

	for _, tt := range tests {
		got := BucketDurationSeconds(tt.minutes * 60)
		assert.Equal(t, tt.want, got, "%d minutes", tt.minutes)
	}
}

func TestClampStartTime(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	past := now.Add(-time.Hour)
	assert.Equal(t, now.Add(time.Minute), ClampStartTime(past, now))

	assert.Equal(t, now.Add(time.Minute), ClampStartTime(now, now))

	future := now.Add(2 * time.Hour)
	assert.Equal(t, future, ClampStartTime(future, now))
}

func TestMintRequest_NumericDefaults(t *testing.T) {
	r := &MintRequest{}

	assert.Equal(t, DefaultDurationMinutes, r.DurationMinutes())
	assert.Equal(t, DefaultTicketPriceSOL, r.TicketPriceSOL())
	assert.Equal(t, DefaultTicketsAmount, r.TicketCount())
	assert.Equal(t, float64(0), r.ReservePriceSOL())
}

func TestMintRequest_NumericParsing(t *testing.T) {
	r := &MintRequest{
		Duration:      "30",
		TicketPrice:   "0.5",
		TicketsAmount: "250",
		ReservePrice:  "1.25",
	}

	assert.Equal(t, 30, r.DurationMinutes())
	assert.Equal(t, 0.5, r.TicketPriceSOL())
	assert.Equal(t, 250, r.TicketCount())
	assert.Equal(t, 1.25, r.ReservePriceSOL())
}

func TestMintRequest_GarbageNumericsFallBack(t *testing.T) {
	r := &MintRequest{
		Duration:      "soon",
		TicketPrice:   "-3",
		TicketsAmount: "many",
		ReservePrice:  "NaN-ish",
	}

	assert.Equal(t, DefaultDurationMinutes, r.DurationMinutes())
	assert.Equal(t, DefaultTicketPriceSOL, r.TicketPriceSOL())
	assert.Equal(t, DefaultTicketsAmount, r.TicketCount())
	assert.Equal(t, float64(0), r.ReservePriceSOL())
}

func TestMintRequest_NoCapOverridesCount(t *testing.T) {
	r := &MintRequest{TicketsAmount: "10", NoCap: true}
	assert.Equal(t, NoCapTicketsAmount, r.TicketCount())
}

func TestMintRequest_TicketCountBounds(t *testing.T) {
	assert.Equal(t, DefaultTicketsAmount, (&MintRequest{TicketsAmount: "0"}).TicketCount())
	assert.Equal(t, DefaultTicketsAmount, (&MintRequest{TicketsAmount: "10001"}).TicketCount())
	assert.Equal(t, MaxTicketsAmount, (&MintRequest{TicketsAmount: "10000"}).TicketCount())
}

func TestMintRequest_StartTime(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	r := &MintRequest{Date: "2026-06-01", Time: "19:30"}
	assert.Equal(t, time.Date(2026, 6, 1, 19, 30, 0, 0, time.UTC), r.StartTime(now))

	// Missing date falls back to now; clamping then moves it forward.
	r = &MintRequest{}
	assert.Equal(t, now, r.StartTime(now))

	// Date without time means midnight.
	r = &MintRequest{Date: "2026-06-01"}
	assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), r.StartTime(now))
}

func TestSOLToLamports(t *testing.T) {
	assert.Equal(t, uint64(0), SOLToLamports(0))
	assert.Equal(t, uint64(0), SOLToLamports(-1))
	assert.Equal(t, uint64(1_500_000_000), SOLToLamports(1.5))
	assert.Equal(t, uint64(100_000_000), SOLToLamports(0.1))
}

func TestTicketCollectionConfig_Validate(t *testing.T) {
	valid := NewTicketCollectionConfig("Night Show", "desc", "addr", "https://img", "abcd", 99, 0.1)
	require.NoError(t, valid.Validate())
	assert.Equal(t, "Tickets: Night Show #abcd", valid.Name)
	assert.Equal(t, 0, valid.SellerFeeBasisPoints)

	bad := valid
	bad.MaxSupply = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidTicketConfig)

	bad = valid
	bad.UnitPriceSOL = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidTicketConfig)

	bad = valid
	bad.Creators = []CreatorShare{{Address: "a", Share: 60}, {Address: "b", Share: 60}}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidTicketConfig)
}
