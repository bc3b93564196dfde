package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
)

// Form defaults applied when a field is missing or unparseable.
const (
	DefaultDurationMinutes = 60
	DefaultTicketPriceSOL  = 0.1
	DefaultTicketsAmount   = 99
	NoCapTicketsAmount     = 1000
	MaxTicketsAmount       = 10000

	// LamportsPerSOL is the smallest-unit conversion factor.
	LamportsPerSOL = 1_000_000_000
)

// durationBuckets are the only event lengths the on-chain program accepts,
// in seconds.
var durationBuckets = []int64{15 * 60, 30 * 60, 45 * 60}

// MintRequest is the raw form record handed over by the UI layer. Numeric
// fields arrive as strings and are normalized defensively; accessor methods
// apply the documented defaults.
type MintRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`

	// Banner is the raw image content; BannerName is its original filename.
	Banner     []byte `json:"-"`
	BannerName string `json:"-"`

	// Date is "2006-01-02" and Time is "15:04", both in the creator's terms.
	Date string `json:"date"`
	Time string `json:"time"`

	Duration      string `json:"duration"`
	TicketPrice   string `json:"ticket_price"`
	TicketsAmount string `json:"tickets_amount"`
	ReservePrice  string `json:"reserve_price"`
	NoCap         bool   `json:"no_cap"`

	CreatorName string `json:"creator_name"`
}

// DurationMinutes parses the requested duration, defaulting to 60 minutes.
func (r *MintRequest) DurationMinutes() int {
	if v, err := strconv.Atoi(strings.TrimSpace(r.Duration)); err == nil && v > 0 {
		return v
	}
	return DefaultDurationMinutes
}

// TicketPriceSOL parses the ticket price, defaulting to 0.1 SOL.
func (r *MintRequest) TicketPriceSOL() float64 {
	if v, err := strconv.ParseFloat(strings.TrimSpace(r.TicketPrice), 64); err == nil && v >= 0 {
		return v
	}
	return DefaultTicketPriceSOL
}

// TicketCount parses the ticket amount, defaulting to 99. The no-cap flag
// overrides it with the fixed open-capacity pool size.
func (r *MintRequest) TicketCount() int {
	if r.NoCap {
		return NoCapTicketsAmount
	}
	if v, err := strconv.Atoi(strings.TrimSpace(r.TicketsAmount)); err == nil && v >= 1 && v <= MaxTicketsAmount {
		return v
	}
	return DefaultTicketsAmount
}

// ReservePriceSOL parses the reserve price, defaulting to 0.
func (r *MintRequest) ReservePriceSOL() float64 {
	if v, err := strconv.ParseFloat(strings.TrimSpace(r.ReservePrice), 64); err == nil && v >= 0 {
		return v
	}
	return 0
}

// StartTime combines the date and time fields. A missing or malformed date
// falls back to now (which the clamping rule then pushes into the future).
func (r *MintRequest) StartTime(now time.Time) time.Time {
	day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(r.Date), time.UTC)
	if err != nil {
		return now
	}
	start := day
	if hhmm := strings.TrimSpace(r.Time); hhmm != "" {
		if t, err := time.Parse("15:04", hhmm); err == nil {
			start = start.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
		}
	}
	return start
}

// ClampStartTime enforces the begin-in-the-future invariant: a start at or
// before now is pushed one minute forward.
func ClampStartTime(start, now time.Time) time.Time {
	if !start.After(now) {
		return now.Add(time.Minute)
	}
	return start
}

// BucketDurationSeconds maps a requested duration onto the nearest allowed
// bucket not exceeding it, or the smallest bucket when the request is shorter
// than every bucket.
func BucketDurationSeconds(requested int64) int64 {
	selected := durationBuckets[0]
	for _, b := range durationBuckets {
		if b <= requested {
			selected = b
		}
	}
	return selected
}

// EventMetadata is the canonical off-chain description of an event, stored as
// a content-addressed JSON document. Field names are part of the stored
// format.
type EventMetadata struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	BannerURL      string  `json:"bannerUrl"`
	BannerCID      string  `json:"bannerCid"`
	Creator        string  `json:"creator"`
	CreatorAddress string  `json:"creatorAddress"`
	Category       string  `json:"category"`
	Date           string  `json:"date"` // RFC 3339
	Duration       int     `json:"duration"` // minutes, already bucketed
	TicketPrice    float64 `json:"ticketPrice"`
	TicketsAmount  int     `json:"ticketsAmount"`
	ReservePrice   float64 `json:"reservePrice"`
}

// StartTime parses the stored RFC 3339 date.
func (m *EventMetadata) StartTime() (time.Time, error) {
	return time.Parse(time.RFC3339, m.Date)
}

// CreateEventArgs is the binary payload contract with the on-chain program.
// Field order, integer widths, and little-endian byte order are load-bearing;
// see the instruction encoder.
type CreateEventArgs struct {
	Name             string
	URI              string
	BeginTimestamp   int64
	EndTimestamp     int64
	ReserveLamports  uint64 // written on the wire as a u128
	TicketCollection solana.PublicKey
	Category         ArtCategory
}

// SOLToLamports converts a SOL amount to the smallest currency unit,
// truncating fractional lamports.
func SOLToLamports(sol float64) uint64 {
	if sol <= 0 {
		return 0
	}
	return uint64(sol * LamportsPerSOL)
}

// CreatorShare is one entry of a collection's revenue split.
type CreatorShare struct {
	Address string `json:"address"`
	Share   int    `json:"share"`
}

// TicketCollectionConfig parameterizes the supporting ticket-collection
// account minted alongside an event.
type TicketCollectionConfig struct {
	Name                 string
	Symbol               string
	Description          string
	BannerURL            string
	SellerFeeBasisPoints int // fixed at 0: tickets are meant to be burned
	Creators             []CreatorShare
	IsMutable            bool
	MaxSupply            int
	UnitPriceSOL         float64
}

// NewTicketCollectionConfig builds the standard collection config for an
// event. The suffix keeps collection names unique across repeated mints of
// identically titled events.
func NewTicketCollectionConfig(title, description, creatorAddress, bannerURL, suffix string, maxSupply int, unitPrice float64) TicketCollectionConfig {
	name := fmt.Sprintf("Tickets: %s", title)
	if suffix != "" {
		name = fmt.Sprintf("%s #%s", name, suffix)
	}
	return TicketCollectionConfig{
		Name:                 name,
		Symbol:               "HAUS",
		Description:          description,
		BannerURL:            bannerURL,
		SellerFeeBasisPoints: 0,
		Creators: []CreatorShare{
			{Address: creatorAddress, Share: 100},
		},
		IsMutable:    true,
		MaxSupply:    maxSupply,
		UnitPriceSOL: unitPrice,
	}
}

// Validate enforces the collection invariants: positive supply and price,
// creator shares summing to exactly 100.
func (c *TicketCollectionConfig) Validate() error {
	if c.MaxSupply < 1 {
		return fmt.Errorf("%w: max supply must be positive, got %d", ErrInvalidTicketConfig, c.MaxSupply)
	}
	if c.UnitPriceSOL <= 0 {
		return fmt.Errorf("%w: unit price must be positive, got %v", ErrInvalidTicketConfig, c.UnitPriceSOL)
	}
	total := 0
	for _, cr := range c.Creators {
		total += cr.Share
	}
	if total != 100 {
		return fmt.Errorf("%w: creator shares sum to %d, want 100", ErrInvalidTicketConfig, total)
	}
	return nil
}

// MintResult is what the pipeline hands back to the UI layer.
type MintResult struct {
	TransactionSignature string `json:"transaction_signature"`
	AssetAddress         string `json:"asset_address"`
}
