// Package metadata turns raw event forms into pinned metadata documents.
package metadata

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/haus-live/haus-mint/internal/domain"
)

// ContentStore is the pinning surface the assembler needs.
type ContentStore interface {
	UploadFile(ctx context.Context, name string, content io.Reader) (string, error)
	UploadJSON(ctx context.Context, name string, doc any) (string, error)
	Resolve(cid string) string
}

// Assembler builds and pins the canonical event metadata document.
type Assembler struct {
	store ContentStore
	log   *zap.Logger
	now   func() time.Time
}

// NewAssembler creates an assembler. The clock is injectable for tests.
func NewAssembler(store ContentStore, log *zap.Logger) *Assembler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Assembler{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// WithClock overrides the assembler's clock.
func (a *Assembler) WithClock(now func() time.Time) *Assembler {
	a.now = now
	return a
}

// Prepare normalizes the form, pins the banner and the metadata document,
// and returns the document's retrieval URI together with the normalized
// metadata. A missing banner fails hard before any store call.
func (a *Assembler) Prepare(ctx context.Context, req *domain.MintRequest, creatorAddress string) (string, *domain.EventMetadata, error) {
	if len(req.Banner) == 0 {
		return "", nil, domain.ErrMissingBanner
	}

	now := a.now()
	start := domain.ClampStartTime(req.StartTime(now), now)
	durationSec := domain.BucketDurationSeconds(int64(req.DurationMinutes()) * 60)

	bannerName := req.BannerName
	if bannerName == "" {
		bannerName = "banner"
	}
	bannerCID, err := a.store.UploadFile(ctx, bannerName, bytes.NewReader(req.Banner))
	if err != nil {
		return "", nil, fmt.Errorf("%w: banner: %v", domain.ErrMetadataUpload, err)
	}

	category, known := domain.ParseArtCategory(req.Category)
	if !known {
		a.log.Warn("unknown art category, using default",
			zap.String("requested", req.Category),
			zap.String("assigned", category.Label()),
		)
	}

	meta := &domain.EventMetadata{
		Title:          req.Title,
		Description:    req.Description,
		BannerURL:      a.store.Resolve(bannerCID),
		BannerCID:      bannerCID,
		Creator:        req.CreatorName,
		CreatorAddress: creatorAddress,
		Category:       category.Label(),
		Date:           start.UTC().Format(time.RFC3339),
		Duration:       int(durationSec / 60),
		TicketPrice:    req.TicketPriceSOL(),
		TicketsAmount:  req.TicketCount(),
		ReservePrice:   req.ReservePriceSOL(),
	}

	metaCID, err := a.store.UploadJSON(ctx, fmt.Sprintf("event-%s", req.Title), meta)
	if err != nil {
		return "", nil, fmt.Errorf("%w: document: %v", domain.ErrMetadataUpload, err)
	}

	a.log.Info("event metadata pinned",
		zap.String("title", req.Title),
		zap.String("banner_cid", bannerCID),
		zap.String("metadata_cid", metaCID),
	)
	return a.store.Resolve(metaCID), meta, nil
}
