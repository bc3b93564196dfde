// Package publisher announces landed mints to downstream consumers.
package publisher

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/haus-live/haus-mint/internal/domain"
	"github.com/haus-live/haus-mint/pkg/retry"
)

// TopicEventMinted carries one record per successfully minted event.
const TopicEventMinted = "haus.event.minted"

// EventMintedMessage is the record payload for a landed mint.
type EventMintedMessage struct {
	EventID              string    `json:"event_id"`
	Title                string    `json:"title"`
	Category             string    `json:"category"`
	CreatorAddress       string    `json:"creator_address"`
	AssetAddress         string    `json:"asset_address"`
	TransactionSignature string    `json:"transaction_signature"`
	MetadataURI          string    `json:"metadata_uri"`
	MintedAt             time.Time `json:"minted_at"`
}

// Producer is the broker surface the publisher needs.
type Producer interface {
	ProduceJSON(ctx context.Context, topic, key string, value any, headers map[string]string) error
}

// Publisher sends mint announcements. A nil producer turns every publish
// into a no-op so the pipeline works without a broker.
type Publisher struct {
	producer Producer
	retryCfg *retry.Config
	log      *zap.Logger
	now      func() time.Time
}

func New(producer Producer, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{
		producer: producer,
		retryCfg: retry.FixedConfig(3, 500*time.Millisecond),
		log:      log,
		now:      time.Now,
	}
}

// EventMinted publishes a landed mint. Failures are logged and swallowed:
// the mint already landed on chain, announcing it must not fail the request.
func (p *Publisher) EventMinted(ctx context.Context, meta *domain.EventMetadata, uri string, result *domain.MintResult) {
	if p.producer == nil {
		return
	}

	msg := EventMintedMessage{
		EventID:              uuid.NewString(),
		Title:                meta.Title,
		Category:             meta.Category,
		CreatorAddress:       meta.CreatorAddress,
		AssetAddress:         result.AssetAddress,
		TransactionSignature: result.TransactionSignature,
		MetadataURI:          uri,
		MintedAt:             p.now().UTC(),
	}
	headers := map[string]string{
		"message_type": "event.minted",
		"asset":        result.AssetAddress,
	}

	err := retry.Do(ctx, p.retryCfg, func(ctx context.Context) error {
		return p.producer.ProduceJSON(ctx, TopicEventMinted, result.AssetAddress, msg, headers)
	})
	if err != nil {
		p.log.Error("failed to announce minted event",
			zap.String("asset", result.AssetAddress),
			zap.Error(err),
		)
		return
	}
	p.log.Info("minted event announced",
		zap.String("asset", result.AssetAddress),
		zap.String("topic", TopicEventMinted),
	)
}
