package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/haus-live/haus-mint/internal/domain"
	"github.com/haus-live/haus-mint/pkg/retry"
)

type mockProducer struct {
	mock.Mock
}

func (m *mockProducer) ProduceJSON(ctx context.Context, topic, key string, value any, headers map[string]string) error {
	args := m.Called(ctx, topic, key, value, headers)
	return args.Error(0)
}

func testInputs() (*domain.EventMetadata, string, *domain.MintResult) {
	meta := &domain.EventMetadata{
		Title:          "Standup Night",
		Category:       "standup-comedy",
		CreatorAddress: "CreatorAddr",
	}
	result := &domain.MintResult{
		TransactionSignature: "sig123",
		AssetAddress:         "asset456",
	}
	return meta, "https://gw.test/ipfs/QmMeta", result
}

func TestEventMinted_Publishes(t *testing.T) {
	producer := new(mockProducer)
	var published EventMintedMessage
	producer.On("ProduceJSON", mock.Anything, TopicEventMinted, "asset456", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			published = args.Get(3).(EventMintedMessage)
		}).Return(nil).Once()

	p := New(producer, nil)
	p.now = func() time.Time { return time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC) }

	meta, uri, result := testInputs()
	p.EventMinted(context.Background(), meta, uri, result)

	producer.AssertExpectations(t)
	assert.Equal(t, "Standup Night", published.Title)
	assert.Equal(t, "asset456", published.AssetAddress)
	assert.Equal(t, "sig123", published.TransactionSignature)
	assert.Equal(t, uri, published.MetadataURI)
	assert.NotEmpty(t, published.EventID)
	assert.Equal(t, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC), published.MintedAt)
}

func TestEventMinted_RetriesThenSucceeds(t *testing.T) {
	producer := new(mockProducer)
	producer.On("ProduceJSON", mock.Anything, TopicEventMinted, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("broker unavailable")).Twice()
	producer.On("ProduceJSON", mock.Anything, TopicEventMinted, mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	p := New(producer, nil)
	p.retryCfg = retry.FixedConfig(3, time.Millisecond)

	meta, uri, result := testInputs()
	p.EventMinted(context.Background(), meta, uri, result)

	producer.AssertNumberOfCalls(t, "ProduceJSON", 3)
}

func TestEventMinted_SwallowsExhaustedFailure(t *testing.T) {
	producer := new(mockProducer)
	producer.On("ProduceJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("broker gone"))

	p := New(producer, nil)
	p.retryCfg = retry.FixedConfig(2, time.Millisecond)

	meta, uri, result := testInputs()
	// Must not panic or propagate.
	p.EventMinted(context.Background(), meta, uri, result)
}

func TestEventMinted_NilProducerIsNoOp(t *testing.T) {
	p := New(nil, nil)

	meta, uri, result := testInputs()
	p.EventMinted(context.Background(), meta, uri, result)
}
