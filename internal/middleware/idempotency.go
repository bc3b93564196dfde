package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/haus-live/haus-mint/pkg/response"
)

// A mint is an on-chain write; replaying one duplicates real value. The
// idempotency layer caches the first outcome per key so retried requests
// return it instead of minting twice.
const (
	IdempotencyKeyHeader     = "X-Idempotency-Key"
	ContextKeyIdempotencyKey = "idempotency_key"

	idempotencyKeyPrefix = "mint:idem:"

	// CompletedTTL covers client retries after a landed mint; ProcessingTTL
	// is short so a crashed request does not wedge the key.
	DefaultCompletedTTL  = 24 * time.Hour
	DefaultProcessingTTL = 2 * time.Minute
)

type idempotencyStatus string

const (
	statusProcessing idempotencyStatus = "processing"
	statusCompleted  idempotencyStatus = "completed"
)

type idempotencyRecord struct {
	Key          string            `json:"key"`
	Status       idempotencyStatus `json:"status"`
	RequestHash  string            `json:"request_hash"`
	ResponseCode int               `json:"response_code"`
	ResponseBody string            `json:"response_body"`
	CreatedAt    time.Time         `json:"created_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
}

// RedisClient is the subset of go-redis the middleware uses.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// IdempotencyConfig tunes the middleware.
type IdempotencyConfig struct {
	Redis         RedisClient
	CompletedTTL  time.Duration
	ProcessingTTL time.Duration
}

// Idempotency guards mutating requests behind an idempotency key. Redis
// outages fail open: minting availability beats duplicate protection.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.CompletedTTL <= 0 {
		cfg.CompletedTTL = DefaultCompletedTTL
	}
	if cfg.ProcessingTTL <= 0 {
		cfg.ProcessingTTL = DefaultProcessingTTL
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				response.ErrorBody("MISSING_IDEMPOTENCY_KEY", "X-Idempotency-Key header is required"))
			return
		}
		c.Set(ContextKeyIdempotencyKey, key)

		requestHash := hashRequest(c)
		redisKey := idempotencyKeyPrefix + key
		ctx := c.Request.Context()

		existing, err := getRecord(ctx, cfg.Redis, redisKey)
		if err != nil && !errors.Is(err, redis.Nil) {
			c.Next()
			return
		}
		if existing != nil {
			replayRecord(c, existing, requestHash)
			return
		}

		record := &idempotencyRecord{
			Key:         key,
			Status:      statusProcessing,
			RequestHash: requestHash,
			CreatedAt:   time.Now(),
		}
		if !trySetRecord(ctx, cfg.Redis, redisKey, record, cfg.ProcessingTTL) {
			// Lost the race: another request holds the key.
			if existing, _ = getRecord(ctx, cfg.Redis, redisKey); existing != nil {
				replayRecord(c, existing, requestHash)
				return
			}
		}

		rw := &captureWriter{ResponseWriter: c.Writer, body: bytes.NewBuffer(nil)}
		c.Writer = rw

		c.Next()

		now := time.Now()
		record.Status = statusCompleted
		record.ResponseCode = rw.status
		record.ResponseBody = rw.body.String()
		record.CompletedAt = &now
		saveRecord(ctx, cfg.Redis, redisKey, record, cfg.CompletedTTL)
	}
}

func replayRecord(c *gin.Context, record *idempotencyRecord, requestHash string) {
	if record.RequestHash != requestHash {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity,
			response.ErrorBody("IDEMPOTENCY_KEY_REUSED", "idempotency key already used with a different request"))
		return
	}
	if record.Status == statusProcessing {
		c.AbortWithStatusJSON(http.StatusConflict,
			response.ErrorBody("MINT_IN_PROGRESS", "a mint with this idempotency key is already running"))
		return
	}
	c.Data(record.ResponseCode, "application/json", []byte(record.ResponseBody))
	c.Abort()
}

// hashRequest fingerprints method, path, and the multipart boundary-stable
// form fields. The banner content is excluded: re-encoded uploads of the
// same form must still match.
func hashRequest(c *gin.Context) string {
	h := sha256.New()
	h.Write([]byte(c.Request.Method))
	h.Write([]byte(c.Request.URL.Path))
	if err := c.Request.ParseMultipartForm(32 << 20); err == nil && c.Request.MultipartForm != nil {
		for _, field := range []string{"title", "description", "category", "date", "time", "duration", "ticket_price", "tickets_amount", "reserve_price"} {
			if vals := c.Request.MultipartForm.Value[field]; len(vals) > 0 {
				h.Write([]byte(field))
				h.Write([]byte(vals[0]))
			}
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

type captureWriter struct {
	gin.ResponseWriter
	body   *bytes.Buffer
	status int
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func getRecord(ctx context.Context, rc RedisClient, key string) (*idempotencyRecord, error) {
	raw, err := rc.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func trySetRecord(ctx context.Context, rc RedisClient, key string, record *idempotencyRecord, ttl time.Duration) bool {
	data, err := json.Marshal(record)
	if err != nil {
		return false
	}
	ok, err := rc.SetNX(ctx, key, string(data), ttl).Result()
	return err == nil && ok
}

func saveRecord(ctx context.Context, rc RedisClient, key string, record *idempotencyRecord, ttl time.Duration) {
	data, err := json.Marshal(record)
	if err != nil {
		return
	}
	rc.Set(ctx, key, string(data), ttl)
}
