// Package ipfs implements the Pinata pinning client used as the pipeline's
// content-addressed store.
package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	ErrAuthMissing  = errors.New("no pinata credentials configured")
	ErrUploadFailed = errors.New("pinata upload failed")
	ErrFetchFailed  = errors.New("pinata fetch failed")
)

// Config holds Pinata connection settings. JWT is preferred; the API
// key/secret pair is the fallback.
type Config struct {
	BaseURL    string
	GatewayURL string
	JWT        string
	APIKey     string
	APISecret  string
	Timeout    time.Duration
}

// Client talks to the Pinata pinning API. It performs no retries: retry
// policy belongs to callers.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

// NewClient creates a Pinata client. Credentials are checked lazily on first
// upload so a read-only Resolve-only client works without them.
func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.pinata.cloud"
	}
	if cfg.GatewayURL == "" {
		cfg.GatewayURL = "https://gateway.pinata.cloud/ipfs"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

// UploadFile pins raw file content and returns its content identifier.
func (c *Client) UploadFile(ctx context.Context, name string, content io.Reader) (string, error) {
	if err := c.checkAuth(); err != nil {
		return "", err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("copy file content: %w", err)
	}

	meta, _ := json.Marshal(map[string]string{"name": name})
	if err := mw.WriteField("pinataMetadata", string(meta)); err != nil {
		return "", fmt.Errorf("write pin metadata: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/pinning/pinFileToIPFS", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.setAuth(req)

	return c.doPin(req, name)
}

// UploadJSON pins a JSON document and returns its content identifier.
func (c *Client) UploadJSON(ctx context.Context, name string, doc any) (string, error) {
	if err := c.checkAuth(); err != nil {
		return "", err
	}

	payload, err := json.Marshal(map[string]any{
		"pinataContent":  doc,
		"pinataMetadata": map[string]string{"name": name},
	})
	if err != nil {
		return "", fmt.Errorf("marshal pin payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/pinning/pinJSONToIPFS", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)

	return c.doPin(req, name)
}

// Resolve returns the gateway retrieval URL for a content identifier.
func (c *Client) Resolve(cid string) string {
	if cid == "" {
		return ""
	}
	return strings.TrimRight(c.cfg.GatewayURL, "/") + "/" + cid
}

// FetchJSON retrieves a pinned JSON document through the gateway.
func (c *Client) FetchJSON(ctx context.Context, cid string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Resolve(cid), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrFetchFailed, err)
	}
	return nil
}

func (c *Client) doPin(req *http.Request, name string) (string, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: status %d: %s", ErrUploadFailed, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var pin pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&pin); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUploadFailed, err)
	}
	if pin.IpfsHash == "" {
		return "", fmt.Errorf("%w: empty content id in response", ErrUploadFailed)
	}

	c.log.Debug("pinned content",
		zap.String("name", name),
		zap.String("cid", pin.IpfsHash),
	)
	return pin.IpfsHash, nil
}

func (c *Client) checkAuth() error {
	if c.cfg.JWT == "" && (c.cfg.APIKey == "" || c.cfg.APISecret == "") {
		return ErrAuthMissing
	}
	return nil
}

func (c *Client) setAuth(req *http.Request) {
	if c.cfg.JWT != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.JWT)
		return
	}
	req.Header.Set("pinata_api_key", c.cfg.APIKey)
	req.Header.Set("pinata_secret_api_key", c.cfg.APISecret)
}
