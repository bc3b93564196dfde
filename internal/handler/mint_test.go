package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/haus-live/haus-mint/internal/domain"
	"github.com/haus-live/haus-mint/internal/ledger"
	"github.com/haus-live/haus-mint/internal/minter"
)

type mockMinter struct {
	mock.Mock
}

func (m *mockMinter) MintEvent(ctx context.Context, req *domain.MintRequest) (*domain.MintResult, error) {
	args := m.Called(ctx, req)
	var result *domain.MintResult
	if v := args.Get(0); v != nil {
		result = v.(*domain.MintResult)
	}
	return result, args.Error(1)
}

func newRouter(m EventMinter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewMintHandler(m, minter.NewClassifier(nil), nil)
	r.POST("/api/v1/events/mint", h.Mint)
	return r
}

func mintRequest(t *testing.T, withBanner bool) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "Open Mic Night"))
	require.NoError(t, mw.WriteField("category", "open-mic"))
	require.NoError(t, mw.WriteField("duration", "45"))
	require.NoError(t, mw.WriteField("no_cap", "true"))
	if withBanner {
		part, err := mw.CreateFormFile("banner", "banner.png")
		require.NoError(t, err)
		_, err = part.Write([]byte("png-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events/mint", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestMint_Success(t *testing.T) {
	m := new(mockMinter)
	var captured *domain.MintRequest
	m.On("MintEvent", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*domain.MintRequest)
		}).
		Return(&domain.MintResult{TransactionSignature: "sig", AssetAddress: "asset"}, nil).Once()

	w := httptest.NewRecorder()
	newRouter(m).ServeHTTP(w, mintRequest(t, true))

	assert.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Success bool              `json:"success"`
		Data    domain.MintResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "sig", envelope.Data.TransactionSignature)
	assert.Equal(t, "asset", envelope.Data.AssetAddress)

	require.NotNil(t, captured)
	assert.Equal(t, "Open Mic Night", captured.Title)
	assert.Equal(t, "open-mic", captured.Category)
	assert.True(t, captured.NoCap)
	assert.Equal(t, []byte("png-bytes"), captured.Banner)
	assert.Equal(t, "banner.png", captured.BannerName)
}

func TestMint_MissingBannerMapsToBadRequest(t *testing.T) {
	m := new(mockMinter)
	m.On("MintEvent", mock.Anything, mock.Anything).
		Return(nil, domain.ErrMissingBanner).Once()

	w := httptest.NewRecorder()
	newRouter(m).ServeHTTP(w, mintRequest(t, false))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_params")
}

func TestMint_ErrorCategoryStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"network", domain.ErrNetworkUnavailable, http.StatusServiceUnavailable},
		{"wallet", domain.ErrWalletNotReady, http.StatusServiceUnavailable},
		{"confirmation", domain.ErrConfirmationTimeout, http.StatusGatewayTimeout},
		{"internal", domain.ErrKeypairExhausted, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := new(mockMinter)
			m.On("MintEvent", mock.Anything, mock.Anything).Return(nil, tc.err).Once()

			w := httptest.NewRecorder()
			newRouter(m).ServeHTTP(w, mintRequest(t, true))

			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestHealth_Reachable(t *testing.T) {
	client := new(ledger.MockClient)
	client.On("Version", mock.Anything).Return("2.1.0", nil).Once()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", NewHealthHandler(client, "1.0.0").Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "2.1.0")
}

func TestHealth_ChainDown(t *testing.T) {
	client := new(ledger.MockClient)
	client.On("Version", mock.Anything).Return("", assert.AnError).Once()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", NewHealthHandler(client, "1.0.0").Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
