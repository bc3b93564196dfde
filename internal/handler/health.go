package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/haus-live/haus-mint/internal/ledger"
	"github.com/haus-live/haus-mint/pkg/response"
)

// HealthHandler reports service and chain endpoint health.
type HealthHandler struct {
	client  ledger.Client
	version string
}

func NewHealthHandler(client ledger.Client, version string) *HealthHandler {
	return &HealthHandler{client: client, version: version}
}

// Health handles GET /health. It probes the RPC endpoint so load balancers
// pull the service when the chain is unreachable.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	nodeVersion, err := h.client.Version(ctx)
	if err != nil {
		response.Error(c, http.StatusServiceUnavailable, "CHAIN_UNREACHABLE", "rpc endpoint did not respond", err.Error())
		return
	}

	response.Success(c, gin.H{
		"status":       "ok",
		"version":      h.version,
		"node_version": nodeVersion,
	})
}
