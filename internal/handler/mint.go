// Package handler exposes the mint pipeline over HTTP.
package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/haus-live/haus-mint/internal/domain"
	"github.com/haus-live/haus-mint/internal/minter"
	"github.com/haus-live/haus-mint/pkg/response"
)

// maxBannerBytes caps banner uploads at 8 MiB.
const maxBannerBytes = 8 << 20

// EventMinter runs the mint pipeline for one request.
type EventMinter interface {
	MintEvent(ctx context.Context, req *domain.MintRequest) (*domain.MintResult, error)
}

// MintHandler serves event mint requests.
type MintHandler struct {
	minter     EventMinter
	classifier *minter.Classifier
	log        *zap.Logger
}

func NewMintHandler(m EventMinter, classifier *minter.Classifier, log *zap.Logger) *MintHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MintHandler{minter: m, classifier: classifier, log: log}
}

// Mint handles POST /api/v1/events/mint. The request is a multipart form
// with the event fields plus a banner file part.
func (h *MintHandler) Mint(c *gin.Context) {
	req, err := parseMintForm(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.minter.MintEvent(c.Request.Context(), req)
	if err != nil {
		h.writeMintError(c, err)
		return
	}

	response.Created(c, result)
}

func parseMintForm(c *gin.Context) (*domain.MintRequest, error) {
	req := &domain.MintRequest{
		Title:         c.PostForm("title"),
		Description:   c.PostForm("description"),
		Category:      c.PostForm("category"),
		Date:          c.PostForm("date"),
		Time:          c.PostForm("time"),
		Duration:      c.PostForm("duration"),
		TicketPrice:   c.PostForm("ticket_price"),
		TicketsAmount: c.PostForm("tickets_amount"),
		ReservePrice:  c.PostForm("reserve_price"),
		NoCap:         c.PostForm("no_cap") == "true",
		CreatorName:   c.PostForm("creator_name"),
	}

	file, err := c.FormFile("banner")
	if err != nil {
		// Leave the banner empty; the pipeline rejects it with the
		// proper error category.
		return req, nil
	}
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxBannerBytes+1))
	if err != nil {
		return nil, err
	}
	if len(content) > maxBannerBytes {
		return nil, errBannerTooLarge
	}
	req.Banner = content
	req.BannerName = file.Filename
	return req, nil
}

var errBannerTooLarge = &bannerTooLargeError{}

type bannerTooLargeError struct{}

func (*bannerTooLargeError) Error() string { return "banner exceeds the 8 MiB limit" }

func (h *MintHandler) writeMintError(c *gin.Context, err error) {
	classified := h.classifier.Classify(err)
	h.log.Warn("mint request failed",
		zap.String("category", string(classified.Category)),
		zap.Error(err),
	)

	code := string(classified.Category)
	switch classified.Category {
	case minter.CategoryInvalidParams:
		response.Error(c, http.StatusBadRequest, code, classified.Message, "")
	case minter.CategoryWalletRejected:
		response.Error(c, http.StatusServiceUnavailable, code, classified.Message, "")
	case minter.CategoryNetwork:
		response.Error(c, http.StatusServiceUnavailable, code, classified.Message, "")
	case minter.CategoryProgramRejected:
		response.Error(c, http.StatusUnprocessableEntity, code, classified.Message, "")
	case minter.CategoryConfirmationTimeout:
		response.Error(c, http.StatusGatewayTimeout, code, classified.Message, "")
	default:
		response.Error(c, http.StatusInternalServerError, code, classified.Message, "")
	}
}
