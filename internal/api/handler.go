package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/domain"
	apperrors "github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/errors"
	"github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/pricelabs"
	"github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/pricing"
	"github.com/Oasi-LLC/5percent-price-change-pricelabs/internal/storage"
)

// Runner runs one batch price adjustment
type Runner interface {
	Run(ctx context.Context, listingIDs []string, directive domain.AdjustmentDirective) (domain.BatchReport, error)
}

// Handler handles API requests
type Handler struct {
	client     pricelabs.Client
	runner     Runner
	store      storage.Storage
	percentage float64
}

// NewHandler creates a new API handler
func NewHandler(client pricelabs.Client, runner Runner, store storage.Storage, percentage float64) *Handler {
	return &Handler{
		client:     client,
		runner:     runner,
		store:      store,
		percentage: percentage,
	}
}

// HealthCheck returns the service health status
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetListings returns all active listings from the pricing service
// GET /api/v1/listings
func (h *Handler) GetListings(c *gin.Context) {
	listings, err := h.client.GetListings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	active := make([]domain.Listing, 0, len(listings))
	for _, l := range listings {
		if pricing.IsEligible(l) {
			active = append(active, l)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"data": active,
	})
}

type adjustmentRequest struct {
	ListingIDs []string `json:"listing_ids"`
	Direction  string   `json:"direction"`
	DryRun     bool     `json:"dry_run"`
}

// RunAdjustment runs a batch price adjustment and returns the report
// POST /api/v1/adjustments
func (h *Handler) RunAdjustment(c *gin.Context) {
	var req adjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewBadRequestError("invalid request body"))
		return
	}

	ids := req.ListingIDs
	if len(ids) == 0 {
		// No explicit selection means every active listing.
		listings, err := h.client.GetListings(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		for _, l := range listings {
			if pricing.IsEligible(l) {
				ids = append(ids, l.ID)
			}
		}
	}

	directive := domain.AdjustmentDirective{
		Direction:  domain.Direction(req.Direction),
		Percentage: h.percentage,
		DryRun:     req.DryRun,
	}

	report, err := h.runner.Run(c.Request.Context(), ids, directive)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.store.SaveReport(c.Request.Context(), &report); err != nil {
		fmt.Printf("Warning: failed to save report %s: %v\n", report.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"data": report,
	})
}

// ListAdjustments returns recent batch report summaries
// GET /api/v1/adjustments
func (h *Handler) ListAdjustments(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	reports, err := h.store.ListReports(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": reports,
	})
}

// GetAdjustment returns one batch report with its outcomes
// GET /api/v1/adjustments/:id
func (h *Handler) GetAdjustment(c *gin.Context) {
	report, err := h.store.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": report,
	})
}

// respondError converts an application error to an HTTP response
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if appErr, ok := err.(*apperrors.AppError); ok {
		switch appErr.Code {
		case apperrors.ErrCodeBadRequest:
			status = http.StatusBadRequest
		case apperrors.ErrCodeNotFound:
			status = http.StatusNotFound
		case apperrors.ErrCodeUnauthorized:
			status = http.StatusUnauthorized
		case apperrors.ErrCodeRateLimited:
			status = http.StatusTooManyRequests
		}
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
