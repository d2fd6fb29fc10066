package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"

	"github.com/romangod6/sitemapper/internal/audit"
	"github.com/romangod6/sitemapper/internal/export"
	"github.com/romangod6/sitemapper/internal/models"
	"github.com/romangod6/sitemapper/internal/sitemap"
)

// SitemapExtractor is satisfied by *sitemap.Extractor.
type SitemapExtractor interface {
	ExtractDocument(ctx context.Context, ref string) (*sitemap.Document, error)
}

// PageAuditor is satisfied by *audit.Auditor.
type PageAuditor interface {
	Audit(ctx context.Context, req audit.Request) (*models.AuditReport, error)
}

type Handler struct {
	extractor SitemapExtractor
	auditor   PageAuditor
	logger    *log.Logger
	group     singleflight.Group
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

type ExtractRequest struct {
	URL string `json:"url" binding:"required"`
}

type AuditRequest struct {
	URL      string `json:"url" binding:"required"`
	MaxLinks int    `json:"max_links" binding:"gte=0"`
}

func NewHandler(extractor SitemapExtractor, auditor PageAuditor, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Handler{
		extractor: extractor,
		auditor:   auditor,
		logger:    logger,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *Handler) ExtractSitemap(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Sitemap URL is required", Kind: string(sitemap.KindInput)})
		return
	}

	doc, err := h.extract(c.Request.Context(), req.URL)
	if err != nil {
		h.respondError(c, err)
		return
	}

	extraction := models.NewExtraction(req.URL, doc.URL, doc.Root, doc.Locations)
	if extraction.Warning != "" {
		h.logger.Warn("Sitemap lists no URLs", "url", doc.URL)
	}
	c.JSON(http.StatusOK, extraction)
}

func (h *Handler) ExportSitemapCSV(c *gin.Context) {
	ref := c.Query("url")
	if strings.TrimSpace(ref) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "url query parameter is required", Kind: string(sitemap.KindInput)})
		return
	}

	doc, err := h.extract(c.Request.Context(), ref)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(ref)))
	c.Status(http.StatusOK)
	if err := export.WriteCSV(c.Writer, doc.Locations); err != nil {
		h.logger.Error("Failed to write CSV", "url", doc.URL, "err", err)
	}
}

func (h *Handler) AuditPage(c *gin.Context) {
	var req AuditRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Page URL is required", Kind: string(sitemap.KindInput)})
		return
	}

	report, err := h.auditor.Audit(c.Request.Context(), audit.Request{URL: req.URL, MaxLinks: req.MaxLinks})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// extract collapses concurrent requests for the same normalized sitemap URL
// into one fetch.
func (h *Handler) extract(ctx context.Context, ref string) (*sitemap.Document, error) {
	ref = strings.TrimSpace(ref)
	key := sitemap.Normalize(ref)

	v, err, shared := h.group.Do(key, func() (interface{}, error) {
		// Detached so one caller going away does not fail the others.
		return h.extractor.ExtractDocument(context.WithoutCancel(ctx), ref)
	})
	if shared {
		h.logger.Debug("Shared sitemap extraction", "url", key)
	}
	if err != nil {
		return nil, err
	}
	return v.(*sitemap.Document), nil
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status, kind := classify(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "path", c.FullPath(), "kind", kind, "err", err)
	} else {
		h.logger.Warn("Request rejected", "path", c.FullPath(), "kind", kind, "err", err)
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Kind: kind})
}

func classify(err error) (int, string) {
	var pageErr *audit.PageError
	switch {
	case errors.Is(err, audit.ErrEmptyURL):
		return http.StatusBadRequest, string(sitemap.KindInput)
	case errors.Is(err, audit.ErrNotHTML):
		return http.StatusUnprocessableEntity, string(sitemap.KindInvalidFormat)
	case errors.As(err, &pageErr):
		return http.StatusBadGateway, string(sitemap.KindFetch)
	}

	kind := sitemap.KindOf(err)
	switch kind {
	case sitemap.KindInput:
		return http.StatusBadRequest, string(kind)
	case sitemap.KindFetch:
		return http.StatusBadGateway, string(kind)
	case sitemap.KindInvalidFormat, sitemap.KindParse:
		return http.StatusUnprocessableEntity, string(kind)
	default:
		return http.StatusInternalServerError, string(sitemap.KindUnknown)
	}
}
