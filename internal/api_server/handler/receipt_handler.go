package handler

import (
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spendwise-platform/internal/api_server/middleware"
	"github.com/spendwise-platform/internal/api_server/service"
)

// maxReceiptSize caps receipt uploads at 10 MiB
const maxReceiptSize = 10 << 20

// ReceiptHandler handles HTTP requests for receipt scanning
type ReceiptHandler struct {
	receiptService service.ReceiptService
	logger         *slog.Logger
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(logger *slog.Logger, receiptService service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{
		receiptService: receiptService,
		logger:         logger,
	}
}

// Scan accepts a multipart receipt image and returns the extracted draft
func (h *ReceiptHandler) Scan(c *gin.Context) {
	fileHeader, err := c.FormFile("receipt")
	if err != nil {
		RespondBadRequest(c, "Missing receipt file")
		return
	}
	if fileHeader.Size > maxReceiptSize {
		RespondBadRequest(c, "Receipt file too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open receipt upload", "error", err)
		RespondInternalError(c)
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("Failed to read receipt upload", "error", err)
		RespondInternalError(c)
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")

	draft, err := h.receiptService.Scan(c.Request.Context(), middleware.GetSubject(c), image, mimeType)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	RespondOK(c, mapDraftToResponse(draft))
}

// ListScans returns the caller's recent scan attempts
func (h *ReceiptHandler) ListScans(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			RespondBadRequest(c, "Invalid limit")
			return
		}
		limit = parsed
	}

	audits, err := h.receiptService.ListScans(c.Request.Context(), middleware.GetSubject(c), limit)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	responses := make([]ScanAuditResponse, 0, len(audits))
	for _, audit := range audits {
		response := ScanAuditResponse{
			ID:        audit.ID.String(),
			Model:     audit.Model,
			Outcome:   string(audit.Outcome),
			Error:     audit.Error,
			CreatedAt: audit.CreatedAt.Format(time.RFC3339),
		}
		if audit.Draft != nil {
			draft := mapDraftToResponse(audit.Draft)
			response.Draft = &draft
		}
		responses = append(responses, response)
	}

	RespondOK(c, responses)
}
