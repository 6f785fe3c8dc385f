package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/docqa/service"
	"github.com/tieubaoca/docqa/types"
	"github.com/tieubaoca/docqa/utils"
)

type ArchiveHandler struct {
	documentService *service.DocumentService
	maxUpload       int64
	logger          *slog.Logger
}

func NewArchiveHandler(documentService *service.DocumentService, maxUpload int64, logger *slog.Logger) *ArchiveHandler {
	return &ArchiveHandler{
		documentService: documentService,
		maxUpload:       maxUpload,
		logger:          logger,
	}
}

// HandleExtract unpacks the uploaded archive and reports every document.
func (h *ArchiveHandler) HandleExtract(c *gin.Context) {
	data, ok := h.readArchive(c)
	if !ok {
		return
	}
	ingestion, err := h.documentService.Process(c.Request.Context(), data, nil)
	if err != nil {
		h.sendError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: types.ResponseStatusSuccess,
		Data:   ingestion,
	})
}

// HandleExtractStream reports each document as a server-sent event while the
// archive is processed, followed by one summary event.
func (h *ArchiveHandler) HandleExtractStream(c *gin.Context) {
	data, ok := h.readArchive(c)
	if !ok {
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ingestion, err := h.documentService.Process(c.Request.Context(), data, func(result types.ExtractionResult) {
		c.SSEvent(types.EventDocument, result)
		c.Writer.Flush()
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return // Client disconnected
		}
		if !c.Writer.Written() {
			h.sendError(c, err, nil)
			return
		}
		h.logger.Warn("Streaming extraction failed", slog.String("error", err.Error()))
		c.SSEvent(types.EventError, types.DataResponse{
			Status:  types.ResponseStatusError,
			Message: err.Error(),
		})
		c.Writer.Flush()
		return
	}
	c.SSEvent(types.EventSummary, ingestion)
	c.Writer.Flush()
}

// HandleAsk unpacks the archive and answers the question from its documents.
func (h *ArchiveHandler) HandleAsk(c *gin.Context) {
	var req types.AskRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  types.ResponseStatusError,
			Message: "Invalid request",
		})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		h.sendError(c, service.ErrEmptyQuestion, nil)
		return
	}
	data, ok := h.readArchive(c)
	if !ok {
		return
	}

	ingestion, err := h.documentService.Process(c.Request.Context(), data, nil)
	if err != nil {
		h.sendError(c, err, nil)
		return
	}
	answer, err := h.documentService.Ask(c.Request.Context(), ingestion, req.Question)
	if err != nil {
		h.sendError(c, err, ingestion)
		return
	}
	if answer.Answer != "" {
		html, err := utils.MarkdownToHTML(answer.Answer)
		if err != nil {
			h.logger.Warn("Failed to render answer", slog.String("error", err.Error()))
		} else {
			answer.AnswerHTML = html
		}
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: types.ResponseStatusSuccess,
		Data: types.AskResponse{
			Ingestion: ingestion,
			Answer:    answer,
		},
	})
}

// readArchive loads the uploaded file into memory. On failure the response
// has already been written.
func (h *ArchiveHandler) readArchive(c *gin.Context) ([]byte, bool) {
	file, header, err := c.Request.FormFile(types.FormFieldFile)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  types.ResponseStatusError,
			Message: "Invalid file",
		})
		return nil, false
	}
	defer file.Close()

	if h.maxUpload > 0 && header.Size > h.maxUpload {
		h.sendError(c, utils.ErrTooLarge, nil)
		return nil, false
	}
	data, err := utils.ReadLimited(file, h.maxUpload)
	if err != nil {
		h.sendError(c, err, nil)
		return nil, false
	}
	h.logger.Debug("Archive received",
		slog.String("filename", header.Filename),
		slog.Int("size", len(data)))
	return data, true
}

func (h *ArchiveHandler) sendError(c *gin.Context, err error, ingestion *types.IngestionResult) {
	var archiveErr *service.ArchiveError
	var remoteErr *service.RemoteServiceError
	switch {
	case errors.As(err, &archiveErr):
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  types.ResponseStatusError,
			Message: archiveErr.Error(),
		})
	case errors.Is(err, service.ErrEmptyQuestion):
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  types.ResponseStatusError,
			Message: err.Error(),
		})
	case errors.Is(err, utils.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, types.DataResponse{
			Status:  types.ResponseStatusError,
			Message: "File too large",
		})
	case errors.As(err, &remoteErr):
		status := http.StatusBadGateway
		if remoteErr.Timeout {
			status = http.StatusGatewayTimeout
		}
		c.JSON(status, types.DataResponse{
			Status:  types.ResponseStatusError,
			Message: remoteErr.Error(),
			Data: types.RemoteErrorResponse{
				Ingestion:  ingestion,
				Provider:   remoteErr.Provider,
				Model:      remoteErr.Model,
				StatusCode: remoteErr.StatusCode,
				ErrorType:  remoteErr.ErrorType,
				Timeout:    remoteErr.Timeout,
				Detail:     service.Diagnostic(err),
			},
		})
	default:
		h.logger.Error("Request failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  types.ResponseStatusError,
			Message: err.Error(),
		})
	}
}
