package document

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mvahidi/copilot-backend/internal/entity"
	"github.com/mvahidi/copilot-backend/internal/pkg/logger"
	"github.com/mvahidi/copilot-backend/internal/pkg/pdf"
	"github.com/mvahidi/copilot-backend/internal/pkg/response"
	"github.com/mvahidi/copilot-backend/internal/pkg/validator"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   IngestUsecase
	validator *validator.Validator
	maxMemory int64
}

func NewHandler(usecase IngestUsecase, validator *validator.Validator, maxFileSize int64) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
		maxMemory: maxFileSize,
	}
}

// Upload handles POST /upload - Ingest a PDF document into the knowledge base
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Upload")

	if err := r.ParseMultipartForm(h.maxMemory); err != nil {
		ctxzap.Error(ctx, "failed to parse multipart form", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "failed to parse form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		ctxzap.Error(ctx, "missing document file", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if err := h.validator.ValidateUpload(header); err != nil {
		ctxzap.Error(ctx, "failed to validate upload", zap.Error(err))
		h.handleUploadError(ctx, w, err)
		return
	}

	fileName := validator.SanitizeFilename(header.Filename)
	ctx = logger.WithFile(ctx, fileName)

	data, err := io.ReadAll(file)
	if err != nil {
		ctxzap.Error(ctx, "failed to read uploaded file", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "failed to read file")
		return
	}

	text, err := pdf.ExtractText(ctx, data)
	if err != nil {
		ctxzap.Error(ctx, "failed to extract text", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "could not extract text from PDF")
		return
	}

	if strings.TrimSpace(text) == "" {
		ctxzap.Warn(ctx, "document has no extractable text")
		response.JSON(w, http.StatusUnprocessableEntity, entity.UploadResponse{
			Status:   "error",
			Filename: fileName,
			Message:  "no extractable text; the document may be scanned images",
		})
		return
	}

	written, err := h.usecase.Ingest(ctx, fileName, text)
	if err != nil {
		if errors.Is(err, entity.ErrEmptyDocument) {
			response.Error(w, http.StatusUnprocessableEntity, "document is empty")
			return
		}
		ctxzap.Error(ctx, "failed to ingest document", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "failed to ingest document")
		return
	}

	ctxzap.Info(ctx, "document ingested",
		zap.Int("chars_extracted", len(text)),
		zap.Int("chunks_written", written),
	)

	response.Success(w, entity.UploadResponse{
		Status:         "success",
		Filename:       fileName,
		CharsExtracted: len(text),
		ChunksWritten:  written,
	})
}

func (h *Handler) handleUploadError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrInvalidExtension),
		errors.Is(err, entity.ErrInvalidFile),
		errors.Is(err, entity.ErrMissingField):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, entity.ErrFileTooLarge):
		response.Error(w, http.StatusRequestEntityTooLarge, err.Error())
	default:
		ctxzap.Error(ctx, "unexpected validation failure", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
