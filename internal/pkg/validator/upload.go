package validator

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/mvahidi/copilot-backend/internal/config"
	"github.com/mvahidi/copilot-backend/internal/entity"
)

// Only PDF uploads are ingestible; everything else is rejected before
// text extraction.
var AllowedExtensions = map[string]bool{
	".pdf": true,
}

// Validator validates file uploads
type Validator struct {
	cfg config.FileUploadConfig
}

func NewFileValidator(cfg config.FileUploadConfig) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateUpload validates a single uploaded document
func (v *Validator) ValidateUpload(fh *multipart.FileHeader) error {
	if fh == nil {
		return fmt.Errorf("%w: file", entity.ErrMissingField)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !AllowedExtensions[ext] {
		return fmt.Errorf("%w: %s (only PDF files are allowed)", entity.ErrInvalidExtension, ext)
	}

	if ct := fh.Header.Get("Content-Type"); ct != "" && ct != "application/pdf" {
		return fmt.Errorf("%w: unexpected content type %s", entity.ErrInvalidFile, ct)
	}

	if fh.Size > v.cfg.MaxFileSize {
		return fmt.Errorf("%w: file '%s' is %d bytes (max %d)", entity.ErrFileTooLarge, fh.Filename, fh.Size, v.cfg.MaxFileSize)
	}

	return nil
}

// SanitizeFilename sanitizes a filename for safe storage in chunk metadata
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	replacer := strings.NewReplacer(
		" ", "_",
		"(", "",
		")", "",
		"/", "",
		"\\", "",
	)
	return replacer.Replace(filename)
}
