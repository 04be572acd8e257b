// Package pdf extracts plain text from uploaded PDF documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// ExtractText pulls the text of every page, in page order, joined with
// newlines. Pages without extractable text (scanned images) are logged
// and skipped; the result may therefore be empty without an error.
func ExtractText(ctx context.Context, data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	total := reader.NumPage()
	ctxzap.Debug(ctx, "extracting pdf text", zap.Int("pages", total))

	var sb strings.Builder
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			ctxzap.Warn(ctx, "pdf page is missing", zap.Int("page", i))
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			ctxzap.Warn(ctx, "failed to extract page text", zap.Int("page", i), zap.Error(err))
			continue
		}

		if strings.TrimSpace(text) == "" {
			ctxzap.Warn(ctx, "pdf page is empty or a scanned image", zap.Int("page", i))
			continue
		}

		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}
