package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mvahidi/copilot-backend/internal/pkg/logger"
	"github.com/mvahidi/copilot-backend/internal/pkg/pdf"
	"github.com/mvahidi/copilot-backend/internal/pkg/validator"
	"go.uber.org/zap"
)

// IngestUsecase accepts extracted document text for chunking and storage.
type IngestUsecase interface {
	Ingest(ctx context.Context, fileName, fullText string) (int, error)
}

var watchedExtensions = map[string]bool{
	".pdf": true,
	".txt": true,
}

// Watcher ingests documents dropped into a directory. Repeated events for
// the same path within the settle window are collapsed into one ingestion,
// since copying a file emits a create followed by a burst of writes.
type Watcher struct {
	dir    string
	ingest IngestUsecase
	logger *zap.Logger

	mu       sync.Mutex
	lastSeen map[string]time.Time
	settle   time.Duration
}

func New(dir string, ingest IngestUsecase, logger *zap.Logger) *Watcher {
	return &Watcher{
		dir:      dir,
		ingest:   ingest,
		logger:   logger,
		lastSeen: make(map[string]time.Time),
		settle:   2 * time.Second,
	}
}

// Run watches the drop directory until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return err
	}

	w.logger.Info("watching drop directory", zap.String("dir", w.dir))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !watchedExtensions[strings.ToLower(filepath.Ext(event.Name))] {
				continue
			}
			if !w.shouldProcess(event.Name) {
				continue
			}
			w.process(ctx, event.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) shouldProcess(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	if last, ok := w.lastSeen[path]; ok && now.Sub(last) < w.settle {
		return false
	}
	w.lastSeen[path] = now
	return true
}

func (w *Watcher) process(parent context.Context, path string) {
	fileName := validator.SanitizeFilename(filepath.Base(path))
	ctx := logger.WithFile(ctxzap.ToContext(parent, w.logger), fileName)

	// Let the writer finish before reading
	time.Sleep(w.settle)

	text, err := w.extract(ctx, path)
	if err != nil {
		ctxzap.Error(ctx, "failed to extract dropped file", zap.Error(err))
		return
	}

	if strings.TrimSpace(text) == "" {
		ctxzap.Warn(ctx, "dropped file has no extractable text")
		return
	}

	written, err := w.ingest.Ingest(ctx, fileName, text)
	if err != nil {
		ctxzap.Error(ctx, "failed to ingest dropped file", zap.Error(err))
		return
	}

	ctxzap.Info(ctx, "dropped file ingested", zap.Int("chunks_written", written))
}

func (w *Watcher) extract(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	if strings.ToLower(filepath.Ext(path)) == ".pdf" {
		return pdf.ExtractText(ctx, data)
	}
	return string(data), nil
}
