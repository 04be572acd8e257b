package document

import "context"

type IngestUsecase interface {
	Ingest(ctx context.Context, fileName, fullText string) (int, error)
}
