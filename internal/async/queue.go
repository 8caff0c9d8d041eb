package async

import (
	"context"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/internal/pipeline"
)

// Job is one document waiting to be processed.
type Job struct {
	Path        string
	Force       bool // re-process even if the same content was seen before
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// FileProcessor is what the workers call; *pipeline.Processor satisfies it.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string, force bool) (pipeline.FileResult, error)
}

// ResultFunc receives every finished job. It is called from worker goroutines.
type ResultFunc func(job Job, res pipeline.FileResult, err error)

// Stats are running totals since the queue started.
type Stats struct {
	Processed int64
	Skipped   int64
	Failed    int64
	Pages     int64
}
