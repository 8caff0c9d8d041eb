package async

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/pipeline"
)

type fakeProcessor struct {
	mu     sync.Mutex
	seen   map[string]string // path -> run id
	block  chan struct{}
	result func(path string) (pipeline.FileResult, error)
}

func (f *fakeProcessor) ProcessFile(ctx context.Context, path string, _ bool) (pipeline.FileResult, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.seen[path] = common.RunIDFromContext(ctx)
	f.mu.Unlock()
	return f.result(path)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcessorQueue_ProcessesAndCounts(t *testing.T) {
	proc := &fakeProcessor{
		seen: map[string]string{},
		result: func(path string) (pipeline.FileResult, error) {
			switch path {
			case "bad.pdf":
				return pipeline.FileResult{}, errors.New("boom")
			case "dup.pdf":
				return pipeline.FileResult{Skipped: true}, nil
			}
			return pipeline.FileResult{Pages: make([]entity.PageResult, 2)}, nil
		},
	}

	var (
		mu      sync.Mutex
		results = map[string]error{}
	)
	q := NewProcessorQueue(proc, quietLogger(),
		WithWorkers(2),
		WithQueueSize(1),
		WithProcessTimeout(time.Second),
		WithResultFunc(func(job Job, _ pipeline.FileResult, err error) {
			mu.Lock()
			results[job.Path] = err
			mu.Unlock()
		}),
	)

	ctx := context.Background()
	for _, p := range []string{"a.pdf", "b.pdf", "bad.pdf", "dup.pdf"} {
		require.NoError(t, q.Enqueue(ctx, Job{Path: p, TraceID: "trace-" + p}))
	}
	q.Shutdown(ctx)

	assert.Equal(t, Stats{Processed: 2, Skipped: 1, Failed: 1, Pages: 4}, q.Stats())
	assert.Len(t, results, 4)
	assert.Error(t, results["bad.pdf"])
	assert.Equal(t, "trace-a.pdf", proc.seen["a.pdf"])
}

func TestProcessorQueue_EnqueueAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(&fakeProcessor{seen: map[string]string{}}, quietLogger(), WithWorkers(1))
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	err := q.Enqueue(context.Background(), Job{Path: "late.pdf"})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestProcessorQueue_BackpressureHonoursContext(t *testing.T) {
	proc := &fakeProcessor{
		seen:  map[string]string{},
		block: make(chan struct{}),
		result: func(string) (pipeline.FileResult, error) {
			return pipeline.FileResult{}, nil
		},
	}
	q := NewProcessorQueue(proc, quietLogger(), WithWorkers(1), WithQueueSize(1))

	// one job held by the worker, one in the buffer
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "1.pdf"}))
	require.Eventually(t, func() bool { return len(q.ch) == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "2.pdf"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Enqueue(ctx, Job{Path: "3.pdf"}), context.DeadlineExceeded)

	close(proc.block)
	q.Shutdown(context.Background())
	assert.Equal(t, int64(2), q.Stats().Processed)
}
