package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/ragroute/internal/model"
)

// QueryProcessor answers a single query
type QueryProcessor interface {
	Process(ctx context.Context, query string) (*model.ResponsePayload, error)
}

// QueryJob answers one query from a batch
type QueryJob struct {
	Index     int
	Query     string
	Processor QueryProcessor
}

// Execute runs the query through the processor
func (j *QueryJob) Execute(ctx context.Context) Result {
	payload, err := j.Processor.Process(ctx, j.Query)
	return &QueryResult{
		Index:   j.Index,
		Query:   j.Query,
		Payload: payload,
		Error:   err,
	}
}

// QueryResult is the outcome of one batch query
type QueryResult struct {
	Index   int                    `json:"-"`
	Query   string                 `json:"query"`
	Payload *model.ResponsePayload `json:"payload,omitempty"`
	Error   error                  `json:"-"`
}

func (r *QueryResult) GetError() error {
	return r.Error
}

// BatchProcessor answers many queries on a worker pool
type BatchProcessor struct {
	processor   QueryProcessor
	concurrency int
}

// NewBatchProcessor creates a batch processor with the given concurrency
func NewBatchProcessor(processor QueryProcessor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		processor:   processor,
		concurrency: concurrency,
	}
}

// ProcessQueries answers queries concurrently. Results come back in input order.
func (b *BatchProcessor) ProcessQueries(ctx context.Context, queries []string) []*QueryResult {
	if len(queries) == 0 {
		return []*QueryResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	ordered := make([]*QueryResult, len(queries))
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for r := range pool.Results() {
			qr := r.(*QueryResult)
			ordered[qr.Index] = qr
		}
	}()

	cancelled := false
	for i, q := range queries {
		if !pool.Submit(&QueryJob{Index: i, Query: q, Processor: b.processor}) {
			cancelled = true
			break
		}
	}
	if cancelled {
		pool.Shutdown()
	} else {
		pool.Close()
	}
	<-collected

	for i, r := range ordered {
		if r == nil {
			ordered[i] = &QueryResult{Index: i, Query: queries[i], Error: ctx.Err()}
		}
	}

	return ordered
}

// ProcessFile reads queries from a file and answers them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*QueryResult, error) {
	queries, err := ReadQueriesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read queries: %w", err)
	}

	return b.ProcessQueries(ctx, queries), nil
}

// ReadQueriesFromFile reads one query per line, skipping blanks, # comments and duplicates
func ReadQueriesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var queries []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			queries = append(queries, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return queries, nil
}
