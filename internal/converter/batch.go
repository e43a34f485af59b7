package converter

import (
	"runtime"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pixelrelay/image-convert/internal/global"
)

// ConvertFile converts a single image after validating the config. The
// per-image outcome lives in the result; the error covers config problems
// only.
func ConvertFile(gCtx global.Context, path string, cfg Config) (ConversionResult, error) {
	if err := cfg.Validate(); err != nil {
		return ConversionResult{}, err
	}

	return Converter{}.Convert(gCtx, PathOf(path), cfg), nil
}

// ConvertDirectory converts every supported image in inputDir across a
// bounded pool of workers and returns one result per enumerated path, in
// enumeration order. Individual failures never abort the batch; the call
// itself fails only when the config is invalid or inputDir cannot be
// enumerated. The pool lives for exactly one call: all workers are joined
// before the function returns.
func ConvertDirectory(gCtx global.Context, inputDir string, cfg Config, workers int) (BatchResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if workers < 0 {
		return nil, newErrorf(ErrorKindInvalidConfig, "workers must be positive, got %d", workers)
	}

	paths, err := Enumerate(inputDir)
	if err != nil {
		return nil, err
	}

	if len(paths) == 0 {
		zap.S().Warnw("no supported images found",
			"dir", inputDir,
		)

		return BatchResult{}, nil
	}

	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	if workers > len(paths) {
		workers = len(paths)
	}

	batchID := uuid.New().String()

	zap.S().Infow("starting batch conversion",
		"batch_id", batchID,
		"images", len(paths),
		"workers", workers,
	)

	// Results are written by enumeration index, so the returned order is
	// independent of completion order and of the worker count.
	results := make(BatchResult, len(paths))

	jobs := make(chan int, len(paths))
	for i := range paths {
		jobs <- i
	}
	close(jobs)

	wg := sync.WaitGroup{}
	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			// Convert recovers per-image panics into Failure entries, so a
			// bad input cannot take the worker down with it.
			for idx := range jobs {
				results[idx] = Converter{}.Convert(gCtx, paths[idx], cfg)
			}
		}()
	}

	wg.Wait()

	zap.S().Infow("batch conversion complete",
		"batch_id", batchID,
		"succeeded", results.Succeeded(),
		"failed", results.Failed(),
	)

	return results, nil
}
