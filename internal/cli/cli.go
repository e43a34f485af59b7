package cli

import (
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/pixelrelay/image-convert/batch"
	"github.com/pixelrelay/image-convert/internal/converter"
	"github.com/pixelrelay/image-convert/internal/global"
	"github.com/pixelrelay/image-convert/internal/presets"
	"github.com/pixelrelay/image-convert/internal/stats"
)

// Run executes one conversion pass driven by the convert section of the
// config and returns the process exit code. Results go to stdout, logs to
// the logger.
func Run(gCtx global.Context) int {
	cc := gCtx.Config().Convert

	if cc.ListPresets {
		printPresets()
		return 0
	}

	if cc.Input == "" {
		fmt.Fprintln(os.Stderr, "error: an input path is required, see --help")
		return 1
	}

	req := batch.Request{
		InputPath:   cc.Input,
		OutputDir:   cc.OutputDir,
		Format:      cc.Format,
		WebpQuality: cc.WebpQuality,
		AvifQuality: cc.AvifQuality,
		Lossless:    cc.Lossless,
		MaxWidth:    cc.MaxWidth,
		MaxHeight:   cc.MaxHeight,
		Workers:     cc.Workers,
		Preset:      cc.Preset,
		Stats:       cc.Stats,
	}

	// A single quality value applies to both encoders.
	if cc.Quality != 0 {
		req.WebpQuality = cc.Quality
		req.AvifQuality = cc.Quality
	}

	cfg, err := req.Resolve()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		return 1
	}

	cfg.CleanupOnFailure = cc.CleanupOnFailure
	cfg.MaxFileSize = int64(cc.MaxFileSize)
	cfg.MaxDimension = cc.MaxDimension

	info, err := os.Stat(cc.Input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		return 1
	}

	if cc.Batch || info.IsDir() {
		return runBatch(gCtx, cc.Input, cfg, cc.Workers, cc.Stats)
	}

	return runSingle(gCtx, cc.Input, cfg, cc.Stats)
}

func runSingle(gCtx global.Context, input string, cfg converter.Config, withStats bool) int {
	result, err := converter.ConvertFile(gCtx, input, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		return 1
	}

	printItem(batch.ItemFromResult(result, withStats))

	if result.State != converter.ResultStateSuccess {
		return 1
	}

	return 0
}

func runBatch(gCtx global.Context, input string, cfg converter.Config, workers int, withStats bool) int {
	results, err := converter.ConvertDirectory(gCtx, input, cfg, workers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		return 1
	}

	for _, item := range batch.ItemsFromResults(results, withStats) {
		printItem(item)
	}

	fmt.Printf("done: %d succeeded, %d failed\n", results.Succeeded(), results.Failed())

	zap.S().Debugw("cli batch finished",
		"succeeded", results.Succeeded(),
		"failed", results.Failed(),
	)

	// Per-item failures do not fail the run once the batch itself ran.
	return 0
}

func printItem(item batch.Item) {
	if item.Error != "" {
		fmt.Printf("%s: %s (%s)\n", item.Input, item.Error, item.ErrorKind)
		return
	}

	fmt.Printf("%s:\n", item.Input)

	if item.Webp != "" {
		fmt.Printf("  webp: %s\n", item.Webp)
	}

	if item.Avif != "" {
		fmt.Printf("  avif: %s\n", item.Avif)
	}

	if item.Stats != nil {
		fmt.Println(stats.FormatSummary(item.Stats))
	}
}

func printPresets() {
	list := presets.List()

	names := make([]string, 0, len(list))
	for name := range list {
		names = append(names, name)
	}

	sort.Strings(names)

	fmt.Println("Available presets:")
	for _, name := range names {
		fmt.Printf("  %-16s %s\n", name, list[name])
	}
}
