package stats

import (
	"fmt"
	"os"
	"strings"

	"github.com/pixelrelay/image-convert/internal/converter"
)

// FormatSize renders a byte count as a human readable string, e.g. "256 B",
// "1.5 KB", "2.50 MB".
func FormatSize(size int64) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%d B", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%.2f MB", float64(size)/(1024*1024))
	}
}

// Savings describes the size delta between an input and one encoded output.
type Savings struct {
	OriginalSize     string `json:"original_size"`
	NewSize          string `json:"new_size"`
	SavedBytes       string `json:"saved_bytes"`
	SavingsPercent   string `json:"savings_percent"`
	CompressionRatio string `json:"compression_ratio"`
	Increased        bool   `json:"increased"`
}

// CalculateSavings compares an original and a new size. When the output grew,
// Increased is set instead of reporting negative savings.
func CalculateSavings(originalSize, newSize int64) Savings {
	saved := originalSize - newSize

	var (
		percent float64
		ratio   = "1.0:1"
	)

	if originalSize > 0 {
		percent = float64(saved) / float64(originalSize) * 100

		if newSize > 0 {
			ratio = fmt.Sprintf("%.1f:1", float64(originalSize)/float64(newSize))
		} else {
			ratio = "inf:1"
		}
	}

	abs := saved
	if abs < 0 {
		abs = -abs
	}

	return Savings{
		OriginalSize:     FormatSize(originalSize),
		NewSize:          FormatSize(newSize),
		SavedBytes:       FormatSize(abs),
		SavingsPercent:   fmt.Sprintf("%.1f%%", percent),
		CompressionRatio: ratio,
		Increased:        saved < 0,
	}
}

// OutputStats is the per-format section of a Record.
type OutputStats struct {
	Path string `json:"path"`
	Savings
}

// Record is the derived, read-only statistics view of a successful
// conversion result.
type Record struct {
	Input          string       `json:"input"`
	InputSize      string       `json:"input_size"`
	InputSizeBytes int64        `json:"input_size_bytes"`
	Webp           *OutputStats `json:"webp,omitempty"`
	Avif           *OutputStats `json:"avif,omitempty"`
	BestFormat     string       `json:"best_format,omitempty"`
}

// Summarize derives a Record from a conversion result. Failures have no
// statistics, so they yield nil. The best format is the requested output
// with the smallest file, ties going to webp.
func Summarize(result converter.ConversionResult) *Record {
	if result.State != converter.ResultStateSuccess {
		return nil
	}

	inputSize := result.InputSize
	if inputSize == 0 {
		if info, err := os.Stat(result.Input); err == nil {
			inputSize = info.Size()
		}
	}

	rec := &Record{
		Input:          result.Input,
		InputSize:      FormatSize(inputSize),
		InputSizeBytes: inputSize,
	}

	var best *converter.OutputFile

	for i := range result.Outputs {
		out := result.Outputs[i]

		stat := &OutputStats{
			Path:    out.Path,
			Savings: CalculateSavings(inputSize, out.Size),
		}

		switch out.Format {
		case converter.FormatWEBP:
			rec.Webp = stat
		case converter.FormatAVIF:
			rec.Avif = stat
		}

		// Outputs are in the fixed request order (webp before avif), so a
		// strict comparison breaks ties in favor of the earlier format.
		if best == nil || out.Size < best.Size {
			best = &result.Outputs[i]
		}
	}

	if best != nil {
		rec.BestFormat = best.Format.String()
	}

	return rec
}

// FormatSummary renders a Record as the multi-line text block shown by the
// CLI and returned from tool calls.
func FormatSummary(rec *Record) string {
	if rec == nil {
		return ""
	}

	lines := []string{
		"Compression statistics",
		fmt.Sprintf("  input: %s", rec.InputSize),
	}

	if rec.Webp != nil {
		lines = append(lines, fmt.Sprintf("  webp: %s (%s saved)", rec.Webp.NewSize, rec.Webp.SavingsPercent))
	}

	if rec.Avif != nil {
		lines = append(lines, fmt.Sprintf("  avif: %s (%s saved)", rec.Avif.NewSize, rec.Avif.SavingsPercent))
	}

	if rec.BestFormat != "" {
		lines = append(lines, fmt.Sprintf("  best: %s", strings.ToUpper(rec.BestFormat)))
	}

	return strings.Join(lines, "\n")
}
