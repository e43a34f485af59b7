package batch

import (
	"github.com/pixelrelay/image-convert/internal/converter"
	"github.com/pixelrelay/image-convert/internal/stats"
)

// Item is the serialized per-image outcome: the input path plus either the
// written output paths or an error. Order within a response always follows
// the input enumeration order, and success and error items may be mixed.
type Item struct {
	Input     string        `json:"input"`
	Webp      string        `json:"webp,omitempty"`
	Avif      string        `json:"avif,omitempty"`
	Error     string        `json:"error,omitempty"`
	ErrorKind string        `json:"error_kind,omitempty"`
	Stats     *stats.Record `json:"stats,omitempty"`
}

// ItemFromResult maps a conversion result to its wire shape. Statistics are
// attached only for successes and only when requested.
func ItemFromResult(result converter.ConversionResult, withStats bool) Item {
	item := Item{Input: result.Input}

	if result.State != converter.ResultStateSuccess {
		item.Error = result.Message
		item.ErrorKind = result.ErrorKind.String()

		return item
	}

	if out, ok := result.Output(converter.FormatWEBP); ok {
		item.Webp = out.Path
	}

	if out, ok := result.Output(converter.FormatAVIF); ok {
		item.Avif = out.Path
	}

	if withStats {
		item.Stats = stats.Summarize(result)
	}

	return item
}

// ItemsFromResults maps a whole batch, preserving order.
func ItemsFromResults(results converter.BatchResult, withStats bool) []Item {
	items := make([]Item, len(results))
	for i, r := range results {
		items[i] = ItemFromResult(r, withStats)
	}

	return items
}
