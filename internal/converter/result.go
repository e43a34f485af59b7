package converter

import (
	"fmt"
	"time"
)

type ResultState int32

const (
	_ ResultState = iota
	ResultStateSuccess
	ResultStateFailed
)

func (r ResultState) String() string {
	switch r {
	case ResultStateSuccess:
		return "SUCCESS"
	case ResultStateFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("UNKNOWN TYPE %d", r)
	}
}

// OutputFile describes one encoded output written to disk.
type OutputFile struct {
	Format      Format `json:"format"`
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ContentType string `json:"content_type"`
	SHA3        string `json:"sha3"`
}

// ConversionResult is the per-image outcome. State tags the variant: a
// success carries Outputs (one per requested format), a failure carries
// ErrorKind and Message. Never both.
type ConversionResult struct {
	Input      string       `json:"input"`
	InputSize  int64        `json:"input_size"`
	InputType  string       `json:"input_type,omitempty"`
	State      ResultState  `json:"state"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Outputs    []OutputFile `json:"outputs,omitempty"`
	ErrorKind  ErrorKind    `json:"error_kind,omitempty"`
	Message    string       `json:"message,omitempty"`
}

// Output returns the output file written for the given format.
func (r ConversionResult) Output(f Format) (OutputFile, bool) {
	for _, out := range r.Outputs {
		if out.Format == f {
			return out, true
		}
	}

	return OutputFile{}, false
}

// BatchResult holds one ConversionResult per enumerated input path,
// index-aligned with the enumeration order regardless of completion order.
type BatchResult []ConversionResult

func (b BatchResult) Succeeded() int {
	n := 0
	for _, r := range b {
		if r.State == ResultStateSuccess {
			n++
		}
	}

	return n
}

func (b BatchResult) Failed() int {
	return len(b) - b.Succeeded()
}
