package instance

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Prometheus interface {
	Registry() *prometheus.Registry
	Register(r prometheus.Registerer)

	StartConversion() func(success bool)

	DecodeImage() func()
	ResizeImage() func()
	EncodeImage() func()
	WriteOutputs() func()

	TotalPixelsProcessed(int)
	TotalBytesRead(int)
	TotalBytesWritten(int)
}
