package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/pixelrelay/image-convert/internal/instance"
)

type Options struct {
	Labels prometheus.Labels
}

func copyLabels(p prometheus.Labels) prometheus.Labels {
	x := prometheus.Labels{}
	for k, v := range p {
		x[k] = v
	}

	return x
}

func New(o Options) instance.Prometheus {
	totalSuccessfulConversions := copyLabels(o.Labels)
	totalFailedConversions := copyLabels(o.Labels)
	currentConversions := copyLabels(o.Labels)
	conversionDurationSeconds := copyLabels(o.Labels)
	totalBytesRead := copyLabels(o.Labels)
	totalBytesWritten := copyLabels(o.Labels)
	totalPixelsProcessed := copyLabels(o.Labels)
	decodeImageDuration := copyLabels(o.Labels)
	resizeImageDuration := copyLabels(o.Labels)
	encodeImageDuration := copyLabels(o.Labels)
	writeOutputsDuration := copyLabels(o.Labels)

	totalSuccessfulConversions["state"] = "successful"
	totalFailedConversions["state"] = "failed"

	totalBytesRead["state"] = "read"
	totalBytesWritten["state"] = "written"

	inst := &Instance{
		registry: prometheus.NewRegistry(),
		totalSuccessfulConversions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "image_convert",
			Name:        "total_conversions",
			Help:        "The total number of conversions",
			ConstLabels: totalSuccessfulConversions,
		}),
		totalFailedConversions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "image_convert",
			Name:        "total_conversions",
			Help:        "The total number of conversions",
			ConstLabels: totalFailedConversions,
		}),
		currentConversions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "image_convert",
			Name:        "current_conversions",
			Help:        "The current number of in-flight conversions",
			ConstLabels: currentConversions,
		}),
		conversionDurationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "image_convert",
			Name:        "conversion_duration_seconds",
			Help:        "The seconds spent converting images",
			ConstLabels: conversionDurationSeconds,
		}),
		decodeImageDurationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "image_convert",
			Name:        "decode_image_duration_seconds",
			Help:        "The seconds spent decoding inputs",
			ConstLabels: decodeImageDuration,
		}),
		resizeImageDurationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "image_convert",
			Name:        "resize_image_duration_seconds",
			Help:        "The seconds spent resizing bitmaps",
			ConstLabels: resizeImageDuration,
		}),
		encodeImageDurationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "image_convert",
			Name:        "encode_image_duration_seconds",
			Help:        "The seconds spent encoding outputs",
			ConstLabels: encodeImageDuration,
		}),
		writeOutputsDurationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "image_convert",
			Name:        "write_outputs_duration_seconds",
			Help:        "The seconds spent writing outputs to disk",
			ConstLabels: writeOutputsDuration,
		}),
		totalBytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "image_convert",
			Name:        "total_bytes",
			Help:        "The total number of bytes processed",
			ConstLabels: totalBytesRead,
		}),
		totalBytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "image_convert",
			Name:        "total_bytes",
			Help:        "The total number of bytes processed",
			ConstLabels: totalBytesWritten,
		}),
		totalPixelsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "image_convert",
			Name:        "total_pixels",
			Help:        "The total number of pixels processed",
			ConstLabels: totalPixelsProcessed,
		}),
	}

	inst.registry.MustRegister(collectors.NewGoCollector())
	inst.Register(inst.registry)

	return inst
}

type Instance struct {
	registry *prometheus.Registry

	totalSuccessfulConversions prometheus.Counter
	totalFailedConversions     prometheus.Counter
	currentConversions         prometheus.Gauge
	conversionDurationSeconds  prometheus.Histogram

	decodeImageDurationSeconds  prometheus.Histogram
	resizeImageDurationSeconds  prometheus.Histogram
	encodeImageDurationSeconds  prometheus.Histogram
	writeOutputsDurationSeconds prometheus.Histogram

	totalBytesRead       prometheus.Counter
	totalBytesWritten    prometheus.Counter
	totalPixelsProcessed prometheus.Counter
}

func (m *Instance) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Instance) Register(r prometheus.Registerer) {
	r.MustRegister(
		m.currentConversions,
		m.conversionDurationSeconds,
		m.totalFailedConversions,
		m.totalSuccessfulConversions,

		m.decodeImageDurationSeconds,
		m.resizeImageDurationSeconds,
		m.encodeImageDurationSeconds,
		m.writeOutputsDurationSeconds,

		m.totalBytesRead,
		m.totalBytesWritten,
		m.totalPixelsProcessed,
	)
}

func (m *Instance) StartConversion() func(success bool) {
	start := time.Now()
	m.currentConversions.Inc()

	return func(success bool) {
		if success {
			m.totalSuccessfulConversions.Inc()
		} else {
			m.totalFailedConversions.Inc()
		}
		m.currentConversions.Dec()
		m.conversionDurationSeconds.Observe(float64(time.Since(start)/time.Millisecond) / 1000)
	}
}

func (m *Instance) DecodeImage() func() {
	start := time.Now()

	return func() {
		m.decodeImageDurationSeconds.Observe(float64(time.Since(start)/time.Millisecond) / 1000)
	}
}

func (m *Instance) ResizeImage() func() {
	start := time.Now()

	return func() {
		m.resizeImageDurationSeconds.Observe(float64(time.Since(start)/time.Millisecond) / 1000)
	}
}

func (m *Instance) EncodeImage() func() {
	start := time.Now()

	return func() {
		m.encodeImageDurationSeconds.Observe(float64(time.Since(start)/time.Millisecond) / 1000)
	}
}

func (m *Instance) WriteOutputs() func() {
	start := time.Now()

	return func() {
		m.writeOutputsDurationSeconds.Observe(float64(time.Since(start)/time.Millisecond) / 1000)
	}
}

func (m *Instance) TotalBytesRead(bytes int) {
	m.totalBytesRead.Add(float64(bytes))
}

func (m *Instance) TotalBytesWritten(bytes int) {
	m.totalBytesWritten.Add(float64(bytes))
}

func (m *Instance) TotalPixelsProcessed(pixels int) {
	m.totalPixelsProcessed.Add(float64(pixels))
}
