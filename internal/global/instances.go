package global

import "github.com/pixelrelay/image-convert/internal/instance"

type Instances struct {
	Prometheus instance.Prometheus
}
