// Package metrics 导出上传与播放相关的 Prometheus 指标。
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer 记录上传协调器和播放服务的遥测数据。
type Observer interface {
	RecordUpload(duration time.Duration, sizeBytes int64, parts int, err error)
	RecordPart(duration time.Duration, sizeBytes int64, err error)
	RecordFetch(duration time.Duration, sizeBytes int64, err error)
}

// NopObserver 丢弃所有指标。
type NopObserver struct{}

func (NopObserver) RecordUpload(time.Duration, int64, int, error) {}
func (NopObserver) RecordPart(time.Duration, int64, error)        {}
func (NopObserver) RecordFetch(time.Duration, int64, error)       {}

// PrometheusObserver 把指标注册到 Prometheus。
type PrometheusObserver struct {
	duration  *prometheus.HistogramVec
	errors    *prometheus.CounterVec
	bytes     *prometheus.CounterVec
	partCount prometheus.Histogram
}

// NewPrometheusObserver 注册 upload/part/fetch 三类操作的耗时、错误数和字节数。
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "vidhub"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &PrometheusObserver{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "operation_duration_seconds",
			Help:      "Latency of upload, part upload and fetch operations.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"operation"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "operation_errors_total",
			Help:      "Count of failed storage operations.",
		}, []string{"operation"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "bytes_total",
			Help:      "Bytes successfully moved to or from object storage.",
		}, []string{"operation"}),
		partCount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "upload_parts",
			Help:      "Number of parts per completed upload.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}

	collectors := []prometheus.Collector{o.duration, o.errors, o.bytes, o.partCount}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, fmt.Errorf("register storage metric: %w", err)
			}
			collectors[i] = are.ExistingCollector
		}
	}
	// 重复注册时沿用已存在的 collector
	if v, ok := collectors[0].(*prometheus.HistogramVec); ok {
		o.duration = v
	}
	if v, ok := collectors[1].(*prometheus.CounterVec); ok {
		o.errors = v
	}
	if v, ok := collectors[2].(*prometheus.CounterVec); ok {
		o.bytes = v
	}
	if v, ok := collectors[3].(prometheus.Histogram); ok {
		o.partCount = v
	}
	return o, nil
}

// RecordUpload 记录一次完整上传。
func (o *PrometheusObserver) RecordUpload(duration time.Duration, sizeBytes int64, parts int, err error) {
	if !o.record("upload", duration, sizeBytes, err) {
		return
	}
	o.partCount.Observe(float64(parts))
}

// RecordPart 记录单个分片的上传。
func (o *PrometheusObserver) RecordPart(duration time.Duration, sizeBytes int64, err error) {
	o.record("part", duration, sizeBytes, err)
}

// RecordFetch 记录一次对象读取。
func (o *PrometheusObserver) RecordFetch(duration time.Duration, sizeBytes int64, err error) {
	o.record("fetch", duration, sizeBytes, err)
}

func (o *PrometheusObserver) record(op string, duration time.Duration, sizeBytes int64, err error) bool {
	if o == nil {
		return false
	}
	o.duration.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		o.errors.WithLabelValues(op).Inc()
		return false
	}
	o.bytes.WithLabelValues(op).Add(float64(sizeBytes))
	return true
}

var (
	_ Observer = (*PrometheusObserver)(nil)
	_ Observer = NopObserver{}
)
