package metrics

import (
	"context"
	"errors"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// otelInstruments mirrors the relay counters into the OTLP pipeline.
type otelInstruments struct {
	uploads      metric.Int64Counter
	uploadBytes  metric.Int64Counter
	resolves     metric.Int64Counter
	feedback     metric.Int64Counter
	presign      metric.Float64Histogram
	storeLatency metric.Float64Histogram
	swept        metric.Int64Counter
}

var instruments atomic.Pointer[otelInstruments]

// RegisterOTel creates the OpenTelemetry instruments on meter. Until it is
// called only the Prometheus series are recorded.
func RegisterOTel(meter metric.Meter) error {
	var (
		inst otelInstruments
		errs []error
		err  error
	)

	inst.uploads, err = meter.Int64Counter("codedrop.relay.uploads",
		metric.WithDescription("File uploads by outcome"))
	errs = append(errs, err)
	inst.uploadBytes, err = meter.Int64Counter("codedrop.relay.upload.bytes",
		metric.WithDescription("Decoded bytes accepted"), metric.WithUnit("By"))
	errs = append(errs, err)
	inst.resolves, err = meter.Int64Counter("codedrop.relay.resolves",
		metric.WithDescription("Code resolutions by outcome"))
	errs = append(errs, err)
	inst.feedback, err = meter.Int64Counter("codedrop.relay.feedback",
		metric.WithDescription("Feedback submissions by outcome"))
	errs = append(errs, err)
	inst.presign, err = meter.Float64Histogram("codedrop.relay.presign.duration",
		metric.WithDescription("Signed URL generation duration"), metric.WithUnit("s"))
	errs = append(errs, err)
	inst.storeLatency, err = meter.Float64Histogram("codedrop.relay.store.duration",
		metric.WithDescription("Store operation duration"), metric.WithUnit("s"))
	errs = append(errs, err)
	inst.swept, err = meter.Int64Counter("codedrop.relay.janitor.swept",
		metric.WithDescription("Expired entries removed by background sweeps"))
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return err
	}
	instruments.Store(&inst)
	return nil
}

func otelRecordUpload(status string, bytes int64) {
	inst := instruments.Load()
	if inst == nil {
		return
	}
	ctx := context.Background()
	inst.uploads.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	if status == "success" {
		inst.uploadBytes.Add(ctx, bytes)
	}
}

func otelRecordResolve(outcome string) {
	if inst := instruments.Load(); inst != nil {
		inst.resolves.Add(context.Background(), 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

func otelRecordFeedback(status string) {
	if inst := instruments.Load(); inst != nil {
		inst.feedback.Add(context.Background(), 1, metric.WithAttributes(attribute.String("status", status)))
	}
}

func otelRecordPresign(durationSec float64) {
	if inst := instruments.Load(); inst != nil {
		inst.presign.Record(context.Background(), durationSec)
	}
}

func otelRecordStore(store, operation, status string, durationSec float64) {
	if inst := instruments.Load(); inst != nil {
		inst.storeLatency.Record(context.Background(), durationSec, metric.WithAttributes(
			attribute.String("store", store),
			attribute.String("operation", operation),
			attribute.String("status", status),
		))
	}
}

func otelRecordSwept(sweeper string, count int) {
	if inst := instruments.Load(); inst != nil {
		inst.swept.Add(context.Background(), int64(count), metric.WithAttributes(attribute.String("sweeper", sweeper)))
	}
}
