package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ebotics/recon/internal/model"
	"github.com/ebotics/recon/internal/remote"
)

const remoteScopeName = "github.com/ebotics/recon/remote"

// InstrumentedAPI wraps remote.API with a span and metrics per call.
// Use WrapAPI to create one.
type InstrumentedAPI struct {
	inner  remote.API
	tracer trace.Tracer
	calls  metric.Int64Counter
	dur    metric.Float64Histogram
	errs   metric.Int64Counter
}

// WrapAPI returns api decorated with OTel instrumentation. When telemetry is
// disabled api is returned as-is.
func WrapAPI(api remote.API) remote.API {
	if !Enabled() {
		return api
	}
	m := Meter(remoteScopeName)
	calls, _ := m.Int64Counter("recon.remote.calls",
		metric.WithDescription("Staging service calls issued"),
	)
	dur, _ := m.Float64Histogram("recon.remote.call.duration",
		metric.WithDescription("Staging service call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("recon.remote.errors",
		metric.WithDescription("Staging service calls that failed"),
	)
	return &InstrumentedAPI{
		inner:  api,
		tracer: Tracer(remoteScopeName),
		calls:  calls,
		dur:    dur,
		errs:   errs,
	}
}

func (a *InstrumentedAPI) op(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	all := append([]attribute.KeyValue{attribute.String("recon.operation", name)}, attrs...)
	ctx, span := a.tracer.Start(ctx, "remote."+name,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	a.calls.Add(ctx, 1, metric.WithAttributes(all...))
	return ctx, span, time.Now()
}

func (a *InstrumentedAPI) done(ctx context.Context, span trace.Span, start time.Time, err error, name string) {
	attrs := metric.WithAttributes(attribute.String("recon.operation", name))
	a.dur.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.errs.Add(ctx, 1, attrs)
	}
	span.End()
}

func jobAttr(jobID string) attribute.KeyValue {
	return attribute.String("recon.job.id", jobID)
}

func (a *InstrumentedAPI) ListImportJobs(ctx context.Context) ([]model.ImportJob, error) {
	ctx, span, t := a.op(ctx, "ListImportJobs")
	v, err := a.inner.ListImportJobs(ctx)
	a.done(ctx, span, t, err, "ListImportJobs")
	return v, err
}

func (a *InstrumentedAPI) GetImportJob(ctx context.Context, jobID string) (model.ImportJob, error) {
	ctx, span, t := a.op(ctx, "GetImportJob", jobAttr(jobID))
	v, err := a.inner.GetImportJob(ctx, jobID)
	a.done(ctx, span, t, err, "GetImportJob")
	return v, err
}

func (a *InstrumentedAPI) GetImportJobRows(ctx context.Context, jobID string, q remote.RowQuery) (model.RowPage, error) {
	ctx, span, t := a.op(ctx, "GetImportJobRows", jobAttr(jobID), attribute.Int("recon.page", q.Page))
	v, err := a.inner.GetImportJobRows(ctx, jobID, q)
	a.done(ctx, span, t, err, "GetImportJobRows")
	return v, err
}

func (a *InstrumentedAPI) UploadImportFile(ctx context.Context, req remote.UploadRequest) (model.ImportJob, error) {
	ctx, span, t := a.op(ctx, "UploadImportFile",
		attribute.String("recon.file.name", req.FileName),
		attribute.Int("recon.file.size", len(req.Content)),
	)
	v, err := a.inner.UploadImportFile(ctx, req)
	a.done(ctx, span, t, err, "UploadImportFile")
	return v, err
}

func (a *InstrumentedAPI) BulkUpdateStagedRows(ctx context.Context, jobID string, rows []model.RowUpdate) (model.ImportJob, error) {
	ctx, span, t := a.op(ctx, "BulkUpdateStagedRows", jobAttr(jobID), attribute.Int("recon.row.count", len(rows)))
	v, err := a.inner.BulkUpdateStagedRows(ctx, jobID, rows)
	a.done(ctx, span, t, err, "BulkUpdateStagedRows")
	return v, err
}

func (a *InstrumentedAPI) RevalidateImportJob(ctx context.Context, jobID string) (model.ImportJob, error) {
	ctx, span, t := a.op(ctx, "RevalidateImportJob", jobAttr(jobID))
	v, err := a.inner.RevalidateImportJob(ctx, jobID)
	a.done(ctx, span, t, err, "RevalidateImportJob")
	return v, err
}

func (a *InstrumentedAPI) PromoteImportJob(ctx context.Context, jobID string, dryRun bool) (model.ImportJob, error) {
	ctx, span, t := a.op(ctx, "PromoteImportJob", jobAttr(jobID), attribute.Bool("recon.dry_run", dryRun))
	v, err := a.inner.PromoteImportJob(ctx, jobID, dryRun)
	a.done(ctx, span, t, err, "PromoteImportJob")
	return v, err
}

func (a *InstrumentedAPI) DeleteImportJob(ctx context.Context, jobID string) error {
	ctx, span, t := a.op(ctx, "DeleteImportJob", jobAttr(jobID))
	err := a.inner.DeleteImportJob(ctx, jobID)
	a.done(ctx, span, t, err, "DeleteImportJob")
	return err
}
