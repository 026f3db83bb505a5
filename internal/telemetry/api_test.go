package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ebotics/recon/internal/model"
	"github.com/ebotics/recon/internal/remote"
)

type stubAPI struct {
	remote.API
	promoteErr error
}

func (s *stubAPI) ListImportJobs(ctx context.Context) ([]model.ImportJob, error) {
	return []model.ImportJob{{JobID: "j1"}}, nil
}

func (s *stubAPI) PromoteImportJob(ctx context.Context, jobID string, dryRun bool) (model.ImportJob, error) {
	return model.ImportJob{}, s.promoteErr
}

func TestWrapAPIDisabled(t *testing.T) {
	require.NoError(t, Init(context.Background(), Config{}, "recon", "test"))
	api := &stubAPI{}
	assert.Same(t, api, WrapAPI(api))
}

func TestWrapAPIRecordsSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)))
	enabled = true
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		enabled = false
	})

	api := WrapAPI(&stubAPI{promoteErr: errors.New("boom")})
	_, ok := api.(*InstrumentedAPI)
	require.True(t, ok)

	jobs, err := api.ListImportJobs(context.Background())
	require.NoError(t, err)
	assert.Len(t, jobs, 1)

	_, err = api.PromoteImportJob(context.Background(), "j1", true)
	require.EqualError(t, err, "boom")

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "remote.ListImportJobs", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, "remote.PromoteImportJob", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}
