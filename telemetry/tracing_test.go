package telemetry

import (
	"context"
	"errors"
	"testing"
)

func TestStartSpanCarriesCorrelation(t *testing.T) {
	ctx := WithCorrelation(context.Background(), "corr-1")
	ctx, span := StartSpan(ctx, "test", "op")
	defer span.End()
	if span == nil {
		t.Fatal("StartSpan returned nil span")
	}
	if got := GetCorrelation(ctx); got != "corr-1" {
		t.Errorf("correlation lost across StartSpan: %q", got)
	}
}

func TestRecordErrorSafeWithoutSpan(t *testing.T) {
	// A bare context carries the no-op span; recording must not panic.
	RecordError(context.Background(), errors.New("archive unreachable"))
	RecordError(context.Background(), nil)

	ctx, span := StartSpan(context.Background(), "test", "op")
	defer span.End()
	RecordError(ctx, errors.New("record failed"))
}
