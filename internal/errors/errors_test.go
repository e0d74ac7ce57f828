package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	reported []*EnhancedError
}

func (r *recordingReporter) ReportError(ee *EnhancedError) { r.reported = append(r.reported, ee) }
func (r *recordingReporter) IsEnabled() bool               { return true }

func TestBuild_FastPathWithoutTelemetry(t *testing.T) {
	SetTelemetryReporter(nil)

	ee := New(fmt.Errorf("test error")).Build()

	assert.Equal(t, "test error", ee.Error())
	assert.Equal(t, ComponentUnknown, ee.GetComponent())
	assert.Equal(t, CategoryGeneric, ee.Category)
}

func TestBuild_InheritsCategoryFromWrappedError(t *testing.T) {
	inner := ResolutionError("Court not found")
	outer := New(fmt.Errorf("migrate courtroom: %w", inner)).Build()

	assert.Equal(t, CategoryResolution, outer.Category)
	assert.True(t, IsRecordLevel(outer))
}

func TestBuild_ContextIsCopied(t *testing.T) {
	ee := Newf("failed %s", "insert").
		Component("migration").
		EntityContext("cases", "abc").
		Context("batch", 3).
		Build()

	ctx := ee.GetContext()
	ctx["entity"] = "mutated"

	assert.Equal(t, "cases", ee.GetContext()["entity"])
	assert.Equal(t, "abc", ee.GetContext()["record_id"])
	assert.Equal(t, "migration", ee.GetComponent())
}

func TestPriority_InvalidValueFallsBackToMedium(t *testing.T) {
	ee := Newf("x").Priority("urgent").Build()
	assert.Equal(t, PriorityMedium, ee.GetPriority())

	ee = Newf("x").Priority(PriorityCritical).Build()
	assert.Equal(t, PriorityCritical, ee.GetPriority())
}

func TestIsRecordLevel(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"validation", ValidationError("Null value for case reference."), true},
		{"resolution", ResolutionError("Booking not found"), true},
		{"constraint", ConstraintViolation(fmt.Errorf("UNIQUE constraint failed")), true},
		{"infrastructure", InfrastructureError(fmt.Errorf("connection reset")), false},
		{"plain", fmt.Errorf("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRecordLevel(tt.err))
		})
	}

	assert.True(t, IsInfrastructure(fmt.Errorf("boom")))
	assert.False(t, IsInfrastructure(nil))
}

func TestEnhancedError_IsMatchesCategory(t *testing.T) {
	a := ValidationError("a")
	b := ValidationError("b")
	c := ResolutionError("c")

	assert.True(t, Is(a, b))
	assert.False(t, Is(a, c))
}

func TestSetTelemetryReporter_ReportsOnBuild(t *testing.T) {
	reporter := &recordingReporter{}
	SetTelemetryReporter(reporter)
	t.Cleanup(func() { SetTelemetryReporter(nil) })

	_ = InfrastructureError(fmt.Errorf("disk full"))

	require.Len(t, reporter.reported, 1)
	assert.Equal(t, CategoryInfrastructure, reporter.reported[0].Category)
}

func TestSentryReporter_SkipsRecordLevel(t *testing.T) {
	sr := NewSentryReporter(true)
	ee := ValidationError("Null value for case reference.")

	sr.ReportError(ee)

	assert.False(t, ee.IsReported())
}

func TestScrubMessage(t *testing.T) {
	msg := "dial root:secret@tcp(db:3306) for jane.doe@example.org record 2b1f0a8e-3c4d-4e5f-8a9b-0c1d2e3f4a5b"

	scrubbed := ScrubMessage(msg)

	assert.NotContains(t, scrubbed, "secret")
	assert.NotContains(t, scrubbed, "jane.doe@example.org")
	assert.NotContains(t, scrubbed, "2b1f0a8e")
	assert.Contains(t, scrubbed, "[EMAIL_REDACTED]")
}
