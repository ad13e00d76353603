package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticsSeverityBuckets(t *testing.T) {
	var d Diagnostics

	d.AddInfo("nested_text_unconverted", "stays owned", "Deep", "F")
	d.AddWarning("unresolved_reference", "undefined type", "T", "")
	d.AddError("no_convergence", "did not converge", "", "")

	assert.Len(t, d.Infos, 1)
	assert.Len(t, d.Warnings, 1)
	assert.Len(t, d.Errors, 1)

	assert.Equal(t, SeverityInfo, d.Infos[0].Severity)
	assert.Equal(t, SeverityWarning, d.Warnings[0].Severity)
	assert.Equal(t, SeverityError, d.Errors[0].Severity)
}

func TestDiagnosticsError(t *testing.T) {
	var d Diagnostics

	d.AddWarning("unresolved_reference", "undefined type", "T", "")
	assert.False(t, d.HasErrors())
	assert.NoError(t, d.Error())

	d.AddError("no_convergence", "did not converge", "", "")
	d.AddError("bad_shape", "impossible variant", "U", "V")

	require.True(t, d.HasErrors())

	err := d.Error()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not converge")
	assert.Contains(t, err.Error(), "[U] V: [bad_shape] impossible variant")
}

func TestDiagnosticString(t *testing.T) {
	tests := []struct {
		name     string
		diag     Diagnostic
		expected string
	}{
		{"bare message", Diagnostic{Message: "m"}, "m"},
		{"with code", Diagnostic{Code: "c", Message: "m"}, "[c] m"},
		{"with type", Diagnostic{Code: "c", Message: "m", Type: "T"}, "[T]: [c] m"},
		{"full context", Diagnostic{Code: "c", Message: "m", Type: "T", Field: "F"}, "[T] F: [c] m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.diag.String())
		})
	}
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "unknown", Severity(42).String())
}
