package utils

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func newTestDiagnostics(level DiagnosticLevel) (*DiagnosticSystem, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	d := NewDiagnosticSystem(level)
	d.SetOutput(&out, &errOut)
	d.SetColors(false)
	d.SetShowTime(false)
	return d, &out, &errOut
}

func TestDiagnosticLevels(t *testing.T) {
	d, out, errOut := newTestDiagnostics(DiagnosticInfo)

	d.Error("broken %s", "thing")
	d.Warn("careful")
	d.Info("hello")
	d.Verbose("hidden")
	d.Debug("hidden too")

	assert.Equal(t, "[ERROR] broken thing\n", errOut.String())
	assert.Contains(t, out.String(), "[WARN] careful\n")
	assert.Contains(t, out.String(), "[INFO] hello\n")
	assert.NotContains(t, out.String(), "hidden")
}

func TestQuietDiagnosticsOnlyShowErrors(t *testing.T) {
	d, out, errOut := newTestDiagnostics(DiagnosticError)

	d.Warn("nope")
	d.Section("nope")
	d.List("nope")
	d.Error("yes")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "yes")
	assert.True(t, d.Enabled(DiagnosticError))
	assert.False(t, d.Enabled(DiagnosticInfo))
}

func TestSilentDiagnostics(t *testing.T) {
	d, out, errOut := newTestDiagnostics(DiagnosticSilent)
	d.Error("nothing")
	assert.Empty(t, out.String())
	assert.Empty(t, errOut.String())
}

func TestDiagnosticIndentAndItems(t *testing.T) {
	d, out, _ := newTestDiagnostics(DiagnosticInfo)

	d.Indent()
	d.List("first")
	d.Item(true, "ok %d", 1)
	d.Item(false, "bad")
	d.Unindent()
	d.Unindent()
	d.List("second")

	assert.Equal(t, "  - first\n  ✓ ok 1\n  ✗ bad\n- second\n", out.String())
}

func TestDiagnosticSummarySortsKeys(t *testing.T) {
	d, out, _ := newTestDiagnostics(DiagnosticInfo)
	d.Summary("Done", map[string]interface{}{"routes": 2, "deployable": 3, "candidates": 4})

	assert.Equal(t, "\nDone\n   candidates: 4\n   deployable: 3\n   routes: 2\n\n", out.String())
}

func TestPaintWithoutColors(t *testing.T) {
	d, _, _ := newTestDiagnostics(DiagnosticInfo)
	assert.Equal(t, "plain", d.Paint("plain", color.Bold))

	d.SetColors(true)
	assert.NotEqual(t, "plain", d.Paint("plain", color.Bold))
}
