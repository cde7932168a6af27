package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteScan(t *testing.T) {
	report, err := newTestDiscovery(t).RunFS(context.Background(), workspaceFixture(), "/ws")
	require.NoError(t, err)

	var out bytes.Buffer
	reporter, diagBuf := newBufferedReporter(false)
	WriteScan(&out, reporter, report)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Contains(t, lines, "users\tservices/users/Cargo.toml\tdeployable\tGET /users/{id}")
	assert.Contains(t, lines, "only\tlibs/only/Cargo.toml\tskipped")
	assert.Contains(t, lines, "  - no bin target")
	assert.Contains(t, lines, "  - missing dependencies: infra_builder, lambda_http, lambda_runtime")
	assert.Contains(t, lines, "broken\tservices/broken/Cargo.toml\tinvalid")

	assert.Contains(t, diagBuf.String(), "error[invalid-method]")
}

func TestWriteRoutes(t *testing.T) {
	report, err := newTestDiscovery(t).RunFS(context.Background(), workspaceFixture(), "/ws")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, WriteRoutes(&out, report.Result.Table))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "METHOD"))
	assert.Equal(t, []string{"POST", "/orders", "orders", "main", "services/orders/Cargo.toml"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"GET", "/users/{id}", "users", "main", "services/users/Cargo.toml"}, strings.Fields(lines[2]))
}

func TestSummaryStats(t *testing.T) {
	report, err := newTestDiscovery(t).RunFS(context.Background(), workspaceFixture(), "/ws")
	require.NoError(t, err)

	stats := SummaryStats(report)
	assert.Equal(t, 5, stats["Candidates"])
	assert.Equal(t, 3, stats["Deployable"])
	assert.Equal(t, 2, stats["Routes"])
	assert.Equal(t, 1, stats["Diagnostics"])
	assert.Equal(t, 0, stats["Conflicts"])
}
