package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/toyz/infrabuilder/internal/models"
)

// Reasons reports why a unit is not deployable; empty when it is
func (u *UnitReport) Reasons() []string {
	var reasons []string
	if u.ResolveErr != nil {
		return []string{"dependency resolution failed: " + u.ResolveErr.Error()}
	}
	if !u.Eligibility.HasEntryTarget {
		reasons = append(reasons, "no bin target")
	}
	if !u.Eligibility.HasRequiredDependencies {
		reasons = append(reasons, "missing dependencies: "+strings.Join(u.Eligibility.Missing, ", "))
	}
	return reasons
}

// Verdict is the one-word outcome shown by scan
func (u *UnitReport) Verdict() string {
	switch {
	case !u.Deployable():
		return "skipped"
	case u.EntryErr != nil || u.Route == nil:
		return "invalid"
	default:
		return "deployable"
	}
}

// WriteScan writes one line per unit with its verdict, followed by the reasons
// and annotation diagnostics that explain it
func WriteScan(w io.Writer, reporter *DiagnosticReporter, report *Report) {
	rejected := make(map[string]error)
	if report.Result != nil {
		for _, f := range report.Result.Rejected {
			rejected[f.Route.ManifestPath] = f.Err
		}
	}

	for _, u := range report.Units {
		verdict := u.Verdict()
		marker := color.New(color.FgGreen).Sprint(verdict)
		if verdict != "deployable" {
			marker = color.New(color.FgYellow).Sprint(verdict)
		}

		fmt.Fprintf(w, "%s\t%s\t%s", u.Unit.Name, u.Unit.ManifestPath, marker)
		if u.Route != nil {
			fmt.Fprintf(w, "\t%s %s", u.Route.Method, u.Route.Path)
		}
		fmt.Fprintln(w)

		for _, reason := range u.Reasons() {
			fmt.Fprintf(w, "  - %s\n", reason)
		}
		if u.EntryErr != nil {
			fmt.Fprintf(w, "  - %s\n", u.EntryErr)
		}
		if err, ok := rejected[u.Unit.ManifestPath]; ok {
			fmt.Fprintf(w, "  - route rejected: %s\n", err)
		}
		for _, d := range u.Diagnostics {
			reporter.ReportDiagnostic(d)
		}
	}

	if report.Result != nil {
		for _, c := range report.Result.Conflicts {
			reporter.ReportConflict(c)
		}
	}
}

// WriteRoutes writes the route table as aligned text columns
func WriteRoutes(w io.Writer, table *models.RouteTable) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tPATH\tUNIT\tHANDLER\tMANIFEST")
	for _, r := range table.Routes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Method, r.Path, r.Unit, r.HandlerName, r.ManifestPath)
	}
	return tw.Flush()
}

// SummaryStats returns the counters shown at the end of a run
func SummaryStats(report *Report) map[string]interface{} {
	stats := map[string]interface{}{
		"Candidates":  len(report.Units),
		"Deployable":  report.DeployableCount(),
		"Diagnostics": report.DiagnosticCount(),
		"Duration":    report.Duration.Round(time.Millisecond).String(),
	}
	if report.Result != nil {
		stats["Routes"] = report.Result.Table.Len()
		stats["Conflicts"] = len(report.Result.Conflicts)
		stats["Rejected"] = len(report.Result.Rejected)
	}
	return stats
}
