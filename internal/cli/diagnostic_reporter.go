package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/infrabuilder/internal/annotations"
	"github.com/toyz/infrabuilder/internal/errors"
	"github.com/toyz/infrabuilder/internal/routetable"
)

// DiagnosticReporter prints annotation diagnostics, conflicts and fatal errors
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
}

// NewDiagnosticReporter creates a new diagnostic reporter writing to stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose: verbose,
		out:     os.Stderr,
	}
}

// SetOutput redirects the reporter
func (r *DiagnosticReporter) SetOutput(w io.Writer) {
	r.out = w
}

// ReportWarning prints a single warning line
func (r *DiagnosticReporter) ReportWarning(message string) {
	orange := color.New(color.FgYellow, color.Bold)
	orange.Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
}

// ReportDiagnostic prints an annotation diagnostic in compiler style:
//
//	src/main.rs:5:9: error[invalid-method]: invalid HTTP method 'FOO'. ...
//	   expected: GET, POST, PUT, DELETE, HEAD or OPTIONS
//	      found: FOO
//	       help: #[route(GET, "/some/path")]
func (r *DiagnosticReporter) ReportDiagnostic(d *annotations.Diagnostic) {
	red := color.New(color.FgRed, color.Bold)

	fmt.Fprintf(r.out, "%s: ", d.Location())
	red.Fprintf(r.out, "error[%s]", d.Kind)
	fmt.Fprintf(r.out, ": %s\n", d.Message)

	if d.Expected != "" {
		fmt.Fprintf(r.out, "   expected: %s\n", d.Expected)
	}
	if d.Found != "" {
		fmt.Fprintf(r.out, "      found: %s\n", d.Found)
	}
	if d.Example != "" {
		cyan := color.New(color.FgCyan)
		fmt.Fprint(r.out, "       help: ")
		cyan.Fprintln(r.out, d.Example)
	}
}

// ReportConflict prints a duplicate route and every unit claiming it
func (r *DiagnosticReporter) ReportConflict(c routetable.Conflict) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprint(r.out, "conflict: ")
	fmt.Fprintf(r.out, "%s %s\n", c.Method, c.Path)
	for _, route := range c.Routes {
		fmt.Fprintf(r.out, "   claimed by %s (%s", route.Unit, route.ManifestPath)
		if !route.Location.IsEmpty() {
			fmt.Fprintf(r.out, ", %s", route.Location)
		}
		fmt.Fprintln(r.out, ")")
	}
}

// ReportError prints a fatal error with its location, context and suggestions
func (r *DiagnosticReporter) ReportError(err error) {
	fmt.Fprintf(r.out, "\nERROR: %s\n", headline(err))
	fmt.Fprintf(r.out, "%s\n\n", strings.Repeat("=", len(headline(err))+7))

	var multi *errors.MultipleErrors
	if stderrors.As(err, &multi) && multi.Count() > 1 {
		for _, e := range multi.Errors {
			r.reportCoded(e)
		}
		return
	}

	var coded errors.CodedError
	if stderrors.As(err, &coded) {
		r.reportCoded(coded)
		return
	}

	fmt.Fprintf(r.out, "Message: %s\n\n", err.Error())
}

func (r *DiagnosticReporter) reportCoded(err errors.CodedError) {
	fmt.Fprintf(r.out, "Type: %s\n", err.ErrorCode())
	fmt.Fprintf(r.out, "Message: %s\n", err.Error())

	if loc := err.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.out, "Location: %s\n", loc)
	}

	if ctx := err.Context(); len(ctx) > 0 {
		r.printContext(ctx)
	}

	if suggestions := err.Suggestions(); len(suggestions) > 0 {
		r.printSuggestions(suggestions)
	}

	if r.verbose {
		r.printErrorChain(err)
	}
	fmt.Fprintln(r.out)
}

// printContext prints context information with readable keys, sorted
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	fmt.Fprintf(r.out, "Context:\n")

	keys := make([]string, 0, len(context))
	for key := range context {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Fprintf(r.out, "   %s: %v\n", formatContextKey(key), context[key])
	}
}

// printSuggestions prints actionable suggestions
func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.out, "Suggestions:\n")
	for i, suggestion := range suggestions {
		lines := strings.Split(suggestion, "\n")
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(r.out, "      %s\n", line)
			}
		}
	}
}

func (r *DiagnosticReporter) printErrorChain(err error) {
	fmt.Fprintf(r.out, "Error Chain:\n")
	level := 1
	for err != nil {
		fmt.Fprintf(r.out, "   %d. %s\n", level, err.Error())
		err = stderrors.Unwrap(err)
		level++
	}
}

// Debug prints debug information when verbose mode is enabled
func (r *DiagnosticReporter) Debug(format string, args ...interface{}) {
	if r.verbose {
		fmt.Fprintf(r.out, "[DEBUG] "+format+"\n", args...)
	}
}

func headline(err error) string {
	switch errors.CodeOf(err) {
	case errors.UsageErrorCode:
		return "Invalid Invocation"
	case errors.ConfigurationErrorCode:
		return "Invalid Configuration"
	case errors.FileSystemErrorCode:
		return "Workspace Unavailable"
	case errors.RouteConflictErrorCode:
		return "Route Conflict"
	case errors.ResolutionErrorCode:
		return "Resolution Failed"
	default:
		return "Discovery Failed"
	}
}

// formatContextKey converts snake_case keys to Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}
