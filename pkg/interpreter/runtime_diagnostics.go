package interpreter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"kestrel/interpreter-go/pkg/ast"
	"kestrel/interpreter-go/pkg/compiler"
	"kestrel/interpreter-go/pkg/parser"
	"kestrel/interpreter-go/pkg/runtime"
)

type DiagnosticLocation struct {
	Path   string
	Line   int
	Column int
}

type DiagnosticNote struct {
	Message  string
	Location DiagnosticLocation
}

// Diagnostic is a user-facing report for a failed parse, compile or run.
type Diagnostic struct {
	Phase    string
	Message  string
	Location DiagnosticLocation
	Notes    []DiagnosticNote
}

// BuildDiagnostic extracts a Diagnostic from any error the front end, the
// compiler or a thread returns.
func BuildDiagnostic(err error) Diagnostic {
	var perr *parser.ParseError
	if errors.As(err, &perr) {
		return Diagnostic{
			Phase:    "parse",
			Message:  perr.Message,
			Location: DiagnosticLocation{Path: perr.Origin, Line: perr.Location.Line, Column: perr.Location.Column},
		}
	}
	var cerr *compiler.CompileError
	if errors.As(err, &cerr) {
		return Diagnostic{
			Phase:    "compile",
			Message:  cerr.Message,
			Location: spanLocation(cerr.Origin, cerr.Location),
		}
	}
	var rerr *runtime.RuntimeError
	if errors.As(err, &rerr) {
		diag := Diagnostic{
			Phase:    "runtime",
			Message:  rerr.Summary(),
			Location: spanLocation(rerr.Origin, rerr.Location),
		}
		for _, site := range rerr.CallSites {
			diag.Notes = append(diag.Notes, DiagnosticNote{
				Message:  "called from here",
				Location: spanLocation(site.Origin, site.Location),
			})
		}
		return diag
	}
	return Diagnostic{Phase: "runtime", Message: err.Error()}
}

// DescribeDiagnostic renders diag as "phase: path:line:col message" plus one
// line per note.
func DescribeDiagnostic(diag Diagnostic) string {
	var b strings.Builder
	if loc := formatLocation(diag.Location); loc != "" {
		fmt.Fprintf(&b, "%s: %s %s", diag.Phase, loc, diag.Message)
	} else {
		fmt.Fprintf(&b, "%s: %s", diag.Phase, diag.Message)
	}
	for _, note := range diag.Notes {
		if loc := formatLocation(note.Location); loc != "" {
			fmt.Fprintf(&b, "\nnote: %s %s", loc, note.Message)
		} else {
			fmt.Fprintf(&b, "\nnote: %s", note.Message)
		}
	}
	return b.String()
}

func spanLocation(origin string, span ast.Span) DiagnosticLocation {
	return DiagnosticLocation{Path: origin, Line: span.Start.Line, Column: span.Start.Column}
}

func formatLocation(loc DiagnosticLocation) string {
	path := relativePath(strings.TrimSpace(loc.Path))
	switch {
	case path != "" && loc.Line > 0 && loc.Column > 0:
		return fmt.Sprintf("%s:%d:%d", path, loc.Line, loc.Column)
	case path != "" && loc.Line > 0:
		return fmt.Sprintf("%s:%d", path, loc.Line)
	case path != "":
		return path
	case loc.Line > 0 && loc.Column > 0:
		return fmt.Sprintf("line %d, column %d", loc.Line, loc.Column)
	default:
		return ""
	}
}

// relativePath shortens absolute paths under the working directory.
func relativePath(path string) string {
	if path == "" || !filepath.IsAbs(path) {
		return filepath.ToSlash(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
