package interpreter

import (
	"errors"
	"fmt"
	"strings"

	"tinylang/interpreter-go/pkg/ast"
	"tinylang/interpreter-go/pkg/driver"
	"tinylang/interpreter-go/pkg/lexer"
	"tinylang/interpreter-go/pkg/parser"
)

// maxDiagnosticNotes caps the "called from here" trail.
const maxDiagnosticNotes = 8

type RuntimeDiagnosticNote struct {
	Message  string
	Location driver.DiagnosticLocation
}

type RuntimeDiagnostic struct {
	Severity driver.DiagnosticSeverity
	Kind     ErrorKind
	Message  string
	Location driver.DiagnosticLocation
	Notes    []RuntimeDiagnosticNote
}

// BuildRuntimeDiagnostic turns a runtime error into a located diagnostic with
// one note per unwound call site.
func BuildRuntimeDiagnostic(err error) RuntimeDiagnostic {
	diag := RuntimeDiagnostic{Severity: driver.SeverityError}
	var rtErr *RuntimeError
	if !errors.As(err, &rtErr) {
		if err != nil {
			diag.Message = err.Error()
		}
		return diag
	}
	diag.Kind = rtErr.Kind
	diag.Message = rtErr.Message
	if diag.Message == "" {
		diag.Message = string(rtErr.Kind)
	}
	diag.Location = locationFromSpan(rtErr.Pos)
	for _, span := range rtErr.CallStack {
		if len(diag.Notes) >= maxDiagnosticNotes {
			break
		}
		loc := locationFromSpan(span)
		if loc == (driver.DiagnosticLocation{}) || loc == diag.Location {
			continue
		}
		diag.Notes = append(diag.Notes, RuntimeDiagnosticNote{Message: "called from here", Location: loc})
	}
	return diag
}

// DescribeRuntimeDiagnostic renders `location: Kind: message` followed by
// `note:` lines.
func DescribeRuntimeDiagnostic(diag RuntimeDiagnostic) string {
	message := strings.TrimSpace(diag.Message)
	if diag.Kind != "" {
		message = fmt.Sprintf("%s: %s", diag.Kind, message)
	}
	var b strings.Builder
	if loc := diag.Location.String(); loc != "" {
		fmt.Fprintf(&b, "%s: %s", loc, message)
	} else {
		b.WriteString(message)
	}
	for _, note := range diag.Notes {
		if loc := note.Location.String(); loc != "" {
			fmt.Fprintf(&b, "\nnote: %s: %s", loc, note.Message)
		} else {
			fmt.Fprintf(&b, "\nnote: %s", note.Message)
		}
	}
	return b.String()
}

// DescribeError renders lexer, parser and runtime errors as
// `file:line:column: message`. Other errors print unchanged.
func DescribeError(err error) string {
	if err == nil {
		return ""
	}
	var lexErr *lexer.LexError
	if errors.As(err, &lexErr) {
		return fmt.Sprintf("%s: %s", locationFromPosition(lexErr.Pos), lexErr.Message)
	}
	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) {
		found := parseErr.Found.Lexeme
		if parseErr.Found.Type == lexer.EOF {
			found = "end of input"
		}
		return fmt.Sprintf("%s: %s, found %q", locationFromPosition(parseErr.Pos), parseErr.Message, found)
	}
	var rtErr *RuntimeError
	if errors.As(err, &rtErr) {
		return DescribeRuntimeDiagnostic(BuildRuntimeDiagnostic(err))
	}
	return err.Error()
}

func locationFromSpan(span ast.Span) driver.DiagnosticLocation {
	return driver.DiagnosticLocation{Path: span.File, Line: span.Line, Column: span.Column}
}

func locationFromPosition(pos lexer.Position) driver.DiagnosticLocation {
	return driver.DiagnosticLocation{Path: pos.File, Line: pos.Line, Column: pos.Column}
}
