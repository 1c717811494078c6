package driver

import (
	"fmt"
	"strings"
)

type DiagnosticSeverity int

const (
	SeverityError DiagnosticSeverity = iota
	SeverityWarning
)

func (s DiagnosticSeverity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// DiagnosticLocation points at a source position. Zero fields are unknown.
type DiagnosticLocation struct {
	Path   string
	Line   int
	Column int
}

func (l DiagnosticLocation) String() string {
	path := strings.TrimSpace(l.Path)
	switch {
	case path != "" && l.Line > 0 && l.Column > 0:
		return fmt.Sprintf("%s:%d:%d", path, l.Line, l.Column)
	case path != "" && l.Line > 0:
		return fmt.Sprintf("%s:%d", path, l.Line)
	case path != "":
		return path
	case l.Line > 0 && l.Column > 0:
		return fmt.Sprintf("line %d, column %d", l.Line, l.Column)
	case l.Line > 0:
		return fmt.Sprintf("line %d", l.Line)
	default:
		return ""
	}
}

// Diagnostic is a located message produced while loading a program.
type Diagnostic struct {
	Severity DiagnosticSeverity
	Message  string
	Location DiagnosticLocation
}

func (d Diagnostic) String() string {
	if loc := d.Location.String(); loc != "" {
		return fmt.Sprintf("%s: %s %s", d.Severity, loc, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}
