package toolchain

import (
	"fmt"
	"strings"
)

// Severity classifies a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
	SeverityOther   Severity = "other"
)

// Diagnostic is one structured message from the compiler.
type Diagnostic struct {
	// Code is the compiler's diagnostic key, e.g. "compiler.err.cant.resolve".
	Code string

	Severity Severity

	// Source names the offending file; empty when the diagnostic has no
	// source position.
	Source string

	// Line is 1-based; 0 when absent.
	Line int64

	Message string
}

// Suppressions is the set of diagnostic codes dropped from rendered
// output. Matching is by exact code or code prefix.
type Suppressions struct {
	Prefixes []string
	Exact    []string
}

// DefaultSuppressions drops the categories that are pure noise in a build
// log: deprecation notes, unchecked-operation notes, and the proprietary
// API warning.
var DefaultSuppressions = Suppressions{
	Prefixes: []string{
		"compiler.note.deprecated",
		"compiler.note.unchecked",
	},
	Exact: []string{
		"compiler.warn.sun.proprietary",
	},
}

// Suppressed reports whether a diagnostic code is filtered out.
func (s Suppressions) Suppressed(code string) bool {
	for _, exact := range s.Exact {
		if code == exact {
			return true
		}
	}

	for _, prefix := range s.Prefixes {
		if strings.HasPrefix(code, prefix) {
			return true
		}
	}

	return false
}

// Render formats all non-suppressed diagnostics, in report order, as
// "source:line: severity: message" with absent fields omitted.
func Render(w *strings.Builder, diags []Diagnostic, sup Suppressions) {
	for _, d := range diags {
		if sup.Suppressed(d.Code) {
			continue
		}

		if d.Source != "" {
			w.WriteString(d.Source)
			if d.Line > 0 {
				fmt.Fprintf(w, ":%d", d.Line)
			}
			w.WriteString(": ")
		}

		fmt.Fprintf(w, "%s: %s\n", d.Severity, d.Message)
	}
}

// severityForCode derives a severity from a raw diagnostic code.
func severityForCode(code string) Severity {
	switch {
	case strings.HasPrefix(code, "compiler.err."):
		return SeverityError
	case strings.HasPrefix(code, "compiler.warn."):
		return SeverityWarning
	case strings.HasPrefix(code, "compiler.note."):
		return SeverityNote
	default:
		return SeverityOther
	}
}
