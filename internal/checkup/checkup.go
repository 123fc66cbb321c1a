// Package checkup implements the diagnostics behind the check subcommands:
// configuration shape, credential hygiene, environment setup, and a live
// Fortnox connection test. Each check produces a Report the command layer
// renders and turns into an exit code.
package checkup

import (
	"fmt"
	"strings"
)

// Status classifies a single finding.
type Status string

const (
	StatusOK   Status = "ok"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

func (s Status) icon() string {
	switch s {
	case StatusOK:
		return "✅"
	case StatusWarn:
		return "⚠️"
	default:
		return "❌"
	}
}

// Finding is one check result with an operator-facing message.
type Finding struct {
	Name    string
	Status  Status
	Message string
}

// Report collects the findings of one check run.
type Report struct {
	Title    string
	Findings []Finding
}

func (r *Report) add(name string, status Status, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{
		Name:    name,
		Status:  status,
		Message: fmt.Sprintf(format, args...),
	})
}

// Passed reports whether the run produced no failures. Warnings do not fail
// a report.
func (r *Report) Passed() bool {
	for _, f := range r.Findings {
		if f.Status == StatusFail {
			return false
		}
	}
	return true
}

const divider = "============================================================"

// String renders the report for the terminal.
func (r *Report) String() string {
	var b strings.Builder

	b.WriteString(divider + "\n")
	b.WriteString(r.Title + "\n")
	b.WriteString(divider + "\n\n")

	passed := 0
	for _, f := range r.Findings {
		if f.Status != StatusFail {
			passed++
		}
		fmt.Fprintf(&b, "%s %s: %s\n", f.Status.icon(), f.Name, f.Message)
	}

	b.WriteString("\n" + divider + "\n")
	fmt.Fprintf(&b, "Result: %d/%d checks passed\n", passed, len(r.Findings))

	return b.String()
}

// redact shows enough of a secret for the operator to recognize it without
// echoing the whole value.
func redact(value string) string {
	switch {
	case len(value) > 20:
		return value[:8] + "..." + value[len(value)-4:]
	case len(value) > 8:
		return value[:8] + "..."
	default:
		return "***"
	}
}
