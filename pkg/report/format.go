package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"mercator-hq/warden/pkg/audit/coverage"
	"mercator-hq/warden/pkg/audit/enforcement"
	"mercator-hq/warden/pkg/audit/scan"
	"mercator-hq/warden/pkg/history"
)

// Format represents the output format of a rendered report.
type Format string

const (
	// FormatText is the human-readable summary (default).
	FormatText Format = "text"
	// FormatJSON is the structured report, unchanged.
	FormatJSON Format = "json"
	// FormatMarkdown renders tables suitable for documentation.
	FormatMarkdown Format = "markdown"
	// FormatCSV renders one row per rule, record, or violation.
	FormatCSV Format = "csv"
)

// Formats lists the supported formats.
var Formats = []Format{FormatText, FormatJSON, FormatMarkdown, FormatCSV}

// ParseFormat converts a format name. "md" is accepted for markdown and an
// empty name selects text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "summary":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want one of text, json, markdown, csv)", s)
	}
}

// Render writes the report in the given format. The report must be a
// *coverage.Report, *coverage.AgentView, *scan.Report, *enforcement.Report
// or a []*history.Record listing. Rendering reads
// the report only, and identical reports render to identical bytes.
func Render(w io.Writer, format Format, report any) error {
	if format == FormatJSON {
		return renderJSON(w, report)
	}

	switch r := report.(type) {
	case *coverage.Report:
		switch format {
		case FormatMarkdown:
			return write(w, coverageMarkdown(r))
		case FormatCSV:
			return coverageCSV(w, r)
		default:
			return write(w, coverageText(r))
		}

	case *coverage.AgentView:
		switch format {
		case FormatMarkdown:
			return write(w, agentMarkdown(r))
		case FormatCSV:
			return agentCSV(w, r)
		default:
			return write(w, agentText(r))
		}

	case []*history.Record:
		switch format {
		case FormatMarkdown:
			return write(w, historyMarkdown(r))
		case FormatCSV:
			return historyCSV(w, r)
		default:
			return write(w, historyText(r))
		}

	case *scan.Report:
		switch format {
		case FormatMarkdown:
			return write(w, violationMarkdown(r))
		case FormatCSV:
			return violationCSV(w, r)
		default:
			return write(w, violationText(r))
		}

	case *enforcement.Report:
		switch format {
		case FormatMarkdown:
			return write(w, enforcementMarkdown(r))
		case FormatCSV:
			return enforcementCSV(w, r)
		default:
			return write(w, enforcementText(r))
		}

	default:
		return fmt.Errorf("cannot render %T", report)
	}
}

// String renders the report to a string.
func String(format Format, report any) (string, error) {
	var sb strings.Builder
	if err := Render(&sb, format, report); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func renderJSON(w io.Writer, report any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

func write(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}
