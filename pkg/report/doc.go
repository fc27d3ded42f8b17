/*
Package report renders coverage, violation and enforcement reports, the
per-agent rule view, and audit history listings.

Formats:

  - json: the structured report, unchanged
  - text: a fixed-layout summary with count lines and a findings block
  - markdown: documentation tables, one per enforcement section
  - csv: one row per rule, record, or violation

Usage:

	format, err := report.ParseFormat(flags.format)
	if err != nil {
		return err
	}
	if err := report.Render(os.Stdout, format, rep); err != nil {
		return err
	}

Rendering never modifies the report. Output depends only on the report, so
a rendered report can be compared byte for byte in tests.
*/
package report
