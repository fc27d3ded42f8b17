package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"mercator-hq/warden/pkg/audit/coverage"
	"mercator-hq/warden/pkg/audit/enforcement"
	"mercator-hq/warden/pkg/audit/scan"
)

// writeCSV writes the header and rows and flushes the writer.
func writeCSV(w io.Writer, header []string, rows [][]string) error {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(header); err != nil {
		return err
	}
	if err := csvWriter.WriteAll(rows); err != nil {
		return err
	}
	return csvWriter.Error()
}

func coverageCSV(w io.Writer, r *coverage.Report) error {
	rows := make([][]string, 0, len(r.Rules))
	for _, res := range r.Rules {
		rows = append(rows, []string{
			res.Rule,
			strconv.Itoa(res.Priority),
			string(res.Coverage),
			strings.Join(res.AppliesTo, " "),
			strings.Join(res.MissingAgents, " "),
			strings.Join(res.UnknownAgents, " "),
			res.Error,
		})
	}
	return writeCSV(w, []string{"rule", "priority", "coverage", "applies_to", "missing_agents", "unknown_agents", "error"}, rows)
}

func violationCSV(w io.Writer, r *scan.Report) error {
	rows := make([][]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		line := ""
		if v.Line > 0 {
			line = strconv.Itoa(v.Line)
		}
		rows = append(rows, []string{
			v.Timestamp, v.Agent, v.Source, line, string(v.Kind), v.Token(), v.Context,
		})
	}
	return writeCSV(w, []string{"timestamp", "agent", "source", "line", "kind", "match", "context"}, rows)
}

func enforcementCSV(w io.Writer, r *enforcement.Report) error {
	rows := make([][]string, 0, len(r.Rules))
	for _, rec := range r.Rules {
		rows = append(rows, []string{
			string(rec.Section), rec.ID, string(rec.Status), rec.Mechanism, rec.Target(), rec.Bypass,
		})
	}
	return writeCSV(w, []string{"section", "id", "status", "mechanism", "target", "bypass"}, rows)
}
