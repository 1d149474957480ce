package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kilianp07/tailings/core/report"
)

// ReportFile is the name of the report written by WriteTables.
const ReportFile = "report.json"

// WriteReportJSON writes r to w as indented JSON.
func WriteReportJSON(w io.Writer, r *report.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteTableCSV writes one assignment table: the index columns, one label
// column per index and the value.
func WriteTableCSV(w io.Writer, t report.Table) error {
	cw := csv.NewWriter(w)
	header := append([]string(nil), t.Columns...)
	for _, c := range t.Columns {
		header = append(header, c+"_label")
	}
	header = append(header, "value")
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range t.Rows {
		rec := make([]string, 0, len(header))
		for _, idx := range row.Index {
			rec = append(rec, strconv.Itoa(idx))
		}
		rec = append(rec, row.Labels...)
		rec = append(rec, strconv.FormatFloat(row.Value, 'f', -1, 64))
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTables writes report.json and one <variable>.csv per table into dir,
// creating it when needed. It returns the paths written.
func WriteTables(dir string, r *report.Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	var paths []string
	write := func(name string, fn func(io.Writer) error) error {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := fn(f); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		paths = append(paths, path)
		return nil
	}

	if err := write(ReportFile, func(w io.Writer) error { return WriteReportJSON(w, r) }); err != nil {
		return paths, err
	}
	for _, t := range r.Tables {
		t := t
		if err := write(t.Variable+".csv", func(w io.Writer) error { return WriteTableCSV(w, t) }); err != nil {
			return paths, err
		}
	}
	return paths, nil
}
