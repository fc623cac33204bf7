package excel

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"radartools/domain/sweep"
)

const (
	summarySheet     = "Summary"
	requiredSNRSheet = "Required SNR"
	maxSheetName     = 31
)

// WorkbookExporter writes sweep reports as xlsx workbooks: a summary sheet,
// one sheet per curve and a required-SNR sheet when the report has a table.
type WorkbookExporter struct{}

// NewWorkbookExporter creates an xlsx exporter
func NewWorkbookExporter() *WorkbookExporter {
	return &WorkbookExporter{}
}

// Export writes report to path
func (e *WorkbookExporter) Export(ctx context.Context, report sweep.Report, path string) error {
	if report.Curves == nil && report.Table == nil {
		return fmt.Errorf("nothing to export")
	}
	startTime := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeSummary(f, report); err != nil {
		return err
	}

	if report.Curves != nil {
		for _, c := range report.Curves.Curves {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := writeCurve(f, c); err != nil {
				return err
			}
		}
	}
	if report.Table != nil {
		if err := writeTable(f, report.Table); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	log.Printf("[WorkbookExporter] wrote %s (%d sheets) in %.2fms",
		path, len(f.GetSheetList()), float64(time.Since(startTime).Nanoseconds())/1e6)
	return nil
}

func writeSummary(f *excelize.File, report sweep.Report) error {
	rows := [][]interface{}{{"Field", "Value"}}
	if r := report.Curves; r != nil {
		rows = append(rows,
			[]interface{}{"Sweep ID", r.ID.String()},
			[]interface{}{"Fingerprint", r.Fingerprint.String()},
			[]interface{}{"Pfa", r.Pfa},
			[]interface{}{"SNR min (dB)", r.Grid.MinDB},
			[]interface{}{"SNR max (dB)", r.Grid.MaxDB},
			[]interface{}{"SNR step (dB)", r.Grid.StepDB},
			[]interface{}{"Curves", len(r.Curves)},
			[]interface{}{"Created", r.CreatedAt.Format(time.RFC3339)},
		)
	}
	if t := report.Table; t != nil {
		rows = append(rows,
			[]interface{}{"Table ID", t.ID.String()},
			[]interface{}{"Table fingerprint", t.Fingerprint.String()},
			[]interface{}{"Table Pfa", t.Pfa},
			[]interface{}{"Rows", len(t.Rows)},
		)
	}
	return writeRows(f, summarySheet, rows)
}

func writeCurve(f *excelize.File, c sweep.Curve) error {
	name := sheetName(c.Label())
	// NewSheet hands back an existing sheet, which would overwrite it
	if idx, err := f.GetSheetIndex(name); err == nil && idx >= 0 {
		return fmt.Errorf("duplicate curve sheet %q", name)
	}
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", name, err)
	}

	rows := make([][]interface{}, 0, len(c.Points)+1)
	rows = append(rows, []interface{}{"SNR (dB)", "SNR", "Pd"})
	for _, p := range c.Points {
		rows = append(rows, []interface{}{p.SNRdB, p.SNR, p.Pd})
	}
	return writeRows(f, name, rows)
}

func writeTable(f *excelize.File, t *sweep.Table) error {
	if _, err := f.NewSheet(requiredSNRSheet); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", requiredSNRSheet, err)
	}

	rows := make([][]interface{}, 0, len(t.Rows)+1)
	rows = append(rows, []interface{}{"Variant", "Pulses", "Pd", "Threshold", "SNR", "SNR (dB)"})
	for _, r := range t.Rows {
		rows = append(rows, []interface{}{r.Variant.String(), r.Pulses, r.Pd, r.Threshold, r.SNR, r.SNRdB})
	}
	return writeRows(f, requiredSNRSheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// sheetName strips characters excel rejects and truncates to its limit
func sheetName(label string) string {
	name := strings.NewReplacer(":", "", "\\", "", "/", "", "?", "", "*", "", "[", "", "]", "").Replace(label)
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return name
}
