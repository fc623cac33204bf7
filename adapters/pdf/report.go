// Package pdf writes sweep reports as PDF documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"radartools/domain/sweep"
	"radartools/ports"
)

const (
	pageMargin   = 15.0
	contentWidth = 210.0 - 2*pageMargin
	lineHeight   = 6.0
	plotHeight   = contentWidth * 500 / 800
)

// ReportExporter lays out a parameter summary, the curve plot and the
// required-SNR table on A4 portrait pages.
type ReportExporter struct {
	renderer ports.CurveRenderer
}

// NewReportExporter creates a PDF exporter. renderer may be nil, in which
// case the curve plot is left out.
func NewReportExporter(renderer ports.CurveRenderer) *ReportExporter {
	return &ReportExporter{renderer: renderer}
}

// Export writes report to path
func (e *ReportExporter) Export(ctx context.Context, report sweep.Report, path string) error {
	if report.Curves == nil && report.Table == nil {
		return fmt.Errorf("nothing to export")
	}

	pdf, err := e.build(ctx, report)
	if err != nil {
		return err
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	log.Printf("[ReportExporter] wrote %s (%d pages)", path, pdf.PageCount())
	return nil
}

func (e *ReportExporter) build(ctx context.Context, report sweep.Report) (*gofpdf.Fpdf, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(contentWidth, 10, "Detection Performance Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	if r := report.Curves; r != nil {
		heading(pdf, "Curve sweep")
		keyValues(pdf, [][2]string{
			{"Sweep ID", r.ID.String()},
			{"Fingerprint", r.Fingerprint.Short()},
			{"Pfa", fmt.Sprintf("%g", r.Pfa)},
			{"SNR grid", fmt.Sprintf("%g to %g dB, step %g dB", r.Grid.MinDB, r.Grid.MaxDB, r.Grid.StepDB)},
			{"Created", r.CreatedAt.Format(time.RFC3339)},
		})

		if e.renderer != nil {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			img, err := e.renderer.Render(r)
			if err != nil {
				return nil, fmt.Errorf("failed to render curves: %w", err)
			}
			name := "curves-" + r.ID.String()
			pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(img))
			pdf.ImageOptions(name, pageMargin, pdf.GetY()+2, contentWidth, plotHeight, true, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
			pdf.Ln(4)
		}

		table(pdf, []string{"Curve", "Threshold", "Pd at min SNR", "Pd at max SNR"}, curveRows(r.Curves))
	}

	if t := report.Table; t != nil {
		pdf.Ln(4)
		heading(pdf, fmt.Sprintf("Required SNR (Pfa = %g)", t.Pfa))
		rows := make([][]string, len(t.Rows))
		for i, row := range t.Rows {
			rows[i] = []string{
				row.Variant.String(),
				strconv.Itoa(row.Pulses),
				formatFloat(row.Pd),
				formatFloat(row.Threshold),
				formatFloat(row.SNR),
				fmt.Sprintf("%.2f", row.SNRdB),
			}
		}
		table(pdf, []string{"Variant", "Pulses", "Pd", "Threshold", "SNR", "SNR (dB)"}, rows)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to lay out pdf: %w", err)
	}
	return pdf, nil
}

func curveRows(curves []sweep.Curve) [][]string {
	rows := make([][]string, 0, len(curves))
	for _, c := range curves {
		first, last := "", ""
		if len(c.Points) > 0 {
			first = formatFloat(c.Points[0].Pd)
			last = formatFloat(c.Points[len(c.Points)-1].Pd)
		}
		rows = append(rows, []string{c.Label(), formatFloat(c.Threshold), first, last})
	}
	return rows
}

func heading(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(contentWidth, 8, text, "", 1, "L", false, 0, "")
}

func keyValues(pdf *gofpdf.Fpdf, pairs [][2]string) {
	for _, kv := range pairs {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(40, lineHeight, kv[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(contentWidth-40, lineHeight, kv[1], "", 1, "L", false, 0, "")
	}
}

func table(pdf *gofpdf.Fpdf, headers []string, rows [][]string) {
	width := contentWidth / float64(len(headers))

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(200, 200, 200)
	for _, h := range headers {
		pdf.CellFormat(width, lineHeight, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range rows {
		for _, cell := range row {
			pdf.CellFormat(width, lineHeight, cell, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
