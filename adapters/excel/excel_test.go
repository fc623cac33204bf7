package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"radartools/domain/core"
	"radartools/domain/sweep"
	"radartools/domain/target"
)

func sampleReport() sweep.Report {
	return sweep.Report{
		Curves: &sweep.Result{
			ID:   core.NewSweepID(),
			Pfa:  1e-6,
			Grid: sweep.Grid{MinDB: 0, MaxDB: 10, StepDB: 10},
			Curves: []sweep.Curve{
				{Variant: target.NonFluctuating, Pulses: 1, Threshold: 13.8, Points: []sweep.Point{
					{SNRdB: 0, SNR: 1, Pd: 1e-5},
					{SNRdB: 10, SNR: 10, Pd: 0.248},
				}},
				{Variant: target.Swerling3, Pulses: 10, Threshold: 32.7, Points: []sweep.Point{
					{SNRdB: 0, SNR: 1, Pd: 0.01},
					{SNRdB: 10, SNR: 10, Pd: 0.9},
				}},
			},
			CreatedAt: time.Now(),
		},
		Table: &sweep.Table{
			ID:  core.NewSweepID(),
			Pfa: 1e-6,
			Rows: []sweep.Row{
				{Variant: target.Swerling1, Pulses: 1, Pd: 0.9, Threshold: 13.8, SNR: 130, SNRdB: 21.1},
			},
		},
	}
}

func TestWorkbookExporter_Export(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.xlsx")
	require.NoError(t, NewWorkbookExporter().Export(context.Background(), sampleReport(), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "marcum n=1", "swerling3 n=10", "Required SNR"}, f.GetSheetList())

	rows, err := f.GetRows("swerling3 n=10")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"SNR (dB)", "SNR", "Pd"}, rows[0])
	assert.Equal(t, []string{"10", "10", "0.9"}, rows[2])

	rows, err = f.GetRows("Required SNR")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "swerling1", rows[1][0])
}

func TestWorkbookExporter_RejectsDuplicateCurves(t *testing.T) {
	report := sampleReport()
	report.Curves.Curves = append(report.Curves.Curves, report.Curves.Curves[0])

	err := NewWorkbookExporter().Export(context.Background(), report, filepath.Join(t.TempDir(), "dup.xlsx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate curve sheet")
}

func TestWorkbookExporter_EmptyReport(t *testing.T) {
	err := NewWorkbookExporter().Export(context.Background(), sweep.Report{}, filepath.Join(t.TempDir(), "x.xlsx"))
	assert.Error(t, err)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "ab", sheetName("a/b"))
	assert.Len(t, sheetName("swerling4 n=1234567890123456789012345"), maxSheetName)
}

func TestBatchReader_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.csv")
	content := "variant,pulses,snr,snr_db,pd,threshold,pfa\n" +
		"marcum,3,10,,,,1e-6\n" +
		"sw1,10,,,0.9,32.7,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	reqs, err := NewBatchReader(path).ReadRequests()
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	assert.Equal(t, "marcum", reqs[0].Variant)
	assert.Equal(t, 3, reqs[0].Pulses)
	require.NotNil(t, reqs[0].SNR)
	assert.Equal(t, 10.0, *reqs[0].SNR)
	assert.Nil(t, reqs[0].Pd)
	require.NotNil(t, reqs[0].Pfa)
	assert.Equal(t, 1e-6, *reqs[0].Pfa)

	require.NotNil(t, reqs[1].Pd)
	assert.Equal(t, 0.9, *reqs[1].Pd)
	require.NotNil(t, reqs[1].Threshold)
	assert.Nil(t, reqs[1].SNR)
}

func TestBatchReader_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Variant", "Pulses", "SNR_dB"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"swerling2", 5, 13}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	reqs, err := NewBatchReader(path).ReadRequests()
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "swerling2", reqs[0].Variant)
	assert.Equal(t, 5, reqs[0].Pulses)
	require.NotNil(t, reqs[0].SNRdB)
	assert.Equal(t, 13.0, *reqs[0].SNRdB)
}

func TestBatchReader_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewBatchReader(filepath.Join(dir, "missing.csv")).ReadRequests()
	assert.Error(t, err)

	headerOnly := filepath.Join(dir, "header.csv")
	require.NoError(t, os.WriteFile(headerOnly, []byte("variant,snr\n"), 0o644))
	_, err = NewBatchReader(headerOnly).ReadRequests()
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("variant,snr\nmarcum,loud\n"), 0o644))
	_, err = NewBatchReader(bad).ReadRequests()
	assert.ErrorContains(t, err, "row 2")
}
