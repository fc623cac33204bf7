package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"radartools/models"
)

// BatchReader reads evaluate requests, one per row, from the first sheet of
// an xlsx workbook or from a csv file. The header row names the columns:
// variant, pulses, snr, snr_db, pd, threshold, pfa. Blank cells are unset.
type BatchReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewBatchReader creates a reader, choosing the format by extension
func NewBatchReader(filePath string) *BatchReader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &BatchReader{filePath: filePath, fileType: fileType}
}

// ReadRequests parses every data row into a request
func (r *BatchReader) ReadRequests() ([]models.EvaluateRequest, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSV()
	default:
		rows, err = r.readXLSX()
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s must have a header row and at least one data row", r.filePath)
	}

	requests, err := parseRows(rows)
	if err != nil {
		return nil, err
	}
	log.Printf("[BatchReader] read %d requests from %s", len(requests), r.filePath)
	return requests, nil
}

func (r *BatchReader) readXLSX() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheets[0], err)
	}
	return rows, nil
}

func (r *BatchReader) readCSV() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

func parseRows(rows [][]string) ([]models.EvaluateRequest, error) {
	columns := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(h))] = i
	}

	requests := make([]models.EvaluateRequest, 0, len(rows)-1)
	for n, row := range rows[1:] {
		line := n + 2
		cell := func(name string) string {
			i, ok := columns[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		req := models.EvaluateRequest{Variant: cell("variant")}
		if s := cell("pulses"); s != "" {
			pulses, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid pulses %q", line, s)
			}
			req.Pulses = pulses
		}

		for name, dst := range map[string]**float64{
			"snr":       &req.SNR,
			"snr_db":    &req.SNRdB,
			"pd":        &req.Pd,
			"threshold": &req.Threshold,
			"pfa":       &req.Pfa,
		} {
			s := cell(name)
			if s == "" {
				continue
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid %s %q", line, name, s)
			}
			*dst = &v
		}
		requests = append(requests, req)
	}
	return requests, nil
}
