package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/topiclm-experiments/internal/results"
)

const (
	summarySheet = "Results"
	samplesSheet = "Samples"
)

// Service produces XLSX workbooks from result records.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// SplitModelID recovers corpus and variant from a model identifier.
func SplitModelID(id string) (corpus, variant, params string) {
	parts := strings.SplitN(id, ".", 3)
	switch len(parts) {
	case 3:
		return parts[0], parts[1], parts[2]
	case 2:
		return parts[0], parts[1], ""
	default:
		return id, "", ""
	}
}

// ExportRecordsXLSX returns a workbook with one summary row per record on
// "Results" and one row per evaluated sample on "Samples".
func (s *Service) ExportRecordsXLSX(recs []results.Record) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("failed to close workbook", "error", err)
		}
	}()

	// excelize starts with "Sheet1"; rename it rather than leave it empty
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(samplesSheet); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(summarySheet)
	f.SetActiveSheet(activeIndex)

	writeRow := func(sheet string, row int, vals ...any) {
		for i, v := range vals {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	writeRow(summarySheet, 1, "Model", "Corpus", "Variant", "Parameters", "Samples", "Average Perplexity", "Average Time (s)")
	writeRow(samplesSheet, 1, "Model", "Sample", "Perplexity", "Time (s)")

	sampleRow := 2
	for i, r := range recs {
		corpus, variant, params := SplitModelID(r.Model)
		writeRow(summarySheet, i+2, r.Model, corpus, variant, params, len(r.Ppls), r.AvePpl, r.AveTime)

		for k, ppl := range r.Ppls {
			var secs float64
			if k < len(r.Times) {
				secs = r.Times[k]
			}
			writeRow(samplesSheet, sampleRow, r.Model, k+1, ppl, secs)
			sampleRow++
		}
	}

	// Widen a few columns
	_ = f.SetColWidth(summarySheet, "A", "A", 60) // model
	_ = f.SetColWidth(summarySheet, "B", "C", 12)
	_ = f.SetColWidth(summarySheet, "D", "D", 40)
	_ = f.SetColWidth(summarySheet, "E", "G", 18)
	_ = f.SetColWidth(samplesSheet, "A", "A", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"samples", sampleRow-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
