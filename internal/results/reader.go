package results

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
)

// ReadFile loads every valid record from a results file. Lines failing the
// schema are logged and skipped; the count of skipped lines is returned.
func ReadFile(path string, logger *slog.Logger) ([]Record, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	return Read(f, logger)
}

// Read is ReadFile over an arbitrary reader.
func Read(r io.Reader, logger *slog.Logger) ([]Record, int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		recs    []Record
		skipped int
		lineNo  int
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), 4<<20)
	for sc.Scan() {
		lineNo++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := ValidateLine(line); err != nil {
			logger.Warn("skipping invalid results line", "line", lineNo, "error", err)
			skipped++
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			logger.Warn("skipping undecodable results line", "line", lineNo, "error", err)
			skipped++
			continue
		}
		recs = append(recs, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, skipped, fmt.Errorf("scan results: %w", err)
	}
	return recs, skipped, nil
}

// SortByPerplexity orders records best (lowest average perplexity) first.
func SortByPerplexity(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].AvePpl < recs[j].AvePpl
	})
}
