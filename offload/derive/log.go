package derive

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LatencyRecord is one row of a benchmark latency log. Latencies are seconds.
type LatencyRecord struct {
	RequestID int
	Label     string
	PromptLen int
	GenLen    int
	TotalLen  int
	TTFT      float64
	E2E       float64
	AvgITL    float64
}

// latencyLogColumns is the column order written by the benchmark harness.
var latencyLogColumns = []string{
	"request_id", "label", "prompt_len", "gen_len", "total_len", "ttft", "e2e", "avg_itl",
}

// requiredColumns must be present for constant derivation.
var requiredColumns = []string{"prompt_len", "ttft", "avg_itl"}

// ExportLatencyLog writes records in the benchmark harness CSV format.
// Latencies use six decimals, matching the harness output.
func ExportLatencyLog(path string, records []LatencyRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating latency log: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write(latencyLogColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range records {
		row := []string{
			strconv.Itoa(r.RequestID),
			r.Label,
			strconv.Itoa(r.PromptLen),
			strconv.Itoa(r.GenLen),
			strconv.Itoa(r.TotalLen),
			strconv.FormatFloat(r.TTFT, 'f', 6, 64),
			strconv.FormatFloat(r.E2E, 'f', 6, 64),
			strconv.FormatFloat(r.AvgITL, 'f', 6, 64),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", r.RequestID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadLatencyLog reads a benchmark latency log. Columns are located by header
// name, so extra or reordered columns are accepted; prompt_len, ttft and
// avg_itl are required. Optional columns that are absent stay zero.
func ReadLatencyLog(path string) ([]LatencyRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening latency log: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("latency log %s is empty", path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("latency log %s: missing column %q", path, name)
		}
	}

	var records []LatencyRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		r, err := parseLatencyRecord(row, index)
		if err != nil {
			return nil, fmt.Errorf("latency log %s line %d: %w", path, line, err)
		}
		records = append(records, r)
	}
	return records, nil
}

func parseLatencyRecord(row []string, index map[string]int) (LatencyRecord, error) {
	field := func(name string) (string, bool) {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[i]), true
	}
	intField := func(name string) (int, error) {
		s, ok := field(name)
		if !ok || s == "" {
			return 0, nil
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("parsing %s: %w", name, err)
		}
		return v, nil
	}
	floatField := func(name string) (float64, error) {
		s, ok := field(name)
		if !ok || s == "" {
			return 0, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing %s: %w", name, err)
		}
		return v, nil
	}

	for _, name := range requiredColumns {
		if s, ok := field(name); !ok || s == "" {
			return LatencyRecord{}, fmt.Errorf("missing value for %s", name)
		}
	}

	var r LatencyRecord
	var err error
	if r.RequestID, err = intField("request_id"); err != nil {
		return r, err
	}
	r.Label, _ = field("label")
	if r.PromptLen, err = intField("prompt_len"); err != nil {
		return r, err
	}
	if r.GenLen, err = intField("gen_len"); err != nil {
		return r, err
	}
	if r.TotalLen, err = intField("total_len"); err != nil {
		return r, err
	}
	if r.TTFT, err = floatField("ttft"); err != nil {
		return r, err
	}
	if r.E2E, err = floatField("e2e"); err != nil {
		return r, err
	}
	if r.AvgITL, err = floatField("avg_itl"); err != nil {
		return r, err
	}
	return r, nil
}
