package climate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/MHBws/dengue-climate-etl/internal/adapter/csvio"
	"github.com/MHBws/dengue-climate-etl/internal/domain"
)

// intermediateHeader is the column order of the climate intermediate file.
var intermediateHeader = []string{
	"Year", "Month", "Region", "TotalPrecipitation", "AvgTemperature",
}

// IntermediateWriter appends aggregates to the climate intermediate file.
//
// The format has no append-only guarantee: existing content must be read, the
// new row added, and the whole file rewritten. The mutex serializes that
// cycle; concurrent writers would otherwise lose updates.
type IntermediateWriter struct {
	path string
	mu   sync.Mutex
}

// NewIntermediateWriter creates a writer targeting path. The file is created
// on first append.
func NewIntermediateWriter(path string) *IntermediateWriter {
	return &IntermediateWriter{path: path}
}

// Path returns the output file path.
func (w *IntermediateWriter) Path() string {
	return w.path
}

// Append adds one aggregate row, rewriting the whole file under the lock.
// Region is written as the full state name, the form the legacy file carried;
// the merge pass normalizes it back to the UF code.
func (w *IntermediateWriter) Append(agg Aggregate) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	rows, err := w.readExisting()
	if err != nil {
		return err
	}

	rows = append(rows, []string{
		strconv.Itoa(agg.Year),
		string(agg.Month),
		domain.RegionDisplayName(agg.Region),
		strconv.FormatFloat(agg.TotalPrecipitation, 'f', 2, 64),
		strconv.FormatFloat(agg.AvgTemperature, 'f', 2, 64),
	})

	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("rewrite %s: %w", w.path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	cw.Comma = csvio.Separator
	if err := cw.Write(intermediateHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// readExisting loads the current data rows, tolerating a missing file.
func (w *IntermediateWriter) readExisting() ([][]string, error) {
	text, err := csvio.ReadFileText(w.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = csvio.Separator
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", w.path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[1:], nil
}
