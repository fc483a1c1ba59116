// Package dataset reads the dashboard observations from delimited text.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/StudioSol/set"
	"github.com/raykavin/sectorview/pkg/core"
	"github.com/raykavin/sectorview/pkg/logger"
	"github.com/samber/lo"
)

// missingTokens are cell values read as absent
var missingTokens = map[string]struct{}{
	"":     {},
	"na":   {},
	"n/a":  {},
	"nan":  {},
	"null": {},
	"none": {},
}

// Stats reports what the loader dropped while reading
type Stats struct {
	Rows             int      // Rows kept in the dataset
	SkippedRows      int      // Rows dropped because their date could not be read
	MalformedCells   int      // Numeric cells that could not be read, treated as absent
	MalformedColumns []string // Columns with at least one malformed cell, in the order first seen
}

// ProgressFunc is called after each row with the number of rows done and the total
type ProgressFunc func(done, total int)

// Option configures the loader
type Option func(*loader)

// WithDelimiter sets the field delimiter (default ',')
func WithDelimiter(delimiter rune) Option {
	return func(l *loader) {
		l.delimiter = delimiter
	}
}

// WithProgress registers a progress callback
func WithProgress(fn ProgressFunc) Option {
	return func(l *loader) {
		l.progress = fn
	}
}

// WithLogger logs skipped rows at debug level
func WithLogger(log logger.Logger) Option {
	return func(l *loader) {
		l.log = log
	}
}

type loader struct {
	delimiter rune
	progress  ProgressFunc
	log       logger.Logger
}

// LoadFile reads a dataset from a file. Files with a .tsv extension
// default to tab separated values.
func LoadFile(path string, options ...Option) (*core.Dataset, Stats, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		options = append([]Option{WithDelimiter('\t')}, options...)
	}

	return Load(file, options...)
}

// Load reads a dataset with a header row. Date, Symbol and Sector columns are
// required. Every other column is inferred as number, date or string.
func Load(r io.Reader, options ...Option) (*core.Dataset, Stats, error) {
	l := &loader{delimiter: ','}
	for _, option := range options {
		option(l)
	}

	reader := csv.NewReader(r)
	reader.Comma = l.delimiter
	reader.FieldsPerRecord = -1
	// a whitespace delimiter would be swallowed along with empty fields
	reader.TrimLeadingSpace = !unicode.IsSpace(l.delimiter)

	lines, err := reader.ReadAll()
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to read dataset: %w", err)
	}

	if len(lines) == 0 {
		return nil, Stats{}, core.ErrEmptyInput
	}

	header := lo.Map(lines[0], func(h string, i int) string {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		return strings.TrimSpace(h)
	})

	headerMap, err := parseHeaders(header)
	if err != nil {
		return nil, Stats{}, err
	}

	records := lines[1:]
	columns := inferColumns(header, headerMap, records)

	return l.buildDataset(columns, headerMap, records)
}

// parseHeaders maps every header to its index and checks the required columns
func parseHeaders(header []string) (map[string]int, error) {
	if duplicated := lo.FindDuplicates(header); len(duplicated) > 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrDuplicateField, strings.Join(duplicated, ", "))
	}

	headerMap := make(map[string]int, len(header))
	for index, name := range header {
		headerMap[name] = index
	}

	for _, required := range []string{core.ColumnDate, core.ColumnSymbol, core.ColumnSector} {
		if _, ok := headerMap[required]; !ok {
			return nil, fmt.Errorf("%w: %s", core.ErrMissingColumn, required)
		}
	}

	return headerMap, nil
}

// inferColumns assigns a kind to every column from its cells
func inferColumns(header []string, headerMap map[string]int, records [][]string) []core.Column {
	columns := make([]core.Column, 0, len(header))
	for _, name := range header {
		index := headerMap[name]

		var kind core.Kind
		switch name {
		case core.ColumnDate:
			kind = core.KindDate
		case core.ColumnSymbol, core.ColumnSector:
			kind = core.KindString
		default:
			kind = inferKind(lo.Map(records, func(record []string, _ int) string {
				return cell(record, index)
			}))
		}

		columns = append(columns, core.Column{Name: name, Kind: kind})
	}
	return columns
}

// inferKind returns number when any value is numeric, date when every present
// value is a date, string otherwise
func inferKind(values []string) core.Kind {
	present := lo.Reject(values, func(v string, _ int) bool { return isMissing(v) })
	if len(present) == 0 {
		return core.KindString
	}

	if lo.SomeBy(present, func(v string) bool {
		_, err := parseNumber(v)
		return err == nil
	}) {
		return core.KindNumber
	}

	if lo.EveryBy(present, func(v string) bool {
		_, err := core.ParseDate(v)
		return err == nil
	}) {
		return core.KindDate
	}

	return core.KindString
}

func (l *loader) buildDataset(columns []core.Column, headerMap map[string]int, records [][]string) (*core.Dataset, Stats, error) {
	var stats Stats
	malformed := set.NewLinkedHashSetString()

	numeric := lo.Filter(columns, func(c core.Column, _ int) bool { return c.Kind == core.KindNumber })

	rows := make([]core.Row, 0, len(records))
	for i, record := range records {
		if l.progress != nil {
			l.progress(i+1, len(records))
		}

		date, err := core.ParseDate(cell(record, headerMap[core.ColumnDate]))
		if err != nil {
			stats.SkippedRows++
			if l.log != nil {
				l.log.WithField("line", i+2).WithError(err).Debug("Skipping row without a valid date")
			}
			continue
		}

		row := core.Row{
			Date:    date,
			Symbol:  strings.TrimSpace(cell(record, headerMap[core.ColumnSymbol])),
			Sector:  strings.TrimSpace(cell(record, headerMap[core.ColumnSector])),
			Metrics: make(map[string]float64, len(numeric)),
		}

		for _, column := range numeric {
			raw := cell(record, headerMap[column.Name])
			if isMissing(raw) {
				continue
			}

			value, err := parseNumber(raw)
			if err != nil {
				stats.MalformedCells++
				malformed.Add(column.Name)
				continue
			}
			row.Metrics[column.Name] = value
		}

		rows = append(rows, row)
	}

	stats.Rows = len(rows)
	for name := range malformed.Iter() {
		stats.MalformedColumns = append(stats.MalformedColumns, name)
	}

	return core.NewDataset(columns, rows), stats, nil
}

var errNotFinite = errors.New("value is not finite")

// parseNumber parses a numeric cell, rejecting infinities
func parseNumber(raw string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, errNotFinite
	}
	return value, nil
}

func isMissing(raw string) bool {
	_, ok := missingTokens[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// cell returns the value at index, or an empty string for short records
func cell(record []string, index int) string {
	if index < len(record) {
		return record[index]
	}
	return ""
}
