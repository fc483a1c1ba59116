package core

import (
	"slices"
	"sort"

	"github.com/samber/lo"
)

// Column names the dashboard always expects in the input
const (
	ColumnDate   = "Date"
	ColumnSymbol = "Symbol"
	ColumnSector = "Sector"
)

// Default scatter columns
const (
	DefaultVolatilityColumn = "Volatility_30d"
	DefaultBetaColumn       = "Beta_60d"
)

// Kind is the inferred type of a column
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "string"
	}
}

// Column describes one input column
type Column struct {
	Name string
	Kind Kind
}

// Row is a single observation of one symbol on one day
type Row struct {
	Date   Date
	Symbol string
	Sector string

	// Numeric columns; an absent value has no key
	Metrics map[string]float64
}

// Value returns the value of a numeric column and whether it is present
func (r Row) Value(name string) (float64, bool) {
	v, ok := r.Metrics[name]
	return v, ok
}

// Dataset is the immutable, ordered set of rows loaded at startup.
// It must not be modified after construction and is safe for concurrent reads.
type Dataset struct {
	columns []Column
	rows    []Row
}

// NewDataset creates a dataset from rows and the column schema
func NewDataset(columns []Column, rows []Row) *Dataset {
	return &Dataset{
		columns: slices.Clone(columns),
		rows:    rows,
	}
}

// Rows returns the rows in input order. Callers must not modify them.
func (d *Dataset) Rows() []Row {
	if d == nil {
		return nil
	}
	return d.rows
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.rows)
}

// Columns returns the column schema
func (d *Dataset) Columns() []Column {
	if d == nil {
		return nil
	}
	return slices.Clone(d.columns)
}

// NumericColumns returns the names of number columns in header order
func (d *Dataset) NumericColumns() []string {
	numeric := lo.Filter(d.Columns(), func(c Column, _ int) bool {
		return c.Kind == KindNumber
	})
	return lo.Map(numeric, func(c Column, _ int) string { return c.Name })
}

// HasColumn reports whether a column with that name exists
func (d *Dataset) HasColumn(name string) bool {
	return lo.ContainsBy(d.Columns(), func(c Column) bool { return c.Name == name })
}

// Sectors returns the distinct sectors, sorted
func (d *Dataset) Sectors() []string {
	sectors := lo.Uniq(lo.Map(d.Rows(), func(r Row, _ int) string { return r.Sector }))
	sort.Strings(sectors)
	return sectors
}

// Dates returns the distinct dates, ascending
func (d *Dataset) Dates() []Date {
	dates := lo.Uniq(lo.Map(d.Rows(), func(r Row, _ int) Date { return r.Date }))
	slices.SortFunc(dates, Date.Compare)
	return dates
}
