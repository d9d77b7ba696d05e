// Package dataset holds the in-memory tabular data model shared by the
// preprocessing, chart and reduction packages: an ordered set of named,
// typed columns with identical row counts.
package dataset

import (
	"fmt"
	"math"
	"strconv"

	"github.com/mallahova/data-analysis-app/src/errs"
)

// ColumnType is the inferred scalar type of a column.
type ColumnType int

const (
	Numeric ColumnType = iota
	Categorical
)

func (t ColumnType) String() string {
	if t == Numeric {
		return "numeric"
	}
	return "categorical"
}

// Column is a single named column. Numeric columns store float64 values with
// NaN marking nulls; categorical columns store strings with a parallel null
// mask (the empty string alone is not treated as null).
type Column struct {
	name string
	kind ColumnType
	nums []float64
	strs []string
	null []bool
}

// NewNumericColumn builds a numeric column. NaN values count as null.
func NewNumericColumn(name string, values []float64) Column {
	nums := append([]float64(nil), values...)
	null := make([]bool, len(nums))
	for i, v := range nums {
		null[i] = math.IsNaN(v)
	}
	return Column{name: name, kind: Numeric, nums: nums, null: null}
}

// NewCategoricalColumn builds a categorical column with no nulls.
func NewCategoricalColumn(name string, values []string) Column {
	strs := append([]string(nil), values...)
	return Column{name: name, kind: Categorical, strs: strs, null: make([]bool, len(strs))}
}

// NewCategoricalColumnWithNulls builds a categorical column with an explicit
// null mask. nulls may be nil for a column without nulls.
func NewCategoricalColumnWithNulls(name string, values []string, nulls []bool) Column {
	strs := append([]string(nil), values...)
	null := make([]bool, len(strs))
	copy(null, nulls)
	return Column{name: name, kind: Categorical, strs: strs, null: null}
}

// Name returns the column name.
func (c Column) Name() string { return c.name }

// Type returns the inferred column type.
func (c Column) Type() ColumnType { return c.kind }

func (c Column) len() int {
	if c.kind == Numeric {
		return len(c.nums)
	}
	return len(c.strs)
}

func (c Column) clone() Column {
	out := Column{name: c.name, kind: c.kind}
	out.nums = append([]float64(nil), c.nums...)
	out.strs = append([]string(nil), c.strs...)
	out.null = append([]bool(nil), c.null...)
	return out
}

// Dataset is an ordered collection of columns. Instances are treated as
// immutable by consumers: preprocessing operations derive new datasets
// instead of editing one in place.
type Dataset struct {
	cols []Column
}

// New validates the columns (unique names, equal row counts) and assembles a
// dataset.
func New(cols ...Column) (*Dataset, error) {
	seen := make(map[string]bool, len(cols))
	rows := -1
	for _, c := range cols {
		if c.name == "" {
			return nil, fmt.Errorf("%w: column with empty name", errs.ErrInvalidArgument)
		}
		if seen[c.name] {
			return nil, fmt.Errorf("%w: duplicate column %q", errs.ErrInvalidArgument, c.name)
		}
		seen[c.name] = true
		if rows == -1 {
			rows = c.len()
		} else if c.len() != rows {
			return nil, fmt.Errorf("%w: column %q has %d rows, want %d", errs.ErrInvalidArgument, c.name, c.len(), rows)
		}
	}
	ds := &Dataset{cols: make([]Column, 0, len(cols))}
	for _, c := range cols {
		ds.cols = append(ds.cols, c.clone())
	}
	return ds, nil
}

// Clone deep-copies the dataset.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{cols: make([]Column, 0, len(d.cols))}
	for _, c := range d.cols {
		out.cols = append(out.cols, c.clone())
	}
	return out
}

// NumRows returns the row count (identical across columns).
func (d *Dataset) NumRows() int {
	if len(d.cols) == 0 {
		return 0
	}
	return d.cols[0].len()
}

// NumColumns returns the column count.
func (d *Dataset) NumColumns() int { return len(d.cols) }

// Columns returns the column names in order.
func (d *Dataset) Columns() []string {
	names := make([]string, len(d.cols))
	for i, c := range d.cols {
		names[i] = c.name
	}
	return names
}

// HasColumn reports whether a column exists.
func (d *Dataset) HasColumn(name string) bool {
	_, err := d.column(name)
	return err == nil
}

func (d *Dataset) column(name string) (*Column, error) {
	for i := range d.cols {
		if d.cols[i].name == name {
			return &d.cols[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", errs.ErrMissingColumn, name)
}

// ColumnType returns the type of the named column.
func (d *Dataset) ColumnType(name string) (ColumnType, error) {
	c, err := d.column(name)
	if err != nil {
		return 0, err
	}
	return c.kind, nil
}

// Numeric returns the values of a numeric column. NaN marks nulls. The slice
// is owned by the dataset and must not be modified by the caller.
func (d *Dataset) Numeric(name string) ([]float64, error) {
	c, err := d.column(name)
	if err != nil {
		return nil, err
	}
	if c.kind != Numeric {
		return nil, fmt.Errorf("%w: column %q is categorical, numeric required", errs.ErrInvalidArgument, name)
	}
	return c.nums, nil
}

// Strings returns the values of a categorical column. The slice is owned by
// the dataset and must not be modified by the caller.
func (d *Dataset) Strings(name string) ([]string, error) {
	c, err := d.column(name)
	if err != nil {
		return nil, err
	}
	if c.kind != Categorical {
		return nil, fmt.Errorf("%w: column %q is numeric, categorical required", errs.ErrInvalidArgument, name)
	}
	return c.strs, nil
}

// IsNull reports whether the cell at (name, row) is null.
func (d *Dataset) IsNull(name string, row int) (bool, error) {
	c, err := d.column(name)
	if err != nil {
		return false, err
	}
	if row < 0 || row >= c.len() {
		return false, fmt.Errorf("%w: row %d out of range", errs.ErrInvalidArgument, row)
	}
	return c.null[row], nil
}

// HasNulls reports whether any cell in the dataset is null.
func (d *Dataset) HasNulls() bool {
	for _, c := range d.cols {
		for _, n := range c.null {
			if n {
				return true
			}
		}
	}
	return false
}

// Labels returns a per-row string rendering of any column: categorical values
// verbatim, numeric values formatted compactly, nulls as "".
func (d *Dataset) Labels(name string) ([]string, error) {
	c, err := d.column(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, c.len())
	for i := 0; i < c.len(); i++ {
		if c.null[i] {
			continue
		}
		if c.kind == Categorical {
			out[i] = c.strs[i]
		} else {
			out[i] = strconv.FormatFloat(c.nums[i], 'g', -1, 64)
		}
	}
	return out, nil
}

// Distinct returns the distinct non-null labels of a column in first-seen
// row order.
func (d *Dataset) Distinct(name string) ([]string, error) {
	labels, err := d.Labels(name)
	if err != nil {
		return nil, err
	}
	c, _ := d.column(name)
	seen := make(map[string]bool, len(labels))
	var out []string
	for i, l := range labels {
		if c.null[i] || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out, nil
}

// DistinctCount returns the number of distinct non-null values in a column.
func (d *Dataset) DistinctCount(name string) (int, error) {
	vals, err := d.Distinct(name)
	if err != nil {
		return 0, err
	}
	return len(vals), nil
}

// NumericColumns returns the names of the numeric columns in order.
func (d *Dataset) NumericColumns() []string {
	var out []string
	for _, c := range d.cols {
		if c.kind == Numeric {
			out = append(out, c.name)
		}
	}
	return out
}

// CategoricalColumns returns the names of the categorical columns in order.
func (d *Dataset) CategoricalColumns() []string {
	var out []string
	for _, c := range d.cols {
		if c.kind == Categorical {
			out = append(out, c.name)
		}
	}
	return out
}

// Select returns a new dataset limited to the named columns, in the given
// order.
func (d *Dataset) Select(names []string) (*Dataset, error) {
	cols := make([]Column, 0, len(names))
	for _, n := range names {
		c, err := d.column(n)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c.clone())
	}
	return &Dataset{cols: cols}, nil
}

// Nulls returns a copy of the null mask of a column.
func (d *Dataset) Nulls(name string) ([]bool, error) {
	c, err := d.column(name)
	if err != nil {
		return nil, err
	}
	return append([]bool(nil), c.null...), nil
}

// RowHasNull reports whether any cell of the given row is null.
func (d *Dataset) RowHasNull(row int) bool {
	for _, c := range d.cols {
		if row < len(c.null) && c.null[row] {
			return true
		}
	}
	return false
}

// Rename derives a dataset with columns renamed per mapping. Keys that match
// no column are ignored. A rename that would produce duplicate names fails.
func (d *Dataset) Rename(mapping map[string]string) (*Dataset, error) {
	cols := make([]Column, 0, len(d.cols))
	for _, c := range d.cols {
		nc := c.clone()
		if to, ok := mapping[c.name]; ok {
			nc.name = to
		}
		cols = append(cols, nc)
	}
	return New(cols...)
}

// Drop derives a dataset without the named columns. Absent names are ignored.
func (d *Dataset) Drop(names []string) *Dataset {
	dropped := make(map[string]bool, len(names))
	for _, n := range names {
		dropped[n] = true
	}
	out := &Dataset{}
	for _, c := range d.cols {
		if dropped[c.name] {
			continue
		}
		out.cols = append(out.cols, c.clone())
	}
	return out
}

// FilterRows derives a dataset containing only the rows where keep is true.
func (d *Dataset) FilterRows(keep []bool) *Dataset {
	out := &Dataset{cols: make([]Column, 0, len(d.cols))}
	for _, c := range d.cols {
		nc := Column{name: c.name, kind: c.kind}
		for i := 0; i < c.len(); i++ {
			if i >= len(keep) || !keep[i] {
				continue
			}
			if c.kind == Numeric {
				nc.nums = append(nc.nums, c.nums[i])
			} else {
				nc.strs = append(nc.strs, c.strs[i])
			}
			nc.null = append(nc.null, c.null[i])
		}
		out.cols = append(out.cols, nc)
	}
	return out
}

// ReplaceColumn derives a dataset with the column of the same name replaced.
// The replacement must keep the row count; replacing an absent column fails.
func (d *Dataset) ReplaceColumn(col Column) (*Dataset, error) {
	if _, err := d.column(col.name); err != nil {
		return nil, err
	}
	if col.len() != d.NumRows() {
		return nil, fmt.Errorf("%w: replacement column %q has %d rows, want %d",
			errs.ErrInvalidArgument, col.name, col.len(), d.NumRows())
	}
	out := d.Clone()
	for i := range out.cols {
		if out.cols[i].name == col.name {
			out.cols[i] = col.clone()
		}
	}
	return out, nil
}
