// Package preprocess applies light cleanup to a dataset before rendering:
// null handling, column renames and drops. Every operation derives a new
// dataset; the dataset captured at construction time is kept for Reset.
package preprocess

import (
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/mallahova/data-analysis-app/src/dataset"
	"github.com/mallahova/data-analysis-app/src/errs"
	"github.com/mallahova/data-analysis-app/src/logging"
)

// Null handling methods accepted by HandleNulls.
const (
	MethodMean = "mean"
	MethodDrop = "drop"
	MethodFill = "fill"
)

// Preprocessor owns a working dataset derived from an original copy.
type Preprocessor struct {
	original *dataset.Dataset
	current  *dataset.Dataset
}

// New captures ds as the original and starts the working copy from it.
func New(ds *dataset.Dataset) *Preprocessor {
	return &Preprocessor{original: ds.Clone(), current: ds.Clone()}
}

// Data returns the current derived dataset.
func (p *Preprocessor) Data() *dataset.Dataset { return p.current }

// Reset restores the working dataset to its construction-time state and
// returns it.
func (p *Preprocessor) Reset() *dataset.Dataset {
	p.current = p.original.Clone()
	return p.current
}

// HandleNulls resolves null cells. Methods:
//
//	mean: numeric columns get their column mean; categorical columns are untouched.
//	drop: rows containing any null are removed.
//	fill: every null becomes fillValue; fails when fillValue is empty.
//
// An unknown method fails with ErrInvalidArgument.
func (p *Preprocessor) HandleNulls(method, fillValue string) (*dataset.Dataset, error) {
	switch method {
	case MethodMean:
		out, err := fillNumericMeans(p.current)
		if err != nil {
			return nil, err
		}
		p.current = out
	case MethodDrop:
		keep := make([]bool, p.current.NumRows())
		dropped := 0
		for i := range keep {
			keep[i] = !p.current.RowHasNull(i)
			if !keep[i] {
				dropped++
			}
		}
		p.current = p.current.FilterRows(keep)
		logging.Debugf("handle_nulls drop: removed %d rows", dropped)
	case MethodFill:
		if fillValue == "" {
			return nil, fmt.Errorf("%w: fill method requires a fill value", errs.ErrInvalidArgument)
		}
		out, err := fillAll(p.current, fillValue)
		if err != nil {
			return nil, err
		}
		p.current = out
	default:
		return nil, fmt.Errorf("%w: null handling method %q (want mean, drop or fill)", errs.ErrInvalidArgument, method)
	}
	return p.current, nil
}

// RenameColumns renames matching columns; unmatched keys are a no-op.
func (p *Preprocessor) RenameColumns(mapping map[string]string) (*dataset.Dataset, error) {
	out, err := p.current.Rename(mapping)
	if err != nil {
		return nil, err
	}
	p.current = out
	return p.current, nil
}

// DropColumns removes the named columns, silently ignoring absent names.
func (p *Preprocessor) DropColumns(names []string) *dataset.Dataset {
	p.current = p.current.Drop(names)
	return p.current
}

// fillNumericMeans fills numeric nulls with the column mean computed over the
// non-null values. Columns that are entirely null have no mean and stay
// untouched.
func fillNumericMeans(ds *dataset.Dataset) (*dataset.Dataset, error) {
	out := ds
	for _, name := range ds.NumericColumns() {
		vals, err := ds.Numeric(name)
		if err != nil {
			return nil, err
		}
		nulls, err := ds.Nulls(name)
		if err != nil {
			return nil, err
		}
		var present []float64
		for i, v := range vals {
			if !nulls[i] {
				present = append(present, v)
			}
		}
		if len(present) == 0 || len(present) == len(vals) {
			continue
		}
		mean := stat.Mean(present, nil)
		filled := make([]float64, len(vals))
		copy(filled, vals)
		for i := range filled {
			if nulls[i] {
				filled[i] = mean
			}
		}
		out, err = out.ReplaceColumn(dataset.NewNumericColumn(name, filled))
		if err != nil {
			return nil, err
		}
		logging.Debugf("handle_nulls mean: column %q filled with %.4f", name, mean)
	}
	return out, nil
}

// fillAll replaces every null with fillValue. Numeric columns take the value
// when it parses as a number; otherwise the column is converted to a
// categorical column so the textual fill value fits.
func fillAll(ds *dataset.Dataset, fillValue string) (*dataset.Dataset, error) {
	out := ds
	num, numOK := parseFloat(fillValue)
	for _, name := range ds.Columns() {
		nulls, err := ds.Nulls(name)
		if err != nil {
			return nil, err
		}
		hasNull := false
		for _, n := range nulls {
			if n {
				hasNull = true
				break
			}
		}
		if !hasNull {
			continue
		}
		kind, err := ds.ColumnType(name)
		if err != nil {
			return nil, err
		}
		var col dataset.Column
		switch {
		case kind == dataset.Numeric && numOK:
			vals, _ := ds.Numeric(name)
			filled := make([]float64, len(vals))
			copy(filled, vals)
			for i := range filled {
				if nulls[i] {
					filled[i] = num
				}
			}
			col = dataset.NewNumericColumn(name, filled)
		default:
			labels, err := ds.Labels(name)
			if err != nil {
				return nil, err
			}
			filled := make([]string, len(labels))
			copy(filled, labels)
			for i := range filled {
				if nulls[i] {
					filled[i] = fillValue
				}
			}
			col = dataset.NewCategoricalColumn(name, filled)
		}
		out, err = out.ReplaceColumn(col)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}
