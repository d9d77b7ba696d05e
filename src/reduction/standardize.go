// Package reduction implements the two-stage projection pipeline:
// standardize the selected columns, reduce them with PCA or UMAP, and wrap
// the result as a Component_1..Component_n dataset ready for scatter
// rendering.
package reduction

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/mallahova/data-analysis-app/src/dataset"
	"github.com/mallahova/data-analysis-app/src/errs"
)

// Standardize selects the requested columns (nil means all), one-hot encodes
// categorical columns and scales every resulting feature to zero mean and
// unit variance. It returns the feature matrix (rows × features) and the
// feature names. Zero-variance features scale to all zeros.
//
// Columns absent from the dataset fail with ErrMissingColumn. Null cells fail
// with ErrInvalidArgument: nulls must be handled before projecting.
func Standardize(ds *dataset.Dataset, columns []string) (*mat.Dense, []string, error) {
	if columns == nil {
		columns = ds.Columns()
	}
	if len(columns) == 0 {
		return nil, nil, fmt.Errorf("%w: no columns selected", errs.ErrInvalidArgument)
	}
	n := ds.NumRows()
	if n == 0 {
		return nil, nil, fmt.Errorf("%w: empty dataset", errs.ErrInvalidArgument)
	}

	var features [][]float64
	var names []string
	for _, name := range columns {
		kind, err := ds.ColumnType(name)
		if err != nil {
			return nil, nil, err
		}
		nulls, err := ds.Nulls(name)
		if err != nil {
			return nil, nil, err
		}
		for _, isNull := range nulls {
			if isNull {
				return nil, nil, fmt.Errorf("%w: column %q contains nulls, handle them before reducing", errs.ErrInvalidArgument, name)
			}
		}
		if kind == dataset.Numeric {
			vals, err := ds.Numeric(name)
			if err != nil {
				return nil, nil, err
			}
			features = append(features, append([]float64(nil), vals...))
			names = append(names, name)
			continue
		}
		// One-hot encode, categories indexed in first-seen order.
		labels, err := ds.Strings(name)
		if err != nil {
			return nil, nil, err
		}
		cats, err := ds.Distinct(name)
		if err != nil {
			return nil, nil, err
		}
		index := make(map[string]int, len(cats))
		for i, c := range cats {
			index[c] = i
		}
		encoded := make([][]float64, len(cats))
		for i := range encoded {
			encoded[i] = make([]float64, n)
		}
		for row, l := range labels {
			encoded[index[l]][row] = 1
		}
		for i, c := range cats {
			features = append(features, encoded[i])
			names = append(names, fmt.Sprintf("%s_%s", name, c))
		}
	}

	// Zero-mean, unit-variance per feature.
	out := mat.NewDense(n, len(features), nil)
	for j, col := range features {
		mean := stat.Mean(col, nil)
		std := stat.StdDev(col, nil)
		for i, v := range col {
			if std == 0 {
				out.Set(i, j, 0)
			} else {
				out.Set(i, j, (v-mean)/std)
			}
		}
	}
	return out, names, nil
}
