package reduction

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"

	"github.com/mallahova/data-analysis-app/src/dataset"
	"github.com/mallahova/data-analysis-app/src/errs"
)

func irisLike(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(
		dataset.NewNumericColumn("sepal", []float64{5.1, 4.9, 6.3, 5.8, 7.1}),
		dataset.NewNumericColumn("petal", []float64{1.4, 1.4, 4.7, 5.1, 5.9}),
		dataset.NewCategoricalColumn("species", []string{"setosa", "setosa", "versicolor", "virginica", "virginica"}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ds
}

func TestStandardizeZScoresNumericColumns(t *testing.T) {
	X, names, err := Standardize(irisLike(t), []string{"sepal", "petal"})
	if err != nil {
		t.Fatalf("Standardize: %v", err)
	}
	rows, cols := X.Dims()
	if rows != 5 || cols != 2 {
		t.Fatalf("dims = %dx%d, want 5x2", rows, cols)
	}
	if names[0] != "sepal" || names[1] != "petal" {
		t.Fatalf("feature names = %v", names)
	}
	for j := 0; j < cols; j++ {
		col := make([]float64, rows)
		for i := 0; i < rows; i++ {
			col[i] = X.At(i, j)
		}
		if mean := stat.Mean(col, nil); math.Abs(mean) > 1e-9 {
			t.Fatalf("column %d mean = %v, want ~0", j, mean)
		}
	}
}

func TestStandardizeOneHotEncodesCategoricals(t *testing.T) {
	_, names, err := Standardize(irisLike(t), nil)
	if err != nil {
		t.Fatalf("Standardize: %v", err)
	}
	// Numeric columns first as given, then one dummy per category in
	// first-seen order.
	want := []string{"sepal", "petal", "species_setosa", "species_versicolor", "species_virginica"}
	if len(names) != len(want) {
		t.Fatalf("feature names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestStandardizeMissingColumn(t *testing.T) {
	_, _, err := Standardize(irisLike(t), []string{"sepal", "absent"})
	if !errors.Is(err, errs.ErrMissingColumn) {
		t.Fatalf("got %v, want ErrMissingColumn", err)
	}
}

func TestStandardizeRejectsNulls(t *testing.T) {
	ds, _ := dataset.New(dataset.NewNumericColumn("v", []float64{1, math.NaN(), 3}))
	_, _, err := Standardize(ds, nil)
	if !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
}

func TestStandardizeZeroVarianceColumn(t *testing.T) {
	ds, _ := dataset.New(
		dataset.NewNumericColumn("flat", []float64{7, 7, 7}),
		dataset.NewNumericColumn("v", []float64{1, 2, 3}),
	)
	X, _, err := Standardize(ds, nil)
	if err != nil {
		t.Fatalf("Standardize: %v", err)
	}
	for i := 0; i < 3; i++ {
		if X.At(i, 0) != 0 {
			t.Fatalf("zero-variance feature at row %d = %v, want 0", i, X.At(i, 0))
		}
	}
}

func TestStandardizeEmptySelection(t *testing.T) {
	_, _, err := Standardize(irisLike(t), []string{})
	if !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
}
