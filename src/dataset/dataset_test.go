package dataset

import (
	"errors"
	"math"
	"testing"

	"github.com/mallahova/data-analysis-app/src/errs"
)

func mustDataset(t *testing.T, cols ...Column) *Dataset {
	t.Helper()
	ds, err := New(cols...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ds
}

func TestNewValidation(t *testing.T) {
	_, err := New(
		NewNumericColumn("a", []float64{1, 2}),
		NewNumericColumn("a", []float64{3, 4}),
	)
	if !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("duplicate names: got %v, want ErrInvalidArgument", err)
	}

	_, err = New(
		NewNumericColumn("a", []float64{1, 2}),
		NewCategoricalColumn("b", []string{"x"}),
	)
	if !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("row mismatch: got %v, want ErrInvalidArgument", err)
	}
}

func TestColumnAccess(t *testing.T) {
	ds := mustDataset(t,
		NewNumericColumn("price", []float64{300, 400, 600}),
		NewCategoricalColumn("cut", []string{"Ideal", "Good", "Ideal"}),
	)
	if got := ds.NumRows(); got != 3 {
		t.Fatalf("NumRows = %d, want 3", got)
	}
	if _, err := ds.Numeric("cut"); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("Numeric on categorical: got %v, want ErrInvalidArgument", err)
	}
	if _, err := ds.Numeric("missing"); !errors.Is(err, errs.ErrMissingColumn) {
		t.Fatalf("Numeric on absent column: got %v, want ErrMissingColumn", err)
	}
	vals, err := ds.Numeric("price")
	if err != nil || len(vals) != 3 || vals[2] != 600 {
		t.Fatalf("Numeric(price) = %v, %v", vals, err)
	}
}

func TestDistinctFirstSeenOrder(t *testing.T) {
	ds := mustDataset(t,
		NewCategoricalColumn("cut", []string{"Ideal", "Good", "Ideal", "Fair", "Good"}),
	)
	got, err := ds.Distinct("cut")
	if err != nil {
		t.Fatalf("Distinct: %v", err)
	}
	want := []string{"Ideal", "Good", "Fair"}
	if len(got) != len(want) {
		t.Fatalf("Distinct = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Distinct[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if n, _ := ds.DistinctCount("cut"); n != 3 {
		t.Fatalf("DistinctCount = %d, want 3", n)
	}
}

func TestDistinctSkipsNulls(t *testing.T) {
	ds := mustDataset(t,
		NewCategoricalColumnWithNulls("c", []string{"a", "", "b"}, []bool{false, true, false}),
	)
	got, _ := ds.Distinct("c")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("Distinct = %v, want [a b]", got)
	}
}

func TestLabelsFormatsNumerics(t *testing.T) {
	ds := mustDataset(t, NewNumericColumn("x", []float64{0.5, math.NaN(), 2}))
	labels, err := ds.Labels("x")
	if err != nil {
		t.Fatalf("Labels: %v", err)
	}
	if labels[0] != "0.5" || labels[1] != "" || labels[2] != "2" {
		t.Fatalf("Labels = %v", labels)
	}
}

func TestRenameMatchingOnly(t *testing.T) {
	ds := mustDataset(t,
		NewNumericColumn("a", []float64{1}),
		NewNumericColumn("b", []float64{2}),
	)
	out, err := ds.Rename(map[string]string{"a": "x", "nope": "y"})
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	cols := out.Columns()
	if cols[0] != "x" || cols[1] != "b" {
		t.Fatalf("columns after rename = %v", cols)
	}
	// The source dataset is untouched.
	if ds.Columns()[0] != "a" {
		t.Fatalf("source mutated: %v", ds.Columns())
	}
}

func TestDropIgnoresAbsent(t *testing.T) {
	ds := mustDataset(t,
		NewNumericColumn("a", []float64{1}),
		NewNumericColumn("b", []float64{2}),
	)
	out := ds.Drop([]string{"b", "nope"})
	if got := out.Columns(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("columns after drop = %v", got)
	}
}

func TestFilterRows(t *testing.T) {
	ds := mustDataset(t,
		NewNumericColumn("x", []float64{1, 2, 3}),
		NewCategoricalColumn("c", []string{"a", "b", "c"}),
	)
	out := ds.FilterRows([]bool{true, false, true})
	if out.NumRows() != 2 {
		t.Fatalf("NumRows = %d, want 2", out.NumRows())
	}
	strs, _ := out.Strings("c")
	if strs[0] != "a" || strs[1] != "c" {
		t.Fatalf("filtered strings = %v", strs)
	}
}

func TestRowHasNull(t *testing.T) {
	ds := mustDataset(t,
		NewNumericColumn("x", []float64{1, math.NaN()}),
		NewCategoricalColumnWithNulls("c", []string{"a", "b"}, []bool{false, false}),
	)
	if ds.RowHasNull(0) {
		t.Fatalf("row 0 reported null")
	}
	if !ds.RowHasNull(1) {
		t.Fatalf("row 1 not reported null")
	}
}

func TestReplaceColumn(t *testing.T) {
	ds := mustDataset(t, NewNumericColumn("x", []float64{1, 2}))
	out, err := ds.ReplaceColumn(NewNumericColumn("x", []float64{7, 8}))
	if err != nil {
		t.Fatalf("ReplaceColumn: %v", err)
	}
	vals, _ := out.Numeric("x")
	if vals[0] != 7 || vals[1] != 8 {
		t.Fatalf("replaced values = %v", vals)
	}
	if _, err := ds.ReplaceColumn(NewNumericColumn("y", []float64{1, 2})); !errors.Is(err, errs.ErrMissingColumn) {
		t.Fatalf("replace absent column: got %v, want ErrMissingColumn", err)
	}
	if _, err := ds.ReplaceColumn(NewNumericColumn("x", []float64{1})); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("replace with short column: got %v, want ErrInvalidArgument", err)
	}
}

func TestTypedColumnLists(t *testing.T) {
	ds := mustDataset(t,
		NewNumericColumn("a", []float64{1}),
		NewCategoricalColumn("b", []string{"x"}),
		NewNumericColumn("c", []float64{2}),
	)
	num := ds.NumericColumns()
	if len(num) != 2 || num[0] != "a" || num[1] != "c" {
		t.Fatalf("NumericColumns = %v", num)
	}
	cat := ds.CategoricalColumns()
	if len(cat) != 1 || cat[0] != "b" {
		t.Fatalf("CategoricalColumns = %v", cat)
	}
}
