package charts

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/mallahova/data-analysis-app/src/dataset"
	"github.com/mallahova/data-analysis-app/src/errs"
)

func diamonds(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(
		dataset.NewNumericColumn("carat", []float64{0.2, 0.3, 0.5}),
		dataset.NewNumericColumn("price", []float64{300, 400, 600}),
		dataset.NewCategoricalColumn("cut", []string{"Ideal", "Good", "Ideal"}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ds
}

func TestLineRenderer(t *testing.T) {
	fig := NewFigure()
	err := LineRenderer{}.Render(fig, diamonds(t), "Price over Carat", Params{
		"x_column": "carat", "y_column": "price",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if fig.Title != "Price over Carat" || fig.XLabel != "carat" || fig.YLabel != "price" {
		t.Fatalf("labels = %q/%q/%q", fig.Title, fig.XLabel, fig.YLabel)
	}
	if len(fig.Traces) != 1 {
		t.Fatalf("traces = %d, want 1", len(fig.Traces))
	}
	tr := fig.Traces[0]
	if tr.Kind != TraceLine || tr.Color != DefaultLineColor || tr.LineWidth != DefaultLineWidth {
		t.Fatalf("trace = %+v", tr)
	}
	if len(tr.X) != 3 || tr.Y[2] != 600 {
		t.Fatalf("trace data = %v / %v", tr.X, tr.Y)
	}
}

func TestLineRendererMissingParams(t *testing.T) {
	err := LineRenderer{}.Render(NewFigure(), diamonds(t), "t", Params{"x_column": "carat"})
	if !errors.Is(err, errs.ErrMissingParameter) {
		t.Fatalf("got %v, want ErrMissingParameter", err)
	}
}

func TestScatterRendererSplitsByCategory(t *testing.T) {
	fig := NewFigure()
	err := ScatterRenderer{}.Render(fig, diamonds(t), "by cut", Params{
		"x_column": "carat", "y_column": "price", "categorical_column": "cut",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(fig.Traces) != 2 {
		t.Fatalf("traces = %d, want 2", len(fig.Traces))
	}
	ideal, good := fig.Traces[0], fig.Traces[1]
	if ideal.Name != "Ideal" || good.Name != "Good" {
		t.Fatalf("trace order = %q, %q (want first-seen Ideal, Good)", ideal.Name, good.Name)
	}
	if len(ideal.X) != 2 || len(good.X) != 1 {
		t.Fatalf("points per trace = %d/%d, want 2/1", len(ideal.X), len(good.X))
	}
	if ideal.X[0] != 0.2 || ideal.X[1] != 0.5 || good.Y[0] != 400 {
		t.Fatalf("trace data = %v / %v", ideal.X, good.Y)
	}
	if ideal.Color != QualitativePalette[0] || good.Color != QualitativePalette[1] {
		t.Fatalf("colors = %q/%q", ideal.Color, good.Color)
	}
}

func TestScatterRendererSingleTraceWithoutCategory(t *testing.T) {
	fig := NewFigure()
	err := ScatterRenderer{}.Render(fig, diamonds(t), "t", Params{
		"x_column": "carat", "y_column": "price",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(fig.Traces) != 1 || fig.Traces[0].Color != DefaultMarkerColor {
		t.Fatalf("traces = %+v", fig.Traces)
	}
	if fig.Traces[0].Symbol != DefaultMarkerSymbol {
		t.Fatalf("symbol = %q", fig.Traces[0].Symbol)
	}
}

func TestScatterRendererCapacityExceeded(t *testing.T) {
	n := len(QualitativePalette) + 1
	x := make([]float64, n)
	cats := make([]string, n)
	for i := range cats {
		x[i] = float64(i)
		cats[i] = fmt.Sprintf("cat%d", i)
	}
	ds, err := dataset.New(
		dataset.NewNumericColumn("x", x),
		dataset.NewNumericColumn("y", x),
		dataset.NewCategoricalColumn("c", cats),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = ScatterRenderer{}.Render(NewFigure(), ds, "t", Params{
		"x_column": "x", "y_column": "y", "categorical_column": "c",
	})
	if !errors.Is(err, errs.ErrCapacityExceeded) {
		t.Fatalf("got %v, want ErrCapacityExceeded", err)
	}
}

func TestHistogramRendererBins(t *testing.T) {
	fig := NewFigure()
	err := HistogramRenderer{}.Render(fig, diamonds(t), "prices", Params{
		"x_column": "price", "bins": 2,
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if fig.Title != "prices" || fig.XLabel != "price" {
		t.Fatalf("labels = %q / %q", fig.Title, fig.XLabel)
	}
	tr := fig.Traces[0]
	if tr.Kind != TraceHistogram || len(tr.Counts) != 2 {
		t.Fatalf("trace = %+v", tr)
	}
	// 300, 400 fall in [300, 450); 600 in [450, 600].
	if tr.Counts[0] != 2 || tr.Counts[1] != 1 {
		t.Fatalf("counts = %v, want [2 1]", tr.Counts)
	}
	if tr.BinEdges[0] != 300 || tr.BinEdges[2] != 600 {
		t.Fatalf("edges = %v, want to span [300, 600]", tr.BinEdges)
	}
	if tr.Color != DefaultBarColor {
		t.Fatalf("color = %q", tr.Color)
	}
}

func TestHistogramRendererSkipsNulls(t *testing.T) {
	ds, _ := dataset.New(dataset.NewNumericColumn("v", []float64{1, math.NaN(), 2}))
	fig := NewFigure()
	if err := (HistogramRenderer{}).Render(fig, ds, "t", Params{"x_column": "v", "bins": 1}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := fig.Traces[0].Counts[0]; got != 2 {
		t.Fatalf("count = %v, want 2", got)
	}
}

func TestHistogramRendererRejectsBadBins(t *testing.T) {
	err := HistogramRenderer{}.Render(NewFigure(), diamonds(t), "t", Params{"x_column": "price", "bins": 0})
	if !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
}

func TestHeatmapRenderer(t *testing.T) {
	ds, err := dataset.New(
		dataset.NewCategoricalColumn("cut", []string{"Ideal", "Good", "Ideal"}),
		dataset.NewCategoricalColumn("color", []string{"E", "E", "F"}),
		dataset.NewNumericColumn("price", []float64{300, 400, 600}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fig := NewFigure()
	err = HeatmapRenderer{}.Render(fig, ds, "grid", Params{
		"x_column": "cut", "y_column": "color", "z_column": "price",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	tr := fig.Traces[0]
	if tr.Kind != TraceHeatmap {
		t.Fatalf("kind = %v", tr.Kind)
	}
	if len(tr.XCategories) != 2 || len(tr.YCategories) != 2 {
		t.Fatalf("axes = %v / %v", tr.XCategories, tr.YCategories)
	}
	// grid[y][x]: (Ideal, E) = 300, (Good, E) = 400, (Ideal, F) = 600.
	if tr.Grid[0][0] != 300 || tr.Grid[0][1] != 400 || tr.Grid[1][0] != 600 {
		t.Fatalf("grid = %v", tr.Grid)
	}
	if !math.IsNaN(tr.Grid[1][1]) {
		t.Fatalf("absent cell = %v, want NaN", tr.Grid[1][1])
	}
	if tr.Colorscale != DefaultColorscale {
		t.Fatalf("colorscale = %q", tr.Colorscale)
	}
}

func TestHeatmapRendererCardinalityGuard(t *testing.T) {
	n := DefaultMaxAxisCardinality + 1
	xs := make([]string, n)
	ys := make([]string, n)
	zs := make([]float64, n)
	for i := range xs {
		xs[i] = fmt.Sprintf("x%d", i)
		ys[i] = "same"
		zs[i] = float64(i)
	}
	ds, err := dataset.New(
		dataset.NewCategoricalColumn("x", xs),
		dataset.NewCategoricalColumn("y", ys),
		dataset.NewNumericColumn("z", zs),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fig := NewFigure()
	err = HeatmapRenderer{}.Render(fig, ds, "too wide", Params{
		"x_column": "x", "y_column": "y", "z_column": "z",
	})
	if err != nil {
		t.Fatalf("guard should not be an error, got %v", err)
	}
	if len(fig.Traces) != 0 || fig.Title != "" {
		t.Fatalf("figure should be untouched, got %d traces, title %q", len(fig.Traces), fig.Title)
	}
}

func TestHeatmapRendererMissingZ(t *testing.T) {
	err := HeatmapRenderer{}.Render(NewFigure(), diamonds(t), "t", Params{
		"x_column": "cut", "y_column": "cut",
	})
	if !errors.Is(err, errs.ErrMissingParameter) {
		t.Fatalf("got %v, want ErrMissingParameter", err)
	}
}

func TestBoxRenderer(t *testing.T) {
	fig := NewFigure()
	err := BoxRenderer{}.Render(fig, diamonds(t), "price spread", Params{"x_column": "price"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if fig.YLabel != "price" {
		t.Fatalf("YLabel = %q", fig.YLabel)
	}
	tr := fig.Traces[0]
	if tr.Kind != TraceBox || len(tr.Values) != 3 {
		t.Fatalf("trace = %+v", tr)
	}
	if tr.Box.Min != 300 || tr.Box.Max != 600 || tr.Box.Median != 400 {
		t.Fatalf("box stats = %+v", tr.Box)
	}
	wantMean := (300.0 + 400 + 600) / 3
	if math.Abs(tr.Box.Mean-wantMean) > 1e-9 {
		t.Fatalf("mean = %v, want %v", tr.Box.Mean, wantMean)
	}
	if tr.Box.StdDev <= 0 {
		t.Fatalf("stddev = %v", tr.Box.StdDev)
	}
}
