package charts

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/mallahova/data-analysis-app/src/dataset"
	"github.com/mallahova/data-analysis-app/src/errs"
	"github.com/mallahova/data-analysis-app/src/logging"
)

// Renderer appends one or more traces to fig and sets its title and axis
// labels. Implementations never replace the figure identity.
type Renderer interface {
	Render(fig *Figure, ds *dataset.Dataset, title string, params Params) error
}

// Default styling applied when the corresponding parameter is absent.
const (
	DefaultLineColor    = "blue"
	DefaultLineWidth    = 2.0
	DefaultMarkerColor  = "red"
	DefaultMarkerSymbol = "circle"
	DefaultBarColor     = "green"
	DefaultBins         = 30
	DefaultBoxColor     = "orange"
	DefaultColorscale   = "Viridis"
)

// DefaultMaxAxisCardinality is the heatmap axis ceiling: above this many
// distinct values on either axis the heatmap renderer skips rendering
// entirely instead of producing an unreadable dense grid.
const DefaultMaxAxisCardinality = 30

// LineRenderer draws y_column over x_column as a single trace in row order.
type LineRenderer struct{}

func (LineRenderer) Render(fig *Figure, ds *dataset.Dataset, title string, params Params) error {
	xName := params.String("x_column", "")
	yName := params.String("y_column", "")
	if xName == "" || yName == "" {
		return fmt.Errorf("%w: line plot requires x_column and y_column", errs.ErrMissingParameter)
	}
	x, err := ds.Numeric(xName)
	if err != nil {
		return err
	}
	y, err := ds.Numeric(yName)
	if err != nil {
		return err
	}
	fig.AddTrace(Trace{
		Kind:      TraceLine,
		X:         copyFloats(x),
		Y:         copyFloats(y),
		Color:     params.String("line_color", DefaultLineColor),
		LineWidth: params.Float("line_width", DefaultLineWidth),
	})
	fig.Title = title
	fig.XLabel = xName
	fig.YLabel = yName
	return nil
}

// ScatterRenderer draws y_column over x_column as markers. With
// categorical_column set, rows split into one trace per distinct category in
// first-seen order, colored from the qualitative palette.
type ScatterRenderer struct{}

func (ScatterRenderer) Render(fig *Figure, ds *dataset.Dataset, title string, params Params) error {
	xName := params.String("x_column", "")
	yName := params.String("y_column", "")
	if xName == "" || yName == "" {
		return fmt.Errorf("%w: scatter plot requires x_column and y_column", errs.ErrMissingParameter)
	}
	x, err := ds.Numeric(xName)
	if err != nil {
		return err
	}
	y, err := ds.Numeric(yName)
	if err != nil {
		return err
	}
	symbol := params.String("marker_symbol", DefaultMarkerSymbol)

	if catName := params.String("categorical_column", ""); catName != "" {
		labels, err := ds.Labels(catName)
		if err != nil {
			return err
		}
		categories, err := ds.Distinct(catName)
		if err != nil {
			return err
		}
		if len(categories) > len(QualitativePalette) {
			return fmt.Errorf("%w: %d categories in %q exceed the %d-color palette",
				errs.ErrCapacityExceeded, len(categories), catName, len(QualitativePalette))
		}
		for idx, category := range categories {
			var cx, cy []float64
			for i, l := range labels {
				if l != category {
					continue
				}
				if null, _ := ds.IsNull(catName, i); null {
					continue
				}
				cx = append(cx, x[i])
				cy = append(cy, y[i])
			}
			fig.AddTrace(Trace{
				Kind:   TraceMarkers,
				Name:   category,
				X:      cx,
				Y:      cy,
				Color:  QualitativePalette[idx],
				Symbol: symbol,
			})
		}
	} else {
		fig.AddTrace(Trace{
			Kind:   TraceMarkers,
			X:      copyFloats(x),
			Y:      copyFloats(y),
			Color:  DefaultMarkerColor,
			Symbol: symbol,
		})
	}
	fig.Title = title
	fig.XLabel = xName
	fig.YLabel = yName
	return nil
}

// HistogramRenderer buckets x_column into equal-width bins.
type HistogramRenderer struct{}

func (HistogramRenderer) Render(fig *Figure, ds *dataset.Dataset, title string, params Params) error {
	xName := params.String("x_column", "")
	if xName == "" {
		return fmt.Errorf("%w: histogram requires x_column", errs.ErrMissingParameter)
	}
	vals, err := ds.Numeric(xName)
	if err != nil {
		return err
	}
	bins := params.Int("bins", DefaultBins)
	if bins < 1 {
		return fmt.Errorf("%w: bins must be positive, got %d", errs.ErrInvalidArgument, bins)
	}

	var present []float64
	for _, v := range vals {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	edges, counts := bucket(present, bins)
	fig.AddTrace(Trace{
		Kind:     TraceHistogram,
		BinEdges: edges,
		Counts:   counts,
		Color:    params.String("bar_color", DefaultBarColor),
	})
	fig.Title = title
	fig.XLabel = xName
	return nil
}

// bucket computes equal-width bins spanning [min, max] of vals. A degenerate
// span still yields the requested number of unit-width bins.
func bucket(vals []float64, bins int) (edges, counts []float64) {
	counts = make([]float64, bins)
	edges = make([]float64, bins+1)
	if len(vals) == 0 {
		for i := range edges {
			edges[i] = float64(i)
		}
		return edges, counts
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	width := (hi - lo) / float64(bins)
	if width == 0 {
		width = 1
	}
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}
	for _, v := range vals {
		idx := int((v - lo) / width)
		if idx >= bins { // the max value lands in the last bin
			idx = bins - 1
		}
		counts[idx]++
	}
	return edges, counts
}

// HeatmapRenderer grids z_column over the categories of x_column and
// y_column. When either axis exceeds MaxAxisCardinality distinct values the
// figure is returned unchanged: a usability guard, not an error.
type HeatmapRenderer struct {
	MaxAxisCardinality int
}

func (h HeatmapRenderer) Render(fig *Figure, ds *dataset.Dataset, title string, params Params) error {
	xName := params.String("x_column", "")
	yName := params.String("y_column", "")
	zName := params.String("z_column", "")
	if xName == "" || yName == "" || zName == "" {
		return fmt.Errorf("%w: heatmap requires x_column, y_column and z_column", errs.ErrMissingParameter)
	}
	max := h.MaxAxisCardinality
	if max <= 0 {
		max = DefaultMaxAxisCardinality
	}
	z, err := ds.Numeric(zName)
	if err != nil {
		return err
	}
	for _, axis := range []string{xName, yName} {
		n, err := ds.DistinctCount(axis)
		if err != nil {
			return err
		}
		if n > max {
			logging.Debugf("heatmap: axis %q has %d distinct values (ceiling %d), skipping render", axis, n, max)
			return nil
		}
	}

	xLabels, err := ds.Labels(xName)
	if err != nil {
		return err
	}
	yLabels, err := ds.Labels(yName)
	if err != nil {
		return err
	}
	xCats, _ := ds.Distinct(xName)
	yCats, _ := ds.Distinct(yName)
	xIndex := indexOf(xCats)
	yIndex := indexOf(yCats)

	grid := make([][]float64, len(yCats))
	for i := range grid {
		grid[i] = make([]float64, len(xCats))
		for j := range grid[i] {
			grid[i][j] = math.NaN()
		}
	}
	for i := range z {
		xi, okx := xIndex[xLabels[i]]
		yi, oky := yIndex[yLabels[i]]
		if !okx || !oky || math.IsNaN(z[i]) {
			continue
		}
		grid[yi][xi] = z[i] // duplicate cells: last value wins
	}

	fig.AddTrace(Trace{
		Kind:        TraceHeatmap,
		XCategories: xCats,
		YCategories: yCats,
		Grid:        grid,
		Colorscale:  params.String("colorscale", DefaultColorscale),
	})
	fig.Title = title
	fig.XLabel = xName
	fig.YLabel = yName
	return nil
}

func indexOf(cats []string) map[string]int {
	m := make(map[string]int, len(cats))
	for i, c := range cats {
		m[c] = i
	}
	return m
}

// BoxRenderer summarizes a single numeric column as a box trace annotated
// with mean and standard deviation.
type BoxRenderer struct{}

func (BoxRenderer) Render(fig *Figure, ds *dataset.Dataset, title string, params Params) error {
	xName := params.String("x_column", "")
	if xName == "" {
		return fmt.Errorf("%w: box plot requires x_column", errs.ErrMissingParameter)
	}
	vals, err := ds.Numeric(xName)
	if err != nil {
		return err
	}
	var present []float64
	for _, v := range vals {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	t := Trace{
		Kind:   TraceBox,
		Values: present,
		Color:  params.String("box_color", DefaultBoxColor),
	}
	if len(present) > 0 {
		sorted := append([]float64(nil), present...)
		sort.Float64s(sorted)
		t.Box = BoxStats{
			Min:    sorted[0],
			Q1:     stat.Quantile(0.25, stat.Empirical, sorted, nil),
			Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
			Q3:     stat.Quantile(0.75, stat.Empirical, sorted, nil),
			Max:    sorted[len(sorted)-1],
			Mean:   stat.Mean(present, nil),
			StdDev: stat.StdDev(present, nil),
		}
	}
	fig.AddTrace(t)
	fig.Title = title
	fig.YLabel = xName
	return nil
}
