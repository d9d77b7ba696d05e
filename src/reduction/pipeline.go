package reduction

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/mallahova/data-analysis-app/src/charts"
	"github.com/mallahova/data-analysis-app/src/dataset"
	"github.com/mallahova/data-analysis-app/src/errs"
	"github.com/mallahova/data-analysis-app/src/logging"
)

// Reducer is stage two of the pipeline: project a standardized feature
// matrix into nComponents dimensions.
type Reducer interface {
	Name() string
	Reduce(X *mat.Dense, nComponents int) (*mat.Dense, error)
}

// Options configures a projection pipeline. Zero values take documented
// defaults.
type Options struct {
	// Columns selects the dataset columns to project; nil means all.
	Columns []string
	// NComponents is the target dimensionality. Zero means 2.
	NComponents int
	// CategoricalColumn, when set, is copied row-aligned from the input into
	// the result for coloring the projection scatter.
	CategoricalColumn string
	// NNeighbors and MinDist apply to UMAP only.
	NNeighbors int
	MinDist    float64
	// Seed applies to UMAP only; zero means a fixed default.
	Seed int64
}

// Result is the projected table: Component_1..Component_n numeric columns,
// row-aligned with the input, optionally with the categorical label column.
type Result struct {
	Data              *dataset.Dataset
	ComponentNames    []string
	CategoricalColumn string
}

// Pipeline runs the fixed standardize → reduce → postprocess sequence. The
// skeleton is identical for every method; only the injected Reducer differs.
type Pipeline struct {
	reducer Reducer
	opts    Options
}

// NewPipeline binds a reduction method name ("PCA" or "UMAP") to a configured
// pipeline. Unrecognized names fail with ErrUnknownStrategy.
func NewPipeline(method string, opts Options) (*Pipeline, error) {
	if opts.NComponents == 0 {
		opts.NComponents = 2
	}
	var r Reducer
	switch method {
	case "PCA":
		r = PCA{}
	case "UMAP":
		r = UMAP{
			NNeighbors: opts.NNeighbors,
			MinDist:    opts.MinDist,
			Seed:       opts.Seed,
		}
	default:
		return nil, fmt.Errorf("%w: reduction method %q", errs.ErrUnknownStrategy, method)
	}
	return &Pipeline{reducer: r, opts: opts}, nil
}

// Method returns the bound reduction method name.
func (p *Pipeline) Method() string { return p.reducer.Name() }

// Run executes the pipeline on ds and returns the projected table. No partial
// result is produced on failure.
func (p *Pipeline) Run(ds *dataset.Dataset) (*Result, error) {
	defer logging.TimeTrack(time.Now(), p.reducer.Name()+" pipeline")
	if p.opts.NComponents < 1 {
		return nil, fmt.Errorf("%w: n_components must be positive, got %d", errs.ErrInvalidArgument, p.opts.NComponents)
	}
	if p.opts.CategoricalColumn != "" && !ds.HasColumn(p.opts.CategoricalColumn) {
		return nil, fmt.Errorf("%w: %q", errs.ErrMissingColumn, p.opts.CategoricalColumn)
	}

	logging.Debugf("%s: standardizing", p.reducer.Name())
	X, features, err := Standardize(ds, p.opts.Columns)
	if err != nil {
		return nil, err
	}
	if p.opts.NComponents > len(features) {
		return nil, fmt.Errorf("%w: n_components %d exceeds %d standardized features",
			errs.ErrInvalidArgument, p.opts.NComponents, len(features))
	}

	logging.Debugf("%s: reducing %d features to %d components", p.reducer.Name(), len(features), p.opts.NComponents)
	reduced, err := p.reducer.Reduce(X, p.opts.NComponents)
	if err != nil {
		return nil, err
	}

	return p.postprocess(ds, reduced)
}

// postprocess wraps the reduced matrix as a dataset with synthetic component
// names and reattaches the categorical column from the pre-standardization
// input.
func (p *Pipeline) postprocess(ds *dataset.Dataset, reduced *mat.Dense) (*Result, error) {
	rows, comps := reduced.Dims()
	cols := make([]dataset.Column, 0, comps+1)
	names := make([]string, comps)
	for j := 0; j < comps; j++ {
		names[j] = fmt.Sprintf("Component_%d", j+1)
		vals := make([]float64, rows)
		for i := 0; i < rows; i++ {
			vals[i] = reduced.At(i, j)
		}
		cols = append(cols, dataset.NewNumericColumn(names[j], vals))
	}
	if p.opts.CategoricalColumn != "" {
		labels, err := ds.Labels(p.opts.CategoricalColumn)
		if err != nil {
			return nil, err
		}
		nulls, err := ds.Nulls(p.opts.CategoricalColumn)
		if err != nil {
			return nil, err
		}
		cols = append(cols, dataset.NewCategoricalColumnWithNulls(p.opts.CategoricalColumn, labels, nulls))
	}
	data, err := dataset.New(cols...)
	if err != nil {
		return nil, err
	}
	return &Result{Data: data, ComponentNames: names, CategoricalColumn: p.opts.CategoricalColumn}, nil
}

// RenderScatter draws a projection result with the scatter renderer,
// Component_1 on x and Component_2 on y, colored by the reattached
// categorical column when present. The figure contract matches every other
// chart kind.
func RenderScatter(res *Result, title string) (*charts.Figure, error) {
	if len(res.ComponentNames) < 2 {
		return nil, fmt.Errorf("%w: scatter projection needs at least 2 components, got %d",
			errs.ErrInvalidArgument, len(res.ComponentNames))
	}
	params := charts.Params{
		"x_column": res.ComponentNames[0],
		"y_column": res.ComponentNames[1],
	}
	if res.CategoricalColumn != "" {
		params["categorical_column"] = res.CategoricalColumn
	}
	fig := charts.NewFigure()
	if err := (charts.ScatterRenderer{}).Render(fig, res.Data, title, params); err != nil {
		return nil, err
	}
	return fig, nil
}

// RunAndRender is the full projection entry point: pipeline plus final
// scatter rendering.
func (p *Pipeline) RunAndRender(ds *dataset.Dataset, title string) (*charts.Figure, error) {
	res, err := p.Run(ds)
	if err != nil {
		return nil, err
	}
	return RenderScatter(res, title)
}
