// Package session composes file reading, preprocessing, chart rendering and
// dimensionality reduction behind one per-session facade. Sessions are
// independent: serving concurrent users means one Session per user, never a
// shared instance.
package session

import (
	"fmt"
	"strings"

	"github.com/mallahova/data-analysis-app/src/charts"
	"github.com/mallahova/data-analysis-app/src/dataset"
	"github.com/mallahova/data-analysis-app/src/errs"
	"github.com/mallahova/data-analysis-app/src/preprocess"
	"github.com/mallahova/data-analysis-app/src/reduction"
)

// Session owns one dataset, its preprocessor and one chart context. Calls
// must be serialized by the caller; Session does no internal locking.
type Session struct {
	pre *preprocess.Preprocessor
	ctx *charts.Context
}

// New returns an empty session.
func New() *Session {
	return &Session{ctx: charts.NewContext()}
}

// LoadFile reads a dataset from path (reader picked by extension) and makes
// it the session dataset.
func (s *Session) LoadFile(path string) (*dataset.Dataset, error) {
	ds, err := dataset.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s.pre = preprocess.New(ds)
	return ds, nil
}

// Load makes an already built dataset the session dataset.
func (s *Session) Load(ds *dataset.Dataset) {
	s.pre = preprocess.New(ds)
}

// Data returns the current (possibly preprocessed) dataset.
func (s *Session) Data() (*dataset.Dataset, error) {
	if s.pre == nil {
		return nil, fmt.Errorf("%w: no dataset loaded", errs.ErrInvalidArgument)
	}
	return s.pre.Data(), nil
}

// PreprocessOptions bundles the optional cleanup steps applied in order:
// null handling, renames, drops.
type PreprocessOptions struct {
	NullMethod string
	FillValue  string
	RenameMap  map[string]string
	DropCols   []string
}

// Preprocess applies the requested cleanup steps to the session dataset and
// returns the derived dataset.
func (s *Session) Preprocess(opts PreprocessOptions) (*dataset.Dataset, error) {
	if s.pre == nil {
		return nil, fmt.Errorf("%w: no dataset loaded", errs.ErrInvalidArgument)
	}
	if opts.NullMethod != "" {
		if _, err := s.pre.HandleNulls(opts.NullMethod, opts.FillValue); err != nil {
			return nil, err
		}
	}
	if len(opts.RenameMap) > 0 {
		if _, err := s.pre.RenameColumns(opts.RenameMap); err != nil {
			return nil, err
		}
	}
	if len(opts.DropCols) > 0 {
		s.pre.DropColumns(opts.DropCols)
	}
	return s.pre.Data(), nil
}

// Reset restores the session dataset to its loaded state.
func (s *Session) Reset() (*dataset.Dataset, error) {
	if s.pre == nil {
		return nil, fmt.Errorf("%w: no dataset loaded", errs.ErrInvalidArgument)
	}
	return s.pre.Reset(), nil
}

// CreatePlot selects the chart kind by name and renders the session dataset
// into a fresh figure. An empty title gets a kind-derived default.
func (s *Session) CreatePlot(kind, title string, params charts.Params) (*charts.Figure, error) {
	if s.pre == nil {
		return nil, fmt.Errorf("%w: no dataset loaded", errs.ErrInvalidArgument)
	}
	if err := s.ctx.Select(kind); err != nil {
		return nil, err
	}
	if title == "" {
		title = defaultTitle(kind, params)
	}
	return s.ctx.Update(s.pre.Data(), title, params)
}

// Reduce runs a projection pipeline over the session dataset and renders the
// resulting components as a scatter figure.
func (s *Session) Reduce(method, title string, opts reduction.Options) (*charts.Figure, error) {
	if s.pre == nil {
		return nil, fmt.Errorf("%w: no dataset loaded", errs.ErrInvalidArgument)
	}
	p, err := reduction.NewPipeline(method, opts)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = method
		if opts.CategoricalColumn != "" {
			title += " by " + opts.CategoricalColumn
		}
	}
	fig, err := p.RunAndRender(s.pre.Data(), title)
	if err != nil {
		return nil, err
	}
	s.ctx.SetFigure(fig)
	return fig, nil
}

// Figure returns the last successfully produced chart figure, or nil.
func (s *Session) Figure() *charts.Figure { return s.ctx.Figure() }

// defaultTitle builds a kind-derived title from the column parameters.
func defaultTitle(kind string, params charts.Params) string {
	title := capitalize(kind) + " Plot"
	x := params.String("x_column", "")
	y := params.String("y_column", "")
	z := params.String("z_column", "")
	switch kind {
	case "line", "scatter":
		title += fmt.Sprintf(" X %s, Y %s", x, y)
	case "heatmap":
		title += fmt.Sprintf(" X %s, Y %s, Z %s", x, y, z)
	case "histogram":
		title += " X " + x
	case "boxplot":
		title += " Y " + x
	}
	if cat := params.String("categorical_column", ""); cat != "" {
		title += " by " + cat
	}
	return title
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
