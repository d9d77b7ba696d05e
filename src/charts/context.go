package charts

import (
	"fmt"

	"github.com/mallahova/data-analysis-app/src/dataset"
	"github.com/mallahova/data-analysis-app/src/errs"
)

// Kind enumerates the supported chart kinds.
type Kind int

const (
	Line Kind = iota
	Scatter
	Histogram
	Heatmap
	Box
)

var kindNames = map[Kind]string{
	Line:      "line",
	Scatter:   "scatter",
	Histogram: "histogram",
	Heatmap:   "heatmap",
	Box:       "boxplot",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a chart kind name (line, scatter, histogram, heatmap,
// boxplot) to its Kind. Unknown names fail with ErrUnknownStrategy.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: chart kind %q", errs.ErrUnknownStrategy, name)
}

// NewRenderer constructs the renderer for a kind.
func NewRenderer(k Kind) Renderer {
	switch k {
	case Line:
		return LineRenderer{}
	case Scatter:
		return ScatterRenderer{}
	case Histogram:
		return HistogramRenderer{}
	case Heatmap:
		return HeatmapRenderer{MaxAxisCardinality: DefaultMaxAxisCardinality}
	case Box:
		return BoxRenderer{}
	}
	panic(fmt.Sprintf("charts: no renderer for %v", k))
}

// Context holds the active renderer and the most recently produced figure.
// It is single-session state: callers must serialize Select/Update calls.
type Context struct {
	kind     Kind
	renderer Renderer
	fig      *Figure
}

// NewContext returns a context with no renderer selected.
func NewContext() *Context { return &Context{} }

// Select swaps the active renderer by kind name. The swap is stateless: no
// figure or dataset state carries over.
func (c *Context) Select(name string) error {
	k, err := ParseKind(name)
	if err != nil {
		return err
	}
	c.kind = k
	c.renderer = NewRenderer(k)
	return nil
}

// Kind returns the active chart kind.
func (c *Context) Kind() Kind { return c.kind }

// Update renders ds into a fresh figure with the active renderer. Plots never
// layer across calls. On failure the previously held figure stays untouched.
func (c *Context) Update(ds *dataset.Dataset, title string, params Params) (*Figure, error) {
	if c.renderer == nil {
		return nil, fmt.Errorf("%w: no chart kind selected", errs.ErrInvalidArgument)
	}
	fig := NewFigure()
	if err := c.renderer.Render(fig, ds, title, params); err != nil {
		return nil, err
	}
	c.fig = fig
	return fig, nil
}

// SetFigure stores an externally produced figure as the context's current
// one, so retrieval covers figures rendered outside Update (projections).
func (c *Context) SetFigure(fig *Figure) { c.fig = fig }

// Figure returns the last successfully produced figure, or nil.
func (c *Context) Figure() *Figure { return c.fig }
