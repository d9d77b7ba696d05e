// Package charts builds renderable figures from a dataset: one renderer per
// chart kind, selected by name through a Context. A Figure is backend
// agnostic; src/export turns it into image bytes.
package charts

// TraceKind discriminates the payload a Trace carries.
type TraceKind int

const (
	TraceLine TraceKind = iota
	TraceMarkers
	TraceHistogram
	TraceHeatmap
	TraceBox
)

// BoxStats is the five-number summary plus mean/stddev annotations of a box
// trace.
type BoxStats struct {
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
	Mean   float64
	StdDev float64
}

// Trace is one series of a figure. Only the fields matching Kind are set.
type Trace struct {
	Kind TraceKind
	// Name labels the trace in the legend (the category value for split
	// scatter traces).
	Name string

	// Line and marker traces.
	X, Y      []float64
	Color     string
	LineWidth float64
	Symbol    string

	// Histogram traces: bins+1 edges and one count per bin.
	BinEdges []float64
	Counts   []float64

	// Heatmap traces: axis categories in first-seen order and a [y][x] grid
	// with NaN marking absent cells.
	XCategories []string
	YCategories []string
	Grid        [][]float64
	Colorscale  string

	// Box traces.
	Values []float64
	Box    BoxStats
}

// Figure is the renderable output: traces plus layout metadata. Renderers
// append traces and set layout; they never replace the figure value itself.
type Figure struct {
	Title  string
	XLabel string
	YLabel string
	Traces []Trace
}

// NewFigure returns an empty figure.
func NewFigure() *Figure { return &Figure{} }

// AddTrace appends a trace.
func (f *Figure) AddTrace(t Trace) { f.Traces = append(f.Traces, t) }

// QualitativePalette is the fixed palette used for categorical coloring
// (the Set1 qualitative scale). Scatter category splits fail when a dataset
// has more distinct categories than this palette has colors.
var QualitativePalette = []string{
	"#e41a1c", "#377eb8", "#4daf4a", "#984ea3", "#ff7f00",
	"#ffff33", "#a65628", "#f781bf", "#999999",
}

func copyFloats(v []float64) []float64 { return append([]float64(nil), v...) }
