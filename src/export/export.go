// Package export turns a charts.Figure into image bytes. Line, scatter and
// histogram figures render through go-chart; heatmap and box figures through
// gonum/plot, which draws the grid and box glyphs go-chart has no series for.
package export

import (
	"bytes"
	"fmt"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/mallahova/data-analysis-app/src/charts"
	"github.com/mallahova/data-analysis-app/src/errs"
)

// Supported image formats.
const (
	PNG  = "png"
	JPEG = "jpeg"
	SVG  = "svg"
)

const (
	chartWidth  = 1024
	chartHeight = 640
)

// Encode renders fig into the requested format. A figure without traces or
// an unknown format fails with ErrInvalidArgument.
func Encode(fig *charts.Figure, format string) ([]byte, error) {
	switch format {
	case PNG, JPEG, SVG:
	default:
		return nil, fmt.Errorf("%w: image format %q (want png, jpeg or svg)", errs.ErrInvalidArgument, format)
	}
	if fig == nil || len(fig.Traces) == 0 {
		return nil, fmt.Errorf("%w: figure has no traces", errs.ErrInvalidArgument)
	}
	switch fig.Traces[0].Kind {
	case charts.TraceLine, charts.TraceMarkers:
		return encodeXY(fig, format)
	case charts.TraceHistogram:
		return encodeHistogram(fig, format)
	case charts.TraceHeatmap:
		return encodeHeatmap(fig, format)
	case charts.TraceBox:
		return encodeBox(fig, format)
	}
	return nil, fmt.Errorf("%w: unrenderable trace kind", errs.ErrInvalidArgument)
}

// WriteFile encodes fig with the format implied by the file extension and
// writes it to path.
func WriteFile(fig *charts.Figure, path string) error {
	var format string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = PNG
	case ".jpg", ".jpeg":
		format = JPEG
	case ".svg":
		format = SVG
	default:
		return fmt.Errorf("%w: image extension %q", errs.ErrInvalidArgument, filepath.Ext(path))
	}
	b, err := Encode(fig, format)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// encodeXY renders line and marker traces with go-chart.
func encodeXY(fig *charts.Figure, format string) ([]byte, error) {
	series := make([]chart.Series, 0, len(fig.Traces))
	named := false
	for _, t := range fig.Traces {
		col := chartColor(t.Color)
		var st chart.Style
		if t.Kind == charts.TraceLine {
			st = chart.Style{StrokeColor: col, StrokeWidth: t.LineWidth}
		} else {
			st = chart.Style{StrokeWidth: chart.Disabled, DotWidth: 5, DotColor: col}
		}
		if t.Name != "" {
			named = true
		}
		series = append(series, chart.ContinuousSeries{
			Name:    t.Name,
			XValues: t.X,
			YValues: t.Y,
			Style:   st,
		})
	}
	ch := chart.Chart{
		Title:  fig.Title,
		Width:  chartWidth,
		Height: chartHeight,
		XAxis:  chart.XAxis{Name: fig.XLabel},
		YAxis:  chart.YAxis{Name: fig.YLabel},
		Series: series,
	}
	if named {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	return renderGoChart(&ch, format)
}

// encodeHistogram renders precomputed bins as a bar chart.
func encodeHistogram(fig *charts.Figure, format string) ([]byte, error) {
	t := fig.Traces[0]
	col := chartColor(t.Color)
	bars := make([]chart.Value, len(t.Counts))
	for i, c := range t.Counts {
		label := fmt.Sprintf("%s-%s",
			strconv.FormatFloat(t.BinEdges[i], 'g', 4, 64),
			strconv.FormatFloat(t.BinEdges[i+1], 'g', 4, 64))
		bars[i] = chart.Value{
			Value: c,
			Label: label,
			Style: chart.Style{FillColor: col, StrokeColor: col},
		}
	}
	bc := chart.BarChart{
		Title:    fig.Title,
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: max(10, (chartWidth-100)/max(1, len(bars)*2)),
		Bars:     bars,
	}
	var buf bytes.Buffer
	provider := chart.PNG
	if format == SVG {
		provider = chart.SVG
	}
	if err := bc.Render(provider, &buf); err != nil {
		return nil, fmt.Errorf("render histogram: %w", err)
	}
	if format == JPEG {
		return pngToJPEG(buf.Bytes())
	}
	return buf.Bytes(), nil
}

func renderGoChart(ch *chart.Chart, format string) ([]byte, error) {
	var buf bytes.Buffer
	provider := chart.PNG
	if format == SVG {
		provider = chart.SVG
	}
	if err := ch.Render(provider, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	if format == JPEG {
		return pngToJPEG(buf.Bytes())
	}
	return buf.Bytes(), nil
}

// pngToJPEG re-encodes PNG bytes as JPEG (go-chart has no JPEG provider).
func pngToJPEG(b []byte) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: 92}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return out.Bytes(), nil
}

// categoryGrid adapts a heatmap trace to plotter.GridXYZ. Absent cells carry
// the grid minimum so the palette stays well defined.
type categoryGrid struct {
	trace charts.Trace
	floor float64
}

func newCategoryGrid(t charts.Trace) categoryGrid {
	floor := math.Inf(1)
	for _, row := range t.Grid {
		for _, v := range row {
			if !math.IsNaN(v) && v < floor {
				floor = v
			}
		}
	}
	if math.IsInf(floor, 1) {
		floor = 0
	}
	return categoryGrid{trace: t, floor: floor}
}

func (g categoryGrid) Dims() (c, r int) { return len(g.trace.XCategories), len(g.trace.YCategories) }
func (g categoryGrid) X(c int) float64  { return float64(c) }
func (g categoryGrid) Y(r int) float64  { return float64(r) }
func (g categoryGrid) Z(c, r int) float64 {
	v := g.trace.Grid[r][c]
	if math.IsNaN(v) {
		return g.floor
	}
	return v
}

// encodeHeatmap renders the category grid with gonum/plot.
func encodeHeatmap(fig *charts.Figure, format string) ([]byte, error) {
	t := fig.Traces[0]
	p := plot.New()
	p.Title.Text = fig.Title
	p.X.Label.Text = fig.XLabel
	p.Y.Label.Text = fig.YLabel
	p.Add(plotter.NewHeatMap(newCategoryGrid(t), palette.Heat(12, 1)))
	p.NominalX(t.XCategories...)
	p.NominalY(t.YCategories...)
	return renderGonumPlot(p, format)
}

// encodeBox renders the box trace with gonum/plot, with extra glyphs marking
// the mean and mean±stddev.
func encodeBox(fig *charts.Figure, format string) ([]byte, error) {
	t := fig.Traces[0]
	if len(t.Values) == 0 {
		return nil, fmt.Errorf("%w: box trace has no values", errs.ErrInvalidArgument)
	}
	p := plot.New()
	p.Title.Text = fig.Title
	p.Y.Label.Text = fig.YLabel

	box, err := plotter.NewBoxPlot(vg.Points(40), 0, plotter.Values(t.Values))
	if err != nil {
		return nil, fmt.Errorf("box plot: %w", err)
	}
	col := rgbaColor(t.Color)
	box.FillColor = col
	p.Add(box)

	marks, err := plotter.NewScatter(plotter.XYs{
		{X: 0, Y: t.Box.Mean - t.Box.StdDev},
		{X: 0, Y: t.Box.Mean},
		{X: 0, Y: t.Box.Mean + t.Box.StdDev},
	})
	if err != nil {
		return nil, fmt.Errorf("box mean markers: %w", err)
	}
	marks.GlyphStyle.Shape = draw.CrossGlyph{}
	marks.GlyphStyle.Radius = vg.Points(4)
	p.Add(marks)
	p.NominalX(fig.YLabel)
	return renderGonumPlot(p, format)
}

func renderGonumPlot(p *plot.Plot, format string) ([]byte, error) {
	ext := format
	if format == JPEG {
		ext = "jpg"
	}
	wt, err := p.WriterTo(8*vg.Inch, 5*vg.Inch, ext)
	if err != nil {
		return nil, fmt.Errorf("render plot: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("render plot: %w", err)
	}
	return buf.Bytes(), nil
}

// namedColors maps the color names accepted in plot parameters.
var namedColors = map[string][3]uint8{
	"blue":   {0x00, 0x00, 0xff},
	"red":    {0xff, 0x00, 0x00},
	"green":  {0x00, 0x80, 0x00},
	"orange": {0xff, 0xa5, 0x00},
	"purple": {0x80, 0x00, 0x80},
	"black":  {0x00, 0x00, 0x00},
	"gray":   {0x80, 0x80, 0x80},
	"yellow": {0xff, 0xff, 0x00},
}

// parseColor resolves a named color or #rrggbb hex string, defaulting to blue.
func parseColor(s string) [3]uint8 {
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c
	}
	if strings.HasPrefix(s, "#") && len(s) == 7 {
		if v, err := strconv.ParseUint(s[1:], 16, 32); err == nil {
			return [3]uint8{uint8(v >> 16), uint8(v >> 8), uint8(v)}
		}
	}
	return namedColors["blue"]
}

func chartColor(s string) drawing.Color {
	c := parseColor(s)
	return drawing.Color{R: c[0], G: c[1], B: c[2], A: 255}
}

func rgbaColor(s string) color.RGBA {
	c := parseColor(s)
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: 255}
}
