package charts

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"html/template"
	"io"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/ManuelReschke/CandidateLens/internal/pkg/report"
)

// Format is the output encoding of a rendered chart
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

const (
	barWidth      = 36
	barSpacing    = 12
	groupBarWidth = 22
	groupSpacing  = 18
	edgePadding   = 140
)

var ErrNoChartData = errors.New("section has no chart data")

// palette is the categorical scheme used for slices and groups, in order
var palette = []string{
	"#4c78a8", "#f58518", "#e45756", "#72b7b2", "#54a24b",
	"#eeca3b", "#b279a2", "#ff9da6", "#9d755d", "#bab0ac",
}

// ParseFormat maps a query value to a Format, defaulting to SVG
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatPNG)) {
		return FormatPNG
	}
	return FormatSVG
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Color returns the CSS colour of the i-th palette entry
func Color(i int) string {
	return palette[i%len(palette)]
}

func fill(i int) chart.Style {
	c := drawing.ColorFromHex(strings.TrimPrefix(Color(i), "#"))
	return chart.Style{
		FillColor:   c,
		StrokeColor: c,
		StrokeWidth: 1,
	}
}

// LegendEntry pairs a series name with its colour
type LegendEntry struct {
	Name  string
	Color string
}

// Legend lists the series of a grouped chart with the colours used to draw them
func Legend(s *report.Section) []LegendEntry {
	if s.Chart != report.ChartGroupedBar {
		return nil
	}
	entries := make([]LegendEntry, len(s.Series))
	for i, series := range s.Series {
		entries[i] = LegendEntry{Name: series.Name, Color: Color(i)}
	}
	return entries
}

func provider(format Format) chart.RendererProvider {
	if format == FormatPNG {
		return chart.PNG
	}
	return escapedSVG
}

// escapingRenderer escapes text nodes on write. go-chart's SVG canvas emits
// label bodies verbatim; measuring and wrapping still see the raw text so an
// entity is never split across lines.
type escapingRenderer struct {
	chart.Renderer
}

func (r escapingRenderer) Text(body string, x, y int) {
	r.Renderer.Text(html.EscapeString(body), x, y)
}

func escapedSVG(width, height int) (chart.Renderer, error) {
	r, err := chart.SVG(width, height)
	if err != nil {
		return nil, err
	}
	return escapingRenderer{Renderer: r}, nil
}

// Render draws a section's chart into w
func Render(s *report.Section, format Format, w io.Writer) error {
	if s == nil || !s.HasChart() {
		return ErrNoChartData
	}

	rp := provider(format)
	switch s.Chart {
	case report.ChartBar:
		return barChart(s).Render(rp, w)
	case report.ChartPie:
		return pieChart(s).Render(rp, w)
	case report.ChartGroupedBar:
		return groupedBarChart(s).Render(rp, w)
	default:
		return fmt.Errorf("unknown chart type %q", s.Chart)
	}
}

// SVG renders a section for inline embedding into the dashboard
func SVG(s *report.Section) (template.HTML, error) {
	var buf bytes.Buffer
	if err := Render(s, FormatSVG, &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func intFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return fmt.Sprintf("%v", v)
}

func yAxis(name string, maxValue int) chart.YAxis {
	top := math.Max(1, math.Ceil(float64(maxValue)*1.1))
	return chart.YAxis{
		Name:           name,
		ValueFormatter: intFormatter,
		Range:          &chart.ContinuousRange{Min: 0, Max: top},
	}
}

func background() chart.Style {
	return chart.Style{Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10}}
}

func barChart(s *report.Section) chart.BarChart {
	points := s.Series[0].Points
	bars := make([]chart.Value, len(points))
	maxValue := 0
	for i, p := range points {
		bars[i] = chart.Value{Label: p.Label, Value: float64(p.Value), Style: fill(0)}
		if p.Value > maxValue {
			maxValue = p.Value
		}
	}

	return chart.BarChart{
		Title:      s.Title,
		Background: background(),
		Width:      chartWidth(s.Width, len(bars), barWidth+barSpacing),
		Height:     s.Height,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		XAxis:      chart.Style{FontSize: 8},
		YAxis:      yAxis(s.YTitle, maxValue),
		Bars:       bars,
	}
}

// groupedBarChart places the series side by side inside every category.
// Only the first bar of a group carries the category label; zero-height spacers separate groups.
func groupedBarChart(s *report.Section) chart.BarChart {
	var bars []chart.Value
	maxValue := 0
	for ci, category := range s.Categories {
		if ci > 0 {
			bars = append(bars, chart.Value{Label: "", Value: 0})
		}
		for si, series := range s.Series {
			label := ""
			if si == 0 {
				label = category
			}
			v := 0
			if ci < len(series.Points) {
				v = series.Points[ci].Value
			}
			if v > maxValue {
				maxValue = v
			}
			bars = append(bars, chart.Value{Label: label, Value: float64(v), Style: fill(si)})
		}
	}

	return chart.BarChart{
		Title:      s.Title,
		Background: background(),
		Width:      chartWidth(s.Width, len(bars), groupBarWidth+groupSpacing/3),
		Height:     s.Height,
		BarWidth:   groupBarWidth,
		BarSpacing: groupSpacing / 3,
		XAxis:      chart.Style{FontSize: 7},
		YAxis:      yAxis(s.YTitle, maxValue),
		Bars:       bars,
	}
}

func pieChart(s *report.Section) chart.PieChart {
	points := s.Series[0].Points
	values := make([]chart.Value, 0, len(points))
	for i, p := range points {
		if p.Value <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%d)", p.Label, p.Value),
			Value: float64(p.Value),
			Style: fill(i),
		})
	}

	return chart.PieChart{
		Title:      s.Title,
		Background: background(),
		Width:      s.Width,
		Height:     s.Height,
		Values:     values,
	}
}

func chartWidth(base, bars, perBar int) int {
	if w := bars*perBar + edgePadding; w > base {
		return w
	}
	return base
}
