package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/mbaxter/folioview/internal/models"
)

// RenderChart renders a PNG line chart from the reconstructed equity curve.
// Two series: benchmark mark-to-market value (blue solid) and cumulative
// portfolio investment (gray dashed). Returns raw PNG bytes.
func RenderChart(points []models.HistoryPoint) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(points))
	}

	xValues := make([]time.Time, 0, len(points))
	benchY := make([]float64, 0, len(points))
	investedY := make([]float64, 0, len(points))

	for _, p := range points {
		d, err := time.Parse("Jan 02, 2006", p.Date)
		if err != nil {
			continue
		}
		xValues = append(xValues, d)
		benchY = append(benchY, p.Benchmark)
		investedY = append(investedY, p.Portfolio)
	}

	if len(xValues) < 2 {
		return nil, fmt.Errorf("need at least 2 dated points, got %d", len(xValues))
	}

	benchSeries := chart.TimeSeries{
		Name: "Benchmark Value",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: benchY,
	}

	investedSeries := chart.TimeSeries{
		Name: "Invested Capital",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues,
		YValues: investedY,
	}

	graph := chart.Chart{
		Title:  "Portfolio vs Benchmark",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			benchSeries,
			investedSeries,
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
