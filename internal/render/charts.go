// Package render produces the static HTML chart page for one snapshot.
package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/tsubasa0119/repo-insights/internal/domain"
	"github.com/tsubasa0119/repo-insights/internal/metrics"
)

const (
	chartWidth  = "900px"
	chartHeight = "420px"
	pieRadius   = "60%"
)

// Page renders the language, activity, and health charts of a snapshot
// into a single static HTML document.
func Page(s *domain.Snapshot, summary *metrics.Summary, report *metrics.HealthReport, w io.Writer) error {
	page := components.NewPage()
	page.PageTitle = s.Repository.FullName + " · repository insights"
	page.AddCharts(
		healthGauge(s, report),
		languagePie(s, summary),
		activityBar(s, summary),
	)
	return page.Render(w)
}

func healthGauge(s *domain.Snapshot, report *metrics.HealthReport) *charts.Gauge {
	gauge := charts.NewGauge()
	gauge.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Health Score: %d (%s)", report.Score, report.Grade),
			Subtitle: s.Repository.FullName,
		}),
	)
	gauge.AddSeries("Health", []opts.GaugeData{
		{Name: report.Grade, Value: report.Score},
	})
	return gauge
}

func languagePie(s *domain.Snapshot, summary *metrics.Summary) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Language Distribution",
			Subtitle: "Share of bytes across the top languages",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
	)

	data := make([]opts.PieData, 0, len(summary.Languages))
	for _, share := range summary.Languages {
		data = append(data, opts.PieData{Name: share.Name, Value: share.Bytes})
	}
	pie.AddSeries("Languages", data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:      opts.Bool(true),
				Formatter: "{b}: {d}%",
			}),
			charts.WithPieChartOpts(opts.PieChart{Radius: pieRadius}),
		)
	return pie
}

func activityBar(s *domain.Snapshot, summary *metrics.Summary) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Commit Activity",
			Subtitle: "Commits per week over the recent window",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	labels := make([]string, 0, len(summary.Activity))
	data := make([]opts.BarData, 0, len(summary.Activity))
	for _, point := range summary.Activity {
		labels = append(labels, point.Date)
		data = append(data, opts.BarData{Value: point.Commits})
	}
	bar.SetXAxis(labels).AddSeries("Commits", data)
	return bar
}
