package viewmodel

import (
	"fmt"
	"html/template"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/CandidateLens/internal/pkg/charts"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/constants"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/report"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/statistics"
)

// Dashboard is the data of the index and dataset pages
type Dashboard struct {
	Layout
	Stats    statistics.StatisticsData
	Datasets []Dataset
	MaxFiles int
}

// Dataset is one processed file as shown on the dashboard
type Dataset struct {
	FileName  string
	Error     string
	Duplicate bool
	Unsaved   bool
	ShareURL  string
	PageURL   string
	Report    *report.Report
	Sections  []Section
}

// Section is one chart slot with the chart already rendered
type Section struct {
	*report.Section
	SVG     template.HTML
	Legend  []charts.LegendEntry
	SVGURL  string
	PNGURL  string
	Warning string
}

// FailedDataset is the dashboard entry of a file that could not be processed
func FailedDataset(fileName, message string) Dataset {
	return Dataset{FileName: fileName, Error: message}
}

// NewDataset renders every section of r. A chart that fails to render is
// shown as a warning in its slot so the rest of the page still works.
func NewDataset(r *report.Report, shareLink string, duplicate bool) Dataset {
	d := Dataset{
		FileName:  r.FileName,
		Duplicate: duplicate,
		Report:    r,
	}
	if r.DatasetUUID != "" {
		d.PageURL = constants.DatasetURL(r.DatasetUUID)
	}
	if shareLink != "" {
		d.ShareURL = constants.ShareURL(shareLink)
	}

	for i := range r.Sections {
		s := &r.Sections[i]
		view := Section{Section: s, Warning: s.Warning}
		if s.HasChart() {
			svg, err := charts.SVG(s)
			if err != nil {
				log.Errorf("[Dashboard] Rendering %s chart of %s failed: %v", s.Kind, r.FileName, err)
				view.Warning = fmt.Sprintf("Erro ao gerar o gráfico: %s", err)
			} else {
				view.SVG = svg
				view.Legend = charts.Legend(s)
			}
			if r.DatasetUUID != "" {
				view.SVGURL = constants.ChartURL(r.DatasetUUID, string(s.Kind), "")
				view.PNGURL = constants.ChartURL(r.DatasetUUID, string(s.Kind), string(charts.FormatPNG))
			}
		}
		d.Sections = append(d.Sections, view)
	}
	return d
}
