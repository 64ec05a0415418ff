package controllers

import (
	"fmt"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/CandidateLens/app/models"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/charts"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/constants"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/report"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/shortener"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/statistics"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/viewmodel"
)

var (
	recordDatasetView   = counter.AddDatasetView
	recordChartDownload = counter.AddChartDownload
	dashboardStatistics = statistics.GetStatisticsData
)

// HandleDashboard renders the upload form with the aggregate statistics
func HandleDashboard(c *fiber.Ctx) error {
	page := viewmodel.Dashboard{
		Layout:   newLayout(c, ""),
		Stats:    dashboardStatistics(),
		MaxFiles: loadProcessorConfig().maxFiles,
	}
	return c.Render("index", page, "layouts/main")
}

// HandleDatasetPage re-displays a processed dataset
func HandleDatasetPage(c *fiber.Ctx) error {
	processor := newDatasetProcessor()
	dataset, ok := findDataset(c, processor)
	if !ok {
		return renderNotFound(c)
	}

	rep, err := processor.loadReport(dataset)
	if err != nil {
		fiberlog.Errorf("[Dataset] Loading report %s failed: %v", dataset.UUID, err)
		page := viewmodel.Dashboard{
			Layout:   newLayout(c, dataset.FileName),
			Datasets: []viewmodel.Dataset{viewmodel.FailedDataset(dataset.FileName, fmt.Sprintf(processErrorMessage, err))},
			MaxFiles: processor.cfg.maxFiles,
		}
		page.IsError = true
		return c.Status(fiber.StatusInternalServerError).Render("index", page, "layouts/main")
	}

	if err := recordDatasetView(dataset.ID); err != nil {
		fiberlog.Warnf("[Dataset] Counting view of %s failed: %v", dataset.UUID, err)
	}

	view := viewmodel.NewDataset(rep, dataset.ShareLink, false)
	view.FileName = dataset.FileName

	page := viewmodel.Dashboard{
		Layout:   newLayout(c, rep.Heading),
		Stats:    dashboardStatistics(),
		Datasets: []viewmodel.Dataset{view},
		MaxFiles: processor.cfg.maxFiles,
	}
	page.OGViewModel = &viewmodel.OpenGraph{
		Title:       rep.Heading,
		Description: fmt.Sprintf("%s: %d candidatos", dataset.FileName, rep.RowCount),
		URL:         c.BaseURL() + constants.DatasetURL(dataset.UUID),
	}
	return c.Render("index", page, "layouts/main")
}

// HandleShareLink resolves a short link to its dataset page
func HandleShareLink(c *fiber.Ctx) error {
	slug := c.Params("sharelink")
	if !shortener.ValidSlug(slug) {
		return renderNotFound(c)
	}

	repo := datasetRepository()
	if repo == nil {
		return renderNotFound(c)
	}
	dataset, err := repo.GetByShareLink(slug)
	if err != nil || dataset == nil {
		return renderNotFound(c)
	}
	return c.Redirect(constants.DatasetURL(dataset.UUID))
}

// HandleChart serves one section of a dataset as SVG or PNG
func HandleChart(c *fiber.Ctx) error {
	kind, ok := report.ParseKind(c.Params("kind"))
	if !ok {
		return c.Status(fiber.StatusNotFound).SendString("Gráfico desconhecido")
	}

	processor := newDatasetProcessor()
	dataset, ok := findDataset(c, processor)
	if !ok {
		return c.Status(fiber.StatusNotFound).SendString("Conjunto de dados não encontrado")
	}

	rep, err := processor.loadReport(dataset)
	if err != nil {
		fiberlog.Errorf("[Chart] Loading report %s failed: %v", dataset.UUID, err)
		return c.Status(fiber.StatusInternalServerError).SendString(fmt.Sprintf(processErrorMessage, err))
	}

	section, ok := rep.Section(kind)
	if !ok || !section.HasChart() {
		msg := report.NoDataMessage
		if ok && section.Warning != "" {
			msg = section.Warning
		}
		return c.Status(fiber.StatusNotFound).SendString(msg)
	}

	format := charts.ParseFormat(c.Query("format"))
	if format == charts.FormatPNG {
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s-%s.png"`, dataset.UUID, kind))
	}
	if err := recordChartDownload(dataset.ID); err != nil {
		fiberlog.Warnf("[Chart] Counting download of %s failed: %v", dataset.UUID, err)
	}

	handler := adaptor.HTTPHandler(templ.Handler(
		charts.Component(section, format),
		templ.WithContentType(format.ContentType()),
	))
	return handler(c)
}

// HandleDocsAPI sends the bare docs path to the versioned swagger UI
func HandleDocsAPI(c *fiber.Ctx) error {
	return c.Redirect(constants.DocsRoute+"/v1", fiber.StatusMovedPermanently)
}

func findDataset(c *fiber.Ctx, processor *datasetProcessor) (*models.Dataset, bool) {
	if processor.repo == nil {
		return nil, false
	}
	dataset, err := processor.repo.GetByUUID(c.Params("uuid"))
	if err != nil || dataset == nil {
		return nil, false
	}
	return dataset, true
}

func renderNotFound(c *fiber.Ctx) error {
	page := viewmodel.Dashboard{
		Layout:   newLayout(c, "Não encontrado"),
		MaxFiles: loadProcessorConfig().maxFiles,
	}
	page.IsError = true
	page.Msg = fiber.Map{"type": "error", "message": "Conjunto de dados não encontrado"}
	return c.Status(fiber.StatusNotFound).Render("index", page, "layouts/main")
}
