package controllers

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/CandidateLens/app/models"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/constants"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/report"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/statistics"
)

var validate = validator.New()

// datasetQuery holds the query parameters of GET /api/v1/datasets/:uuid
type datasetQuery struct {
	Preview *int `query:"preview" validate:"omitempty,min=0,max=50"`
}

// listQuery holds the query parameters of GET /api/v1/datasets
type listQuery struct {
	Limit  int `query:"limit" validate:"min=1,max=50"`
	Offset int `query:"offset" validate:"min=0"`
}

// dailyQuery holds the query parameters of GET /api/v1/statistics/daily
type dailyQuery struct {
	Days int `query:"days" validate:"min=1,max=90"`
}

// apiDatasetSummary is one entry of the dataset listing
type apiDatasetSummary struct {
	*models.Dataset
	URL      string `json:"url"`
	ShareURL string `json:"share_url"`
}

// apiFileError is one file the API could not process
type apiFileError struct {
	FileName string `json:"file_name"`
	Message  string `json:"message"`
}

// apiDataset is a report plus the links of its dataset
type apiDataset struct {
	*report.Report
	ShareURL  string `json:"share_url,omitempty"`
	Duplicate bool   `json:"duplicate"`
	Unsaved   bool   `json:"unsaved,omitempty"`
}

// HandleAPIUploadDatasets processes the multipart files of an API request
func HandleAPIUploadDatasets(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid multipart form"})
	}
	defer form.RemoveAll()

	processor := newDatasetProcessor()
	processor.ipv4, processor.ipv6 = GetClientIP(c)

	files := uploadedFiles(form)
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "No file uploaded"})
	}
	if len(files) > processor.cfg.maxFiles {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "too_many_files", "message": "Too many files in one request"})
	}

	results := processor.processAll(files)

	datasets := make([]apiDataset, 0, len(results))
	fileErrors := make([]apiFileError, 0)
	stored := 0
	for _, r := range results {
		if r.Err != nil {
			fiberlog.Warnf("[API] %s failed: %v", r.FileName, r.Err)
			fileErrors = append(fileErrors, apiFileError{FileName: r.FileName, Message: r.ErrorMessage()})
			continue
		}
		if !r.Duplicate && !r.Unsaved {
			stored++
		}
		d := newAPIDataset(r.Report, r.shareLink(), r.Duplicate)
		d.Unsaved = r.Unsaved
		datasets = append(datasets, d)
	}
	if stored > 0 {
		go refreshStatistics()
	}

	status := fiber.StatusOK
	if len(datasets) == 0 {
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(fiber.Map{"datasets": datasets, "errors": fileErrors})
}

// HandleAPIGetDataset returns the report of a dataset as JSON
func HandleAPIGetDataset(c *fiber.Ctx) error {
	var query datasetQuery
	if err := c.QueryParser(&query); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid query parameters"})
	}
	if err := validate.Struct(query); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "preview must be between 0 and 50"})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	processor := newDatasetProcessor()
	dataset, ok := findDataset(c, processor)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Dataset not found"})
	}

	rep, err := processor.loadReport(dataset)
	if err != nil {
		fiberlog.Errorf("[API] Loading report %s failed: %v", dataset.UUID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load report"})
	}

	if query.Preview != nil {
		rows, err := processor.previewRows(dataset, rep, *query.Preview)
		if err != nil {
			fiberlog.Errorf("[API] Loading preview of %s failed: %v", dataset.UUID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load preview"})
		}
		copied := *rep
		copied.Preview = rows
		rep = &copied
	}

	return c.JSON(newAPIDataset(rep, dataset.ShareLink, false))
}

// HandleAPIStatistics returns the cached aggregate counters
func HandleAPIStatistics(c *fiber.Ctx) error {
	return c.JSON(dashboardStatistics())
}

// HandleAPIListDatasets returns the most recently processed datasets, newest first
func HandleAPIListDatasets(c *fiber.Ctx) error {
	query := listQuery{Limit: 10}
	if err := c.QueryParser(&query); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid query parameters"})
	}
	if err := validate.Struct(query); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "limit must be between 1 and 50 and offset not negative"})
	}

	repo := datasetRepository()
	if repo == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "unavailable", "message": "Database not available"})
	}
	datasets, err := repo.List(query.Offset, query.Limit)
	if err != nil {
		fiberlog.Errorf("[API] Listing datasets failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to list datasets"})
	}

	out := make([]apiDatasetSummary, len(datasets))
	for i := range datasets {
		d := &datasets[i]
		out[i] = apiDatasetSummary{Dataset: d, URL: constants.DatasetURL(d.UUID), ShareURL: constants.ShareURL(d.ShareLink)}
	}
	return c.JSON(fiber.Map{"datasets": out, "limit": query.Limit, "offset": query.Offset})
}

// HandleAPIDailyStatistics returns the uploads per day of the last days
func HandleAPIDailyStatistics(c *fiber.Ctx) error {
	query := dailyQuery{Days: 7}
	if err := c.QueryParser(&query); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid query parameters"})
	}
	if err := validate.Struct(query); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "days must be between 1 and 90"})
	}

	repo := datasetRepository()
	if repo == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "unavailable", "message": "Database not available"})
	}
	days, err := statistics.DailyUploads(repo, time.Now(), query.Days)
	if err != nil {
		fiberlog.Errorf("[API] Daily statistics failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load statistics"})
	}
	return c.JSON(fiber.Map{"days": days})
}

func newAPIDataset(r *report.Report, shareLink string, duplicate bool) apiDataset {
	d := apiDataset{Report: r, Duplicate: duplicate}
	if shareLink != "" {
		d.ShareURL = constants.ShareURL(shareLink)
	}
	return d
}
