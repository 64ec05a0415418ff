package controllers

import (
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/sujit-baniya/flash"

	"github.com/ManuelReschke/CandidateLens/internal/pkg/viewmodel"
)

type uploadWorkflow struct {
	c         *fiber.Ctx
	processor *datasetProcessor
}

var errUploadResponseHandled = errors.New("upload response already handled")

func HandleUpload(c *fiber.Ctx) error {
	return newUploadWorkflow(c).run()
}

func newUploadWorkflow(c *fiber.Ctx) *uploadWorkflow {
	processor := newDatasetProcessor()
	processor.ipv4, processor.ipv6 = GetClientIP(c)
	return &uploadWorkflow{
		c:         c,
		processor: processor,
	}
}

func (w *uploadWorkflow) run() error {
	form, files, err := w.parseUploadForm()
	if err != nil {
		if errors.Is(err, errUploadResponseHandled) {
			return nil
		}
		return err
	}
	defer form.RemoveAll()

	results := w.processor.processAll(files)
	w.afterProcess(results)

	return w.respondResults(results)
}

func (w *uploadWorkflow) parseUploadForm() (*multipart.Form, []*multipart.FileHeader, error) {
	form, err := w.c.MultipartForm()
	if err != nil {
		fiberlog.Errorf("[Upload] Error parsing multipart form: %v", err)
		return nil, nil, markHandledResponse(respondUploadError(w.c, fiber.StatusBadRequest, fmt.Sprintf("Erro no envio: %s", err), "/"))
	}

	files := uploadedFiles(form)
	if len(files) == 0 {
		_ = form.RemoveAll()
		return nil, nil, markHandledResponse(respondUploadError(w.c, fiber.StatusBadRequest, "Nenhum arquivo enviado", "/"))
	}

	maxFiles := defaultMaxFiles
	if w.processor != nil {
		maxFiles = w.processor.cfg.maxFiles
	}
	if len(files) > maxFiles {
		_ = form.RemoveAll()
		msg := fmt.Sprintf("Envie no máximo %d arquivos por vez", maxFiles)
		return nil, nil, markHandledResponse(respondUploadError(w.c, fiber.StatusRequestEntityTooLarge, msg, "/"))
	}

	return form, files, nil
}

func (w *uploadWorkflow) afterProcess(results []fileResult) {
	stored := 0
	for _, r := range results {
		if r.Err != nil {
			fiberlog.Warnf("[Upload] %s failed: %v", r.FileName, r.Err)
			continue
		}
		if !r.Duplicate && !r.Unsaved {
			stored++
		}
	}
	fiberlog.Infof("[Upload] Processed %d files, %d new datasets", len(results), stored)

	if stored > 0 {
		go refreshStatistics()
	}
}

func (w *uploadWorkflow) respondResults(results []fileResult) error {
	datasets := make([]viewmodel.Dataset, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			datasets = append(datasets, viewmodel.FailedDataset(r.FileName, r.ErrorMessage()))
			continue
		}
		d := viewmodel.NewDataset(r.Report, r.shareLink(), r.Duplicate)
		d.FileName = r.FileName
		d.Unsaved = r.Unsaved
		datasets = append(datasets, d)
	}

	if isHTMXRequest(w.c) {
		return w.c.Render("partials/datasets", fiber.Map{"Datasets": datasets})
	}

	page := viewmodel.Dashboard{
		Layout:   newLayout(w.c, ""),
		Stats:    dashboardStatistics(),
		Datasets: datasets,
		MaxFiles: w.processor.cfg.maxFiles,
	}
	return w.c.Render("index", page, "layouts/main")
}

// uploadedFiles accepts both the multi-file field and the single-file field
func uploadedFiles(form *multipart.Form) []*multipart.FileHeader {
	files := append([]*multipart.FileHeader{}, form.File["files"]...)
	return append(files, form.File["file"]...)
}

func respondUploadError(c *fiber.Ctx, status int, message, redirectPath string) error {
	flash.WithError(c, fiber.Map{
		"type":    "error",
		"message": message,
	})
	if isHTMXRequest(c) {
		return c.Status(status).SendString(message)
	}
	return c.Redirect(redirectPath)
}

func markHandledResponse(err error) error {
	if err != nil {
		return err
	}
	return errUploadResponseHandled
}
