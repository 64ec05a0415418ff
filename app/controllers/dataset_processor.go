package controllers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ManuelReschke/CandidateLens/app/models"
	"github.com/ManuelReschke/CandidateLens/app/repository"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/archive"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/cache"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/candidates"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/constants"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/env"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/jobqueue"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/report"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/reportstore"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/statistics"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/upload"
)

const (
	defaultMaxFiles     = 10
	maxParallelFiles    = 4
	processErrorMessage = "Erro ao processar o arquivo: %s"
	lockWaitTimeout     = 3 * time.Second
)

// Hooks for tests
var (
	datasetRepository = func() repository.DatasetRepository {
		if !repository.IsInitialized() {
			return nil
		}
		return repository.GetGlobalFactory().GetDatasetRepository()
	}
	acquireUploadLock = func(fileHash string) (func(), bool) {
		cli := cache.GetClient()
		if cli == nil {
			return func() {}, true
		}
		ctx := context.Background()
		lockKey := fmt.Sprintf("lock:upload:%s", fileHash)
		ok, err := cli.SetNX(ctx, lockKey, "1", 60*time.Second).Result()
		if err != nil {
			fiberlog.Warnf("[Upload] Upload lock unavailable: %v", err)
			return func() {}, true
		}
		if !ok {
			return func() {}, false
		}
		return func() { _ = cli.Del(ctx, lockKey).Err() }, true
	}
	enqueueArchive    = jobqueue.ArchiveDataset
	refreshStatistics = func() {
		if err := statistics.UpdateStatisticsCache(); err != nil {
			fiberlog.Warnf("[Upload] Refreshing statistics failed: %v", err)
		}
	}
	restoreFromArchive = func(ctx context.Context, dataset *models.Dataset) error {
		cfg, err := archive.LoadConfig()
		if err != nil {
			return err
		}
		if !cfg.IsEnabled() {
			return archive.ErrDisabled
		}
		client, err := archive.NewClient(ctx, cfg)
		if err != nil {
			return err
		}
		return client.Download(ctx, dataset.ArchiveKey, dataset.FilePath)
	}
)

type processorConfig struct {
	uploadDir     string
	maxFiles      int
	loadOptions   candidates.LoadOptions
	reportOptions report.Options
}

func loadProcessorConfig() processorConfig {
	loadOpts := candidates.DefaultLoadOptions()
	loadOpts.Encoding = env.GetEnv("CSV_ENCODING", loadOpts.Encoding)

	reportOpts := report.DefaultOptions()
	reportOpts.MaleCode = env.GetEnv("CANDIDATE_MALE_CODE", reportOpts.MaleCode)
	reportOpts.FemaleCode = env.GetEnv("CANDIDATE_FEMALE_CODE", reportOpts.FemaleCode)

	maxFiles := env.GetEnvInt("UPLOAD_MAX_FILES", defaultMaxFiles)
	if maxFiles <= 0 {
		maxFiles = defaultMaxFiles
	}

	return processorConfig{
		uploadDir:     env.GetEnv("UPLOAD_DIR", constants.UploadsPath),
		maxFiles:      maxFiles,
		loadOptions:   loadOpts,
		reportOptions: reportOpts,
	}
}

// fileResult is the outcome of one uploaded file
type fileResult struct {
	FileName  string
	Dataset   *models.Dataset
	Report    *report.Report
	Duplicate bool
	// Unsaved reports built while the database was unreachable have no dataset
	Unsaved bool
	Err     error
}

// shareLink is empty for unsaved reports
func (r fileResult) shareLink() string {
	if r.Dataset == nil {
		return ""
	}
	return r.Dataset.ShareLink
}

func (r fileResult) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return fmt.Sprintf(processErrorMessage, r.Err)
}

type datasetProcessor struct {
	cfg  processorConfig
	repo repository.DatasetRepository
	ipv4 string
	ipv6 string
}

func newDatasetProcessor() *datasetProcessor {
	return &datasetProcessor{
		cfg:  loadProcessorConfig(),
		repo: datasetRepository(),
	}
}

// processAll handles every file on its own goroutine. Results keep the
// order of files and a failing file never stops the others.
func (p *datasetProcessor) processAll(files []*multipart.FileHeader) []fileResult {
	results := make([]fileResult, len(files))

	var g errgroup.Group
	g.SetLimit(maxParallelFiles)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			results[i] = p.processFile(file)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (p *datasetProcessor) processFile(file *multipart.FileHeader) (result fileResult) {
	result.FileName = file.Filename
	defer func() {
		if r := recover(); r != nil {
			fiberlog.Errorf("[Upload] Panic while processing %s: %v", file.Filename, r)
			result = fileResult{FileName: file.Filename, Err: fmt.Errorf("%v", r)}
		}
	}()

	fileHash, err := p.inspect(file)
	if err != nil {
		result.Err = err
		return result
	}

	if p.repo == nil {
		fiberlog.Warnf("[Upload] Database not available, %s is analysed without saving", file.Filename)
		rep, err := p.reportFromUpload(file)
		if err != nil {
			result.Err = err
			return result
		}
		result.Report = rep
		result.Unsaved = true
		return result
	}

	unlock, acquired := acquireUploadLock(fileHash)
	defer unlock()
	if !acquired {
		// an identical upload is in flight, give it a moment to finish
		deadline := time.Now().Add(lockWaitTimeout)
		for time.Now().Before(deadline) {
			if existing := p.findExisting(fileHash); existing != nil {
				return p.duplicateResult(file.Filename, existing)
			}
			time.Sleep(200 * time.Millisecond)
		}
	}

	if existing := p.findExisting(fileHash); existing != nil {
		fiberlog.Infof("[Upload] Duplicate file %s detected, reusing dataset %s", file.Filename, existing.UUID)
		return p.duplicateResult(file.Filename, existing)
	}

	dataset, rep, err := p.store(file, fileHash)
	if err != nil {
		result.Err = err
		return result
	}
	if dataset == nil {
		// lost the insert race against an identical upload
		if existing := p.findExisting(fileHash); existing != nil {
			return p.duplicateResult(file.Filename, existing)
		}
		result.Err = errors.New("dataset could not be stored")
		return result
	}

	p.afterPersist(dataset, rep)

	result.Dataset = dataset
	result.Report = rep
	return result
}

// inspect sniffs the head of the file and returns its sha256
func (p *datasetProcessor) inspect(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	head := make([]byte, upload.SniffLength)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if _, err := upload.ValidateCSVBySniff(file.Filename, head[:n]); err != nil {
		return "", err
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}
	return calculateFileHash(src)
}

func (p *datasetProcessor) findExisting(fileHash string) *models.Dataset {
	if datasetUUID, err := reportstore.LookupHash(fileHash); err == nil && datasetUUID != "" {
		if existing, err := p.repo.GetByUUID(datasetUUID); err == nil && existing != nil {
			return existing
		}
	}
	if existing, err := p.repo.GetByFileHash(fileHash); err == nil && existing != nil {
		return existing
	}
	return nil
}

func (p *datasetProcessor) duplicateResult(fileName string, existing *models.Dataset) fileResult {
	rep, err := p.loadReport(existing)
	if err != nil {
		return fileResult{FileName: fileName, Err: err}
	}
	return fileResult{FileName: fileName, Dataset: existing, Report: rep, Duplicate: true}
}

// store saves the file, builds its report and creates the dataset row.
// A nil dataset with nil error means another request stored the same file.
func (p *datasetProcessor) store(file *multipart.FileHeader, fileHash string) (*models.Dataset, *report.Report, error) {
	now := time.Now()
	datasetUUID := uuid.New().String()
	dir := filepath.Join(p.cfg.uploadDir, constants.DatasetsPath, now.Format("2006/01/02"))
	savePath := filepath.Join(dir, datasetUUID+".csv")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create upload directory: %w", err)
	}
	if err := saveUpload(file, savePath); err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := os.Remove(savePath); err != nil && !os.IsNotExist(err) {
			fiberlog.Warnf("[Upload] Failed to remove %s: %v", savePath, err)
		}
	}

	rep, err := p.buildReport(savePath, file.Filename)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	rep.DatasetUUID = datasetUUID

	dataset := &models.Dataset{
		UUID:        datasetUUID,
		FileName:    file.Filename,
		FileHash:    fileHash,
		FileSize:    file.Size,
		FilePath:    savePath,
		State:       models.ClipState(rep.State),
		RowCount:    rep.RowCount,
		ColumnCount: rep.ColumnCount,
		IPv4:        p.ipv4,
		IPv6:        p.ipv6,
	}
	if err := p.repo.Create(dataset); err != nil {
		cleanup()
		if strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			return nil, nil, nil
		}
		fiberlog.Errorf("[Upload] Error saving dataset %s: %v", file.Filename, err)
		return nil, nil, fmt.Errorf("save dataset: %w", err)
	}
	rep.CreatedAt = dataset.CreatedAt

	return dataset, rep, nil
}

func (p *datasetProcessor) afterPersist(dataset *models.Dataset, rep *report.Report) {
	if err := reportstore.Save(rep); err != nil {
		fiberlog.Warnf("[Upload] Caching report %s failed: %v", dataset.UUID, err)
	}
	if err := reportstore.RememberHash(dataset.FileHash, dataset.UUID); err != nil {
		fiberlog.Warnf("[Upload] Caching hash of %s failed: %v", dataset.UUID, err)
	}

	if err := enqueueArchive(dataset); err != nil {
		fiberlog.Errorf("[Upload] Error enqueueing archive job for %s: %v", dataset.UUID, err)
	}
}

func (p *datasetProcessor) buildReport(path, name string) (*report.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	return p.reportFrom(f, name)
}

// reportFromUpload analyses the multipart file in place
func (p *datasetProcessor) reportFromUpload(file *multipart.FileHeader) (*report.Report, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	return p.reportFrom(src, file.Filename)
}

func (p *datasetProcessor) reportFrom(r io.Reader, name string) (*report.Report, error) {
	table, err := candidates.Load(r, name, p.cfg.loadOptions)
	if err != nil {
		return nil, err
	}
	return report.Build(table, p.cfg.reportOptions), nil
}

// loadReport returns the cached report of a dataset and rebuilds it from the
// stored CSV on a cache miss, restoring the file from the archive if needed.
func (p *datasetProcessor) loadReport(dataset *models.Dataset) (*report.Report, error) {
	rep, err := reportstore.Load(dataset.UUID)
	if err == nil {
		return rep, nil
	}
	if !errors.Is(err, reportstore.ErrNotFound) {
		fiberlog.Warnf("[Dataset] Reading cached report %s failed: %v", dataset.UUID, err)
	}

	if err := p.ensureLocalCopy(dataset); err != nil {
		return nil, err
	}

	rep, err = p.buildReport(dataset.FilePath, dataset.FileName)
	if err != nil {
		return nil, err
	}
	rep.DatasetUUID = dataset.UUID
	rep.CreatedAt = dataset.CreatedAt

	if err := reportstore.Save(rep); err != nil {
		fiberlog.Warnf("[Dataset] Caching rebuilt report %s failed: %v", dataset.UUID, err)
	}
	return rep, nil
}

func (p *datasetProcessor) ensureLocalCopy(dataset *models.Dataset) error {
	if _, err := os.Stat(dataset.FilePath); err == nil {
		return nil
	}
	if !dataset.IsArchived() {
		return fmt.Errorf("dataset file %s is missing", dataset.FileName)
	}

	fiberlog.Infof("[Dataset] Restoring %s from archive key %s", dataset.UUID, dataset.ArchiveKey)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := restoreFromArchive(ctx, dataset); err != nil {
		return fmt.Errorf("restore dataset from archive: %w", err)
	}
	return nil
}

// previewRows returns the first n rows, reading the stored CSV when the
// cached preview is shorter than requested.
func (p *datasetProcessor) previewRows(dataset *models.Dataset, rep *report.Report, n int) ([][]string, error) {
	if n <= len(rep.Preview) || len(rep.Preview) >= rep.RowCount {
		if n > len(rep.Preview) {
			n = len(rep.Preview)
		}
		return rep.Preview[:n], nil
	}

	if err := p.ensureLocalCopy(dataset); err != nil {
		return nil, err
	}
	table, err := candidates.LoadFile(dataset.FilePath, p.cfg.loadOptions)
	if err != nil {
		return nil, err
	}
	return table.Head(n), nil
}

func saveUpload(file *multipart.FileHeader, dst string) error {
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create dataset file: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("write dataset file: %w", err)
	}
	return out.Close()
}

func calculateFileHash(file io.Reader) (string, error) {
	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
