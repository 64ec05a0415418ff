package reportstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ManuelReschke/CandidateLens/internal/pkg/cache"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/report"
)

// Cache key formats for built reports
const (
	ReportKeyFormat = "dataset:report:%s" // Format: dataset:report:<uuid>
	HashKeyFormat   = "dataset:hash:%s"   // Format: dataset:hash:<sha256>
	TTL             = 24 * time.Hour
)

var ErrNotFound = errors.New("report not cached")

// Cache access is swappable so tests can run without Redis.
// GetCacheImplementation must return ErrNotFound for absent keys.
var (
	SetCacheImplementation = func(key string, value []byte, ttl time.Duration) error {
		return cache.Set(key, value, ttl)
	}
	GetCacheImplementation = func(key string) ([]byte, error) {
		val, err := cache.GetBytes(key)
		if cache.IsMiss(err) {
			return nil, ErrNotFound
		}
		return val, err
	}
	DeleteCacheImplementation = func(key string) error {
		return cache.Delete(key)
	}
)

// Save stores the report under its dataset UUID
func Save(r *report.Report) error {
	if r == nil || r.DatasetUUID == "" {
		return errors.New("report without dataset uuid")
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report %s: %w", r.DatasetUUID, err)
	}
	return SetCacheImplementation(fmt.Sprintf(ReportKeyFormat, r.DatasetUUID), data, TTL)
}

// Load returns the cached report or ErrNotFound
func Load(datasetUUID string) (*report.Report, error) {
	if datasetUUID == "" {
		return nil, ErrNotFound
	}
	data, err := GetCacheImplementation(fmt.Sprintf(ReportKeyFormat, datasetUUID))
	if err != nil {
		return nil, err
	}

	var r report.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", datasetUUID, err)
	}
	return &r, nil
}

// Delete drops the cached report
func Delete(datasetUUID string) error {
	return DeleteCacheImplementation(fmt.Sprintf(ReportKeyFormat, datasetUUID))
}

// RememberHash maps a file content hash to the dataset built from it
func RememberHash(fileHash, datasetUUID string) error {
	return SetCacheImplementation(fmt.Sprintf(HashKeyFormat, fileHash), []byte(datasetUUID), TTL)
}

// LookupHash returns the dataset UUID stored for a content hash or ErrNotFound
func LookupHash(fileHash string) (string, error) {
	data, err := GetCacheImplementation(fmt.Sprintf(HashKeyFormat, fileHash))
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", ErrNotFound
	}
	return string(data), nil
}
