package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeArchiveDataset JobType = "archive_dataset"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// ArchiveDatasetJobPayload describes one stored CSV file to copy to S3
type ArchiveDatasetJobPayload struct {
	DatasetID   uint      `json:"dataset_id"`
	DatasetUUID string    `json:"dataset_uuid"`
	FilePath    string    `json:"file_path"` // Local path of the stored CSV
	FileSize    int64     `json:"file_size"`
	UploadedAt  time.Time `json:"uploaded_at"` // Picks the YYYY/MM of the object key
}

// ToMap converts the payload to a map for storage
func (p ArchiveDatasetJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"dataset_id":   p.DatasetID,
		"dataset_uuid": p.DatasetUUID,
		"file_path":    p.FilePath,
		"file_size":    p.FileSize,
		"uploaded_at":  p.UploadedAt.Format(time.RFC3339Nano),
	}
}

// ArchiveDatasetJobPayloadFromMap creates a payload from a map
func ArchiveDatasetJobPayloadFromMap(data map[string]interface{}) (*ArchiveDatasetJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload ArchiveDatasetJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}

// retryDelay is the back-off before a failed job is queued again
func (j *Job) retryDelay() time.Duration {
	return time.Minute * time.Duration(j.RetryCount)
}

// startedAt is when the current attempt began, falling back to the last update
func (j *Job) startedAt() time.Time {
	if j.ProcessedAt != nil && !j.ProcessedAt.IsZero() {
		return *j.ProcessedAt
	}
	if !j.UpdatedAt.IsZero() {
		return j.UpdatedAt
	}
	return j.CreatedAt
}
