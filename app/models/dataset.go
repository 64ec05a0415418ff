package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ManuelReschke/CandidateLens/internal/pkg/shortener"
)

const (
	shareLinkLength = 8

	// StateMaxLength is the width of the state column in runes
	StateMaxLength = 64
)

// Dataset is the stored record of one uploaded candidate CSV file
type Dataset struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UUID           string         `gorm:"type:char(36) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex;not null" json:"uuid" validate:"required,uuid4"`
	ShareLink      string         `gorm:"type:varchar(32) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex" json:"share_link"`
	FileName       string         `gorm:"type:varchar(255);not null" json:"file_name" validate:"required,max=255"`
	FileHash       string         `gorm:"type:char(64);uniqueIndex;not null" json:"file_hash" validate:"required,len=64,hexadecimal"`
	FileSize       int64          `gorm:"type:bigint" json:"file_size" validate:"gte=0"`
	FilePath       string         `gorm:"type:varchar(255);not null" json:"-" validate:"required,max=255"`
	State          string         `gorm:"type:varchar(64)" json:"state" validate:"max=64"`
	RowCount       int            `gorm:"type:int" json:"row_count" validate:"gte=0"`
	ColumnCount    int            `gorm:"type:int" json:"column_count" validate:"gte=0"`
	ViewCount      int            `gorm:"default:0" json:"view_count"`
	ChartDownloads int            `gorm:"default:0" json:"chart_downloads"`
	ArchiveKey     string         `gorm:"type:varchar(255);default:null" json:"archive_key,omitempty"`
	ArchivedAt     *time.Time     `gorm:"type:datetime" json:"archived_at,omitempty"`
	IPv4           string         `gorm:"column:ip_v4;type:varchar(15);default:null" json:"-" validate:"omitempty,ipv4"`
	IPv6           string         `gorm:"column:ip_v6;type:varchar(45);default:null" json:"-" validate:"omitempty,ipv6"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (d *Dataset) Validate() error {
	v := validator.New()
	return v.Struct(d)
}

// BeforeCreate fills UUID and share link and validates the record
func (d *Dataset) BeforeCreate(tx *gorm.DB) error {
	if d.UUID == "" {
		d.UUID = uuid.New().String()
	}

	if d.ShareLink == "" {
		slug, err := shortener.GenerateSecureSlug(shareLinkLength)
		if err != nil {
			return fmt.Errorf("generate share link: %w", err)
		}
		d.ShareLink = slug
	}

	return d.Validate()
}

// ClipState shortens a state label to the column width without splitting a rune
func ClipState(state string) string {
	runes := []rune(state)
	if len(runes) <= StateMaxLength {
		return state
	}
	return string(runes[:StateMaxLength])
}

// IsArchived reports whether the CSV was copied to object storage
func (d *Dataset) IsArchived() bool {
	return d.ArchivedAt != nil && d.ArchiveKey != ""
}

// MarkArchived records the object key of the archived CSV
func (d *Dataset) MarkArchived(key string, at time.Time) {
	d.ArchiveKey = key
	d.ArchivedAt = &at
}

func FindDatasetByUUID(db *gorm.DB, datasetUUID string) (*Dataset, error) {
	var dataset Dataset
	err := db.Where("uuid = ?", datasetUUID).First(&dataset).Error
	if err != nil {
		return nil, err
	}
	return &dataset, nil
}
