package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDataset() *Dataset {
	return &Dataset{
		UUID:     "6f1c3a52-8a4e-4f7e-9c1b-3d2e5f6a7b8c",
		FileName: "consulta_cand_2024_SP.csv",
		FileHash: strings.Repeat("ab", 32),
		FileSize: 1024,
		FilePath: "datasets/2024/10/06",
		State:    "SP",
		RowCount: 10,
		IPv4:     "127.0.0.1",
	}
}

func TestDatasetValidate(t *testing.T) {
	assert.NoError(t, validDataset().Validate())

	d := validDataset()
	d.FileHash = "not-a-hash"
	assert.Error(t, d.Validate())

	d = validDataset()
	d.IPv4 = "::1"
	assert.Error(t, d.Validate())

	d = validDataset()
	d.RowCount = -1
	assert.Error(t, d.Validate())

	d = validDataset()
	d.State = "Sao Paulo"
	assert.NoError(t, d.Validate())

	d.State = strings.Repeat("x", StateMaxLength+1)
	assert.Error(t, d.Validate())
}

func TestClipState(t *testing.T) {
	assert.Equal(t, "SP", ClipState("SP"))

	long := strings.Repeat("ã", StateMaxLength+3)
	clipped := ClipState(long)
	assert.Equal(t, StateMaxLength, len([]rune(clipped)))
	assert.Equal(t, strings.Repeat("ã", StateMaxLength), clipped)
}

func TestDatasetBeforeCreate_FillsIdentifiers(t *testing.T) {
	d := validDataset()
	d.UUID = ""

	require.NoError(t, d.BeforeCreate(nil))
	assert.Len(t, d.UUID, 36)
	assert.Len(t, d.ShareLink, shareLinkLength)
}

func TestDatasetBeforeCreate_RejectsInvalid(t *testing.T) {
	d := validDataset()
	d.FileName = ""

	assert.Error(t, d.BeforeCreate(nil))
}

func TestDatasetMarkArchived(t *testing.T) {
	d := validDataset()
	assert.False(t, d.IsArchived())

	d.MarkArchived("datasets/2024/10/x.csv", time.Now())
	assert.True(t, d.IsArchived())
	assert.Equal(t, "datasets/2024/10/x.csv", d.ArchiveKey)
}
