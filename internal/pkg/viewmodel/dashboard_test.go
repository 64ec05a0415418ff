package viewmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/CandidateLens/internal/pkg/candidates"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/report"
)

func TestNewDataset(t *testing.T) {
	table := candidates.NewTable("rj.csv",
		[]string{"SG_UF", "DS_GRAU_INSTRUCAO", "SG_PARTIDO", "CD_GENERO"},
		[][]string{
			{"RJ", "SUPERIOR COMPLETO", "PSOL", "2"},
			{"RJ", "LÊ E ESCREVE", "PL", "1"},
		},
	)
	r := report.Build(table, report.DefaultOptions())
	r.DatasetUUID = "uuid-rj"

	d := NewDataset(r, "Ab12Cd34", false)

	assert.Equal(t, "/datasets/uuid-rj", d.PageURL)
	assert.Equal(t, "/d/Ab12Cd34", d.ShareURL)
	require.Len(t, d.Sections, len(report.Kinds))

	education := d.Sections[0]
	assert.Equal(t, report.KindEducation, education.Kind)
	assert.Contains(t, string(education.SVG), "<svg")
	assert.Equal(t, "/datasets/uuid-rj/charts/education?format=png", education.PNGURL)

	race := d.Sections[2]
	assert.Empty(t, race.SVG)
	assert.Contains(t, race.Warning, "CD_COR_RACA")

	byParty := d.Sections[5]
	assert.Len(t, byParty.Legend, 2)
}

func TestNewDataset_WithoutUUID(t *testing.T) {
	r := report.Build(candidates.NewTable("x.csv", []string{"A"}, [][]string{{"1"}}), report.DefaultOptions())

	d := NewDataset(r, "", true)

	assert.True(t, d.Duplicate)
	assert.Empty(t, d.PageURL)
	assert.Empty(t, d.ShareURL)
	for _, s := range d.Sections {
		assert.Empty(t, s.PNGURL)
		assert.NotEmpty(t, s.Warning)
	}
}

func TestPageTitle(t *testing.T) {
	assert.Equal(t, AppTitle, PageTitle(""))
	assert.Equal(t, "rj.csv | "+AppTitle, PageTitle("rj.csv"))
}
