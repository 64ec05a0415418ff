package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/CandidateLens/internal/pkg/candidates"
)

func fullTable() *candidates.Table {
	return candidates.NewTable("sp.csv",
		[]string{"SG_UF", "DS_GRAU_INSTRUCAO", "CD_GENERO", "DS_GENERO", "CD_COR_RACA", "DS_COR_RACA", "SG_PARTIDO"},
		[][]string{
			{"SP", "SUPERIOR COMPLETO", "1", "MASCULINO", "01", "BRANCA", "PL"},
			{"SP", "SUPERIOR COMPLETO", "2", "FEMININO", "02", "PRETA", "PT"},
			{"SP", "ENSINO MÉDIO COMPLETO", "2", "FEMININO", "03", "PARDA", "PT"},
			{"SP", "ENSINO MÉDIO COMPLETO", "1", "MASCULINO", "03", "PARDA", "MDB"},
			{"SP", "SUPERIOR COMPLETO", "1", "MASCULINO", "01", "BRANCA", "PT"},
			{"SP", "LÊ E ESCREVE", "4", "NÃO DIVULGÁVEL", "01", "BRANCA", "PL"},
		},
	)
}

func TestBuild_Summary(t *testing.T) {
	r := Build(fullTable(), DefaultOptions())

	assert.Equal(t, "sp.csv", r.FileName)
	assert.Equal(t, "SP", r.State)
	assert.Equal(t, "Candidatos do SP", r.Heading)
	assert.Equal(t, 6, r.RowCount)
	assert.Equal(t, 7, r.ColumnCount)
	assert.Len(t, r.Preview, candidates.DefaultPreviewRows)
	assert.Empty(t, r.Warnings)

	require.Len(t, r.Sections, len(Kinds))
	for i, kind := range Kinds {
		assert.Equal(t, kind, r.Sections[i].Kind)
		assert.True(t, r.Sections[i].HasChart(), "section %s should have a chart", kind)
	}
}

func TestBuild_EducationCountsMatchTally(t *testing.T) {
	r := Build(fullTable(), DefaultOptions())
	s, ok := r.Section(KindEducation)
	require.True(t, ok)

	assert.Equal(t, ChartBar, s.Chart)
	assert.Equal(t, []Point{
		{Label: "ENSINO MÉDIO COMPLETO", Value: 2},
		{Label: "LÊ E ESCREVE", Value: 1},
		{Label: "SUPERIOR COMPLETO", Value: 3},
	}, s.Series[0].Points)
	assert.Equal(t, 6, s.Total())
}

func TestBuild_GenderEducationGrouped(t *testing.T) {
	r := Build(fullTable(), DefaultOptions())
	s, ok := r.Section(KindGenderEducation)
	require.True(t, ok)

	assert.Equal(t, ChartGroupedBar, s.Chart)
	assert.Equal(t, []string{"ENSINO MÉDIO COMPLETO", "LÊ E ESCREVE", "SUPERIOR COMPLETO"}, s.Categories)
	require.Len(t, s.Series, 3)
	assert.Equal(t, "FEMININO", s.Series[0].Name)
	assert.Equal(t, []Point{
		{Label: "ENSINO MÉDIO COMPLETO", Value: 1},
		{Label: "LÊ E ESCREVE", Value: 0},
		{Label: "SUPERIOR COMPLETO", Value: 1},
	}, s.Series[0].Points)
	assert.Equal(t, "MASCULINO", s.Series[1].Name)
	assert.Equal(t, "NÃO DIVULGÁVEL", s.Series[2].Name)
}

func TestBuild_PiesUseValueCounts(t *testing.T) {
	r := Build(fullTable(), DefaultOptions())

	race, ok := r.Section(KindRace)
	require.True(t, ok)
	assert.Equal(t, ChartPie, race.Chart)
	assert.Equal(t, []Point{
		{Label: "BRANCA", Value: 3},
		{Label: "PARDA", Value: 2},
		{Label: "PRETA", Value: 1},
	}, race.Series[0].Points)

	gender, ok := r.Section(KindGender)
	require.True(t, ok)
	assert.Equal(t, []Point{
		{Label: "MASCULINO", Value: 3},
		{Label: "FEMININO", Value: 2},
		{Label: "NÃO DIVULGÁVEL", Value: 1},
	}, gender.Series[0].Points)
}

func TestBuild_WomenByParty(t *testing.T) {
	r := Build(fullTable(), DefaultOptions())
	s, ok := r.Section(KindWomenByParty)
	require.True(t, ok)

	assert.Equal(t, []Point{{Label: "PT", Value: 2}}, s.Series[0].Points)
}

func TestBuild_WomenByPartyCustomCode(t *testing.T) {
	opts := DefaultOptions()
	opts.MaleCode = "2"
	opts.FemaleCode = "4"

	r := Build(fullTable(), opts)
	s, ok := r.Section(KindWomenByParty)
	require.True(t, ok)
	assert.Equal(t, []Point{{Label: "PL", Value: 1}}, s.Series[0].Points)
}

func TestBuild_GenderByParty(t *testing.T) {
	r := Build(fullTable(), DefaultOptions())
	s, ok := r.Section(KindGenderByParty)
	require.True(t, ok)

	// PT has 3 candidates, PL 2, MDB 1
	assert.Equal(t, []string{"PT", "PL", "MDB"}, s.Categories)
	require.Len(t, s.Series, 3)

	assert.Equal(t, "Homens", s.Series[0].Name)
	assert.Equal(t, []Point{{Label: "PT", Value: 1}, {Label: "PL", Value: 1}, {Label: "MDB", Value: 1}}, s.Series[0].Points)
	assert.Equal(t, "Mulheres", s.Series[1].Name)
	assert.Equal(t, []Point{{Label: "PT", Value: 2}, {Label: "PL", Value: 0}, {Label: "MDB", Value: 0}}, s.Series[1].Points)
	assert.Equal(t, "Código 4", s.Series[2].Name)
}

func TestBuild_MissingColumnsBecomeWarnings(t *testing.T) {
	table := candidates.NewTable("partial.csv",
		[]string{"DS_GRAU_INSTRUCAO", "DS_GENERO"},
		[][]string{{"SUPERIOR COMPLETO", "FEMININO"}},
	)

	r := Build(table, DefaultOptions())

	assert.Equal(t, "Candidatos do arquivo partial.csv", r.Heading)
	assert.Equal(t, []string{"O arquivo não contém a coluna necessária ('SG_UF')."}, r.Warnings)

	education, _ := r.Section(KindEducation)
	assert.True(t, education.HasChart())

	genderEducation, _ := r.Section(KindGenderEducation)
	assert.True(t, genderEducation.HasChart())

	race, _ := r.Section(KindRace)
	assert.False(t, race.HasChart())
	assert.Equal(t, "O arquivo não contém as colunas necessárias ('CD_COR_RACA', 'DS_COR_RACA').", race.Warning)

	gender, _ := r.Section(KindGender)
	assert.Equal(t, "O arquivo não contém a coluna necessária ('CD_GENERO').", gender.Warning)

	women, _ := r.Section(KindWomenByParty)
	assert.Equal(t, "O arquivo não contém as colunas necessárias ('SG_PARTIDO' ou 'CD_GENERO').", women.Warning)
	assert.Empty(t, women.Series)
}

func TestBuild_PartySectionsNameBothColumns(t *testing.T) {
	table := candidates.NewTable("party.csv",
		[]string{"SG_UF", "SG_PARTIDO"},
		[][]string{{"BA", "PT"}},
	)

	r := Build(table, DefaultOptions())

	for _, kind := range []SectionKind{KindWomenByParty, KindGenderByParty} {
		s, ok := r.Section(kind)
		require.True(t, ok)
		assert.Equal(t, "O arquivo não contém as colunas necessárias ('SG_PARTIDO' ou 'CD_GENERO').", s.Warning, "kind %s", kind)
		assert.False(t, s.HasChart())
	}
}

func TestBuild_NoWomenGivesNoDataWarning(t *testing.T) {
	table := candidates.NewTable("men.csv",
		[]string{"SG_UF", "SG_PARTIDO", "CD_GENERO"},
		[][]string{{"RS", "PL", "1"}, {"RS", "PT", "1"}},
	)

	r := Build(table, DefaultOptions())
	s, ok := r.Section(KindWomenByParty)
	require.True(t, ok)
	assert.Equal(t, NoDataMessage, s.Warning)
	assert.False(t, s.HasChart())
}

func TestMissingColumnsMessage(t *testing.T) {
	assert.Equal(t, "O arquivo não contém a coluna necessária ('CD_COR_RACA').", MissingColumnsMessage([]string{"CD_COR_RACA"}))
	assert.Equal(t, "O arquivo não contém as colunas necessárias ('DS_GENERO', 'DS_GRAU_INSTRUCAO').",
		MissingColumnsMessage([]string{"DS_GENERO", "DS_GRAU_INSTRUCAO"}))
	assert.Equal(t, "O arquivo não contém as colunas necessárias ('SG_PARTIDO' ou 'CD_GENERO').",
		MissingEitherColumnMessage([]string{"SG_PARTIDO", "CD_GENERO"}))
}

func TestParseKind(t *testing.T) {
	kind, ok := ParseKind("women_by_party")
	assert.True(t, ok)
	assert.Equal(t, KindWomenByParty, kind)

	_, ok = ParseKind("unknown")
	assert.False(t, ok)
}
