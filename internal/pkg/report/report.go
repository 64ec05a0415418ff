package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/ManuelReschke/CandidateLens/internal/pkg/candidates"
)

const (
	labelMen   = "Homens"
	labelWomen = "Mulheres"
)

// Options tunes how a report is built
type Options struct {
	PreviewRows int
	MaleCode    string
	FemaleCode  string
}

func DefaultOptions() Options {
	return Options{
		PreviewRows: candidates.DefaultPreviewRows,
		MaleCode:    candidates.DefaultMaleCode,
		FemaleCode:  candidates.DefaultFemaleCode,
	}
}

// Report is everything the dashboard shows for one uploaded file
type Report struct {
	DatasetUUID string     `json:"dataset_uuid,omitempty"`
	FileName    string     `json:"file_name"`
	State       string     `json:"state,omitempty"`
	Heading     string     `json:"heading"`
	Columns     []string   `json:"columns"`
	Preview     [][]string `json:"preview"`
	RowCount    int        `json:"row_count"`
	ColumnCount int        `json:"column_count"`
	Warnings    []string   `json:"warnings,omitempty"`
	Sections    []Section  `json:"sections"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Section looks up a section by kind
func (r *Report) Section(kind SectionKind) (*Section, bool) {
	for i := range r.Sections {
		if r.Sections[i].Kind == kind {
			return &r.Sections[i], true
		}
	}
	return nil, false
}

// Build runs the fixed sequence of aggregations over a loaded table
func Build(t *candidates.Table, opts Options) *Report {
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = candidates.DefaultPreviewRows
	}
	if opts.MaleCode == "" {
		opts.MaleCode = candidates.DefaultMaleCode
	}
	if opts.FemaleCode == "" {
		opts.FemaleCode = candidates.DefaultFemaleCode
	}

	rows, cols := t.Shape()
	r := &Report{
		FileName:    t.Name,
		Columns:     t.Columns,
		Preview:     t.Head(opts.PreviewRows),
		RowCount:    rows,
		ColumnCount: cols,
		CreatedAt:   time.Now(),
	}

	if states := t.Unique(candidates.ColumnState); len(states) > 0 {
		r.State = states[0]
		r.Heading = fmt.Sprintf("Candidatos do %s", r.State)
	} else {
		r.Heading = fmt.Sprintf("Candidatos do arquivo %s", t.Name)
		r.Warnings = append(r.Warnings, MissingColumnsMessage([]string{candidates.ColumnState}))
	}

	r.Sections = []Section{
		educationSection(t),
		genderEducationSection(t),
		raceSection(t),
		genderSection(t),
		womenByPartySection(t, opts),
		genderByPartySection(t, opts),
	}
	return r
}

// guard fills the warning of a section whose required columns are absent
func guard(t *candidates.Table, s *Section) bool {
	if missing := t.MissingColumns(s.Required...); len(missing) > 0 {
		s.Warning = MissingColumnsMessage(missing)
		return false
	}
	return true
}

// guardEither is guard for the party sections and their wording
func guardEither(t *candidates.Table, s *Section) bool {
	if len(t.MissingColumns(s.Required...)) > 0 {
		s.Warning = MissingEitherColumnMessage(s.Required)
		return false
	}
	return true
}

func finish(s Section) Section {
	if s.Warning == "" && s.Total() == 0 {
		s.Series = nil
		s.Categories = nil
		s.Warning = NoDataMessage
	}
	return s
}

func pointsFrom(counts []candidates.Count) []Point {
	points := make([]Point, len(counts))
	for i, c := range counts {
		points[i] = Point{Label: c.Key, Value: c.Count}
	}
	return points
}

func educationSection(t *candidates.Table) Section {
	s := Section{
		Kind:     KindEducation,
		Heading:  "Distribuição por grau de instrução",
		Title:    "Distribuição por grau de instrução",
		Chart:    ChartBar,
		XTitle:   "Grau de Instrução",
		YTitle:   "Contagem",
		Width:    600,
		Height:   400,
		Required: []string{candidates.ColumnEducation},
	}
	if !guard(t, &s) {
		return s
	}
	s.Series = []Series{{Name: "count", Points: pointsFrom(t.CountBy(candidates.ColumnEducation))}}
	return finish(s)
}

func genderEducationSection(t *candidates.Table) Section {
	s := Section{
		Kind:     KindGenderEducation,
		Heading:  "Gráfico de Barras - Gênero vs Grau de Instrução (Lado a Lado)",
		Title:    "Distribuição de Gênero por Grau de Instrução",
		Chart:    ChartGroupedBar,
		XTitle:   "Grau de Instrução",
		YTitle:   "Contagem",
		Width:    500,
		Height:   400,
		Required: []string{candidates.ColumnGender, candidates.ColumnEducation},
	}
	if !guard(t, &s) {
		return s
	}

	counts := t.CountByPair(candidates.ColumnGender, candidates.ColumnEducation)
	grouped := make(map[string]map[string]int)
	var genders []string
	categorySet := make(map[string]struct{})
	for _, c := range counts {
		if _, ok := grouped[c.First]; !ok {
			grouped[c.First] = make(map[string]int)
			genders = append(genders, c.First)
		}
		grouped[c.First][c.Second] += c.Count
		categorySet[c.Second] = struct{}{}
	}

	s.Categories = sortedKeys(categorySet)
	s.Series = buildSeries(genders, s.Categories, grouped)
	return finish(s)
}

func raceSection(t *candidates.Table) Section {
	s := Section{
		Kind:     KindRace,
		Heading:  "Gráfico de Pizza - Distribuição de Cor/Raça dos Candidatos",
		Title:    "Distribuição de Cor/Raça dos Candidatos",
		Chart:    ChartPie,
		Width:    400,
		Height:   400,
		Required: []string{candidates.ColumnRaceCode, candidates.ColumnRace},
	}
	if !guard(t, &s) {
		return s
	}
	s.Series = []Series{{Name: "Cor/Raça", Points: pointsFrom(t.ValueCounts(candidates.ColumnRace))}}
	return finish(s)
}

func genderSection(t *candidates.Table) Section {
	s := Section{
		Kind:     KindGender,
		Heading:  "Gráfico de Pizza - Distribuição de Homem/Mulher dos Candidatos",
		Title:    "Distribuição de Homens e Mulheres dos Candidatos",
		Chart:    ChartPie,
		Width:    400,
		Height:   400,
		Required: []string{candidates.ColumnGenderCode, candidates.ColumnGender},
	}
	if !guard(t, &s) {
		return s
	}
	s.Series = []Series{{Name: "Homem/Mulher", Points: pointsFrom(t.ValueCounts(candidates.ColumnGender))}}
	return finish(s)
}

func womenByPartySection(t *candidates.Table, opts Options) Section {
	s := Section{
		Kind:     KindWomenByParty,
		Heading:  "Gráfico de Torres - Mulheres por Partido",
		Title:    "Número de Mulheres por Partido",
		Chart:    ChartBar,
		XTitle:   "Partido",
		YTitle:   "Número de Mulheres",
		Width:    600,
		Height:   400,
		Required: []string{candidates.ColumnParty, candidates.ColumnGenderCode},
	}
	if !guardEither(t, &s) {
		return s
	}
	women := t.Filter(candidates.ColumnGenderCode, opts.FemaleCode)
	s.Series = []Series{{Name: "Número de Mulheres", Points: pointsFrom(women.ValueCounts(candidates.ColumnParty))}}
	return finish(s)
}

func genderByPartySection(t *candidates.Table, opts Options) Section {
	s := Section{
		Kind:     KindGenderByParty,
		Heading:  "Gráfico de Torres - Homens e Mulheres por Partido",
		Title:    "Distribuição de Homens e Mulheres por Partido",
		Chart:    ChartGroupedBar,
		XTitle:   "Partido",
		YTitle:   "Número de Pessoas",
		Width:    600,
		Height:   400,
		Required: []string{candidates.ColumnParty, candidates.ColumnGenderCode},
	}
	if !guardEither(t, &s) {
		return s
	}

	grouped := make(map[string]map[string]int)
	totals := make(map[string]int)
	labelSet := make(map[string]struct{})
	for _, c := range t.CountByPair(candidates.ColumnParty, candidates.ColumnGenderCode) {
		label := genderLabel(c.Second, opts)
		if _, ok := grouped[label]; !ok {
			grouped[label] = make(map[string]int)
		}
		grouped[label][c.First] += c.Count
		totals[c.First] += c.Count
		labelSet[label] = struct{}{}
	}

	parties := make([]string, 0, len(totals))
	for p := range totals {
		parties = append(parties, p)
	}
	sort.Slice(parties, func(i, j int) bool {
		if totals[parties[i]] != totals[parties[j]] {
			return totals[parties[i]] > totals[parties[j]]
		}
		return parties[i] < parties[j]
	})

	var labels []string
	for _, l := range []string{labelMen, labelWomen} {
		if _, ok := labelSet[l]; ok {
			labels = append(labels, l)
			delete(labelSet, l)
		}
	}
	labels = append(labels, sortedKeys(labelSet)...)

	s.Categories = parties
	s.Series = buildSeries(labels, parties, grouped)
	return finish(s)
}

func genderLabel(code string, opts Options) string {
	switch {
	case candidates.SameCode(code, opts.MaleCode):
		return labelMen
	case candidates.SameCode(code, opts.FemaleCode):
		return labelWomen
	default:
		return fmt.Sprintf("Código %s", code)
	}
}

func buildSeries(names, categories []string, grouped map[string]map[string]int) []Series {
	series := make([]Series, 0, len(names))
	for _, name := range names {
		points := make([]Point, len(categories))
		for i, cat := range categories {
			points[i] = Point{Label: cat, Value: grouped[name][cat]}
		}
		series = append(series, Series{Name: name, Points: points})
	}
	return series
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
