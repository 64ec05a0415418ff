package report

import (
	"fmt"
	"strings"
)

// SectionKind identifies one of the fixed dashboard sections
type SectionKind string

const (
	KindEducation       SectionKind = "education"
	KindGenderEducation SectionKind = "gender_education"
	KindRace            SectionKind = "race"
	KindGender          SectionKind = "gender"
	KindWomenByParty    SectionKind = "women_by_party"
	KindGenderByParty   SectionKind = "gender_by_party"
)

// Kinds lists the sections in display order
var Kinds = []SectionKind{
	KindEducation,
	KindGenderEducation,
	KindRace,
	KindGender,
	KindWomenByParty,
	KindGenderByParty,
}

// ParseKind validates a kind taken from a URL
func ParseKind(s string) (SectionKind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// ChartType selects how a section is drawn
type ChartType string

const (
	ChartBar        ChartType = "bar"
	ChartPie        ChartType = "pie"
	ChartGroupedBar ChartType = "grouped_bar"
)

const NoDataMessage = "Nenhum dado disponível para este gráfico."

// Point is one labelled value
type Point struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Series is a named list of points. Grouped charts carry one series per group,
// each holding a point for every category in the same order.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

type Section struct {
	Kind       SectionKind `json:"kind"`
	Heading    string      `json:"heading"`
	Title      string      `json:"title"`
	Chart      ChartType   `json:"chart"`
	XTitle     string      `json:"x_title,omitempty"`
	YTitle     string      `json:"y_title,omitempty"`
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Required   []string    `json:"required"`
	Categories []string    `json:"categories,omitempty"`
	Series     []Series    `json:"series,omitempty"`
	Warning    string      `json:"warning,omitempty"`
}

// HasChart reports whether the section carries data to draw
func (s *Section) HasChart() bool {
	return s.Warning == "" && len(s.Series) > 0 && s.Total() > 0
}

// Total sums every point of every series
func (s *Section) Total() int {
	total := 0
	for _, series := range s.Series {
		for _, p := range series.Points {
			total += p.Value
		}
	}
	return total
}

// MissingColumnsMessage is the inline warning for a section whose columns are absent
func MissingColumnsMessage(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = fmt.Sprintf("'%s'", c)
	}
	if len(cols) == 1 {
		return fmt.Sprintf("O arquivo não contém a coluna necessária (%s).", quoted[0])
	}
	return fmt.Sprintf("O arquivo não contém as colunas necessárias (%s).", strings.Join(quoted, ", "))
}

// MissingEitherColumnMessage is the warning of the party sections, which name
// every column they read whichever of them is absent
func MissingEitherColumnMessage(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = fmt.Sprintf("'%s'", c)
	}
	return fmt.Sprintf("O arquivo não contém as colunas necessárias (%s).", strings.Join(quoted, " ou "))
}
