package candidates

// Column names of the electoral candidate export
const (
	ColumnState      = "SG_UF"
	ColumnEducation  = "DS_GRAU_INSTRUCAO"
	ColumnGender     = "DS_GENERO"
	ColumnGenderCode = "CD_GENERO"
	ColumnRaceCode   = "CD_COR_RACA"
	ColumnRace       = "DS_COR_RACA"
	ColumnParty      = "SG_PARTIDO"
)

const (
	DefaultPreviewRows = 5
	DefaultMaleCode    = "1"
	DefaultFemaleCode  = "2"
)

// KnownColumns lists every column the dashboard reads
var KnownColumns = []string{
	ColumnState,
	ColumnEducation,
	ColumnGender,
	ColumnGenderCode,
	ColumnRaceCode,
	ColumnRace,
	ColumnParty,
}
