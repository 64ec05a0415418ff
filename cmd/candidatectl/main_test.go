package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const sampleCSV = "SG_UF;DS_GRAU_INSTRUCAO;CD_GENERO;DS_GENERO;SG_PARTIDO\n" +
	"SE;SUPERIOR COMPLETO;1;MASCULINO;PL\n" +
	"SE;ENSINO MÉDIO COMPLETO;2;FEMININO;PT\n" +
	"SE;ENSINO MÉDIO COMPLETO;4;NÃO DIVULGÁVEL;PT\n"

// writeLatin1 stores content the way the official export does
func writeLatin1(t *testing.T, name, content string) string {
	t.Helper()

	encoded, err := charmap.ISO8859_1.NewEncoder().String(content)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(encoded), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSummary(t *testing.T) {
	path := writeLatin1(t, "se.csv", sampleCSV)

	out, err := execute(t, "summary", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Candidatos do SE (se.csv)")
	assert.Contains(t, out, "Total de linhas: 3")
	assert.Contains(t, out, "Total de colunas: 5")
	assert.Contains(t, out, "education")
	assert.Contains(t, out, "O arquivo não contém as colunas necessárias ('CD_COR_RACA', 'DS_COR_RACA').")
}

func TestSummary_JSON(t *testing.T) {
	path := writeLatin1(t, "se.csv", sampleCSV)

	out, err := execute(t, "summary", "--json", path)
	require.NoError(t, err)

	var reports []struct {
		Heading  string `json:"heading"`
		RowCount int    `json:"row_count"`
		Sections []struct {
			Kind string `json:"kind"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "Candidatos do SE", reports[0].Heading)
	assert.Equal(t, 3, reports[0].RowCount)
	assert.Len(t, reports[0].Sections, 6)
}

func TestSummary_FailedFileDoesNotStopOthers(t *testing.T) {
	good := writeLatin1(t, "se.csv", sampleCSV)
	missing := filepath.Join(t.TempDir(), "missing.csv")

	out, err := execute(t, "summary", missing, good)
	require.Error(t, err)
	assert.Contains(t, out, "Erro ao processar o arquivo: "+missing)
	assert.Contains(t, out, "Candidatos do SE")
}

func TestSummary_CustomGenderCodes(t *testing.T) {
	path := writeLatin1(t, "se.csv", sampleCSV)

	out, err := execute(t, "summary", "--json", "--female-code", "4", path)
	require.NoError(t, err)

	var reports []struct {
		Sections []struct {
			Kind   string `json:"kind"`
			Series []struct {
				Name   string `json:"name"`
				Points []struct {
					Label string `json:"label"`
					Value int    `json:"value"`
				} `json:"points"`
			} `json:"series"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)

	for _, s := range reports[0].Sections {
		if s.Kind != "women_by_party" {
			continue
		}
		require.Len(t, s.Series, 1)
		require.Len(t, s.Series[0].Points, 1)
		assert.Equal(t, "PT", s.Series[0].Points[0].Label)
		assert.Equal(t, 1, s.Series[0].Points[0].Value)
	}
}

func TestRender(t *testing.T) {
	path := writeLatin1(t, "se.csv", sampleCSV)
	outDir := filepath.Join(t.TempDir(), "charts")

	out, err := execute(t, "render", path, "--out", outDir, "--format", "png")
	require.NoError(t, err)
	assert.Contains(t, out, "skipped race")

	data, err := os.ReadFile(filepath.Join(outDir, "se-education.png"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))

	_, err = os.Stat(filepath.Join(outDir, "se-race.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestRender_UnknownFormat(t *testing.T) {
	path := writeLatin1(t, "se.csv", sampleCSV)

	_, err := execute(t, "render", path, "--format", "gif")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}
