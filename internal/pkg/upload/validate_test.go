package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCSVBySniff_AcceptsLatin1Text(t *testing.T) {
	head := []byte("SG_UF;DS_GRAU_INSTRUCAO\nSP;SUPERIOR COMPLETO\nBA;ENSINO M\xc9DIO COMPLETO\n")

	mime, err := ValidateCSVBySniff("consulta_cand_2024_SP.CSV", head)
	require.NoError(t, err)
	assert.Contains(t, mime, "text/plain")
}

func TestValidateCSVBySniff_AcceptsBOM(t *testing.T) {
	head := append([]byte("\xef\xbb\xbf"), []byte("\"SG_UF\";\"SG_PARTIDO\"\n\"SP\";\"PT\"\n")...)

	_, err := ValidateCSVBySniff("ba.csv", head)
	assert.NoError(t, err)
}

func TestValidateCSVBySniff_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		head     []byte
		want     error
	}{
		{"wrong extension", "data.xlsx", []byte("SG_UF;SG_PARTIDO\n"), ErrExtension},
		{"no extension", "data", []byte("SG_UF;SG_PARTIDO\n"), ErrExtension},
		{"empty", "data.csv", nil, ErrEmptyUpload},
		{"html", "data.csv", []byte("<!DOCTYPE html><html><body>x</body></html>"), ErrMarkup},
		{"xml", "data.csv", []byte("<?xml version=\"1.0\"?><a/>"), ErrMarkup},
		{"zip", "data.csv", []byte("PK\x03\x04\x14\x00\x06\x00"), ErrNotText},
		{"binary", "data.csv", []byte{0x00, 0x01, 0x02, 0x03, 0x04}, ErrNotText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateCSVBySniff(tt.filename, tt.head)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
