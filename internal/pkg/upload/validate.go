package upload

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
)

// SniffLength is how many leading bytes ValidateCSVBySniff looks at
const SniffLength = 512

var (
	ErrExtension   = errors.New("Apenas arquivos CSV (.csv) são suportados")
	ErrMarkup      = errors.New("Tipo de arquivo inválido: conteúdo HTML/XML não é permitido")
	ErrNotText     = errors.New("O arquivo não parece ser um CSV de texto")
	ErrEmptyUpload = errors.New("O arquivo enviado está vazio")
)

var allowedExt = map[string]bool{
	".csv": true,
}

// ValidateCSVBySniff checks the provided filename (extension) and the first bytes (head)
// of an upload. Only plain text is accepted, whatever its legacy encoding.
// Returns the detected mime or an error.
func ValidateCSVBySniff(filename string, head []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return "", ErrExtension
	}
	if len(head) == 0 {
		return "", ErrEmptyUpload
	}
	if len(head) > SniffLength {
		head = head[:SniffLength]
	}

	detected := http.DetectContentType(head)

	// Block obvious scriptable types regardless of extension
	if strings.HasPrefix(detected, "text/html") || strings.HasPrefix(detected, "application/xhtml") {
		return "", ErrMarkup
	}
	if strings.HasPrefix(detected, "text/xml") || strings.HasPrefix(detected, "application/xml") || detected == "image/svg+xml" {
		return "", ErrMarkup
	}

	// Latin-1 exports sniff as text/plain too, the charset parameter is meaningless here
	if strings.HasPrefix(detected, "text/plain") {
		return detected, nil
	}

	return "", ErrNotText
}
