package candidates

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Encoding names accepted by LoadOptions
const (
	EncodingLatin1 = "iso-8859-1"
	EncodingUTF8   = "utf-8"
)

var (
	ErrEmptyFile = errors.New("arquivo vazio")
	ErrNoHeader  = errors.New("cabeçalho ausente")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadOptions controls how a candidate export is decoded
type LoadOptions struct {
	Delimiter rune
	Encoding  string
}

// DefaultLoadOptions matches the official export: semicolon separated, Latin-1 encoded
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Delimiter: ';',
		Encoding:  EncodingLatin1,
	}
}

// Table is one loaded CSV file
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string

	index map[string]int
}

// NewTable builds a table from an already split header and rows.
func NewTable(name string, columns []string, rows [][]string) *Table {
	t := &Table{
		Name:    name,
		Columns: columns,
		Rows:    rows,
	}
	t.buildIndex()
	return t
}

func (t *Table) buildIndex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		if _, exists := t.index[c]; !exists {
			t.index[c] = i
		}
	}
}

// LoadFile opens path and loads it with Load
func LoadFile(path string, opts LoadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return Load(f, filepath.Base(path), opts)
}

// Load reads a delimited candidate export into a Table.
// Short records are padded with empty fields, records wider than the
// header are rejected.
func Load(r io.Reader, name string, opts LoadOptions) (*Table, error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = ';'
	}

	// A byte order mark means the file was re-saved as UTF-8
	br := bufio.NewReader(r)
	encoding := opts.Encoding
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
		encoding = EncodingUTF8
	}

	decoded, err := decodingReader(br, encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(decoded)
	reader.Comma = opts.Delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("ler cabeçalho: %w", err)
	}

	columns := make([]string, len(header))
	blank := true
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
		if columns[i] != "" {
			blank = false
		}
	}
	if blank {
		return nil, ErrNoHeader
	}

	var rows [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ler registro: %w", err)
		}
		switch {
		case len(rec) > len(columns):
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("ler registro: linha %d tem %d campos, o cabeçalho tem %d", line, len(rec), len(columns))
		case len(rec) < len(columns):
			rec = append(rec, make([]string, len(columns)-len(rec))...)
		}
		rows = append(rows, rec)
	}

	return NewTable(name, columns, rows), nil
}

func decodingReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", EncodingLatin1, "latin1", "latin-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	case EncodingUTF8, "utf8":
		return r, nil
	default:
		return nil, fmt.Errorf("codificação não suportada: %s", encoding)
	}
}

// Shape returns the number of data rows and columns
func (t *Table) Shape() (int, int) {
	return len(t.Rows), len(t.Columns)
}

// HasColumn reports whether the header contains name
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// MissingColumns returns the subset of names absent from the header, in the order given
func (t *Table) MissingColumns(names ...string) []string {
	var missing []string
	for _, n := range names {
		if !t.HasColumn(n) {
			missing = append(missing, n)
		}
	}
	return missing
}

// Head returns up to n leading rows
func (t *Table) Head(n int) [][]string {
	if n < 0 {
		n = 0
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.Rows[:n]
}

// Column returns the trimmed values of a column
func (t *Table) Column(name string) ([]string, bool) {
	idx, ok := t.index[name]
	if !ok {
		return nil, false
	}
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = cell(row, idx)
	}
	return values, true
}

// Unique returns the distinct non-empty values of a column in order of first appearance
func (t *Table) Unique(name string) []string {
	values, ok := t.Column(name)
	if !ok {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
