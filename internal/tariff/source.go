package tariff

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var (
	// ErrSourceMissing means a tariff table could not be found at all.
	ErrSourceMissing = errors.New("tariff source missing")
	// ErrSourceUnreadable means a tariff table exists but cannot be read or parsed.
	ErrSourceUnreadable = errors.New("tariff source unreadable")
)

// Source supplies the registry and matrix tables.
type Source interface {
	Stations(ctx context.Context) ([]StationRecord, error)
	Matrices(ctx context.Context) ([]*Matrix, error)
}

// FileSource reads tariff book exports (CSV in UTF-8 or Windows-1251, or XLSX)
// from a directory.
type FileSource struct {
	Dir string
}

// NewFileSource returns a source over dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{Dir: dir}
}

var (
	stationFilePatterns = []string{"*2-РП*.csv", "*2-РП*.xlsx"}
	matrixFilePatterns  = []string{"3-*.csv", "3-*.xlsx"}
	sectionFilePatterns = []string{"1-*.csv", "1-*.xlsx"}
	matrixExcluded      = []string{"Вводные", "Общие"}
	matrixNameRe        = regexp.MustCompile(`(?i)3-(.*?)\.(csv|xlsx)$`)
)

// Stations parses every registry file in the directory.
func (s *FileSource) Stations(ctx context.Context) ([]StationRecord, error) {
	files, err := s.glob(stationFilePatterns)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no station registry (2-РП) files in %s", ErrSourceMissing, s.Dir)
	}

	var rows [][]string
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		table, err := ReadTable(f)
		if err != nil {
			return nil, err
		}
		rows = append(rows, table...)
	}
	stations := ParseStationRows(rows)
	logrus.WithFields(logrus.Fields{"files": len(files), "stations": len(stations)}).Info("tariff: station registry parsed")
	return stations, nil
}

// Matrices parses every matrix file in name order.
func (s *FileSource) Matrices(ctx context.Context) ([]*Matrix, error) {
	files, err := s.glob(matrixFilePatterns)
	if err != nil {
		return nil, err
	}
	files = excludeNames(files, matrixExcluded)
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no distance matrix (3-*) files in %s", ErrSourceMissing, s.Dir)
	}

	matrices := make([]*Matrix, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		table, err := ReadTable(f)
		if err != nil {
			return nil, err
		}
		m, err := ParseMatrixRows(MatrixName(f), table)
		if err != nil {
			return nil, err
		}
		logrus.WithFields(logrus.Fields{"matrix": m.Name, "pairs": m.Len()}).Info("tariff: matrix parsed")
		matrices = append(matrices, m)
	}
	return matrices, nil
}

// Table is a raw file read by a FileSource.
type Table struct {
	Name string
	Rows [][]string
}

// SectionTables returns the raw rows of every Book 1 ("1-*") file, in name order.
func (s *FileSource) SectionTables(ctx context.Context) ([]Table, error) {
	files, err := s.glob(sectionFilePatterns)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no section (1-*) files in %s", ErrSourceMissing, s.Dir)
	}
	tables := make([]Table, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := ReadTable(f)
		if err != nil {
			return nil, err
		}
		tables = append(tables, Table{Name: filepath.Base(f), Rows: rows})
	}
	return tables, nil
}

func (s *FileSource) glob(patterns []string) ([]string, error) {
	info, err := os.Stat(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: directory %s", ErrSourceMissing, s.Dir)
		}
		return nil, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrSourceUnreadable, s.Dir)
	}

	seen := make(map[string]struct{})
	var files []string
	for _, p := range patterns {
		matches, err := filepath.Glob(filepath.Join(s.Dir, p))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
		}
		for _, m := range matches {
			if _, dup := seen[m]; !dup {
				seen[m] = struct{}{}
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func excludeNames(files []string, words []string) []string {
	out := files[:0]
	for _, f := range files {
		base := filepath.Base(f)
		skip := false
		for _, w := range words {
			if strings.Contains(base, w) {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, f)
		}
	}
	return out
}

// MatrixName derives a matrix name from its file name: "3-1 Рос.csv" -> "1 Рос".
func MatrixName(path string) string {
	base := filepath.Base(path)
	if m := matrixNameRe.FindStringSubmatch(base); m != nil && strings.TrimSpace(m[1]) != "" {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ReadTable reads a CSV or XLSX file into raw rows.
func ReadTable(path string) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return readXLSX(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceMissing, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, path, err)
	}
	rows, err := ParseCSV(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, path, err)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%w: %s: no sheets", ErrSourceUnreadable, path)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, path, err)
	}
	return rows, nil
}

// ParseCSV decodes Windows-1251 when the payload is not valid UTF-8, guesses
// the delimiter and skips records the reader rejects.
func ParseCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(charmap.Windows1251.NewDecoder(), data)
		if err != nil {
			return nil, fmt.Errorf("decode windows-1251: %w", err)
		}
		data = decoded
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = guessDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func guessDelimiter(data []byte) rune {
	sample := data
	if len(sample) > 8192 {
		sample = sample[:8192]
	}
	if bytes.Count(sample, []byte(";")) > bytes.Count(sample, []byte(",")) {
		return ';'
	}
	return ','
}
