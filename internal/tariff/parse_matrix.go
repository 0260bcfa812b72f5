package tariff

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	matrixHeaderMarker = "Конечный пункт маршрута"
	matrixDataMarkerA  = "№ п/п"
	matrixDataMarkerB  = "Начальный пункт"
	matrixFirstValue   = 2
)

type matrixRow struct {
	name  string
	cells []string
}

// ParseMatrixRows parses a transposed "3-*" matrix. Destination names are
// written vertically above the table and span several physical lines; origin
// names may continue on rows without a sequence number.
func ParseMatrixRows(name string, rows [][]string) (*Matrix, error) {
	headerStart, dataStart := -1, -1
	for i, row := range rows {
		line := strings.Join(row, " ")
		if headerStart == -1 && strings.Contains(line, matrixHeaderMarker) {
			headerStart = i + 1
		}
		if strings.Contains(line, matrixDataMarkerA) && strings.Contains(line, matrixDataMarkerB) {
			dataStart = i
			break
		}
	}
	if headerStart == -1 || dataStart == -1 || headerStart > dataStart {
		return nil, fmt.Errorf("%w: matrix %q: header markers not found", ErrSourceUnreadable, name)
	}

	columns := matrixColumns(rows[headerStart:dataStart])
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: matrix %q: no destination columns", ErrSourceUnreadable, name)
	}

	var assembled []*matrixRow
	for _, row := range rows[dataStart+1:] {
		num, origin := cell(row, 0), cell(row, 1)
		switch {
		case num == "" && origin == "":
			continue
		case num == "" && len(assembled) > 0:
			prev := assembled[len(assembled)-1]
			prev.name = strings.TrimSpace(prev.name + " " + origin)
		default:
			assembled = append(assembled, &matrixRow{name: origin, cells: row})
		}
	}

	order := make([]int, 0, len(columns))
	for idx := range columns {
		order = append(order, idx)
	}
	sort.Ints(order)

	var entries []MatrixEntry
	for _, r := range assembled {
		from := collapseSpaces(r.name)
		if from == "" {
			continue
		}
		for _, idx := range order {
			to := columns[idx]
			km, ok := parseKM(cell(r.cells, idx))
			if !ok {
				continue
			}
			entries = append(entries, MatrixEntry{From: from, To: to, KM: km})
		}
	}
	return NewMatrix(name, entries), nil
}

func matrixColumns(header [][]string) map[int]string {
	parts := make(map[int][]string)
	for _, row := range header {
		for idx := matrixFirstValue; idx < len(row); idx++ {
			if v := strings.TrimSpace(row[idx]); v != "" {
				parts[idx] = append(parts[idx], v)
			}
		}
	}
	columns := make(map[int]string, len(parts))
	for idx, p := range parts {
		columns[idx] = collapseSpaces(strings.Join(p, " "))
	}
	return columns
}

func parseKM(raw string) (int, bool) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if raw == "" {
		return 0, false
	}
	km, err := strconv.Atoi(raw)
	if err != nil || km <= 0 {
		return 0, false
	}
	return km, true
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
