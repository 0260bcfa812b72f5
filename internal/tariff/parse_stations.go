package tariff

import (
	"regexp"
	"strconv"
	"strings"
)

// Station registry columns: №, name, operations, railway, transit points, code.
const (
	colStationName = 1
	colOperations  = 2
	colRailway     = 3
	colTransit     = 4
	colCode        = 5
	stationColumns = 6
)

var (
	codeRe         = regexp.MustCompile(`^\d{5,6}$`)
	transitPointRe = regexp.MustCompile(`(\d{6})\s+(.*?)\s+-\s*(\d+)\s*км`)
)

// ParseStationRows converts raw registry rows into station records. Header
// rows of any length before the first row that looks like a station are
// skipped, malformed rows are ignored, and duplicate codes keep the first row.
func ParseStationRows(rows [][]string) []StationRecord {
	start := -1
	for i, row := range rows {
		if _, ok := parseStationRow(row); ok {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}

	seen := make(map[string]struct{})
	var out []StationRecord
	for _, row := range rows[start:] {
		rec, ok := parseStationRow(row)
		if !ok {
			continue
		}
		if _, dup := seen[rec.Code]; dup {
			continue
		}
		seen[rec.Code] = struct{}{}
		out = append(out, rec)
	}
	return out
}

func parseStationRow(row []string) (StationRecord, bool) {
	if len(row) < stationColumns {
		return StationRecord{}, false
	}
	name := strings.TrimSpace(row[colStationName])
	code := strings.TrimSpace(row[colCode])
	if name == "" || !codeRe.MatchString(code) {
		return StationRecord{}, false
	}
	return StationRecord{
		Name:          name,
		Code:          code,
		Operations:    strings.TrimSpace(row[colOperations]),
		Railway:       strings.TrimSpace(row[colRailway]),
		TransitPoints: ParseTransitPoints(row[colTransit]),
	}, true
}

// ParseTransitPoints extracts every "<code> <name> - <n>км" triple from a
// registry cell.
func ParseTransitPoints(cell string) []TransitPoint {
	matches := transitPointRe.FindAllStringSubmatch(cell, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]TransitPoint, 0, len(matches))
	for _, m := range matches {
		km, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		out = append(out, TransitPoint{
			Code:    m[1],
			Name:    strings.TrimSpace(m[2]),
			LocalKM: km,
		})
	}
	return out
}
