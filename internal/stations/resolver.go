// Package stations resolves free-text station input against the tariff registry.
package stations

import (
	"strings"

	"rail_distance/internal/stationname"
	"rail_distance/internal/tariff"
)

// Registry is the part of tariff.Registry the resolver needs.
type Registry interface {
	Stations() []tariff.StationRecord
	ByCode(code string) (tariff.StationRecord, bool)
	ByName(name string) []tariff.StationRecord
	ByNormalized(name string) []tariff.StationRecord
}

// Resolver maps user input such as "Москва (181102)", "москва" or "181102"
// onto registry records.
type Resolver struct {
	reg Registry
}

// NewResolver returns a resolver over reg.
func NewResolver(reg Registry) *Resolver {
	return &Resolver{reg: reg}
}

// Resolve finds the registry record for input. A bare code is looked up by
// code; otherwise the trailing "(code)" is stripped and the name is matched
// exactly (ignoring case), then by normalized form, and only then by the
// stripped code.
func (r *Resolver) Resolve(input string) (tariff.StationRecord, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return tariff.StationRecord{}, false
	}
	if stationname.IsCode(input) {
		return r.reg.ByCode(input)
	}

	name, code := stationname.StripCode(input)
	if name != "" {
		if rec, ok := preferTransitPoint(r.reg.ByName(name)); ok {
			return rec, true
		}
		if rec, ok := preferTransitPoint(r.reg.ByNormalized(name)); ok {
			return rec, true
		}
	}
	if code != "" {
		return r.reg.ByCode(code)
	}
	return tariff.StationRecord{}, false
}

// preferTransitPoint picks the record marked "ТП" among same-name records,
// falling back to the first in registry order.
func preferTransitPoint(recs []tariff.StationRecord) (tariff.StationRecord, bool) {
	if len(recs) == 0 {
		return tariff.StationRecord{}, false
	}
	for _, rec := range recs {
		if rec.IsTransitPointStation() {
			return rec, true
		}
	}
	return recs[0], true
}

// Search returns up to limit distinct registry names containing query,
// ignoring case, in registry order.
func (r *Resolver) Search(query string, limit int) []string {
	name, _ := stationname.StripCode(query)
	q := strings.ToLower(strings.TrimSpace(name))
	if q == "" || limit <= 0 {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	for _, rec := range r.reg.Stations() {
		if !strings.Contains(strings.ToLower(rec.Name), q) {
			continue
		}
		if _, dup := seen[rec.Name]; dup {
			continue
		}
		seen[rec.Name] = struct{}{}
		out = append(out, rec.Name)
		if len(out) == limit {
			break
		}
	}
	return out
}
