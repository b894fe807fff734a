// Package resolve implements the callsign-to-entity resolution engine: a
// layered decision tree combining exact-match lookup, hard-coded special
// cases, heuristic disambiguation of portable callsigns, and longest-prefix
// matching over the two independently curated reference tables (DXCC and
// WAE).
package resolve

import (
	"strings"

	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/entity"
)

// Resolver runs lookups against one DXCC and one WAE prefix table. It holds
// no other state: every call is pure, never panics, and may run from any
// number of goroutines concurrently as long as the tables are not mutated
// (table refreshes must swap in new instances instead).
type Resolver struct {
	dxcc *entity.PrefixTable
	wae  *entity.PrefixTable
}

// New returns a Resolver over the given tables. Either table may be nil, in
// which case its lookups simply never match.
func New(dxcc, wae *entity.PrefixTable) *Resolver {
	return &Resolver{dxcc: dxcc, wae: wae}
}

// Resolve determines the DXCC entity for a raw callsign string, plus the
// WAE classification where the WAE list overrides it. It always returns a
// well-formed record; malformed input yields the all-Unknown zero value.
//
// The pipeline is run twice, once per reference list, because the DXCC and
// WAE tables are not supersets of each other and downstream scoring needs
// both classifications at once. The DXCC run supplies the entity identity;
// a successful WAE run overrides the geographic data (the WAE list
// reclassifies e.g. European vs. Asiatic Russia), and additionally fills
// the WAE name/prefix when it matched a dedicated WAE entity.
func (r *Resolver) Resolve(callsign string) entity.FullEntityInfo {
	var out entity.FullEntityInfo

	call := Normalize(callsign)
	if call == "" {
		return out
	}

	dxccRes := r.resolveOne(call, false)
	waeRes := r.resolveOne(call, true)

	if !dxccRes.IsUnknown() {
		out.Name = dxccRes.Name
		out.Prefix = dxccRes.Prefix
		out.CQZone = dxccRes.CQZone
		out.ITUZone = dxccRes.ITUZone
		out.Continent = dxccRes.Continent
		out.Latitude = dxccRes.Latitude
		out.Longitude = dxccRes.Longitude
		out.TimeZone = dxccRes.TimeZone
	}

	if !waeRes.IsUnknown() {
		// WAE geography always wins when the WAE pipeline matched.
		out.CQZone = waeRes.CQZone
		out.ITUZone = waeRes.ITUZone
		out.Continent = waeRes.Continent
		out.Latitude = waeRes.Latitude
		out.Longitude = waeRes.Longitude
		out.TimeZone = waeRes.TimeZone
		if waeRes.WAEOverride {
			out.WAEName = waeRes.Name
			out.WAEPrefix = waeRes.Prefix
		}
	}

	return out
}

// resolveOne runs the single-list pipeline on an already-normalized
// callsign: special cases first, then portable disambiguation or plain
// longest-prefix matching.
func (r *Resolver) resolveOne(call string, waePriority bool) entity.Entity {
	if e, done := classifySpecial(call); done {
		return e
	}
	if strings.Contains(call, "/") {
		return r.resolvePortable(call, waePriority)
	}
	return r.matchLongestPrefix(call, waePriority)
}
