package resolve

import (
	"regexp"
	"strings"

	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/entity"
)

// usCanadaShape matches the structural shape of a US/Canada callsign:
// one or two leading letters from the US/Canada allocation blocks, one
// digit, and one to three trailing letters (e.g. "W1AW", "VE3ABC").
var usCanadaShape = regexp.MustCompile(`^[AKNWVC][A-Z]?[0-9][A-Z]{1,3}$`)

// resolvePortable disambiguates a callsign containing "/". A slash may mean
// operation from a foreign location under a home callsign ("EA8/W1AW") or
// just a contest call-area suffix ("K6VHF/7"); which side names the real
// entity is ambiguous, so an ordered set of heuristics is applied and the
// first matching rule wins.
//
// Only the first and last "/"-separated parts are inspected; middle parts
// of three-plus-part calls are ignored.
func (r *Resolver) resolvePortable(call string, waePriority bool) entity.Entity {
	parts := strings.Split(call, "/")
	p1 := parts[0]
	p2 := parts[len(parts)-1]

	// Rule 1: exactly one side is a registered prefix.
	if e, ok := r.pickUnambiguous(p1, p2, waePriority); ok {
		return e
	}

	// Rule 2: retry rule 1 with one trailing digit stripped from each side,
	// so "CT7" finds "CT".
	p1d := stripTrailingDigit(p1)
	p2d := stripTrailingDigit(p2)
	if p1d != p1 || p2d != p2 {
		if e, ok := r.pickUnambiguous(p1d, p2d, waePriority); ok {
			return e
		}
	}

	// Rule 3: a lone digit after a US/Canada-shaped call is a call-area
	// designator, not a prefix.
	if isSingleDigit(p2) && usCanadaShape.MatchString(p1) {
		return r.matchLongestPrefix(p1, waePriority)
	}

	// Rule 4: resolve both sides independently and pick the likelier one.
	// A US/Canada-shaped first part suggests the slash names the operating
	// location, so the other side wins when it resolves.
	res1 := r.matchLongestPrefix(p1, waePriority)
	res2 := r.matchLongestPrefix(p2, waePriority)
	if usCanadaShape.MatchString(p1) {
		if !res2.IsUnknown() {
			return res2
		}
		return res1
	}
	if !res1.IsUnknown() {
		return res1
	}
	return res2
}

// pickUnambiguous implements the unambiguous-prefix rule: when exactly one
// of the two parts is a registered prefix key, that part is resolved.
func (r *Resolver) pickUnambiguous(p1, p2 string, waePriority bool) (entity.Entity, bool) {
	v1 := r.isValidPrefix(p1, waePriority)
	v2 := r.isValidPrefix(p2, waePriority)
	if v1 == v2 {
		return entity.Unknown, false
	}
	if v1 {
		return r.matchLongestPrefix(p1, waePriority), true
	}
	return r.matchLongestPrefix(p2, waePriority), true
}

// isValidPrefix reports whether p is registered verbatim as a prefix key in
// the DXCC table, or in the WAE table when WAE priority is enabled.
func (r *Resolver) isValidPrefix(p string, waePriority bool) bool {
	if r.dxcc.HasPrefix(p) {
		return true
	}
	return waePriority && r.wae.HasPrefix(p)
}

func stripTrailingDigit(s string) string {
	if s != "" && s[len(s)-1] >= '0' && s[len(s)-1] <= '9' {
		return s[:len(s)-1]
	}
	return s
}

func isSingleDigit(s string) bool {
	return len(s) == 1 && s[0] >= '0' && s[0] <= '9'
}
