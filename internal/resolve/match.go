package resolve

import "github.com/kd4d/Contest-Log-Analyzer-sub002/internal/entity"

// matchLongestPrefix resolves a single, already-isolated candidate string
// against the reference tables.
//
// Exact-match entries always outrank prefix matches: when WAE priority is
// set the WAE exact-match namespace is consulted first, then the DXCC one,
// and either returns immediately. The generic fallback then walks the
// candidate from full length down, dropping one trailing character per
// step, against the prefix namespace of the table selected by the priority
// flag. The candidate strictly shortens, so the loop terminates in at most
// len(candidate)+1 steps.
func (r *Resolver) matchLongestPrefix(candidate string, waePriority bool) entity.Entity {
	if waePriority {
		if e, ok := r.wae.Exact(candidate); ok {
			return e
		}
	}
	if e, ok := r.dxcc.Exact(candidate); ok {
		return e
	}

	table := r.dxcc
	if waePriority {
		table = r.wae
	}
	for cand := candidate; cand != ""; cand = cand[:len(cand)-1] {
		if e, ok := table.Prefix(cand); ok {
			return e
		}
	}

	return entity.Unknown
}
