package resolve

import (
	"regexp"
	"strings"

	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/entity"
)

// guantanamoBay is the fixed entity for KG4 + two-letter calls. Guantanamo
// Bay licenses are exactly five characters; anything longer or shorter is a
// stateside KG4 call and falls through to normal resolution.
var guantanamoBay = entity.Entity{
	Name:      "Guantanamo Bay",
	Prefix:    "KG4",
	CQZone:    8,
	ITUZone:   11,
	Continent: "NA",
	Latitude:  19.90,
	Longitude: -75.15,
	TimeZone:  -5,
}

var kg4TwoLetters = regexp.MustCompile(`^KG4[A-Z]{2}$`)

// classifySpecial applies the hard-coded overrides that run before portable
// and longest-prefix resolution. The rules are ordered and the first hit is
// terminal; when none fires the second return is false and resolution
// continues normally.
func classifySpecial(call string) (entity.Entity, bool) {
	// Maritime mobile has no entity.
	if strings.HasSuffix(call, "/MM") {
		return entity.Unknown, true
	}

	// KG4 + exactly two letters is Guantanamo Bay.
	if kg4TwoLetters.MatchString(call) {
		return guantanamoBay, true
	}

	// A Guantanamo call operating portable is not a valid combination.
	if strings.Contains(call, "/") {
		for _, part := range strings.Split(call, "/") {
			if kg4TwoLetters.MatchString(part) {
				return entity.Unknown, true
			}
		}
	}

	return entity.Unknown, false
}
