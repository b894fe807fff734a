package resolve

import "strings"

// portableSuffixes is scanned in this fixed priority order and the FIRST
// trailing match is stripped. At most one suffix is ever removed, even when
// another qualifying suffix remains after stripping (so "K1ABC/QRP/P" keeps
// its "/QRP" once "/P" is gone). Quirky, but downstream scoring was tuned
// against this behavior, so it is preserved exactly.
var portableSuffixes = [...]string{"/P", "/B", "/M", "/QRP"}

// Normalize standardizes a raw callsign string: uppercase, trimmed, cut at
// the first hyphen (cluster spots carry "-#" style markers), then one
// portable suffix stripped. It never fails; the result may be empty, which
// every downstream stage treats as "no match".
func Normalize(raw string) string {
	call := strings.ToUpper(strings.TrimSpace(raw))

	if idx := strings.IndexByte(call, '-'); idx != -1 {
		call = call[:idx]
	}

	for _, sfx := range portableSuffixes {
		if strings.HasSuffix(call, sfx) {
			call = strings.TrimSuffix(call, sfx)
			break
		}
	}

	return call
}
