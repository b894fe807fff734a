package resolve

import "testing"

func TestResolvePortable(t *testing.T) {
	r := newTestResolver()

	cases := []struct {
		name     string
		call     string
		wantName string
	}{
		// Rule 1: exactly one side is a registered prefix.
		{"Prefix on the left", "EA8/W1XYZ", "Canary Islands"},
		{"Prefix on the right", "W1XYZ/EA8", "Canary Islands"},
		{"Unambiguous KH0", "KH0/4Z5LA", "Mariana Islands"},

		// Rule 2: strip one trailing digit and retry.
		{"Digit-strip left", "CT7/ABCD", "Portugal"},
		{"Digit-strip right", "ABCD/CT7", "Portugal"},

		// Rule 3: lone digit after a US/Canada-shaped call is a call area.
		{"US call area", "W1XYZ/7", "United States"},
		{"Canadian call area", "VE3ABC/2", "Canada"},

		// Rule 4: both sides resolve; the non-US/Canada-shaped side wins.
		{"Foreign side preferred", "K6VHF/EA8X", "Canary Islands"},
		{"Digit-strip beats fallback", "EA8ABC/VE3", "Canada"},
		{"Left side preferred", "EA8ABC/XYZT", "Canary Islands"},
		{"US fallback when other side unknown", "W1XYZ/ZZZZ9", "United States"},
		{"Both unknown", "ZZZZ/YYYY", ""},

		// Middle parts of three-plus-part calls are ignored.
		{"Middle part ignored", "EA8/IGNORED/W1XYZ", "Canary Islands"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := r.resolvePortable(c.call, false)
			if got.Name != c.wantName {
				t.Errorf("resolvePortable(%q).Name = %q, want %q", c.call, got.Name, c.wantName)
			}
		})
	}
}

func TestIsValidPrefixWAEScope(t *testing.T) {
	r := newTestResolver()

	// "TA1" is registered only in the WAE table: it counts as a valid
	// prefix only when WAE priority is enabled.
	if r.isValidPrefix("TA1", false) {
		t.Error("isValidPrefix(TA1, dxcc-only) = true, want false")
	}
	if !r.isValidPrefix("TA1", true) {
		t.Error("isValidPrefix(TA1, wae) = false, want true")
	}
	if !r.isValidPrefix("EA8", false) {
		t.Error("isValidPrefix(EA8, dxcc-only) = false, want true")
	}
}

func TestStripTrailingDigit(t *testing.T) {
	cases := []struct{ in, want string }{
		{"CT7", "CT"},
		{"KH0", "KH"},
		{"W1XYZ", "W1XYZ"},
		{"7", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := stripTrailingDigit(c.in); got != c.want {
			t.Errorf("stripTrailingDigit(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestUSCanadaShape(t *testing.T) {
	match := []string{"W1AW", "K6VHF", "N0AX", "AA1A", "VE3ABC", "VY2ZM", "KH6A"}
	for _, call := range match {
		if !usCanadaShape.MatchString(call) {
			t.Errorf("usCanadaShape should match %q", call)
		}
	}
	noMatch := []string{"EA8ABC", "DL1ABC", "4Z5LA", "W1", "W12AB", "JA1XYZ"}
	for _, call := range noMatch {
		if usCanadaShape.MatchString(call) {
			t.Errorf("usCanadaShape should not match %q", call)
		}
	}
}
