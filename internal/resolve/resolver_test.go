package resolve

import (
	"testing"

	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/entity"
)

var (
	usa = entity.Entity{
		Name: "United States", Prefix: "K", CQZone: 5, ITUZone: 8,
		Continent: "NA", Latitude: 39.0, Longitude: -98.0, TimeZone: -5,
	}
	hawaii = entity.Entity{
		Name: "Hawaii", Prefix: "KH6", CQZone: 31, ITUZone: 61,
		Continent: "OC", Latitude: 21.3, Longitude: -157.8, TimeZone: -10,
	}
	marianas = entity.Entity{
		Name: "Mariana Islands", Prefix: "KH0", CQZone: 27, ITUZone: 64,
		Continent: "OC", Latitude: 15.2, Longitude: 145.7, TimeZone: 10,
	}
	canaries = entity.Entity{
		Name: "Canary Islands", Prefix: "EA8", CQZone: 33, ITUZone: 36,
		Continent: "AF", Latitude: 28.3, Longitude: -16.5, TimeZone: 0,
	}
	portugal = entity.Entity{
		Name: "Portugal", Prefix: "CT", CQZone: 14, ITUZone: 37,
		Continent: "EU", Latitude: 39.7, Longitude: -8.8, TimeZone: 0,
	}
	canada = entity.Entity{
		Name: "Canada", Prefix: "VE", CQZone: 5, ITUZone: 9,
		Continent: "NA", Latitude: 45.0, Longitude: -80.0, TimeZone: -5,
	}
	w1awClub = entity.Entity{
		Name: "United States", Prefix: "K", CQZone: 5, ITUZone: 8,
		Continent: "NA", Latitude: 41.7, Longitude: -72.7, TimeZone: -5,
	}
	turkey = entity.Entity{
		Name: "Turkey", Prefix: "TA", CQZone: 20, ITUZone: 39,
		Continent: "AS", Latitude: 39.2, Longitude: 32.9, TimeZone: 3,
	}
	europeanTurkey = entity.Entity{
		Name: "European Turkey", Prefix: "TA1", CQZone: 20, ITUZone: 39,
		Continent: "EU", Latitude: 41.0, Longitude: 28.9, TimeZone: 3,
		WAEOverride: true,
	}
)

// newTestResolver builds a resolver over small hand-rolled DXCC and WAE
// tables covering the prefixes the tests exercise.
func newTestResolver() *Resolver {
	dxcc := entity.NewTableBuilder()
	dxcc.AddPrefix("K", usa)
	dxcc.AddPrefix("KH", hawaii) // deliberately shadows K for precedence tests
	dxcc.AddPrefix("KH6", hawaii)
	dxcc.AddPrefix("KH0", marianas)
	dxcc.AddPrefix("W", usa)
	dxcc.AddPrefix("N", usa)
	dxcc.AddPrefix("VE", canada)
	dxcc.AddPrefix("VO2", canada)
	dxcc.AddPrefix("EA8", canaries)
	dxcc.AddPrefix("CT", portugal)
	dxcc.AddExact("W1AW", w1awClub)
	dxcc.AddPrefix("TA", turkey)

	wae := entity.NewTableBuilder()
	wae.AddPrefix("K", usa)
	wae.AddPrefix("KH6", hawaii)
	wae.AddPrefix("KH0", marianas)
	wae.AddPrefix("W", usa)
	wae.AddPrefix("VE", canada)
	wae.AddPrefix("EA8", canaries)
	wae.AddPrefix("CT", portugal)
	wae.AddPrefix("TA", turkey)
	wae.AddPrefix("TA1", europeanTurkey)

	return New(dxcc.Build(), wae.Build())
}

func TestResolveBasic(t *testing.T) {
	r := newTestResolver()

	cases := []struct {
		name     string
		call     string
		wantName string
	}{
		{"Plain US call", "K1JT", "United States"},
		{"Lowercase input", "w1ax", "United States"},
		{"Longest prefix wins", "KH6ABC", "Hawaii"},
		{"Two shortening steps", "VO2AC", "Canada"},
		{"Unknown prefix", "ZZ9ZZZ", ""},
		{"Empty input", "", ""},
		{"Whitespace only", "   ", ""},
		{"Maritime mobile", "K1ABC/MM", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := r.Resolve(c.call)
			if got.Name != c.wantName {
				t.Errorf("Resolve(%q).Name = %q, want %q", c.call, got.Name, c.wantName)
			}
		})
	}
}

func TestResolveCaseInsensitive(t *testing.T) {
	r := newTestResolver()
	for _, call := range []string{"KH6ABC", "EA8/W2XYZ", "kg4ab", "W1AW"} {
		upper := r.Resolve(call)
		lower := r.Resolve(call + " ") // also exercise trimming
		if upper != lower {
			t.Errorf("Resolve(%q) not stable under trimming: %+v vs %+v", call, upper, lower)
		}
		// Mixed case must match the uppercase result bit for bit.
		mixed := r.Resolve(toMixedCase(call))
		if mixed != upper {
			t.Errorf("Resolve mixed-case %q = %+v, want %+v", toMixedCase(call), mixed, upper)
		}
	}
}

func toMixedCase(s string) string {
	b := []byte(s)
	for i := range b {
		if i%2 == 0 && b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

func TestResolveExactMatchPrecedence(t *testing.T) {
	r := newTestResolver()

	// "W1AW" is registered as an exact-match entry with club-station
	// coordinates; the "W" prefix entry must not shadow it.
	got := r.Resolve("W1AW")
	if got.Latitude != w1awClub.Latitude || got.Longitude != w1awClub.Longitude {
		t.Errorf("Resolve(W1AW) = %+v, want exact-match coordinates %v/%v",
			got, w1awClub.Latitude, w1awClub.Longitude)
	}

	// A near miss goes through the prefix namespace instead.
	got = r.Resolve("W1AWX")
	if got.Latitude != usa.Latitude {
		t.Errorf("Resolve(W1AWX) = %+v, want generic US prefix entry", got)
	}
}

func TestResolveGuantanamo(t *testing.T) {
	r := newTestResolver()

	cases := []struct {
		call     string
		wantName string
	}{
		{"KG4AB", "Guantanamo Bay"},
		{"kg4xy", "Guantanamo Bay"},
		// Three trailing letters is a stateside call: falls through to the
		// general United States entry.
		{"KG4ABC", "United States"},
		{"KG4A", "United States"},
		// Guantanamo portable combinations are invalid.
		{"KG4AB/W1", ""},
		{"EA8/KG4AB", ""},
	}
	for _, c := range cases {
		t.Run(c.call, func(t *testing.T) {
			got := r.Resolve(c.call)
			if got.Name != c.wantName {
				t.Errorf("Resolve(%q).Name = %q, want %q", c.call, got.Name, c.wantName)
			}
		})
	}
}

func TestResolveWAEMerge(t *testing.T) {
	r := newTestResolver()

	// DXCC resolves TA1ABC to Turkey via "TA"; the WAE list carries a
	// dedicated "TA1" override entity with European geography.
	got := r.Resolve("TA1ABC")

	if got.Name != "Turkey" || got.Prefix != "TA" {
		t.Fatalf("Resolve(TA1ABC) identity = %q/%q, want Turkey/TA", got.Name, got.Prefix)
	}
	if got.Continent != "EU" {
		t.Errorf("Resolve(TA1ABC).Continent = %q, want WAE-override EU", got.Continent)
	}
	if got.Latitude != europeanTurkey.Latitude || got.Longitude != europeanTurkey.Longitude {
		t.Errorf("Resolve(TA1ABC) coordinates = %v/%v, want WAE-override %v/%v",
			got.Latitude, got.Longitude, europeanTurkey.Latitude, europeanTurkey.Longitude)
	}
	if got.WAEName != "European Turkey" || got.WAEPrefix != "TA1" {
		t.Errorf("Resolve(TA1ABC) WAE fields = %q/%q, want European Turkey/TA1",
			got.WAEName, got.WAEPrefix)
	}

	// An ordinary Turkish call matches "TA" in both lists; the WAE entry is
	// not an override, so the WAE name fields stay empty.
	got = r.Resolve("TA7ABC")
	if got.Name != "Turkey" || got.WAEName != "" || got.WAEPrefix != "" {
		t.Errorf("Resolve(TA7ABC) = %+v, want Turkey with empty WAE fields", got)
	}
}

func TestResolveIdempotent(t *testing.T) {
	r := newTestResolver()
	calls := []string{"KH6ABC", "EA8/W1AW", "KG4AB", "garbage//--", ""}
	for _, call := range calls {
		first := r.Resolve(call)
		for i := 0; i < 3; i++ {
			if again := r.Resolve(call); again != first {
				t.Errorf("Resolve(%q) not idempotent: %+v then %+v", call, first, again)
			}
		}
	}
}

func TestResolveNeverPanics(t *testing.T) {
	r := newTestResolver()
	inputs := []string{
		"", " ", "/", "//", "///", "-", "/P", "/MM", "=W1AW", "K1ABC/",
		"/K1ABC", "ÅLAND", "123", "K/W/VE/EA8", "\x00\x01", "KG4", "KG4/",
	}
	for _, in := range inputs {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					t.Errorf("Resolve(%q) panicked: %v", in, rec)
				}
			}()
			_ = r.Resolve(in)
		}()
	}
}

func TestResolveNilTables(t *testing.T) {
	r := New(nil, nil)
	if got := r.Resolve("K1JT"); !got.IsUnknown() {
		t.Errorf("Resolve with nil tables = %+v, want all-Unknown", got)
	}
}
