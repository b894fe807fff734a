package cty

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/entity"
)

// Record is one parsed key of a country file: a prefix-match or exact-match
// key plus the entity it maps to (with any per-alias zone/coordinate
// overrides already applied).
type Record struct {
	Key    string // lookup key, without the "=" exact marker
	Exact  bool
	Entity entity.Entity
}

// Per-alias override notations from the AD1C country-file format:
// (#) CQ zone, [#] ITU zone, <lat/lon> coordinates, {cont} continent,
// ~tz~ UTC offset.
var (
	cqOverrideRe   = regexp.MustCompile(`\((\d+)\)`)
	ituOverrideRe  = regexp.MustCompile(`\[(\d+)\]`)
	latLonRe       = regexp.MustCompile(`<([+-]?[0-9.]+)/([+-]?[0-9.]+)>`)
	contOverrideRe = regexp.MustCompile(`\{([A-Z]{2})\}`)
	tzOverrideRe   = regexp.MustCompile(`~([+-]?[0-9.]+)~`)
)

// Parse reads an AD1C cty.dat country file (either the CTY or the DARC WAE
// edition) and returns the flat list of lookup records. Each entity record
// spans one header line and continuation lines of comma-separated aliases
// terminated by ";":
//
//	United States:  05:  08:  NA:   39.00:    98.00:     5.0:  K:
//	    AA,K,N,W,=W1AW(5)[8];
//
// A "*" before the primary prefix marks an entity that exists only on the
// WAE list; its records carry the WAEOverride flag. A "=" before an alias
// registers the whole callsign as an exact-match key.
func Parse(r io.Reader) ([]Record, error) {
	var records []Record

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var chunk strings.Builder
	lineNo := 0
	recordStart := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if chunk.Len() == 0 {
			recordStart = lineNo
		}
		chunk.WriteString(line)
		chunk.WriteString(" ")

		if !strings.Contains(line, ";") {
			continue
		}

		recs, err := parseRecord(chunk.String())
		if err != nil {
			return nil, fmt.Errorf("cty record starting at line %d: %w", recordStart, err)
		}
		records = append(records, recs...)
		chunk.Reset()
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read country file: %w", err)
	}
	if strings.TrimSpace(chunk.String()) != "" {
		return nil, fmt.Errorf("cty record starting at line %d: missing ';' terminator", recordStart)
	}

	return records, nil
}

// parseRecord parses one complete "name:...:primary: aliases;" chunk.
func parseRecord(chunk string) ([]Record, error) {
	chunk = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(chunk), ";"))

	fields := strings.SplitN(chunk, ":", 9)
	if len(fields) < 9 {
		return nil, fmt.Errorf("expected 8 header fields, got %d", len(fields)-1)
	}

	name := strings.TrimSpace(fields[0])
	if name == "" {
		return nil, fmt.Errorf("empty entity name")
	}

	cqz, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return nil, fmt.Errorf("invalid CQ zone %q: %w", fields[1], err)
	}
	ituz, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return nil, fmt.Errorf("invalid ITU zone %q: %w", fields[2], err)
	}
	cont := strings.TrimSpace(fields[3])
	lat, err := strconv.ParseFloat(strings.TrimSpace(fields[4]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q: %w", fields[4], err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(fields[5]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q: %w", fields[5], err)
	}
	tz, err := strconv.ParseFloat(strings.TrimSpace(fields[6]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid UTC offset %q: %w", fields[6], err)
	}

	primary := strings.TrimSpace(fields[7])
	waeOnly := strings.HasPrefix(primary, "*")
	primary = strings.TrimPrefix(primary, "*")
	if primary == "" {
		return nil, fmt.Errorf("entity %q has no primary prefix", name)
	}

	base := entity.Entity{
		Name:      name,
		Prefix:    primary,
		CQZone:    cqz,
		ITUZone:   ituz,
		Continent: cont,
		Latitude:  lat,
		// The file stores longitude positive-west; flip to the
		// conventional east-positive sign.
		Longitude:   -lon,
		TimeZone:    -tz, // same convention for the UTC offset
		WAEOverride: waeOnly,
	}

	aliasList := strings.TrimSpace(fields[8])
	aliases := strings.Split(aliasList, ",")

	records := make([]Record, 0, len(aliases)+1)
	seen := make(map[string]struct{}, len(aliases)+1)
	addRecord := func(rec Record) {
		mapKey := rec.Key
		if rec.Exact {
			mapKey = entity.ExactKeyMarker + rec.Key
		}
		if _, dup := seen[mapKey]; dup {
			return
		}
		seen[mapKey] = struct{}{}
		records = append(records, rec)
	}

	// The primary prefix is itself a prefix key. Most files repeat it in
	// the alias list; the dedup above keeps one copy.
	addRecord(Record{Key: primary, Entity: base})

	for _, alias := range aliases {
		alias = strings.TrimSpace(alias)
		if alias == "" {
			continue
		}
		rec, err := parseAlias(alias, base)
		if err != nil {
			return nil, fmt.Errorf("entity %q: %w", name, err)
		}
		addRecord(rec)
	}

	return records, nil
}

// parseAlias applies the override notations of one alias token to the
// entity's base record.
func parseAlias(alias string, base entity.Entity) (Record, error) {
	e := base

	if m := cqOverrideRe.FindStringSubmatch(alias); m != nil {
		z, err := strconv.Atoi(m[1])
		if err != nil {
			return Record{}, fmt.Errorf("alias %q: bad CQ override: %w", alias, err)
		}
		e.CQZone = z
	}
	if m := ituOverrideRe.FindStringSubmatch(alias); m != nil {
		z, err := strconv.Atoi(m[1])
		if err != nil {
			return Record{}, fmt.Errorf("alias %q: bad ITU override: %w", alias, err)
		}
		e.ITUZone = z
	}
	if m := latLonRe.FindStringSubmatch(alias); m != nil {
		lat, err1 := strconv.ParseFloat(m[1], 64)
		lon, err2 := strconv.ParseFloat(m[2], 64)
		if err1 != nil || err2 != nil {
			return Record{}, fmt.Errorf("alias %q: bad coordinate override", alias)
		}
		e.Latitude = lat
		e.Longitude = -lon
	}
	if m := contOverrideRe.FindStringSubmatch(alias); m != nil {
		e.Continent = m[1]
	}
	if m := tzOverrideRe.FindStringSubmatch(alias); m != nil {
		tz, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return Record{}, fmt.Errorf("alias %q: bad UTC offset override: %w", alias, err)
		}
		e.TimeZone = -tz
	}

	// Strip all override decorations to recover the bare key.
	key := alias
	for _, re := range []*regexp.Regexp{cqOverrideRe, ituOverrideRe, latLonRe, contOverrideRe, tzOverrideRe} {
		key = re.ReplaceAllString(key, "")
	}
	key = strings.TrimSpace(key)

	exact := strings.HasPrefix(key, entity.ExactKeyMarker)
	key = strings.TrimPrefix(key, entity.ExactKeyMarker)
	if key == "" {
		return Record{}, fmt.Errorf("alias %q: empty key after stripping overrides", alias)
	}

	e.ExactMatchOnly = exact
	return Record{Key: key, Exact: exact, Entity: e}, nil
}

// BuildTable assembles parsed records into an immutable prefix table.
func BuildTable(records []Record) *entity.PrefixTable {
	b := entity.NewTableBuilder()
	for _, rec := range records {
		if rec.Exact {
			b.AddExact(rec.Key, rec.Entity)
		} else {
			b.AddPrefix(rec.Key, rec.Entity)
		}
	}
	return b.Build()
}
