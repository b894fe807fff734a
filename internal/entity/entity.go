// Package entity defines the DXCC/WAE entity records and the immutable
// prefix tables the resolution engine runs against.
package entity

// Entity is the geographic/administrative record a callsign prefix maps to.
// The zero value is the Unknown sentinel.
type Entity struct {
	Name      string  `json:"name"`
	Prefix    string  `json:"prefix"` // canonical prefix, e.g. "K", "KH6"
	CQZone    int     `json:"cqz"`
	ITUZone   int     `json:"ituz"`
	Continent string  `json:"cont"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	TimeZone  float64 `json:"tz"` // hours offset from UTC

	// ExactMatchOnly marks an entry registered under an exact-match key;
	// it never matches as a string prefix.
	ExactMatchOnly bool `json:"-"`
	// WAEOverride marks a WAE entity whose name and canonical prefix take
	// precedence over the parent DXCC entity when merging lookup results.
	WAEOverride bool `json:"-"`
}

// Unknown is the terminal "no entity" value. Every field is at its zero
// sentinel. It is a real result, distinct from "no result yet": maritime
// mobile stations, unregistered prefixes, and unresolvable portable
// combinations all resolve to it.
var Unknown = Entity{}

// IsUnknown reports whether e is the Unknown sentinel.
func (e Entity) IsUnknown() bool {
	return e.Name == ""
}

// FullEntityInfo is the merged output of the dual DXCC/WAE lookup.
// The zero value is fully Unknown.
type FullEntityInfo struct {
	Name      string  `json:"name"`
	Prefix    string  `json:"prefix"`
	CQZone    int     `json:"cqz"`
	ITUZone   int     `json:"ituz"`
	Continent string  `json:"cont"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	TimeZone  float64 `json:"tz"`

	// WAEName/WAEPrefix are populated only when the WAE lookup matched an
	// entry flagged as a WAE override (e.g. European vs. Asiatic Russia).
	WAEName   string `json:"wae_name,omitempty"`
	WAEPrefix string `json:"wae_prefix,omitempty"`
}

// IsUnknown reports whether the merged result carries no DXCC entity.
func (f FullEntityInfo) IsUnknown() bool {
	return f.Name == ""
}
