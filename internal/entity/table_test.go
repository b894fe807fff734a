package entity

import "testing"

func TestTableNamespaces(t *testing.T) {
	usa := Entity{Name: "United States", Prefix: "K"}
	club := Entity{Name: "United States", Prefix: "K", Latitude: 41.7}

	b := NewTableBuilder()
	b.AddPrefix("K", usa)
	b.AddExact("W1AW", club)
	table := b.Build()

	if e, ok := table.Prefix("K"); !ok || e.Name != "United States" {
		t.Errorf("Prefix(K) = %+v, %t", e, ok)
	}
	if e, ok := table.Exact("W1AW"); !ok || e.Latitude != 41.7 {
		t.Errorf("Exact(W1AW) = %+v, %t", e, ok)
	}
	if !table.HasPrefix("K") {
		t.Error("HasPrefix(K) = false")
	}

	// Exact entries live in a separate namespace: "W1AW" is not a prefix
	// key, and "K" is not an exact key.
	if table.HasPrefix("W1AW") {
		t.Error("exact entry visible in prefix namespace")
	}
	if _, ok := table.Exact("K"); ok {
		t.Error("prefix entry visible in exact namespace")
	}

	if table.Len() != 2 {
		t.Errorf("Len() = %d, want 2", table.Len())
	}

	// Exact entries carry the exact-match-only flag.
	if e, _ := table.Exact("W1AW"); !e.ExactMatchOnly {
		t.Error("Exact entry missing ExactMatchOnly flag")
	}
	if e, _ := table.Prefix("K"); e.ExactMatchOnly {
		t.Error("Prefix entry has ExactMatchOnly flag set")
	}
}

func TestBuildCopiesEntries(t *testing.T) {
	b := NewTableBuilder()
	b.AddPrefix("K", Entity{Name: "United States"})
	table := b.Build()

	// Mutating the builder after Build must not leak into the table.
	b.AddPrefix("VE", Entity{Name: "Canada"})
	if table.HasPrefix("VE") {
		t.Error("builder mutation visible in built table")
	}
}

func TestNilAndEmptyLookups(t *testing.T) {
	var table *PrefixTable
	if _, ok := table.Prefix("K"); ok {
		t.Error("nil table matched a prefix")
	}
	if _, ok := table.Exact("W1AW"); ok {
		t.Error("nil table matched an exact call")
	}
	if table.Len() != 0 {
		t.Error("nil table has nonzero length")
	}

	b := NewTableBuilder()
	b.AddPrefix("", Entity{Name: "bogus"})
	b.AddExact("", Entity{Name: "bogus"})
	built := b.Build()
	if built.Len() != 0 {
		t.Errorf("empty keys registered: Len() = %d", built.Len())
	}
	if _, ok := built.Prefix(""); ok {
		t.Error("empty prefix key matched")
	}
}

func TestUnknownSentinel(t *testing.T) {
	if !Unknown.IsUnknown() {
		t.Error("Unknown.IsUnknown() = false")
	}
	if (Entity{Name: "X"}).IsUnknown() {
		t.Error("named entity reported as Unknown")
	}
	var info FullEntityInfo
	if !info.IsUnknown() {
		t.Error("zero FullEntityInfo not Unknown")
	}
}
