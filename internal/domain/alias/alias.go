// Package alias canonicalizes team names that have multiple recorded aliases.
package alias

// Table maps a canonical team name to its known aliases. Order of entries is
// the order of the source teams table.
type Table struct {
	entries []entry
}

type entry struct {
	canonical string
	aliases   []string
}

// NewTable builds a Table from teams-table rows: column 0 is the canonical
// name, any trailing columns are aliases. Empty alias cells are ignored.
func NewTable(rows [][]string) *Table {
	t := &Table{entries: make([]entry, 0, len(rows))}
	for _, row := range rows {
		if len(row) == 0 || row[0] == "" {
			continue
		}
		e := entry{canonical: row[0]}
		for _, a := range row[1:] {
			if a != "" {
				e.aliases = append(e.aliases, a)
			}
		}
		t.entries = append(t.entries, e)
	}
	return t
}

// Canonicals returns the canonical team names in table order.
func (t *Table) Canonicals() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.canonical
	}
	return out
}

// Resolve returns the canonical name for a recorded alias. Names not present
// in any alias set are canonical by definition and come back unchanged, so
// resolution never fails.
func (t *Table) Resolve(name string) string {
	for _, e := range t.entries {
		for _, a := range e.aliases {
			if a == name {
				return e.canonical
			}
		}
	}
	return name
}
