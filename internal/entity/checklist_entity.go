package entity

import "github.com/google/uuid"

// Explicit tree walkers for checklist entries. Entry ids are unique within
// one checklist tree, so the first match wins.

// FindEntry returns the entry with the given id, or nil.
func FindEntry(entries []ChecklistEntry, id uuid.UUID) *ChecklistEntry {
	for i := range entries {
		if entries[i].Id == id {
			return &entries[i]
		}
		if found := FindEntry(entries[i].Children, id); found != nil {
			return found
		}
	}
	return nil
}

// ToggleEntry flips the checked state of the entry with the given id and
// reports whether it was found.
func ToggleEntry(entries []ChecklistEntry, id uuid.UUID) bool {
	e := FindEntry(entries, id)
	if e == nil {
		return false
	}
	e.Checked = !e.Checked
	return true
}

// RemoveEntry deletes the entry with the given id (and its subtree) from the
// tree, returning the updated slice and whether anything was removed.
func RemoveEntry(entries []ChecklistEntry, id uuid.UUID) ([]ChecklistEntry, bool) {
	for i := range entries {
		if entries[i].Id == id {
			return append(entries[:i:i], entries[i+1:]...), true
		}
		children, removed := RemoveEntry(entries[i].Children, id)
		if removed {
			entries[i].Children = children
			return entries, true
		}
	}
	return entries, false
}

// FlattenEntries walks the tree depth-first and returns every entry with its
// nesting depth, for flat rendering in exports.
func FlattenEntries(entries []ChecklistEntry) []FlatEntry {
	var out []FlatEntry
	var walk func(list []ChecklistEntry, depth int)
	walk = func(list []ChecklistEntry, depth int) {
		for _, e := range list {
			out = append(out, FlatEntry{Id: e.Id, Text: e.Text, Checked: e.Checked, Depth: depth})
			walk(e.Children, depth+1)
		}
	}
	walk(entries, 0)
	return out
}

type FlatEntry struct {
	Id      uuid.UUID
	Text    string
	Checked bool
	Depth   int
}
