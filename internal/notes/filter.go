package notes

import (
	"fmt"
	"slices"
	"strings"
)

// FilterKind selects which notes an ActiveFilter keeps.
type FilterKind int

const (
	// AllNotes keeps every note.
	AllNotes FilterKind = iota
	// Uncategorized keeps notes with an empty or blank category.
	Uncategorized
	// ByFolder keeps notes whose category equals Filter.Value. Uncategorized
	// notes never match, even for a blank Value.
	ByFolder
	// ByTag keeps notes carrying the tag Filter.Value.
	ByTag
)

// Filter is the active filter. Exactly one is in effect at a time; the zero
// value is AllNotes.
type Filter struct {
	Kind  FilterKind
	Value string
}

// FilterAll returns the AllNotes filter.
func FilterAll() Filter { return Filter{Kind: AllNotes} }

// FilterUncategorized returns the Uncategorized filter.
func FilterUncategorized() Filter { return Filter{Kind: Uncategorized} }

// FilterFolder returns a ByFolder filter for category.
func FilterFolder(category string) Filter { return Filter{Kind: ByFolder, Value: category} }

// FilterTag returns a ByTag filter for tag.
func FilterTag(tag string) Filter { return Filter{Kind: ByTag, Value: tag} }

func (f Filter) String() string {
	switch f.Kind {
	case Uncategorized:
		return "Uncategorized"
	case ByFolder:
		return fmt.Sprintf("Folder: %s", f.Value)
	case ByTag:
		return fmt.Sprintf("Tag: #%s", f.Value)
	default:
		return "All Notes"
	}
}

// Keep reports whether n passes the filter, ignoring any search term.
func (f Filter) Keep(n Note) bool {
	switch f.Kind {
	case Uncategorized:
		return n.Uncategorized()
	case ByFolder:
		return !n.Uncategorized() && n.Category == f.Value
	case ByTag:
		return n.HasTag(f.Value)
	default:
		return true
	}
}

// Evaluate returns the visible subset of notes: those passing the filter and,
// when search is non-empty, matching it. The result is ordered most recently
// created first regardless of the input order. notes is not modified.
func Evaluate(notes []Note, filter Filter, search string) []Note {
	needle := strings.ToLower(search)
	visible := make([]Note, 0, len(notes))
	for _, n := range SortNotes(notes) {
		if !filter.Keep(n) {
			continue
		}
		if needle != "" && !matchesSearch(n, needle) {
			continue
		}
		visible = append(visible, n)
	}
	return visible
}

// matchesSearch expects needle already lowercased.
func matchesSearch(n Note, needle string) bool {
	if strings.Contains(strings.ToLower(n.Title), needle) ||
		strings.Contains(strings.ToLower(n.Content), needle) ||
		strings.Contains(strings.ToLower(n.Code), needle) {
		return true
	}
	for _, t := range n.Tags {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}

// Folders returns the distinct non-blank categories in notes, sorted.
func Folders(notes []Note) []string {
	var folders []string
	for _, n := range notes {
		if n.Uncategorized() || slices.Contains(folders, n.Category) {
			continue
		}
		folders = append(folders, n.Category)
	}
	slices.Sort(folders)
	return folders
}

// Tags returns the distinct tags in notes, sorted.
func Tags(notes []Note) []string {
	var tags []string
	for _, n := range notes {
		for _, t := range n.Tags {
			if !slices.Contains(tags, t) {
				tags = append(tags, t)
			}
		}
	}
	slices.Sort(tags)
	return tags
}
