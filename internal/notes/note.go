// Package notes holds the note collection view-model: the filter evaluator,
// the selection resolver, the collection store and the orchestrator that keeps
// them consistent for a UI.
package notes

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// DefaultColor is the palette key used when a note has no color.
const DefaultColor = "Default"

// Palette lists the color keys a note may carry, in display order.
var Palette = []string{DefaultColor, "Teal", "Green", "Red", "Yellow", "Purple"}

// Note is a single note or snippet owned by a user.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Code      string    `json:"code,omitempty"`
	Language  string    `json:"language,omitempty"`
	Image     string    `json:"image,omitempty"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	UserID    string    `json:"userId"`
}

// Uncategorized reports whether the note has no folder.
// An empty or whitespace-only category counts as no folder.
func (n Note) Uncategorized() bool {
	return strings.TrimSpace(n.Category) == ""
}

// HasTag reports whether the note carries exactly the given tag.
func (n Note) HasTag(tag string) bool {
	return slices.Contains(n.Tags, tag)
}

// Draft holds the user-supplied fields of a note before the server assigns
// an id and timestamps.
type Draft struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Code     string   `json:"code"`
	Language string   `json:"language"`
	Image    string   `json:"image"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Color    string   `json:"color"`
}

// DraftFrom returns a draft carrying the editable fields of n.
func DraftFrom(n Note) Draft {
	return Draft{
		Title:    n.Title,
		Content:  n.Content,
		Code:     n.Code,
		Language: n.Language,
		Image:    n.Image,
		Category: n.Category,
		Tags:     slices.Clone(n.Tags),
		Color:    n.Color,
	}
}

// Normalize trims the title and category, dedupes tags and maps unknown
// colors to DefaultColor. It never fails; use Validate afterwards.
func (d Draft) Normalize() Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.Category = strings.TrimSpace(d.Category)
	d.Language = strings.TrimSpace(d.Language)
	d.Image = strings.TrimSpace(d.Image)
	d.Tags = cleanTags(d.Tags)
	d.Color = NormalizeColor(d.Color)
	return d
}

// Validate checks the invariants a draft must satisfy before it is sent.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return &ValidationError{Field: "title", Message: "cannot be empty"}
	}
	return nil
}

// NormalizeColor returns color if it is a palette key, DefaultColor otherwise.
func NormalizeColor(color string) string {
	if slices.Contains(Palette, color) {
		return color
	}
	return DefaultColor
}

// ParseTags splits comma-separated form input into a tag list.
// Blank entries and duplicates are dropped; first-seen order is kept.
func ParseTags(input string) []string {
	return cleanTags(strings.Split(input, ","))
}

// JoinTags is the inverse of ParseTags for prefilling a form.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

func cleanTags(raw []string) []string {
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(tags, t) {
			continue
		}
		tags = append(tags, t)
	}
	return tags
}

// SortNotes returns a copy of notes ordered most recently created first.
// Notes created at the same instant are ordered by id so the order is total.
func SortNotes(notes []Note) []Note {
	sorted := slices.Clone(notes)
	slices.SortStableFunc(sorted, func(a, b Note) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return sorted
}

// User is the authenticated account the collection belongs to.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
