package notes

// Resolve computes the next selection from the visible subset.
//
// A previous selection that is still visible is kept, so the user's choice
// survives reloads and filter changes that do not hide it. Otherwise the first
// visible note is selected, and an empty visible subset yields "" (none).
func Resolve(visible []Note, previous string) string {
	if previous != "" && indexOf(visible, previous) >= 0 {
		return previous
	}
	if len(visible) > 0 {
		return visible[0].ID
	}
	return ""
}

func indexOf(notes []Note, id string) int {
	for i, n := range notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}
