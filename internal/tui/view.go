package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"devnotes/internal/notes"
)

const (
	sidebarWidth = 24
	listWidth    = 34
)

func (m *Model) detailWidth() int {
	w := m.width - sidebarWidth - listWidth - 6
	if w < 30 {
		w = 30
	}
	return w
}

func (m *Model) View() string {
	snap := m.vm.Snapshot()
	st := m.styles

	if m.mode == modeLogin || (!snap.Authenticated && m.started && !snap.AuthLoading) {
		return m.loginView(st)
	}
	if !m.started || snap.AuthLoading {
		return fmt.Sprintf("\n  %s Connecting...\n", m.spin.View())
	}

	var b strings.Builder
	b.WriteString(m.headerView(snap))
	b.WriteString("\n")
	if snap.Err != nil {
		b.WriteString(st.errBanner.Render(snap.Err.Error() + "  (x to dismiss)"))
		b.WriteString("\n")
	}

	bodyHeight := m.height - 6
	if bodyHeight < 8 {
		bodyHeight = 8
	}

	right := m.detailView(snap)
	if m.mode == modeForm && m.form != nil {
		right = m.form.view(st)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		st.pane.Width(sidebarWidth).Height(bodyHeight).Render(m.sidebarView(snap)),
		st.pane.Width(listWidth).Height(bodyHeight).Render(m.listView(snap)),
		st.pane.Width(m.detailWidth()).Height(bodyHeight).Render(right),
	)
	b.WriteString(body)
	b.WriteString("\n")

	if m.mode == modeSearch {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(st.status.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) headerView(snap notes.Snapshot) string {
	parts := []string{"devnotes", snap.User.Username, snap.Filter.String()}
	if snap.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", snap.Search))
	}
	line := m.styles.header.Render(strings.Join(parts, " · "))
	if snap.Loading {
		line += " " + m.spin.View()
	}
	return line
}

func (m *Model) sidebarView(snap notes.Snapshot) string {
	st := m.styles
	var b strings.Builder

	row := func(f notes.Filter, label string) {
		style := st.item
		if f == snap.Filter {
			style = st.selected
		}
		b.WriteString(style.Render(truncate(label, sidebarWidth-2)))
		b.WriteString("\n")
	}

	row(notes.FilterAll(), fmt.Sprintf("All Notes (%d)", snap.Total))
	row(notes.FilterUncategorized(), "Uncategorized")

	if len(snap.Folders) > 0 {
		b.WriteString("\n")
		b.WriteString(st.paneTitle.Render("Folders"))
		b.WriteString("\n")
		for _, folder := range snap.Folders {
			row(notes.FilterFolder(folder), folder)
		}
	}
	if len(snap.Tags) > 0 {
		b.WriteString("\n")
		b.WriteString(st.paneTitle.Render("Tags"))
		b.WriteString("\n")
		for _, tag := range snap.Tags {
			row(notes.FilterTag(tag), "#"+tag)
		}
	}
	return b.String()
}

func (m *Model) listView(snap notes.Snapshot) string {
	st := m.styles
	if len(snap.Visible) == 0 {
		if snap.Total == 0 {
			return st.dim.Render("No notes yet. Press n to create one.")
		}
		return st.dim.Render("No notes match.")
	}

	var b strings.Builder
	for _, n := range snap.Visible {
		style := st.item
		if n.ID == snap.SelectedID {
			style = st.selected
		}
		b.WriteString(swatch(n.Color))
		b.WriteString(" ")
		b.WriteString(style.Render(truncate(n.Title, listWidth-4)))
		b.WriteString("\n")
		sub := n.CreatedAt.Local().Format("Jan 2 15:04")
		if ex := excerpt(n.Content, listWidth-18); ex != "" {
			sub += " · " + ex
		}
		b.WriteString(st.dim.Render("  " + sub))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) detailView(snap notes.Snapshot) string {
	st := m.styles
	n := snap.Selected
	if n == nil {
		return st.dim.Render("Select a note")
	}

	var b strings.Builder
	b.WriteString(swatch(n.Color) + " " + st.paneTitle.Render(n.Title))
	b.WriteString("\n")

	meta := []string{}
	if !n.Uncategorized() {
		meta = append(meta, n.Category)
	}
	meta = append(meta, "created "+n.CreatedAt.Local().Format("2006-01-02 15:04"))
	b.WriteString(st.dim.Render(strings.Join(meta, " · ")))
	b.WriteString("\n")

	if len(n.Tags) > 0 {
		tags := make([]string, len(n.Tags))
		for i, t := range n.Tags {
			tags[i] = st.tag.Render("#" + t)
		}
		b.WriteString(strings.Join(tags, " "))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if n.Content != "" {
		b.WriteString(lipgloss.NewStyle().Width(m.detailWidth() - 2).Render(n.Content))
		b.WriteString("\n\n")
	}
	if n.Code != "" {
		lang := n.Language
		if lang == "" {
			lang = "code"
		}
		b.WriteString(st.label.Render(lang + "  (c to copy)"))
		b.WriteString("\n")
		b.WriteString(highlightCode(n.Code, n.Language, st.codeStyle))
		b.WriteString("\n")
	}
	if n.Image != "" {
		b.WriteString(st.dim.Render("image: " + n.Image))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) loginView(st styles) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(st.header.Render("devnotes · log in"))
	b.WriteString("\n\n  ")
	b.WriteString(m.loginForm.email.View())
	b.WriteString("\n  ")
	b.WriteString(m.loginForm.password.View())
	b.WriteString("\n\n")
	if m.status != "" {
		b.WriteString("  " + st.status.Render(m.status) + "\n")
	}
	b.WriteString(st.dim.Render("  enter submit • tab switch field • esc quit • no account? run `devnotes register`"))
	b.WriteString("\n")
	return b.String()
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if limit <= 1 || len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
