package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"devnotes/internal/notes"
)

// Field order of the note form. Single-line fields come first.
const (
	fieldTitle = iota
	fieldCategory
	fieldTags
	fieldColor
	fieldLanguage
	fieldImage
	fieldContent
	fieldCode
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Folder", "Tags", "Color", "Language", "Image URL", "Content", "Code"}

// noteForm edits a draft. editID is empty when creating.
type noteForm struct {
	editID  string
	inputs  [fieldImage + 1]textinput.Model
	content textarea.Model
	code    textarea.Model
	focus   int
}

func newNoteForm() *noteForm {
	f := &noteForm{}
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 256
		f.inputs[i] = in
	}
	f.inputs[fieldTitle].CharLimit = 200
	f.inputs[fieldTags].Placeholder = "comma, separated"
	f.inputs[fieldColor].Placeholder = strings.Join(notes.Palette, " | ")
	f.inputs[fieldLanguage].Placeholder = "go, python, sql..."

	f.content = textarea.New()
	f.content.ShowLineNumbers = false
	f.content.SetHeight(4)
	f.code = textarea.New()
	f.code.SetHeight(6)
	return f
}

// editNoteForm returns a form prefilled from n.
func editNoteForm(n notes.Note) *noteForm {
	f := newNoteForm()
	f.editID = n.ID
	f.inputs[fieldTitle].SetValue(n.Title)
	f.inputs[fieldCategory].SetValue(n.Category)
	f.inputs[fieldTags].SetValue(notes.JoinTags(n.Tags))
	f.inputs[fieldColor].SetValue(n.Color)
	f.inputs[fieldLanguage].SetValue(n.Language)
	f.inputs[fieldImage].SetValue(n.Image)
	f.content.SetValue(n.Content)
	f.code.SetValue(n.Code)
	return f
}

func (f *noteForm) draft() notes.Draft {
	return notes.Draft{
		Title:    f.inputs[fieldTitle].Value(),
		Category: f.inputs[fieldCategory].Value(),
		Tags:     notes.ParseTags(f.inputs[fieldTags].Value()),
		Color:    f.inputs[fieldColor].Value(),
		Language: f.inputs[fieldLanguage].Value(),
		Image:    f.inputs[fieldImage].Value(),
		Content:  f.content.Value(),
		Code:     f.code.Value(),
	}
}

func (f *noteForm) setWidth(w int) {
	for i := range f.inputs {
		f.inputs[i].Width = w
	}
	f.content.SetWidth(w)
	f.code.SetWidth(w)
}

// focusField moves focus to field i, wrapping around.
func (f *noteForm) focusField(i int) tea.Cmd {
	f.focus = (i + fieldCount) % fieldCount
	for j := range f.inputs {
		f.inputs[j].Blur()
	}
	f.content.Blur()
	f.code.Blur()

	switch f.focus {
	case fieldContent:
		return f.content.Focus()
	case fieldCode:
		return f.code.Focus()
	default:
		return f.inputs[f.focus].Focus()
	}
}

// focusByName focuses the field a server validation error refers to.
func (f *noteForm) focusByName(field string) tea.Cmd {
	switch field {
	case "title":
		return f.focusField(fieldTitle)
	case "category":
		return f.focusField(fieldCategory)
	case "tags":
		return f.focusField(fieldTags)
	case "color":
		return f.focusField(fieldColor)
	case "image":
		return f.focusField(fieldImage)
	}
	return nil
}

func (f *noteForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case fieldContent:
		f.content, cmd = f.content.Update(msg)
	case fieldCode:
		f.code, cmd = f.code.Update(msg)
	default:
		f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	}
	return cmd
}

func (f *noteForm) view(st styles) string {
	var b strings.Builder
	heading := "New note"
	if f.editID != "" {
		heading = "Edit note"
	}
	b.WriteString(st.paneTitle.Render(heading))
	b.WriteString("\n\n")

	for i := 0; i < fieldCount; i++ {
		label := st.label
		if i == f.focus {
			label = st.focusLabel
		}
		b.WriteString(label.Render(fieldLabels[i]))
		b.WriteString("\n")
		switch i {
		case fieldContent:
			b.WriteString(f.content.View())
		case fieldCode:
			b.WriteString(f.code.View())
		default:
			b.WriteString(f.inputs[i].View())
		}
		b.WriteString("\n")
	}
	b.WriteString(st.dim.Render("tab next field • ctrl+s save • esc cancel"))
	return b.String()
}

// loginForm collects credentials.
type loginForm struct {
	email    textinput.Model
	password textinput.Model
	focus    int
}

func newLoginForm(email string) *loginForm {
	f := &loginForm{
		email:    textinput.New(),
		password: textinput.New(),
	}
	f.email.Placeholder = "you@example.com"
	f.email.Prompt = "Email:    "
	f.email.SetValue(email)
	f.password.Prompt = "Password: "
	f.password.EchoMode = textinput.EchoPassword
	f.password.EchoCharacter = '•'
	if email != "" {
		f.focus = 1
	}
	return f
}

func (f *loginForm) focusCurrent() tea.Cmd {
	if f.focus == 0 {
		f.password.Blur()
		return f.email.Focus()
	}
	f.email.Blur()
	return f.password.Focus()
}

func (f *loginForm) toggle() tea.Cmd {
	f.focus = 1 - f.focus
	return f.focusCurrent()
}

func (f *loginForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if f.focus == 0 {
		f.email, cmd = f.email.Update(msg)
	} else {
		f.password, cmd = f.password.Update(msg)
	}
	return cmd
}
