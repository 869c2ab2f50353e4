package importer

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"devnotes/internal/notes"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough),
)

// Inline tags in the form Obsidian writes them: #go, #ops/release.
var tagPattern = regexp.MustCompile(`(?:^|\s)#([\p{L}\p{N}_/-]+)`)

// Parse turns a markdown document into a note draft:
//   - the title is the first level 1 heading, else the first level 2
//     heading, else the file name;
//   - the first top-level fenced code block becomes the snippet and its
//     info string the language;
//   - inline #tags become tags;
//   - whatever is left, minus the title heading and the snippet, is the content.
func Parse(src []byte, filename string) notes.Draft {
	draft := notes.Draft{Color: notes.DefaultColor, Tags: []string{}}
	doc := markdown.Parser().Parse(text.NewReader(src))

	lines := bytes.SplitAfter(src, []byte("\n"))
	drop := make(map[int]bool)

	if heading := titleHeading(doc); heading != nil {
		draft.Title = strings.TrimSpace(textOf(heading, src))
		first, last := lineSpan(src, heading.Lines())
		for i := first; i <= last; i++ {
			drop[i] = true
		}
		// Setext headings carry their underline on the next line.
		if !bytes.HasPrefix(bytes.TrimSpace(lines[first]), []byte("#")) && last+1 < len(lines) {
			drop[last+1] = true
		}
	}
	if draft.Title == "" {
		draft.Title = titleFromFilename(filename)
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		code, ok := n.(*ast.FencedCodeBlock)
		if !ok || code.Lines().Len() == 0 {
			continue
		}
		var snippet strings.Builder
		for i := 0; i < code.Lines().Len(); i++ {
			line := code.Lines().At(i)
			snippet.Write(line.Value(src))
		}
		draft.Code = strings.TrimRight(snippet.String(), "\n")
		draft.Language = string(code.Language(src))

		// The opening fence sits on the line above the first code line.
		first, last := lineSpan(src, code.Lines())
		for i := first - 1; i <= last; i++ {
			drop[i] = true
		}
		if last+1 < len(lines) && isFence(lines[last+1]) {
			drop[last+1] = true
		}
		break
	}

	draft.Tags = inlineTags(doc, src)

	var body strings.Builder
	for i, line := range lines {
		if !drop[i] {
			body.Write(line)
		}
	}
	draft.Content = strings.TrimSpace(body.String())
	return draft
}

// titleHeading returns the first non-empty level 1 heading, or the first
// level 2 heading when the document has no level 1 heading.
func titleHeading(doc ast.Node) *ast.Heading {
	var h1, h2 *ast.Heading
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		heading, ok := n.(*ast.Heading)
		if !ok || heading.Lines().Len() == 0 {
			continue
		}
		if heading.Level == 1 {
			h1 = heading
			break
		}
		if heading.Level == 2 && h2 == nil {
			h2 = heading
		}
	}
	if h1 != nil {
		return h1
	}
	return h2
}

func inlineTags(doc ast.Node, src []byte) []string {
	var found []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.CodeSpan, *ast.HTMLBlock, *ast.Link, *ast.AutoLink:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			for _, m := range tagPattern.FindAllSubmatch(node.Segment.Value(src), -1) {
				found = append(found, strings.ToLower(string(m[1])))
			}
		}
		return ast.WalkContinue, nil
	})
	return notes.ParseTags(strings.Join(found, ","))
}

// textOf concatenates the text below n.
func textOf(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := c.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(src))
			if node.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(node.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// lineSpan returns the zero-based first and last source lines of segs.
func lineSpan(src []byte, segs *text.Segments) (first, last int) {
	first = bytes.Count(src[:segs.At(0).Start], []byte("\n"))
	last = bytes.Count(src[:segs.At(segs.Len()-1).Start], []byte("\n"))
	return first, last
}

func isFence(line []byte) bool {
	line = bytes.TrimSpace(line)
	return bytes.HasPrefix(line, []byte("```")) || bytes.HasPrefix(line, []byte("~~~"))
}

// titleFromFilename turns "reset-git_branch.md" into "Reset Git Branch".
func titleFromFilename(filename string) string {
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
