package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"devnotes/internal/notes"
	"devnotes/internal/tui"
)

var errNotLoggedIn = errors.New("not logged in: run `devnotes login` first")

// startSession resolves the stored session and loads the collection.
func startSession(ctx context.Context, app *App) (*notes.ViewModel, error) {
	vm := app.NewViewModel()
	if err := vm.Start(ctx); err != nil {
		return nil, describe(err)
	}
	if !vm.Snapshot().Authenticated {
		return nil, errNotLoggedIn
	}
	return vm, nil
}

func newCmdList(app *App) *cobra.Command {
	var folder, tag, search string
	var uncategorized bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print notes, newest first",
		Long: heredoc.Doc(`
			Print the notes that pass the filter and search. The note that would be
			selected in the interactive view is marked with an asterisk.
		`),
		Example: heredoc.Doc(`
			devnotes list
			devnotes list --folder Work
			devnotes list --tag go --search http
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := notes.FilterAll()
			switch {
			case uncategorized:
				filter = notes.FilterUncategorized()
			case folder != "":
				filter = notes.FilterFolder(folder)
			case tag != "":
				filter = notes.FilterTag(tag)
			}

			vm, err := startSession(cmd.Context(), app)
			if err != nil {
				return err
			}
			vm.SetFilter(filter)
			vm.SetSearch(search)

			printNotes(cmd.OutOrStdout(), vm.Snapshot())
			return nil
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "only notes in this folder")
	cmd.Flags().StringVar(&tag, "tag", "", "only notes with this tag")
	cmd.Flags().BoolVar(&uncategorized, "uncategorized", false, "only notes without a folder")
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive match on title, content, tags and code")
	cmd.MarkFlagsMutuallyExclusive("folder", "tag", "uncategorized")
	return cmd
}

func printNotes(w io.Writer, snap notes.Snapshot) {
	header := snap.Filter.String()
	if snap.Search != "" {
		header += fmt.Sprintf(" matching %q", snap.Search)
	}
	fmt.Fprintf(w, "%s: %d of %d notes\n", header, len(snap.Visible), snap.Total)

	for _, n := range snap.Visible {
		mark := " "
		if n.ID == snap.SelectedID {
			mark = "*"
		}
		line := fmt.Sprintf("%s %s  %s", mark, n.CreatedAt.Local().Format("2006-01-02 15:04"), n.Title)
		if !n.Uncategorized() {
			line += "  [" + n.Category + "]"
		}
		if len(n.Tags) > 0 {
			line += "  #" + strings.Join(n.Tags, " #")
		}
		fmt.Fprintln(w, line)
	}
}

func newCmdAdd(app *App) *cobra.Command {
	var draft notes.Draft
	var tags string

	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Create a note",
		Example: heredoc.Doc(`
			devnotes add "Reset a branch" --code "git reset --hard origin/main" --language bash --tags git
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vm, err := startSession(cmd.Context(), app)
			if err != nil {
				return err
			}
			draft.Title = args[0]
			draft.Tags = notes.ParseTags(tags)

			note, err := vm.CreateNote(cmd.Context(), draft)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %q (%s)\n", note.Title, note.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&draft.Content, "content", "", "note text")
	cmd.Flags().StringVar(&draft.Code, "code", "", "code snippet")
	cmd.Flags().StringVar(&draft.Language, "language", "", "language of the snippet")
	cmd.Flags().StringVar(&draft.Category, "folder", "", "folder")
	cmd.Flags().StringVar(&draft.Image, "image", "", "image URL")
	cmd.Flags().StringVar(&draft.Color, "color", notes.DefaultColor, "one of "+strings.Join(notes.Palette, ", "))
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags")
	return cmd
}

func newCmdTUI(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse and edit notes interactively",
		Long: heredoc.Doc(`
			Browse and edit notes in the terminal.

			  j/k        select next/previous
			  tab        cycle filters: all, uncategorized, folders, tags
			  /          search
			  n e d      new, edit, delete (asks y/n)
			  c          copy the code snippet
			  r t L q    reload, theme, log out, quit
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), app)
		},
	}
}

func runTUI(ctx context.Context, app *App) error {
	return tui.Run(ctx, app.NewViewModel(), app.Login, app.Session.Email())
}
