package cli

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"devnotes/internal/importer"
	"devnotes/internal/notes"
)

func newCmdImport(app *App) *cobra.Command {
	var opts importer.Options
	var tags string

	cmd := &cobra.Command{
		Use:   "import DIR",
		Short: "Create notes from a directory of markdown files",
		Long: heredoc.Doc(`
			Create one note per markdown file under DIR, such as an Obsidian vault.

			The first heading becomes the title (the file name when there is none),
			the first fenced code block becomes the snippet, inline #tags become tags
			and the top-level directory becomes the folder. Hidden directories are skipped.
		`),
		Example: heredoc.Doc(`
			devnotes import ~/vault --dry-run
			devnotes import ./snippets --folder Snippets --tags imported
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			vm, err := startSession(ctx, app)
			if err != nil {
				return err
			}
			opts.Tags = notes.ParseTags(tags)

			summary, err := importer.Import(ctx, app.Client, vm.Snapshot().User.ID, args[0], opts)
			out := cmd.OutOrStdout()
			for _, r := range summary.Results {
				switch {
				case r.Err != nil:
					fmt.Fprintf(out, "  skipped %s: %v\n", r.File.RelPath, r.Err)
				case opts.DryRun:
					fmt.Fprintf(out, "  %s -> %q [%s]\n", r.File.RelPath, r.Draft.Title, r.Draft.Category)
				}
			}
			if err != nil {
				return describe(err)
			}

			verb := "Imported"
			if opts.DryRun {
				verb = "Would import"
			}
			fmt.Fprintf(out, "%s %d notes from %s (%d failed)\n", verb, summary.Created, args[0], summary.Failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Folder, "folder", "", "put every note in this folder")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags added to every note")
	cmd.Flags().IntVarP(&opts.Concurrency, "jobs", "j", 4, "notes created at once")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "parse and print without creating notes")
	return cmd
}
