// Package importer turns a directory of markdown files, such as an Obsidian
// vault, into notes.
package importer

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"devnotes/internal/contextutil"
	"devnotes/internal/notes"
)

const defaultConcurrency = 4

// NoteCreator stores a note for a user. *client.Client satisfies it.
type NoteCreator interface {
	CreateNote(ctx context.Context, userID string, draft notes.Draft) (notes.Note, error)
}

// Options tunes an import.
type Options struct {
	// Folder, when set, replaces the folder derived from each file's path.
	Folder string
	// Tags are added to every imported note.
	Tags []string
	// Concurrency bounds the number of notes created at once. Zero means 4.
	Concurrency int
	// DryRun parses the files without creating anything.
	DryRun bool
}

// Result is the outcome for one file.
type Result struct {
	File  File
	Draft notes.Draft
	Note  notes.Note
	Err   error
}

// Summary is the outcome of an import, one result per scanned file in scan order.
type Summary struct {
	Results []Result
	// Created counts stored notes; in a dry run, the drafts that would be sent.
	Created int
	Failed  int
}

// Import scans root and creates one note per markdown file for userID.
//
// A file that cannot be read or whose note is rejected is recorded in the
// summary and the import moves on. An authentication failure stops the
// import since every later request would fail the same way.
func Import(ctx context.Context, creator NoteCreator, userID, root string, opts Options) (Summary, error) {
	logger := contextutil.LoggerFromContext(ctx)

	files, err := Scan(ctx, root)
	if err != nil {
		return Summary{}, err
	}
	logger.InfoContext(ctx, "starting import", "root", root, "total_files", len(files))

	results := make([]Result, len(files))
	for i, file := range files {
		results[i] = prepare(file, opts)
	}

	if !opts.DryRun {
		limit := opts.Concurrency
		if limit <= 0 {
			limit = defaultConcurrency
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(limit)
		for i := range results {
			if results[i].Err != nil {
				continue
			}
			g.Go(func() error {
				r := &results[i]
				note, err := creator.CreateNote(gctx, userID, r.Draft)
				if err != nil {
					r.Err = err
					logger.ErrorContext(ctx, "failed to import file", "rel_path", r.File.RelPath, "error", err)
					if notes.IsAuthError(err) {
						return err
					}
					return nil
				}
				r.Note = note
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return summarize(results, opts.DryRun), fmt.Errorf("import aborted: %w", err)
		}
	}

	summary := summarize(results, opts.DryRun)
	logger.InfoContext(ctx, "import completed", "total_files", len(files), "created", summary.Created, "errors", summary.Failed)
	return summary, nil
}

// prepare reads and parses file into a validated draft.
func prepare(file File, opts Options) Result {
	r := Result{File: file}

	src, err := os.ReadFile(file.AbsPath)
	if err != nil {
		r.Err = fmt.Errorf("failed to read %s: %w", file.RelPath, err)
		return r
	}

	draft := Parse(src, file.RelPath)
	draft.Category = file.Folder
	if opts.Folder != "" {
		draft.Category = opts.Folder
	}
	draft.Tags = append(draft.Tags, opts.Tags...)

	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		r.Err = fmt.Errorf("%s: %w", file.RelPath, err)
	}
	r.Draft = draft
	return r
}

func summarize(results []Result, dryRun bool) Summary {
	s := Summary{Results: results}
	for _, r := range results {
		switch {
		case r.Err != nil:
			s.Failed++
		case dryRun || r.Note.ID != "":
			s.Created++
		}
	}
	return s
}
