package importer

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// File is a markdown file found under an import root.
type File struct {
	RelPath string // Relative path from the root, slash separated (e.g. "work/deploy.md")
	Folder  string // First directory of RelPath, "" for files at the root
	AbsPath string
}

// Scan walks root and returns every markdown file below it in lexical
// order. Hidden directories such as .git or .obsidian are skipped.
func Scan(ctx context.Context, root string) ([]File, error) {
	var files []File

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}
		relPath = filepath.ToSlash(relPath)

		folder := ""
		if dir, _, ok := strings.Cut(relPath, "/"); ok {
			folder = dir
		}

		files = append(files, File{RelPath: relPath, Folder: folder, AbsPath: path})
		return nil
	})
	if err != nil {
		return files, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	return files, nil
}
