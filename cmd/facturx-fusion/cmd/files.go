package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// collectFiles expands globs and walks directories. Files found inside
// directories or globs are kept only if they have extension ext; explicit
// file arguments are always kept.
func collectFiles(args []string, ext string) ([]string, error) {
	var files []string

	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", arg, err)
		}

		if len(matches) == 0 {
			info, err := os.Stat(arg)
			if err != nil {
				return nil, fmt.Errorf("file not found: %s", arg)
			}
			if !info.IsDir() {
				files = append(files, arg)
				continue
			}
			matches = []string{arg}
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				continue
			}
			if !info.IsDir() {
				if hasExt(match, ext) || len(matches) == 1 && match == arg {
					files = append(files, match)
				}
				continue
			}

			err = filepath.WalkDir(match, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && hasExt(path, ext) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
	}

	return files, nil
}

func hasExt(path, ext string) bool {
	return strings.EqualFold(filepath.Ext(path), ext)
}
