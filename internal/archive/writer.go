package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Entry timestamps are pinned so identical inputs produce byte-identical
// jars regardless of when they were built.
var normalizedTime = time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC)

// WriteJar archives every file under dir into a jar at jarPath with
// normalized entry ordering and timestamps. When compress is false,
// entries are stored uncompressed.
//
// A missing or empty dir produces a valid empty jar.
func WriteJar(jarPath, dir string, compress bool) error {
	entries, err := collectEntries(dir)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	out, err := os.Create(jarPath)
	if err != nil {
		return fmt.Errorf("failed to create jar %s: %w", jarPath, err)
	}
	defer out.Close()

	w := zip.NewWriter(out)

	method := zip.Store
	if compress {
		method = zip.Deflate
	}

	for _, entry := range entries {
		header := &zip.FileHeader{
			Name:     entry,
			Method:   method,
			Modified: normalizedTime,
		}

		dst, err := w.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("failed to add jar entry %s: %w", entry, err)
		}

		src, err := os.Open(filepath.Join(dir, filepath.FromSlash(entry)))
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", entry, err)
		}

		_, err = io.Copy(dst, src)
		src.Close()
		if err != nil {
			return fmt.Errorf("failed to write jar entry %s: %w", entry, err)
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize jar %s: %w", jarPath, err)
	}

	if err := out.Sync(); err != nil {
		return fmt.Errorf("failed to flush jar %s: %w", jarPath, err)
	}

	return nil
}

// collectEntries returns the slash-separated relative paths of all regular
// files under dir, sorted for deterministic ordering.
func collectEntries(dir string) ([]string, error) {
	var entries []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == dir {
				return filepath.SkipAll
			}
			return err
		}

		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		entries = append(entries, strings.ReplaceAll(rel, string(filepath.Separator), "/"))

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(entries)

	return entries, nil
}
