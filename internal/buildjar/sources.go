package buildjar

import (
	"fmt"
	"io"
	"os"

	"github.com/bmatcuk/doublestar/v4"

	"jbuild/internal/archive"
	"jbuild/internal/toolchain"
)

// CollectSources merges loose source files with matching source-jar
// entries into one ordered list: loose files first in the order supplied,
// then each jar's matching entries in archive order. Archive-backed units
// read their content straight from the cached handle, never via a temp
// file.
func CollectSources(opts *Options, archives *archive.Cache) ([]toolchain.SourceUnit, error) {
	var units []toolchain.SourceUnit

	for _, src := range opts.Sources {
		src := src
		units = append(units, toolchain.SourceUnit{
			Name: src,
			Path: src,
			Open: func() (io.ReadCloser, error) {
				return os.Open(src)
			},
		})
	}

	pattern := opts.SourcePattern
	if pattern == "" {
		pattern = DefaultSourcePattern
	}

	for _, jar := range opts.SourceJars {
		handle, err := archives.Acquire(jar)
		if err != nil {
			return nil, err
		}

		for _, entry := range handle.File {
			if entry.FileInfo().IsDir() {
				continue
			}

			matched, err := doublestar.Match(pattern, entry.Name)
			if err != nil {
				return nil, fmt.Errorf("invalid source pattern %q: %w", pattern, err)
			}
			if !matched {
				continue
			}

			entry := entry
			units = append(units, toolchain.SourceUnit{
				Name: jar + "!/" + entry.Name,
				Open: func() (io.ReadCloser, error) {
					return entry.Open()
				},
			})
		}
	}

	return units, nil
}
