// Package metadata writes the dependency and manifest descriptor files
// that accompany a compilation. Downstream tooling only checks that the
// files exist and whether the build succeeded; no dependency edges or
// manifest entries are recorded.
package metadata

import (
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// Dependencies is the dependency descriptor record.
type Dependencies struct {
	// RuleLabel is the build target this compilation belongs to.
	RuleLabel string `msgpack:"rule_label"`

	// Success reports whether the compilation succeeded.
	Success bool `msgpack:"success"`
}

// WriteDependencies writes the dependency descriptor to path. It is
// written after both successful and failed compilations.
func WriteDependencies(path, ruleLabel string, success bool) error {
	record := Dependencies{
		RuleLabel: ruleLabel,
		Success:   success,
	}

	data, err := msgpack.Marshal(&record)
	if err != nil {
		return fmt.Errorf("failed to encode dependency descriptor: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write dependency descriptor: %w", err)
	}

	return nil
}

// ReadDependencies decodes a dependency descriptor from path.
func ReadDependencies(path string) (*Dependencies, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dependency descriptor: %w", err)
	}

	var record Dependencies
	if err := msgpack.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode dependency descriptor: %w", err)
	}

	return &record, nil
}
