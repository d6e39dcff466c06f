package metadata

import (
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// Manifest is the manifest descriptor record. It carries no entries;
// consumers only require the file to exist.
type Manifest struct{}

// WriteManifest writes a default manifest descriptor to path.
func WriteManifest(path string) error {
	data, err := msgpack.Marshal(&Manifest{})
	if err != nil {
		return fmt.Errorf("failed to encode manifest descriptor: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest descriptor: %w", err)
	}

	return nil
}
