package classifier

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/common"
)

// Persisted artifact names. Each artifact is independently loadable; load
// rejects a directory missing any of them.
const (
	vectorizerArtifact = "vectorizer.gob"
	modelArtifact      = "model.gob"
	labelsArtifact     = "label_encoder.gob"
)

// saveGob writes v to path through a temp file and rename, so a crash
// mid-write never leaves a truncated artifact behind.
func saveGob(path string, v any) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(v); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// loadGob reads a gob artifact into v, failing loudly if the artifact is
// absent or unreadable.
func loadGob(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: missing artifact %s", common.ErrModelCorrupted, filepath.Base(path))
		}
		return fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	if err := gob.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("%w: failed to decode %s: %v", common.ErrModelCorrupted, filepath.Base(path), err)
	}
	return nil
}
