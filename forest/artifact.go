package forest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Save writes the model next to path first and renames it into place, so a
// dashboard never loads a half-written artifact.
func Save(path string, f *Forest) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".model-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp model file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close model: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("move model into place: %w", err)
	}
	return nil
}

func Load(path string) (*Forest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}

	var f Forest
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model %s: %w", path, err)
	}
	return &f, nil
}

func (f *Forest) Validate() error {
	if f.Format != FormatVersion {
		return fmt.Errorf("unsupported format version %d", f.Format)
	}
	if f.Classes <= 0 || len(f.Features) == 0 {
		return fmt.Errorf("model declares %d classes and %d features", f.Classes, len(f.Features))
	}
	if len(f.Trees) == 0 {
		return ErrNoTrees
	}
	for ti, t := range f.Trees {
		if len(t.Nodes) == 0 {
			return fmt.Errorf("tree %d is empty", ti)
		}
		for i, n := range t.Nodes {
			if n.Label < 0 || n.Label >= f.Classes {
				return fmt.Errorf("tree %d node %d: label %d out of range", ti, i, n.Label)
			}
			if n.Leaf {
				continue
			}
			if n.Feature < 0 || n.Feature >= len(f.Features) {
				return fmt.Errorf("tree %d node %d: feature %d out of range", ti, i, n.Feature)
			}
			if n.Left <= i || n.Right <= i || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
				return fmt.Errorf("tree %d node %d: bad children %d/%d", ti, i, n.Left, n.Right)
			}
		}
	}
	return nil
}
