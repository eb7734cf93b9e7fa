package scene

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Load reads a scene file.
func Load(path string) (*Scene, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "scene: read %s", path)
	}
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, errors.Wrapf(err, "scene: parse %s", path)
	}
	s, err := New(f)
	if err != nil {
		return nil, errors.Wrapf(err, "scene: %s", path)
	}
	return s, nil
}

// Save writes the scene, including placed markers, to path.
func Save(path string, s *Scene) error {
	data, err := yaml.Marshal(s.File())
	if err != nil {
		return errors.Wrap(err, "scene: encode")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "scene: create %s", filepath.Dir(path))
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "scene: write %s", path)
}
