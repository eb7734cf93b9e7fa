package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_YAMLAndJSON(t *testing.T) {
	dir := t.TempDir()
	yml := filepath.Join(dir, "elevmark.yaml")
	require.NoError(t, os.WriteFile(yml, []byte(`
scene: model.yaml
direction: Left Face
side: left
template_element: W-101
template_face: "W-101:0:0"
style:
  line_weight: 3
preview:
  enabled: true
  format: tga
`), 0644))
	js := filepath.Join(dir, "elevmark.json")
	require.NoError(t, os.WriteFile(js, []byte(`{"scene":"model.yaml","direction":"Left Face","side":"left","style":{"line_weight":3}}`), 0644))

	cfg, err := Load(yml)
	require.NoError(t, err)
	assert.Equal(t, "Left Face", cfg.Direction)
	assert.Equal(t, "W-101:0:0", cfg.TemplateFace)
	assert.Equal(t, 3, cfg.Style.LineWeight)
	assert.Equal(t, "tga", cfg.Preview.Format)

	jcfg, err := Load(js)
	require.NoError(t, err)
	assert.Equal(t, cfg.Direction, jcfg.Direction)
	assert.Equal(t, cfg.Style, jcfg.Style)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestResolve_Defaults(t *testing.T) {
	cfg := Config{Scene: filepath.Join("models", "tower.yaml")}
	cfg.Resolve(Flags{})

	assert.Equal(t, filepath.Join("models", "elevmark-out"), cfg.OutputDir)
	assert.Equal(t, filepath.Join("models", "elevmark-out", "elevation_match_log.json"), cfg.MatchLog)
	assert.Equal(t, filepath.Join("models", "elevmark-out", "history.db"), cfg.HistoryDB)
	assert.Equal(t, filepath.Join("models", "elevmark-out", "tower.annotated.yaml"), cfg.SceneOutput)
	assert.Equal(t, "right", cfg.Side)
	assert.Equal(t, 20, cfg.ReportLimit)
	assert.Equal(t, "webp", cfg.Preview.Format)
	assert.Equal(t, 512, cfg.Preview.Size)
	assert.Equal(t, 1.0, cfg.Style.TextScale)
	assert.False(t, cfg.Preview.Enabled)
}

func TestResolve_FlagsOverride(t *testing.T) {
	cfg := Config{Direction: "Right Face", Side: "right", Preview: Preview{Enabled: true}}
	cfg.Resolve(Flags{
		OutputDir: "out",
		Direction: "Back Face",
		Side:      "left",
		Selection: []string{"a", "b"},
		NoPreview: true,
	})
	assert.Equal(t, "Back Face", cfg.Direction)
	assert.Equal(t, "left", cfg.Side)
	assert.Equal(t, []string{"a", "b"}, cfg.Selection)
	assert.False(t, cfg.Preview.Enabled)
	assert.Equal(t, filepath.Join("out", "preview"), cfg.PreviewDir())
}
