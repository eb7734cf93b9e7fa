package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"elevation-marker/internal/document"
)

// Config holds all configurable paths and placement settings.
type Config struct {
	// Paths
	Scene       string `json:"scene" yaml:"scene"`
	OutputDir   string `json:"output_dir" yaml:"output_dir"`
	MatchLog    string `json:"match_log" yaml:"match_log"`
	HistoryDB   string `json:"history_db" yaml:"history_db"`
	SceneOutput string `json:"scene_output" yaml:"scene_output"`

	// Placement
	Direction         string   `json:"direction" yaml:"direction"`
	Side              string   `json:"side" yaml:"side"`
	TemplateElement   string   `json:"template_element" yaml:"template_element"`
	TemplateFace      string   `json:"template_face" yaml:"template_face"`
	Selection         []string `json:"selection" yaml:"selection"`
	AnyFaceFallback   bool     `json:"any_face_fallback" yaml:"any_face_fallback"`
	RejectAntiAligned bool     `json:"reject_anti_aligned" yaml:"reject_anti_aligned"`

	Style document.Style `json:"style" yaml:"style"`

	Preview Preview `json:"preview" yaml:"preview"`

	// Reporting
	ReportLimit int    `json:"report_limit" yaml:"report_limit"`
	LogLevel    string `json:"log_level" yaml:"log_level"`
	LogFormat   string `json:"log_format" yaml:"log_format"`
}

// Preview controls the per-view preview images.
type Preview struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	Format      string `json:"format" yaml:"format"`
	Size        int    `json:"size" yaml:"size"`
	Supersample int    `json:"supersample" yaml:"supersample"`
}

// Load reads a JSON or YAML config file, chosen by extension.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: read %s", path)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: parse %s", path)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Scene     string
	OutputDir string
	Direction string
	Side      string
	Template  string
	Face      string
	Selection []string
	AnyFace   bool
	Preview   string
	NoPreview bool
	LogLevel  string
	LogFormat string
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.Scene != "" {
		c.Scene = flags.Scene
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Direction != "" {
		c.Direction = flags.Direction
	}
	if flags.Side != "" {
		c.Side = flags.Side
	}
	if flags.Template != "" {
		c.TemplateElement = flags.Template
	}
	if flags.Face != "" {
		c.TemplateFace = flags.Face
	}
	if len(flags.Selection) > 0 {
		c.Selection = flags.Selection
	}
	if flags.AnyFace {
		c.AnyFaceFallback = true
	}
	if flags.Preview != "" {
		c.Preview.Enabled = true
		c.Preview.Format = flags.Preview
	}
	if flags.NoPreview {
		c.Preview.Enabled = false
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	if flags.LogFormat != "" {
		c.LogFormat = flags.LogFormat
	}

	// Output paths default next to the scene
	if c.OutputDir == "" {
		if c.Scene != "" {
			c.OutputDir = filepath.Join(filepath.Dir(c.Scene), "elevmark-out")
		} else {
			c.OutputDir = "elevmark-out"
		}
	}
	if c.MatchLog == "" {
		c.MatchLog = filepath.Join(c.OutputDir, "elevation_match_log.json")
	} else if !filepath.IsAbs(c.MatchLog) {
		c.MatchLog = filepath.Join(c.OutputDir, c.MatchLog)
	}
	if c.HistoryDB == "" {
		c.HistoryDB = filepath.Join(c.OutputDir, "history.db")
	} else if !filepath.IsAbs(c.HistoryDB) {
		c.HistoryDB = filepath.Join(c.OutputDir, c.HistoryDB)
	}
	if c.SceneOutput == "" && c.Scene != "" {
		base := strings.TrimSuffix(filepath.Base(c.Scene), filepath.Ext(c.Scene))
		c.SceneOutput = filepath.Join(c.OutputDir, base+".annotated.yaml")
	}

	// Defaults for placement settings
	if c.Side == "" {
		c.Side = "right"
	}
	if c.Style.LeaderScale <= 0 {
		c.Style.LeaderScale = 1
	}
	if c.Style.TextScale <= 0 {
		c.Style.TextScale = 1
	}
	if c.Preview.Format == "" {
		c.Preview.Format = "webp"
	}
	if c.Preview.Size <= 0 {
		c.Preview.Size = 512
	}
	if c.Preview.Supersample <= 0 {
		c.Preview.Supersample = 2
	}
	if c.ReportLimit <= 0 {
		c.ReportLimit = 20
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
}

// PreviewDir is where preview images are written.
func (c Config) PreviewDir() string {
	return filepath.Join(c.OutputDir, "preview")
}
