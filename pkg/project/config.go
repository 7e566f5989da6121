// Package project models an MFlow project on disk: the mflow.config.json
// file, the HTML page used by `mflow run`, and the `mflow init` scaffold.
package project

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"golang.org/x/image/colornames"

	"mflow/pkg/compiler"
)

// ConfigFile is the project file looked up in the working directory.
const ConfigFile = "mflow.config.json"

var ErrNoConfig = errors.New("no " + ConfigFile + " found")

var (
	hexColor  = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	elementID = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_\-:.]*$`)
)

type Canvas struct {
	ID         string `json:"id,omitempty"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Background string `json:"background"`
}

type Config struct {
	Entry     string `json:"entry"`
	Output    string `json:"output"`
	Canvas    Canvas `json:"canvas"`
	FPS       int    `json:"fps,omitempty"`
	Minify    bool   `json:"minify"`
	SourceMap bool   `json:"sourcemap"`
}

func DefaultConfig() Config {
	return Config{
		Entry:  "src/main.mflow",
		Output: "dist/main.js",
		Canvas: Canvas{
			ID:         compiler.DefaultCanvasID,
			Width:      800,
			Height:     600,
			Background: "#0D0B0A",
		},
	}
}

// ParseConfig decodes a config, filling absent fields with defaults, and
// validates it. Background color names are resolved to #RRGGBB.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "decoding "+ConfigFile)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads dir/mflow.config.json. It returns ErrNoConfig when the
// file does not exist.
func LoadConfig(dir string) (Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, ErrNoConfig
		}
		return Config{}, errors.Wrap(err, "reading "+ConfigFile)
	}
	return ParseConfig(data)
}

// Marshal renders the config the way `mflow init` writes it.
func (c Config) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encoding "+ConfigFile)
	}
	return append(data, '\n'), nil
}

// Validate checks field ranges and normalizes the background color in place.
func (c *Config) Validate() error {
	if c.Entry == "" {
		return errors.New("config: entry is empty")
	}
	if c.Output == "" {
		return errors.New("config: output is empty")
	}
	if c.Canvas.ID != "" && !elementID.MatchString(c.Canvas.ID) {
		return errors.Errorf("config: canvas id %q is not a valid element id", c.Canvas.ID)
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return errors.Errorf("config: canvas size %dx%d must be positive", c.Canvas.Width, c.Canvas.Height)
	}
	if c.FPS < 0 || c.FPS > 240 {
		return errors.Errorf("config: fps %d out of range 0-240", c.FPS)
	}
	bg, err := ResolveColor(c.Canvas.Background)
	if err != nil {
		return errors.Wrap(err, "config: canvas background")
	}
	c.Canvas.Background = bg
	return nil
}

// CompilerOptions maps the config onto compiler options.
func (c Config) CompilerOptions() compiler.Options {
	return compiler.Options{
		CanvasID:   c.Canvas.ID,
		FPS:        c.FPS,
		Minify:     c.Minify,
		SourceMap:  c.SourceMap,
		SourceName: filepath.Base(c.Entry),
		OutputName: filepath.Base(c.Output),
	}
}

// ResolveColor accepts #rgb, #rrggbb or a CSS color name and returns the
// color as upper-case #RRGGBB. An empty string resolves to black.
func ResolveColor(s string) (string, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return "#000000", nil
	case hexColor.MatchString(s):
		hex := strings.ToUpper(s[1:])
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		return "#" + hex, nil
	}
	c, ok := colornames.Map[strings.ToLower(s)]
	if !ok {
		return "", errors.Errorf("unknown color %q", s)
	}
	return rgbHex(c), nil
}

func rgbHex(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
