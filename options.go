package pptdom

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
)

var discardLogger = slog.New(slog.DiscardHandler)

// Options configures how a presentation is opened.
type Options struct {
	// ResolutionX and ResolutionY are the pixel densities, in pixels per
	// inch, used by every pixel getter and setter.
	ResolutionX float64
	ResolutionY float64

	// Logger receives debug records for mutations and warnings for
	// tolerated malformed input. Nil discards all output.
	Logger *slog.Logger

	// Hasher computes media de-duplication keys. Nil means HashMedia.
	Hasher HashFunc
}

// DefaultOptions returns options with 96 DPI on both axes and the default
// slog logger.
func DefaultOptions() *Options {
	return &Options{
		ResolutionX: DefaultResolution,
		ResolutionY: DefaultResolution,
		Logger:      slog.Default(),
		Hasher:      HashMedia,
	}
}

func (o *Options) withDefaults() *Options {
	out := *o
	if out.Logger == nil {
		out.Logger = discardLogger
	}
	if out.Hasher == nil {
		out.Hasher = HashMedia
	}
	return &out
}

type fileOptions struct {
	Resolution struct {
		X float64 `yaml:"x"`
		Y float64 `yaml:"y"`
	} `yaml:"resolution"`
	LogLevel string `yaml:"log_level"`
}

// LoadOptions reads options from a YAML file:
//
//	resolution:
//	  x: 96
//	  y: 96
//	log_level: debug
//
// Missing values keep their defaults. A log_level installs a text logger on
// stderr at that level.
func LoadOptions(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read options: %w", err)
	}
	return ParseOptions(data)
}

// ParseOptions is LoadOptions over an in-memory document.
func ParseOptions(data []byte) (*Options, error) {
	var f fileOptions
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse options: %w", err)
	}

	opts := DefaultOptions()
	if f.Resolution.X != 0 {
		opts.ResolutionX = f.Resolution.X
	}
	if f.Resolution.Y != 0 {
		opts.ResolutionY = f.Resolution.Y
	}
	if err := checkResolution("horizontal", opts.ResolutionX); err != nil {
		return nil, err
	}
	if err := checkResolution("vertical", opts.ResolutionY); err != nil {
		return nil, err
	}

	if f.LogLevel != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(strings.ToUpper(f.LogLevel))); err != nil {
			return nil, fmt.Errorf("invalid log_level %q: %w", f.LogLevel, err)
		}
		opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	}
	return opts, nil
}
