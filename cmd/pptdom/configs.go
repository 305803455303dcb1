package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/VantageDataChat/pptdom"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
)

type MainConfig struct {
	DPI     int    `cli:"name=dpi desc='pixel resolution for both axes (default 96)'"`
	Config  string `cli:"name=config aliases=c desc='yaml options file'"`
	Verbose bool   `cli:"name=v desc='log debug records to stderr'"`
	Color   bool   `cli:"name=color desc='force colored output'"`

	Main *cli.Command
}

// options merges the options file, the -dpi flag and -v, in that order.
func (cfg *MainConfig) options() (*pptdom.Options, error) {
	opts := pptdom.DefaultOptions()
	if cfg.Config != "" {
		var err error
		if opts, err = pptdom.LoadOptions(cfg.Config); err != nil {
			return nil, err
		}
	}
	if cfg.DPI < 0 {
		return nil, fmt.Errorf("%w: -dpi must be positive", cli.ErrUsage)
	}
	if cfg.DPI > 0 {
		opts.ResolutionX = float64(cfg.DPI)
		opts.ResolutionY = float64(cfg.DPI)
	}
	if cfg.Verbose {
		opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return opts, nil
}

func (cfg *MainConfig) open(path string) (*pptdom.Presentation, error) {
	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}
	pres, err := pptdom.OpenWithOptions(path, opts)
	if err != nil {
		return nil, fmt.Errorf("could not open %q: %w", path, err)
	}
	return pres, nil
}

func (cfg *MainConfig) useColor(w io.Writer) bool {
	if cfg.Color {
		return true
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// printer writes command output with optional emphasis.
type printer struct {
	w      io.Writer
	header *color.Color
	dim    *color.Color
	bad    *color.Color
}

func (cfg *MainConfig) printer(w io.Writer) *printer {
	p := &printer{
		w:      w,
		header: color.New(color.FgCyan, color.Bold),
		dim:    color.New(color.Faint),
		bad:    color.New(color.FgRed),
	}
	colored := cfg.useColor(w)
	for _, c := range []*color.Color{p.header, p.dim, p.bad} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *printer) Header(format string, args ...any) {
	fmt.Fprintln(p.w, p.header.Sprintf(format, args...))
}

func (p *printer) Line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) Dim(s string) string { return p.dim.Sprint(s) }
func (p *printer) Bad(s string) string { return p.bad.Sprint(s) }

type ShapesConfig struct {
	*MainConfig

	Slide  int `cli:"name=slide aliases=s desc='only list this slide (1-based)'"`
	Shapes *cli.Command
}

type SeriesConfig struct {
	*MainConfig

	Series *cli.Command
}

type CloneConfig struct {
	*MainConfig

	Slide int    `cli:"name=slide aliases=s desc='slide holding the shape (1-based)'"`
	ID    int    `cli:"name=id desc='id of the shape to clone'"`
	To    int    `cli:"name=to desc='destination slide (default: same slide)'"`
	Out   string `cli:"name=o desc='output file'"`
	Clone *cli.Command
}

type ValidateConfig struct {
	*MainConfig

	Validate *cli.Command
}
