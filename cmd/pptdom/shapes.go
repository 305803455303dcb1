package main

import (
	"fmt"
	"strings"

	"github.com/VantageDataChat/pptdom"

	"github.com/scott-cotton/cli"
)

func shapes(cfg *ShapesConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Shapes.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: expected one pptx file", cli.ErrUsage)
	}
	pres, err := cfg.open(args[0])
	if err != nil {
		return err
	}
	defer pres.Close()

	slides := pres.Slides()
	if cfg.Slide != 0 {
		s, err := pres.Slide(cfg.Slide)
		if err != nil {
			return fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		slides = []*pptdom.Slide{s}
	}
	p := cfg.printer(cc.Out)
	for _, s := range slides {
		header := fmt.Sprintf("slide %d", s.Number())
		if l, err := s.Layout(); err == nil && l.Name() != "" {
			header += fmt.Sprintf(" (%s)", l.Name())
		}
		if s.Hidden() {
			header += " [hidden]"
		}
		p.Header("%s", header)
		listTree(p, s.Shapes(), 1)
	}
	return nil
}

func listTree(p *printer, t *pptdom.ShapeTree, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, s := range t.Shapes() {
		ph := ""
		if k, ok := s.Placeholder(); ok {
			ph = " " + p.Dim("ph="+k.String())
		}
		hidden := ""
		if s.Hidden() {
			hidden = " " + p.Dim("hidden")
		}
		p.Line("%s%-5d %-10s %-24q %s%s%s", indent, s.ID(), s.Kind(), s.Name(),
			p.Dim(fmt.Sprintf("%.0f,%.0f %.0fx%.0f", s.XPixels(), s.YPixels(), s.WidthPixels(), s.HeightPixels())),
			ph, hidden)
		if s.Kind() == pptdom.ShapeGroup {
			if g, err := s.Group(); err == nil {
				listTree(p, g, depth+1)
			}
		}
	}
}
