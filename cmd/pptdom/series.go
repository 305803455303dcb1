package main

import (
	"errors"
	"fmt"

	"github.com/VantageDataChat/pptdom"

	"github.com/scott-cotton/cli"
)

func series(cfg *SeriesConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Series.Parse(cc, args)
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

	p := cfg.printer(cc.Out)
	var errs []error
	for _, s := range pres.Slides() {
		s.Shapes().Walk(func(sh *pptdom.Shape) bool {
			if sh.Kind() != pptdom.ShapeChart {
				return true
			}
			c, err := sh.Chart()
			if err != nil {
				errs = append(errs, fmt.Errorf("slide %d %q: %w", s.Number(), sh.Name(), err))
				return true
			}
			title, _ := c.Title()
			p.Header("slide %d %q %s %q", s.Number(), sh.Name(), c.Type(), title)
			for i, ser := range c.Series() {
				p.Line("  series %d %q %s", i+1, ser.Name(), p.Dim(ser.Formula()))
				points, err := ser.Points()
				if err != nil {
					p.Line("    %s", p.Bad(err.Error()))
					errs = append(errs, err)
					continue
				}
				for _, pt := range points {
					v := p.Dim("-")
					if pt.Value != nil {
						v = pt.Value.String()
					}
					p.Line("    %s!%s = %s", pt.Sheet, pt.Address, v)
				}
			}
			return true
		})
	}
	return errors.Join(errs...)
}
