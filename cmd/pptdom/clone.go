package main

import (
	"fmt"

	"github.com/scott-cotton/cli"
)

func clone(cfg *CloneConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Clone.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: expected one pptx file", cli.ErrUsage)
	}
	if cfg.Slide == 0 || cfg.ID <= 0 {
		return fmt.Errorf("%w: -slide and -id are required", cli.ErrUsage)
	}
	if cfg.Out == "" {
		return fmt.Errorf("%w: -o is required", cli.ErrUsage)
	}
	pres, err := cfg.open(args[0])
	if err != nil {
		return err
	}
	defer pres.Close()

	from, err := pres.Slide(cfg.Slide)
	if err != nil {
		return err
	}
	src, ok := from.Shapes().ByID(uint32(cfg.ID))
	if !ok {
		return fmt.Errorf("slide %d has no shape with id %d", cfg.Slide, cfg.ID)
	}
	to := from
	if cfg.To != 0 {
		if to, err = pres.Slide(cfg.To); err != nil {
			return err
		}
	}
	dup, err := to.Shapes().Clone(src)
	if err != nil {
		return err
	}
	if err := pres.Save(cfg.Out); err != nil {
		return err
	}
	p := cfg.printer(cc.Out)
	p.Line("slide %d: %s %d %q", to.Number(), dup.Kind(), dup.ID(), dup.Name())
	return nil
}
