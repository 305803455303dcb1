package main

import (
	"fmt"

	"github.com/scott-cotton/cli"
)

func validate(cfg *ValidateConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Validate.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: expected at least one pptx file", cli.ErrUsage)
	}
	p := cfg.printer(cc.Out)
	failed := 0
	for _, path := range args {
		pres, err := cfg.open(path)
		if err != nil {
			p.Line("%s: %s", path, p.Bad(err.Error()))
			failed++
			continue
		}
		if err := pres.Validate(); err != nil {
			p.Line("%s: %s", path, p.Bad(err.Error()))
			failed++
		} else {
			p.Line("%s: ok", path)
		}
		pres.Close()
	}
	if failed != 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(args))
	}
	return nil
}
