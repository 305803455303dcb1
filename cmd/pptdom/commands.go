package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/VantageDataChat/pptdom"
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Main, "pptdom").
		WithSynopsis("pptdom [opts] command [opts] file.pptx").
		WithDescription("pptdom inspects and edits the shape trees of pptx files. Version " + pptdom.Version + ".").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return pptdomMain(cfg, cc, args)
		}).
		WithSubs(
			ShapesCommand(cfg),
			SeriesCommand(cfg),
			CloneCommand(cfg),
			ValidateCommand(cfg))
}

func pptdomMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}

func ShapesCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ShapesConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("shapes").
		WithAliases("ls").
		WithOpts(opts...).
		WithSynopsis("shapes [-slide N] file.pptx").
		WithDescription("list the shapes of every slide with id, kind, name, placeholder and pixel geometry").
		WithRun(func(cc *cli.Context, args []string) error {
			return shapes(cfg, cc, args)
		})
	cfg.Shapes = cmd
	return cmd
}

func SeriesCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &SeriesConfig{MainConfig: mainCfg}
	cmd := cli.NewCommand("series").
		WithSynopsis("series file.pptx").
		WithDescription("print every chart series with its cell addresses and cached values").
		WithRun(func(cc *cli.Context, args []string) error {
			return series(cfg, cc, args)
		})
	cfg.Series = cmd
	return cmd
}

func CloneCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &CloneConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("clone").
		WithAliases("cp").
		WithOpts(opts...).
		WithSynopsis("clone -slide N -id ID [-to M] -o out.pptx file.pptx").
		WithDescription("clone a shape and save the result").
		WithRun(func(cc *cli.Context, args []string) error {
			return clone(cfg, cc, args)
		})
	cfg.Clone = cmd
	return cmd
}

func ValidateCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ValidateConfig{MainConfig: mainCfg}
	cmd := cli.NewCommand("validate").
		WithAliases("check").
		WithSynopsis("validate file.pptx...").
		WithDescription("check shape ids, names and chart formulas").
		WithRun(func(cc *cli.Context, args []string) error {
			return validate(cfg, cc, args)
		})
	cfg.Validate = cmd
	return cmd
}
