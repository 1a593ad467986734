// Command nix-config-parse parses a nix.conf and prints the resulting settings.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gopasspw/nixconfig"
	"github.com/urfave/cli/v3"
)

func main() {
	os.Exit(realMain(context.Background(), os.Args, os.Stdout, os.Stderr))
}

func realMain(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := newApp(stdout, stderr)
	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)

		return 1
	}

	return 0
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "nix-config-parse",
		Usage:     "parse a nix.conf and print its settings",
		ArgsUsage: "[file]",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-builtins",
				Usage: "do not seed the built-in settings",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "fail on malformed lines",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "also print built-in settings",
			},
			&cli.StringFlag{
				Name:  "get",
				Usage: "only print the value of this setting",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			return parseAction(cmd, stdout, stderr)
		},
	}
}

func parseAction(cmd *cli.Command, stdout, stderr io.Writer) error {
	r := nixconfig.NewReader()
	if cmd.Bool("no-builtins") {
		r.Builtins = nil
	}
	r.Strict = cmd.Bool("strict")

	var (
		cfg *nixconfig.Config
		err error
	)
	if fn := cmd.Args().First(); fn != "" {
		cfg, err = r.ParseFile(fn)
	} else {
		cfg, err = r.LoadAll()
	}
	if err != nil {
		return err
	}

	for _, d := range cfg.Diagnostics() {
		fmt.Fprintf(stderr, "warning: %s\n", d)
	}

	if key := cmd.String("get"); key != "" {
		v, found := cfg.Get(key)
		if !found {
			return fmt.Errorf("setting %q not found", key)
		}
		fmt.Fprintln(stdout, v)

		return nil
	}

	if !cmd.Bool("all") {
		fmt.Fprint(stdout, cfg.String())

		return nil
	}

	for k, v := range cfg.All() {
		fmt.Fprintf(stdout, "%s = %s\n", k, v)
	}

	return nil
}
