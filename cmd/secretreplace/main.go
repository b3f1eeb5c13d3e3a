package main

import (
	"fmt"
	"io"
	"os"

	"github.com/grezar/secretreplace"
	"github.com/grezar/secretreplace/provider/awsssm"
	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// These variables are set in build step.
var (
	Version  string
	Revision string
)

var newRunner = secretreplace.NewRunner

func main() {
	os.Exit(run(os.Args, os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	app := &cli.App{
		Name:      "secretreplace",
		Usage:     "Render SSM parameters into a secret template file",
		Version:   fmt.Sprintf("%s (%s)", Version, Revision),
		Writer:    stdout,
		ErrWriter: stdout,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      "filename",
				Aliases:   []string{"f"},
				Usage:     "The secrets `FILE` to render",
				Required:  true,
				TakesFile: true,
			},
			&cli.StringFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Usage:   "Environment for references that do not name one (default: second segment of the path)",
				EnvVars: []string{"SECRETREPLACE_ENV"},
			},
			&cli.StringFlag{
				Name:      "roles",
				Usage:     "Load role mappings from `FILE` (YAML or INI)",
				EnvVars:   []string{"SECRETREPLACE_ROLES"},
				TakesFile: true,
			},
			&cli.StringFlag{
				Name:    "region",
				Usage:   "AWS region of the parameter store",
				EnvVars: []string{"AWS_REGION", "AWS_DEFAULT_REGION"},
			},
			&cli.IntFlag{
				Name:  "max-rps",
				Usage: "Maximum parameter store requests per second, 0 disables the limit",
				Value: awsssm.DefaultRate,
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Print the rendered template instead of writing the file",
			},
			&cli.BoolFlag{
				Name:  "report",
				Usage: "Print a table of the substituted parameters",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
				Value: "warn",
			},
		},
		Action: func(c *cli.Context) error {
			if err := setupLogging(stdout, c.String("log-level")); err != nil {
				return err
			}
			runner, err := newRunner(secretreplace.Options{
				Filename:  c.String("filename"),
				Env:       c.String("env"),
				RolesFile: c.String("roles"),
				Region:    c.String("region"),
				Rate:      c.Int("max-rps"),
				DryRun:    c.Bool("dry-run"),
				Report:    c.Bool("report"),
				Stdout:    stdout,
			})
			if err != nil {
				return err
			}
			return runner.Run(c.Context)
		},
	}

	if err := app.Run(args); err != nil {
		fmt.Fprintln(stdout, err)
		return 1
	}
	return 0
}

func setupLogging(w io.Writer, level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd())
	}
	log.SetOutput(w)
	log.SetLevel(lvl)
	log.SetFormatter(&log.TextFormatter{
		DisableColors: !color,
		ForceColors:   color,
	})
	return nil
}
